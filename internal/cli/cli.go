package cli

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/mapfuse/internal/app"
	"github.com/specialistvlad/mapfuse/internal/mapfusion"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Command names the action the user asked for.
type Command string

const (
	CommandOptimize Command = "optimize"
	CommandValidate Command = "validate"
)

// Invocation is a parsed command line.
type Invocation struct {
	Command Command
	Config  *app.Config
}

// flagValues collects every flag of the command tree.
type flagValues struct {
	graphs        []string
	output        string
	outputFormat  string
	logFormat     string
	logLevel      string
	fetch         []string
	passes        []string
	maxIterations int
}

// Parse processes command-line arguments. It returns the parsed invocation,
// a boolean indicating if the program should exit cleanly (help was
// printed), or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")

	var inv *Invocation
	var cfgErr error
	flags := &flagValues{}
	capture := func(command Command) func(*cobra.Command, []string) {
		return func(_ *cobra.Command, args []string) {
			cfg, err := flags.config(args)
			if err != nil {
				cfgErr = err
				return
			}
			inv = &Invocation{Command: command, Config: cfg}
		}
	}

	if args == nil {
		args = []string{}
	}
	root := newRootCmd(flags, capture)
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if cfgErr != nil {
		return nil, false, &ExitError{Code: 2, Message: cfgErr.Error()}
	}
	if inv == nil {
		slog.Debug("No command executed, help was printed.")
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "command", inv.Command, "config", inv.Config)
	return inv, false, nil
}

func newRootCmd(flags *flagValues, capture func(Command) func(*cobra.Command, []string)) *cobra.Command {
	root := &cobra.Command{
		Use:   "mapfuse",
		Short: "Fuse chains of dataset map nodes into single map nodes",
		Long: `mapfuse rewrites dataflow graphs so that every maximal chain of map nodes
(MapDataset, ParallelMapDataset, ParallelMapDatasetV2) becomes one map node
applying the composition of the chain's functions.

Graphs are read from .hcl and .yaml/.yml files. Every flag can also be set
through an environment variable such as MAPFUSE_LOG_LEVEL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringSliceVarP(&flags.graphs, "graph", "g", nil, "Graph file or directory (repeatable). Positional arguments are added to this list.")
	pf.StringVar(&flags.logFormat, "log-format", env.Str("MAPFUSE_LOG_FORMAT", "text"), "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&flags.logLevel, "log-level", env.Str("MAPFUSE_LOG_LEVEL", "info"), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	optimizeCmd := &cobra.Command{
		Use:   "optimize [GRAPH_PATH...]",
		Short: "Run the optimizer passes and write the rewritten graph",
		Run:   capture(CommandOptimize),
	}
	of := optimizeCmd.Flags()
	of.StringVarP(&flags.output, "output", "o", env.Str("MAPFUSE_OUTPUT", "-"), "Output file. '-' writes to stdout.")
	of.StringVar(&flags.outputFormat, "output-format", env.Str("MAPFUSE_OUTPUT_FORMAT"), "Output format: 'hcl' or 'yaml'. Defaults to the output file extension, then hcl.")
	of.StringSliceVar(&flags.fetch, "fetch", splitList(env.Str("MAPFUSE_FETCH")), "Nodes whose outputs are read by the caller. They are never rewritten.")
	of.StringSliceVar(&flags.passes, "pass", splitList(env.Str("MAPFUSE_PASSES", mapfusion.Name)), "Optimizer passes to run, in order.")
	of.IntVar(&flags.maxIterations, "max-iterations", env.Int("MAPFUSE_MAX_ITERATIONS", mapfusion.DefaultMaxIterations), "Upper bound on fusion rounds per pass.")

	validateCmd := &cobra.Command{
		Use:   "validate [GRAPH_PATH...]",
		Short: "Load the graph and check its consistency",
		Run:   capture(CommandValidate),
	}

	root.AddCommand(optimizeCmd, validateCmd)
	return root
}

// config turns the collected flags into a validated app configuration.
func (f *flagValues) config(args []string) (*app.Config, error) {
	graphs := append(append([]string{}, f.graphs...), args...)
	if len(graphs) == 0 {
		return nil, errors.New("no graph path given: pass files or directories as arguments or with --graph")
	}

	passes := f.passes
	if len(passes) == 0 {
		passes = []string{mapfusion.Name}
	}

	return app.NewConfig(app.Config{
		GraphPaths:    graphs,
		OutputPath:    f.output,
		OutputFormat:  strings.ToLower(f.outputFormat),
		LogFormat:     strings.ToLower(f.logFormat),
		LogLevel:      strings.ToLower(f.logLevel),
		Fetch:         f.fetch,
		Passes:        passes,
		MaxIterations: f.maxIterations,
	})
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
