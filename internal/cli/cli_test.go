package cli

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/mapfuse/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Optimize(t *testing.T) {
	out := &bytes.Buffer{}
	inv, shouldExit, err := Parse([]string{
		"optimize", "graphs/",
		"-g", "extra.hcl",
		"-o", "out.yaml",
		"--fetch", "sink,cache",
		"--max-iterations", "4",
		"--log-level", "DEBUG",
		"--log-format", "json",
	}, out)
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, CommandOptimize, inv.Command)
	assert.Equal(t, &app.Config{
		GraphPaths:    []string{"extra.hcl", "graphs/"},
		OutputPath:    "out.yaml",
		LogFormat:     "json",
		LogLevel:      "debug",
		Fetch:         []string{"sink", "cache"},
		Passes:        []string{"map_fusion"},
		MaxIterations: 4,
	}, inv.Config)
}

func TestParse_Validate(t *testing.T) {
	inv, shouldExit, err := Parse([]string{"validate", "a.hcl", "b.yaml"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, CommandValidate, inv.Command)
	assert.Equal(t, []string{"a.hcl", "b.yaml"}, inv.Config.GraphPaths)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"map_fusion", "other"}, splitList(" map_fusion, ,other "))
}

func TestParse_Help(t *testing.T) {
	for _, args := range [][]string{nil, {"-h"}, {"optimize", "--help"}} {
		out := &bytes.Buffer{}
		inv, shouldExit, err := Parse(args, out)
		require.NoError(t, err, args)
		assert.True(t, shouldExit, args)
		assert.Nil(t, inv)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown flag", args: []string{"optimize", "--nope"}, wantErr: "unknown flag: --nope"},
		{name: "unknown command", args: []string{"fuse"}, wantErr: `unknown command "fuse"`},
		{name: "no graph path", args: []string{"optimize"}, wantErr: "no graph path given"},
		{name: "bad log level", args: []string{"validate", "g.hcl", "--log-level", "trace"}, wantErr: "LogLevel"},
		{name: "bad output format", args: []string{"optimize", "g.hcl", "--output-format", "json"}, wantErr: "OutputFormat"},
		{name: "negative iterations", args: []string{"optimize", "g.hcl", "--max-iterations", "-1"}, wantErr: "MaxIterations"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantErr)
		})
	}
}
