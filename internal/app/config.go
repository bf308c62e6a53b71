package app

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// GraphPaths are files or directories holding .hcl/.yaml graph files.
	GraphPaths []string `validate:"required,min=1,dive,required"`
	// OutputPath is where the optimized graph is written. Empty or "-"
	// writes to the App's output writer.
	OutputPath string
	// OutputFormat overrides the format implied by OutputPath.
	OutputFormat string `validate:"omitempty,oneof=hcl yaml"`

	LogFormat string `validate:"oneof=text json"`
	LogLevel  string `validate:"oneof=debug info warn error"`

	// Fetch names nodes the caller reads; they are never rewritten.
	Fetch         []string `validate:"dive,required"`
	Passes        []string `validate:"required,min=1,dive,required"`
	MaxIterations int      `validate:"gte=0,lte=1024"`
}

var validate = validator.New()

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
