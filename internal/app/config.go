package app

import "errors"

// Config holds everything an App needs to run: where to find the graph
// description, how big to make the scheduler, and how to report on the
// run.
type Config struct {
	GraphPath string // .hcl file or directory of .hcl files

	WorkerCount int
	ChunkCount  int

	LogFormat string
	LogLevel  string

	TriggerPort int // 0 disables the HTTP trigger server
}

// NewConfig validates cfg and returns it, or an error describing the
// first invalid field found.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}

	// Future validations for other fields can be added here.
	// For example: checking if LogLevel is a valid value.

	return &cfg, nil
}
