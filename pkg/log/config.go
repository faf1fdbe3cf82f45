package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config declares a logger: level, format and destinations.
type Config struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // text|json
	// Outputs lists destinations: "stderr", "stdout", "null" or a file path.
	// Empty means stderr.
	Outputs []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	// RedactKeys replaces the values of these field keys with [REDACTED].
	RedactKeys []string `json:"redactKeys,omitempty" yaml:"redactKeys,omitempty"`
	// SampleInitial/SampleThereafter keep the first N entries per message
	// and then every Mth. SampleThereafter <= 0 disables sampling.
	SampleInitial    int  `json:"sampleInitial,omitempty" yaml:"sampleInitial,omitempty"`
	SampleThereafter int  `json:"sampleThereafter,omitempty" yaml:"sampleThereafter,omitempty"`
	ShowCaller       bool `json:"showCaller,omitempty" yaml:"showCaller,omitempty"`
}

// ApplyConfig builds a Logger from cfg. A nil cfg yields info/text on stderr.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var formatter Formatter
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		formatter = &TextFormatter{ShowCaller: cfg.ShowCaller}
	case "json":
		formatter = &JSONFormatter{ShowCaller: cfg.ShowCaller}
	default:
		return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
	}

	opts := []LoggerOption{WithLevel(level), WithFormatter(formatter)}
	for _, dest := range cfg.Outputs {
		out, err := outputFor(dest)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithOutput(out))
	}

	l := NewLogger(opts...).(*BaseLogger)
	h := newBridgeHandler(l).withRedactions(cfg.RedactKeys).withSampler(cfg.SampleInitial, cfg.SampleThereafter).withCallers(cfg.ShowCaller)
	l.slogLogger = slog.New(h)
	return l, nil
}

func outputFor(dest string) (Output, error) {
	switch strings.ToLower(dest) {
	case "", "stderr":
		return NewConsoleOutput(), nil
	case "stdout":
		return NewWriterOutput(stdout()), nil
	case "null", "none", "discard":
		return NullOutput{}, nil
	default:
		return NewFileOutput(dest)
	}
}
