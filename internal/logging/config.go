package logging

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Format string

const (
	FormatConsole Format = "console"
	FormatText    Format = "text"
	FormatJSON    Format = "json"
)

type Sink string

const (
	SinkStderr Sink = "stderr"
	SinkFile   Sink = "file"
	SinkNone   Sink = "none"
)

const (
	EnvLogLevel      = "CLIKIT_LOG_LEVEL"
	EnvLogFormat     = "CLIKIT_LOG_FORMAT"
	EnvLogSink       = "CLIKIT_LOG_SINK"
	EnvLogFile       = "CLIKIT_LOG_FILE"
	EnvLogAddSource  = "CLIKIT_LOG_ADD_SOURCE"
	EnvLogMaxSizeMB  = "CLIKIT_LOG_MAX_SIZE_MB"
	EnvLogMaxBackups = "CLIKIT_LOG_MAX_BACKUPS"
	EnvLogMaxAgeDays = "CLIKIT_LOG_MAX_AGE_DAYS"
	EnvLogCompress   = "CLIKIT_LOG_COMPRESS"
)

// Config is the logging section of a settings file. Nil fields fall back to
// DefaultConfig.
type Config struct {
	Level     *string `yaml:"level,omitempty"`
	Format    *string `yaml:"format,omitempty"`
	Sink      *string `yaml:"sink,omitempty"`
	File      *string `yaml:"file,omitempty"`
	AddSource *bool   `yaml:"add_source,omitempty"`

	MaxSizeMB  *int  `yaml:"max_size_mb,omitempty"`
	MaxBackups *int  `yaml:"max_backups,omitempty"`
	MaxAgeDays *int  `yaml:"max_age_days,omitempty"`
	Compress   *bool `yaml:"compress,omitempty"`
}

// DefaultConfig keeps a CLI quiet: warnings and errors on stderr.
func DefaultConfig() Config {
	level := "warn"
	sink := string(SinkStderr)
	format := string(FormatConsole)
	addSource := false
	maxSizeMB := 10
	maxBackups := 3
	maxAgeDays := 14
	compress := true

	return Config{
		Level:      &level,
		Format:     &format,
		Sink:       &sink,
		AddSource:  &addSource,
		MaxSizeMB:  &maxSizeMB,
		MaxBackups: &maxBackups,
		MaxAgeDays: &maxAgeDays,
		Compress:   &compress,
	}
}

// WithEnv applies CLIKIT_LOG_* overrides. Unparsable numbers are ignored.
func (c Config) WithEnv() Config {
	applyString := func(dst **string, env string) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = &v
		}
	}
	applyBool := func(dst **bool, env string) {
		raw := strings.TrimSpace(os.Getenv(env))
		if raw == "" {
			return
		}
		v := !isDisabledString(raw)
		*dst = &v
	}
	applyInt := func(dst **int, env string) {
		raw := strings.TrimSpace(os.Getenv(env))
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return
		}
		*dst = &n
	}

	applyString(&c.Level, EnvLogLevel)
	applyString(&c.Format, EnvLogFormat)
	applyString(&c.Sink, EnvLogSink)
	applyString(&c.File, EnvLogFile)
	applyBool(&c.AddSource, EnvLogAddSource)
	applyInt(&c.MaxSizeMB, EnvLogMaxSizeMB)
	applyInt(&c.MaxBackups, EnvLogMaxBackups)
	applyInt(&c.MaxAgeDays, EnvLogMaxAgeDays)
	applyBool(&c.Compress, EnvLogCompress)
	return c
}

// Merge returns c with every non-nil field of override applied.
func (c Config) Merge(override Config) Config {
	pick := func(dst **string, v *string) {
		if v != nil {
			*dst = v
		}
	}
	pickBool := func(dst **bool, v *bool) {
		if v != nil {
			*dst = v
		}
	}
	pickInt := func(dst **int, v *int) {
		if v != nil {
			*dst = v
		}
	}
	pick(&c.Level, override.Level)
	pick(&c.Format, override.Format)
	pick(&c.Sink, override.Sink)
	pick(&c.File, override.File)
	pickBool(&c.AddSource, override.AddSource)
	pickInt(&c.MaxSizeMB, override.MaxSizeMB)
	pickInt(&c.MaxBackups, override.MaxBackups)
	pickInt(&c.MaxAgeDays, override.MaxAgeDays)
	pickBool(&c.Compress, override.Compress)
	return c
}

func (c Config) Normalize() (Config, error) {
	normalizeString := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.ToLower(strings.TrimSpace(*s))
		if v == "" {
			return nil
		}
		return &v
	}
	c.Level = normalizeString(c.Level)
	c.Format = normalizeString(c.Format)
	c.Sink = normalizeString(c.Sink)
	if c.File != nil {
		if v := strings.TrimSpace(*c.File); v == "" {
			c.File = nil
		} else {
			c.File = &v
		}
	}
	nonNegative := func(n *int) *int {
		if n != nil && *n < 0 {
			zero := 0
			return &zero
		}
		return n
	}
	c.MaxSizeMB = nonNegative(c.MaxSizeMB)
	c.MaxBackups = nonNegative(c.MaxBackups)
	c.MaxAgeDays = nonNegative(c.MaxAgeDays)
	return c, c.Validate()
}

func (c Config) Validate() error {
	if c.Level != nil {
		switch *c.Level {
		case "debug", "info", "warn", "warning", "error":
		default:
			return fmt.Errorf("logging.level: invalid %q", *c.Level)
		}
	}
	if c.Format != nil {
		switch Format(*c.Format) {
		case FormatConsole, FormatText, FormatJSON:
		default:
			return fmt.Errorf("logging.format: invalid %q", *c.Format)
		}
	}
	if c.Sink != nil {
		switch Sink(*c.Sink) {
		case SinkStderr, SinkFile, SinkNone:
		default:
			return fmt.Errorf("logging.sink: invalid %q", *c.Sink)
		}
	}
	return nil
}

func isDisabledString(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "0", "false", "no", "off":
		return true
	default:
		return false
	}
}
