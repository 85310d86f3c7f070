package cli

import (
	"errors"
	"fmt"

	"mercator-hq/copycheck/pkg/config"
	"mercator-hq/copycheck/pkg/objectstore"
	"mercator-hq/copycheck/pkg/rules"
)

// Exit codes returned by the copycheck binary.
const (
	ExitOK     = 0
	ExitError  = 1
	ExitConfig = 2
	ExitUsage  = 64
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError is an invalid flag or argument combination.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// Usagef creates a UsageError.
func Usagef(format string, args ...any) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error to the process exit code. Configuration problems,
// including a missing rule corpus or remote bucket, exit with ExitConfig.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		usage      *UsageError
		cfgErr     *ConfigError
		validation config.ValidationError
		remote     *objectstore.ConfigError
		load       *rules.LoadError
	)
	switch {
	case errors.As(err, &usage):
		return ExitUsage
	case errors.As(err, &cfgErr), errors.As(err, &validation), errors.As(err, &remote), errors.As(err, &load):
		return ExitConfig
	default:
		return ExitError
	}
}
