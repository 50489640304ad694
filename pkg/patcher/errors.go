package patcher

import "fmt"

// FormatError reports an input image the patcher cannot read.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string {
	return "invalid executable: " + e.Msg
}

func formatErrorf(format string, args ...any) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}

type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}
