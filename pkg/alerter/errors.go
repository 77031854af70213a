package alerter

import (
	"errors"
	"fmt"
)

// ErrEmptyText is returned by Send when the message has no text.
var ErrEmptyText = errors.New("alerter: message text is empty")

// ConfigError reports an invalid or incomplete dispatcher configuration.
// Var names the environment variable (or config field) at fault.
type ConfigError struct {
	Var    string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := "alerter: invalid configuration"
	if e.Var != "" {
		msg += ": " + e.Var
	}
	if e.Reason != "" {
		msg += " " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DeliveryError is returned when the Bot API answered an alert with a
// non-2xx status.
type DeliveryError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *DeliveryError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("alerter: sendMessage failed: http=%d %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("alerter: sendMessage failed: http=%d", e.StatusCode)
}

// AlertError carries a wrapped function's error together with the failure to
// deliver its alert. Both are reachable through errors.Is and errors.As.
type AlertError struct {
	Err      error
	Delivery error
}

func (e *AlertError) Error() string {
	return e.Err.Error() + " (alert delivery failed: " + e.Delivery.Error() + ")"
}

func (e *AlertError) Unwrap() []error { return []error{e.Err, e.Delivery} }
