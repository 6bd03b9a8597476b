// Package kerrors defines the closed error-kind taxonomy shared by every
// component: Storage, Remote, Http, Serialization, Embedding, Config,
// NotFound, InvalidInput. Every operation that crosses a process boundary
// or mutates storage returns an error of this shape so callers — in
// particular internal/retry — can inspect it uniformly.
package kerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the closed set of error categories.
type Kind string

const (
	Storage       Kind = "storage"
	Remote        Kind = "remote"
	Http          Kind = "http"
	Serialization Kind = "serialization"
	Embedding     Kind = "embedding"
	Config        Kind = "config"
	NotFoundKind  Kind = "not_found"
	InvalidInputK Kind = "invalid_input"
)

// KError is the concrete error type carried by every component.
type KError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *KError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *KError) Unwrap() error { return e.Err }

func new_(k Kind, msg string, wrapped error) *KError {
	return &KError{Kind: k, Message: msg, Err: wrapped}
}

func StorageErr(msg string) *KError       { return new_(Storage, msg, nil) }
func RemoteErr(msg string) *KError        { return new_(Remote, msg, nil) }
func HttpErr(err error) *KError           { return new_(Http, err.Error(), err) }
func SerializationErr(err error) *KError  { return new_(Serialization, err.Error(), err) }
func EmbeddingErr(msg string) *KError     { return new_(Embedding, msg, nil) }
func ConfigErr(msg string) *KError        { return new_(Config, msg, nil) }
func NotFound(msg string) *KError         { return new_(NotFoundKind, msg, nil) }
func InvalidInput(msg string) *KError     { return new_(InvalidInputK, msg, nil) }
func Wrap(k Kind, msg string, err error) *KError { return new_(k, msg, err) }

// IsTransient reports whether the error is likely transient and worth
// retrying: transport errors unconditionally, Embedding/Storage errors
// whose message contains a retryable marker.
func (e *KError) IsTransient() bool {
	switch e.Kind {
	case Http, Remote:
		return true
	case Embedding, Storage:
		return isTransientMessage(e.Message)
	default:
		return false
	}
}

var transientCodes = []string{"429", "500", "502", "503", "504"}
var transientPatterns = []string{
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"broken pipe",
	"temporarily unavailable",
}

func isTransientMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, code := range transientCodes {
		if strings.Contains(lower, code) {
			return true
		}
	}
	for _, p := range transientPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// IsTransient reports whether err (or a *KError in its chain) is transient.
func IsTransient(err error) bool {
	var ke *KError
	if errors.As(err, &ke) {
		return ke.IsTransient()
	}
	return false
}

// Is reports whether err (or any error in its chain) is a *KError of kind k.
func Is(err error, k Kind) bool {
	var ke *KError
	if errors.As(err, &ke) {
		return ke.Kind == k
	}
	return false
}
