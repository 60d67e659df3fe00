package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// UserError wraps a source error with a user-facing message for the error string, such
// as a suite config which can't be read. The source error is logged separately from the
// message for diagnostic purposes.
type UserError struct {
	message string
	source  error
}

// NewUserError creates a UserError that will output message as the error string.
func NewUserError(source error, message string) *UserError {
	return &UserError{
		message: message,
		source:  source,
	}
}

func (e *UserError) Unwrap() error {
	return e.source
}

func (e *UserError) Error() string {
	return e.message
}

// Source returns the wrapped source error.
func (e *UserError) Source() error {
	return e.source
}

// TransparentError exits with a status code of 1 without logging anything further. It's
// used when a verification failed and its diff has already been printed.
type TransparentError struct {
	source error
}

// NewTransparentError creates a TransparentError wrapping a source error.
func NewTransparentError(source error) *TransparentError {
	return &TransparentError{
		source: source,
	}
}

func (e *TransparentError) Error() string { return e.source.Error() }

func (e *TransparentError) Unwrap() error { return e.source }

// SuiteErr accumulates the failures of individual baseline suites, so that one run
// reports every failing suite rather than only the first.
type SuiteErr struct {
	names []string
	errs  []error
}

// Err records the failure of suite `name`.
func (e *SuiteErr) Err(name string, err error) {
	e.names = append(e.names, name)
	e.errs = append(e.errs, err)
}

func (e *SuiteErr) Len() int {
	return len(e.errs)
}

func (e *SuiteErr) Unwrap() []error {
	return e.errs
}

func (e *SuiteErr) Error() string {
	var b = new(strings.Builder)
	fmt.Fprintf(b, "%d SQL baseline suite(s) failed:", len(e.errs))
	for i, err := range e.errs {
		b.WriteString("\n - ")
		b.WriteString(e.names[i])
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// ExitCode is the process exit status for a final error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var userError *UserError
	if errors.As(err, &userError) {
		return 2
	}
	return 1
}

// HandleFinalError performs special handling for final errors when the error type is one that is
// defined in this package. For other errors, the error is written to stderr on a newline.
func HandleFinalError(err error) {
	var transparentError *TransparentError
	var userError *UserError

	if errors.As(err, &transparentError) {
		// Exit without any additional logging.
	} else if errors.As(err, &userError) {
		log.WithFields(log.Fields{
			"source": userError.Source(),
		}).Error(userError)
	} else {
		_, _ = os.Stderr.WriteString(err.Error())
		_, _ = os.Stderr.Write([]byte("\n"))
	}
	os.Exit(ExitCode(err))
}
