package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/codec"
	"github.com/syssam/veloxq/query"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // an input was rejected
	ExitCommandError = 2 // bad flags, unreadable files, unreachable database
)

// ExitError carries the exit code of a failed command. Reported is set when
// the failure was already written to the output.
type ExitError struct {
	Code     int
	Err      error
	Reported bool
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// Response is the JSON output envelope.
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Data   any    `json:"data,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

// Error describes a rejected input in JSON output.
type Error struct {
	Kind    string `json:"kind"`
	Entity  string `json:"entity,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
}

// Success writes data. Text output uses the String form of data.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Descriptors writes validated descriptors, encoded with the codec in JSON
// output and one block per descriptor in text output.
func (f *OutputFormatter) Descriptors(descs []*query.Descriptor) error {
	if f.Format != "json" {
		blocks := make([]string, len(descs))
		for i, d := range descs {
			blocks[i] = d.String()
		}
		return f.Success(strings.Join(blocks, "\n\n"))
	}
	data := make([]json.RawMessage, len(descs))
	for i, d := range descs {
		b, err := codec.Marshal(d, codec.JSON)
		if err != nil {
			return err
		}
		data[i] = b
	}
	return f.Success(data)
}

// Reject writes a validation failure and returns the error to exit with.
func (f *OutputFormatter) Reject(err error) error {
	e := &Error{Kind: veloxq.Kind(err), Message: err.Error()}
	var verr *veloxq.ValidationError
	if errors.As(err, &verr) {
		e.Entity = verr.Entity
		e.Path = verr.Path
	}
	if f.Format == "json" {
		if werr := json.NewEncoder(f.Writer).Encode(Response{Status: "error", Error: e}); werr != nil {
			return werr
		}
	} else {
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", e.Kind, e.Message)
	}
	return &ExitError{Code: ExitFailure, Err: err, Reported: true}
}
