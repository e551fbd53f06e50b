/*
Package core wires certificate name sources to the forest builder: a rate limited
fetch pool that resolves many domains concurrently, the build and output helpers
shared by the CLI and the HTTP server, and the error taxonomy used to classify
failures in logs and metrics.
*/
package core

/*
crtree — subdomain trees from Certificate Transparency search results
Copyright (C) 2025  Pepijn van der Stap <rxtls@vanderstap.info>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"context"
	"errors"
	"net"

	"github.com/x-stp/crtree/internal/certlib"
	"github.com/x-stp/crtree/internal/forest"
	"github.com/x-stp/crtree/internal/tree"
)

// customError is an error that carries a retryable flag and an optional cause.
// Nothing in crtree retries; the flag only tells the caller whether running the
// same command again later could succeed.
type customError struct {
	message   string
	retryable bool
	cause     error
}

// NewError creates a new customError with the given message and retryable status.
func NewError(msg string, retryable bool) error {
	return &customError{
		message:   msg,
		retryable: retryable,
	}
}

// wrapError attaches a retryable flag to err, keeping it reachable through errors.Is.
func wrapError(msg string, err error, retryable bool) error {
	return &customError{
		message:   msg + ": " + err.Error(),
		retryable: retryable,
		cause:     err,
	}
}

func (e *customError) Error() string {
	return e.message
}

func (e *customError) Unwrap() error {
	return e.cause
}

// IsRetryable returns true if the error is designated as retryable.
func (e *customError) IsRetryable() bool {
	return e.retryable
}

// IsRetryable reports whether err, or any error it wraps, is a retryable customError.
func IsRetryable(err error) bool {
	var ce *customError
	if errors.As(err, &ce) {
		return ce.IsRetryable()
	}
	return false
}

var (
	// ErrNoDomains is returned when the pipeline is started without any domain.
	ErrNoDomains = NewError("no domains given", false)
	// ErrUnknownFormat is returned for an output format other than text, json or yaml.
	ErrUnknownFormat = NewError("unknown output format", false)
)

// classifyFetch wraps a source error with its retryable flag. Upstream
// statuses, timeouts and network failures are transient; anything else
// (such as an unparsable body) is not.
func classifyFetch(domain string, err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	retryable := errors.Is(err, certlib.ErrUpstream) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &netErr)
	return wrapError("fetch "+domain, err, retryable)
}

// ErrorType returns a short label for err, suitable for metrics and log fields.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, certlib.ErrUpstream):
		return "upstream"
	case errors.Is(err, forest.ErrTooDeep):
		return "too_deep"
	case errors.Is(err, forest.ErrIntegrity):
		return "integrity"
	case errors.Is(err, tree.ErrUnknownStyle):
		return "style"
	case errors.Is(err, ErrNoDomains):
		return "no_domains"
	case IsRetryable(err):
		return "network"
	default:
		return "other"
	}
}
