package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/x-stp/crtree/internal/certlib"
	"github.com/x-stp/crtree/internal/forest"
	"github.com/x-stp/crtree/internal/tree"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.True(t, IsRetryable(NewError("busy", true)))
	assert.False(t, IsRetryable(ErrNoDomains))
	assert.True(t, IsRetryable(fmt.Errorf("outer: %w", NewError("busy", true))))
}

func TestClassifyFetch(t *testing.T) {
	t.Parallel()

	assert.NoError(t, classifyFetch("x", nil))

	upstream := classifyFetch("a.com", fmt.Errorf("%w: HTTP 503", certlib.ErrUpstream))
	assert.True(t, IsRetryable(upstream))
	assert.True(t, errors.Is(upstream, certlib.ErrUpstream))
	assert.Equal(t, "fetch a.com: unexpected response from crt.sh: HTTP 503", upstream.Error())

	parse := classifyFetch("a.com", errors.New("error parsing crt.sh JSON"))
	assert.False(t, IsRetryable(parse))
}

func TestErrorType(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{context.Canceled, "canceled"},
		{fmt.Errorf("x: %w", context.DeadlineExceeded), "timeout"},
		{certlib.ErrUpstream, "upstream"},
		{fmt.Errorf("%w: 200 labels", forest.ErrTooDeep), "too_deep"},
		{forest.ErrIntegrity, "integrity"},
		{tree.ErrUnknownStyle, "style"},
		{ErrNoDomains, "no_domains"},
		{NewError("reset", true), "network"},
		{errors.New("boom"), "other"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ErrorType(tc.err), "%v", tc.err)
	}
}
