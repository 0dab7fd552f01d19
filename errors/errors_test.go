package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrap(ErrInvalidArgument, "create realm")

	assert.Contains(t, err.Error(), "create realm")
	assert.Contains(t, err.Error(), "invalid argument")
	assert.True(t, Is(err, ErrInvalidArgument))
	assert.False(t, Is(err, ErrConflict))
}

func TestSentinelHelpers(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		notFound   bool
		invalidArg bool
		conflict   bool
	}{
		{name: "nil", err: nil},
		{name: "not found", err: NewNotFoundError("realm %q", "r1"), notFound: true},
		{name: "invalid argument", err: NewInvalidArgumentError("entity without id"), invalidArg: true},
		{name: "conflict", err: NewConflictError("realm %q exists", "r1"), conflict: true},
		{name: "wrapped conflict", err: Wrap(NewConflictError("dup"), "outer"), conflict: true},
		{name: "unrelated", err: New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.invalidArg, IsInvalidArgumentError(tt.err))
			assert.Equal(t, tt.conflict, IsConflictError(tt.err))
		})
	}
}

func TestNewConflictErrorMessage(t *testing.T) {
	err := NewConflictError("realm %q already exists", "master")
	assert.Equal(t, `realm "master" already exists: entity conflict`, err.Error())
}

func TestAssertionFailure(t *testing.T) {
	err := WithAssertionFailure(Wrapf(ErrTypeMismatch, "cached %s is %s", "a", "b"))

	assert.True(t, HasAssertionFailure(err))
	assert.True(t, Is(err, ErrTypeMismatch))
}

func TestWithHint(t *testing.T) {
	err := WithHint(ErrClosed, "open a new session")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "open a new session", hints[0])
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithStack(nil))
	assert.Nil(t, WithDetail(nil, "detail"))
}

func ExampleWrap() {
	err := Wrap(ErrNotFound, "load realm file")
	fmt.Println(err)
	// Output: load realm file: not found
}
