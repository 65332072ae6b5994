package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrConfigParse, "bad config")
	assert.Equal(t, "[CONFIG_PARSE] bad config", err.Error())

	wrapped := Wrap(fmt.Errorf("unexpected end of input"), ErrConfigParse, "bad config")
	assert.Equal(t, "[CONFIG_PARSE] bad config: unexpected end of input", wrapped.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrInternal, "nothing"))
	assert.Nil(t, Wrapf(nil, ErrInternal, "nothing %d", 1))
}

func TestErrorsIsMatchesOnCode(t *testing.T) {
	err := Newf(ErrConfigValid, "build #%d invalid", 2)
	assert.True(t, errors.Is(err, New(ErrConfigValid, "other message")))
	assert.False(t, errors.Is(err, New(ErrConfigParse, "other message")))
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("open failed")
	err := Wrap(cause, ErrCopyFailed, "copying file")
	require.ErrorIs(t, err, cause)
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrConfigLoad, GetErrorCode(New(ErrConfigLoad, "x")))
	assert.Equal(t, ErrUnknown, GetErrorCode(fmt.Errorf("plain")))

	// Codes survive wrapping through fmt.
	wrapped := fmt.Errorf("context: %w", New(ErrArgParse, "bad flag"))
	assert.Equal(t, ErrArgParse, GetErrorCode(wrapped))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(New(ErrArgParse, "unknown flag")))
	assert.Equal(t, 1, ExitCode(New(ErrConfigNotFound, "no config")))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("plain")))
}

func TestSilentFlag(t *testing.T) {
	err := New(ErrConfigValid, "reported already").AsSilent()
	assert.True(t, IsSilent(err))
	assert.False(t, IsSilent(New(ErrConfigValid, "not reported")))

	// Flag is visible through wrapping.
	assert.True(t, IsSilent(fmt.Errorf("outer: %w", err)))
}
