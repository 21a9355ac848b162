package replay_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/stormstats/internal/replay"
)

func TestStatusMessage(t *testing.T) {
	statuses := []replay.Status{
		replay.StatusUnsupported,
		replay.StatusDuplicate,
		replay.StatusFailure,
		replay.StatusUnsupportedMap,
		replay.StatusComputerPlayerFound,
		replay.StatusIncomplete,
		replay.StatusTooOld,
		replay.StatusUnverified,
	}

	seen := map[string]replay.Status{}
	for _, s := range statuses {
		msg := replay.StatusMessage(s)
		assert.NotEmpty(t, msg, s.String())
		if prev, dup := seen[msg]; dup {
			t.Errorf("%s and %s share message %q", prev, s, msg)
		}
		seen[msg] = s
	}

	assert.Contains(t, replay.StatusMessage(replay.Status(-42)), "-42")
}

func TestExceptionMessage(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{raw: "Error: unverifiedBuild", expected: "replay was recorded on an unverified game build"},
		{raw: "ENOENT: no such file or directory, open '/tmp/x'", expected: "replay file could not be found during analysis"},
		{raw: "Unexpected end of buffer", expected: "analysis failed: Unexpected end of buffer"},
		{raw: "", expected: "analysis failed: "},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, replay.ExceptionMessage(tt.raw))
		})
	}
}

func TestError_Format(t *testing.T) {
	err := &replay.Error{Kind: replay.KindDecodeStatus, Status: replay.StatusDuplicate, Message: "dup"}
	assert.Equal(t, "DecodeStatus:-1: dup", err.Error())

	wrapped := fmt.Errorf("process: %w", err)
	assert.Equal(t, replay.KindDecodeStatus, replay.KindOf(wrapped))
	assert.False(t, replay.IsValidation(wrapped))
	assert.Equal(t, replay.Kind(""), replay.KindOf(fmt.Errorf("plain")))
}
