package replay

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the user-facing category of a pipeline failure.
type Kind string

const (
	KindNotFound           Kind = "NotFound"
	KindInvalidFormat      Kind = "InvalidFormat"
	KindTooSmall           Kind = "TooSmall"
	KindTooLarge           Kind = "TooLarge"
	KindHeaderUnreadable   Kind = "HeaderUnreadable"
	KindDecodeStatus       Kind = "DecodeStatus"
	KindDecodeException    Kind = "DecodeException"
	KindResultShapeInvalid Kind = "ResultShapeInvalid"
)

// Error is a classified pipeline failure. Message is safe to show to users;
// Detail carries the raw diagnostic when there is one.
type Error struct {
	Kind    Kind
	Status  Status
	Message string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	kind := string(e.Kind)
	if e.Kind == KindDecodeStatus {
		kind = fmt.Sprintf("%s:%d", e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of a pipeline error, or "" for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsValidation reports whether err was raised by the file validator.
func IsValidation(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindInvalidFormat, KindTooSmall, KindTooLarge:
		return true
	}
	return false
}

var statusMessages = map[Status]string{
	StatusUnsupported:         "unsupported replay: this game type cannot be analyzed",
	StatusDuplicate:           "duplicate replay: this game has already been processed",
	StatusFailure:             "replay analysis failed due to an internal decoder error",
	StatusUnsupportedMap:      "unsupported map: this battleground is not supported",
	StatusComputerPlayerFound: "replay contains AI players and cannot be analyzed",
	StatusIncomplete:          "incomplete game: the replay ended before the match finished",
	StatusTooOld:              "replay is too old to be analyzed",
	StatusUnverified:          "replay was recorded on an unverified game build",
}

// StatusMessage returns the fixed message for a decoder status.
func StatusMessage(s Status) string {
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return fmt.Sprintf("replay analysis failed with unknown status %d", int(s))
}

// exception substrings are checked in order
var exceptionMessages = []struct {
	substr  string
	message string
}{
	{"unverifiedBuild", "replay was recorded on an unverified game build"},
	{"ENOENT", "replay file could not be found during analysis"},
}

// ExceptionMessage maps a raw decoder failure message to a user-facing one.
func ExceptionMessage(raw string) string {
	for _, m := range exceptionMessages {
		if strings.Contains(raw, m.substr) {
			return m.message
		}
	}
	return "analysis failed: " + raw
}

func newStatusError(s Status) *Error {
	return &Error{
		Kind:    KindDecodeStatus,
		Status:  s,
		Message: StatusMessage(s),
	}
}

func newExceptionError(raw string) *Error {
	return &Error{
		Kind:    KindDecodeException,
		Message: ExceptionMessage(raw),
		Detail:  raw,
	}
}

func newShapeError(reason string) *Error {
	return &Error{
		Kind:    KindResultShapeInvalid,
		Message: "replay decoder returned an invalid result",
		Detail:  reason,
	}
}
