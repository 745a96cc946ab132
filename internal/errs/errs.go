package errs

import (
	"errors"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// Code is a suite error code.
type Code string

const (
	MissingConfig  Code = "missing_config"
	ElementTimeout Code = "element_timeout"
	Element        Code = "element"
	Navigation     Code = "navigation"
	Setup          Code = "setup"
	Scenario       Code = "scenario"
	Internal       Code = "internal"
)

const unknownCause = "Unknown error"

// Error is a coded error carrying a human-readable description of what was
// being attempted and the underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + causeText(e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a coded error with message.
func New(code Code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a coded error with message and cause.
func Wrap(code Code, message string, cause error) error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// Action wraps a failed page interaction as "Failed to <action>: <cause>".
// Playwright timeouts are coded ElementTimeout; everything else is Element.
// A nil cause returns nil so call sites can wrap unconditionally.
func Action(action string, cause error) error {
	return Describe("Failed to "+strings.TrimSpace(action), cause)
}

// Describe wraps cause under a free-form message, coding it the same way
// Action does.
func Describe(message string, cause error) error {
	if cause == nil {
		return nil
	}
	code := Element
	if IsTimeout(cause) {
		code = ElementTimeout
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// IsTimeout reports whether err stems from an expired Playwright wait.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return true
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == ElementTimeout
	}
	return false
}

// CodeOf returns the error code, defaulting to internal.
func CodeOf(err error) Code {
	if err == nil {
		return Internal
	}
	var coded *Error
	if errors.As(err, &coded) {
		if coded.Code == "" {
			return Internal
		}
		return coded.Code
	}
	return Internal
}

// MessageOf returns the outermost action description, or the raw error text
// when the error carries none.
func MessageOf(err error) string {
	if err == nil {
		return unknownCause
	}
	var coded *Error
	if errors.As(err, &coded) && coded.Message != "" {
		return coded.Message
	}
	return causeText(err)
}

func causeText(err error) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return unknownCause
	}
	return msg
}
