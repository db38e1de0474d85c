// Package security validates incoming chat messages and scrubs personal
// data from anything written to logs.
package security

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

var (
	ErrInputTooLarge       = errors.New("input exceeds maximum size")
	ErrNullByteDetected    = errors.New("null byte detected in input")
	ErrInvalidUTF8         = errors.New("input is not valid UTF-8")
	ErrHighWhitespaceRatio = errors.New("suspicious whitespace ratio")
	ErrRepetitiveContent   = errors.New("excessive repetition detected")
)

// MaxMessageRunes matches the Telegram message limit
const MaxMessageRunes = 4096

type InputValidator struct {
	MaxRunes           int
	MaxWhitespaceRatio float64
	MaxRepetition      int
}

func NewInputValidator() *InputValidator {
	return &InputValidator{
		MaxRunes:           MaxMessageRunes,
		MaxWhitespaceRatio: 0.8,
		MaxRepetition:      64,
	}
}

// Validate accepts the empty string; blank messages are ignored upstream.
func (v *InputValidator) Validate(input string) error {
	if !utf8.ValidString(input) {
		return ErrInvalidUTF8
	}

	n := utf8.RuneCountInString(input)
	if v.MaxRunes > 0 && n > v.MaxRunes {
		return ErrInputTooLarge
	}

	whitespace := 0
	run, prev := 0, rune(-1)
	for _, r := range input {
		if r == 0 {
			return ErrNullByteDetected
		}
		if unicode.IsSpace(r) {
			whitespace++
		}

		if r == prev {
			run++
		} else {
			run, prev = 1, r
		}
		if v.MaxRepetition > 0 && run > v.MaxRepetition {
			return ErrRepetitiveContent
		}
	}

	// short inputs like "  a " are not worth flagging
	if v.MaxWhitespaceRatio > 0 && n >= 16 {
		if float64(whitespace)/float64(n) > v.MaxWhitespaceRatio {
			return ErrHighWhitespaceRatio
		}
	}

	return nil
}
