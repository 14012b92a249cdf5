// Package contentfilter blocks free text that would let two parties take a
// deal off the platform.
package contentfilter

import (
	"errors"
	"fmt"
	"regexp"
)

var ErrLeakageDetected = errors.New("leakage_detected")

const (
	KindPhone = "phone"
	KindEmail = "email"
)

var (
	phonePattern = regexp.MustCompile(`(\(?\d{2}\)?\s?\d{4,5}-?\d{4})`)
	emailPattern = regexp.MustCompile(`([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)
)

// LeakageError reports which kind of contact data was found.
type LeakageError struct {
	Kind string
}

func (e *LeakageError) Error() string {
	return fmt.Sprintf("Sensitive info (%s) detected in message", e.Kind)
}

func (e *LeakageError) Is(target error) bool {
	return target == ErrLeakageDetected
}

// Validate returns text unchanged when it carries no contact data. Phone
// numbers are checked before e-mail addresses.
func Validate(text string) (string, error) {
	if phonePattern.MatchString(text) {
		return "", &LeakageError{Kind: KindPhone}
	}
	if emailPattern.MatchString(text) {
		return "", &LeakageError{Kind: KindEmail}
	}
	return text, nil
}
