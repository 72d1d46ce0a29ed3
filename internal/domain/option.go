package domain

import (
	"strings"
	"unicode/utf8"
)

// Option text bounds, in characters.
const (
	MinOptionLength = 4
	MaxOptionLength = 80
)

// TaskOption is one answer choice of a choice-based task.
type TaskOption struct {
	Text    string `json:"option" yaml:"option"`
	Correct bool   `json:"is_correct" yaml:"is_correct"`
}

// HasText reports whether the option text equals text, ignoring case.
func (o TaskOption) HasText(text string) bool {
	return strings.EqualFold(o.Text, text)
}

// validLength reports whether the option text is within bounds and not blank.
func (o TaskOption) validLength() bool {
	if strings.TrimSpace(o.Text) == "" {
		return false
	}
	n := utf8.RuneCountInString(o.Text)
	return n >= MinOptionLength && n <= MaxOptionLength
}

// ContainsStatement reports whether any option repeats the statement.
func ContainsStatement(statement string, options []TaskOption) bool {
	for _, o := range options {
		if o.HasText(statement) {
			return true
		}
	}
	return false
}

// HasDuplicateOptions reports whether two options share the same text,
// ignoring case.
func HasDuplicateOptions(options []TaskOption) bool {
	seen := make(map[string]struct{}, len(options))
	for _, o := range options {
		key := foldKey(o.Text)
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
	}
	return false
}

// CountCorrect returns how many options are marked correct.
func CountCorrect(options []TaskOption) int {
	n := 0
	for _, o := range options {
		if o.Correct {
			n++
		}
	}
	return n
}

// CountIncorrect returns how many options are not marked correct.
func CountIncorrect(options []TaskOption) int {
	return len(options) - CountCorrect(options)
}

// foldKey maps text to a key under which EqualFold-equal strings collide.
func foldKey(s string) string {
	return strings.ToLower(strings.ToUpper(s))
}
