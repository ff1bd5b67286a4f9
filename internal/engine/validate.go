package engine

import (
	"strings"
	"unicode/utf8"
)

const (
	minTitleRunes       = 5
	minDescriptionRunes = 10
)

func validTitle(title string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(title)) >= minTitleRunes
}

func validDescription(description string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(description)) >= minDescriptionRunes
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}
