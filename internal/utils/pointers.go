package utils

import (
	"fmt"
	"time"
)

func StringPtr(s string) *string {
	return &s
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

func PtrTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}

	return *t
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

const columnPrefixFmt = "%s.%s"

func PrefixSliceOfStrings(prefix string, input []string, ignore ...string) []string {
	out := make([]string, len(input))

inputloop:
	for i, v := range input {
		for _, ignored := range ignore {
			if v == ignored {
				continue inputloop
			}
		}

		out[i] = fmt.Sprintf(columnPrefixFmt, prefix, v)
	}
	return out
}

func FilterSliceString(slice []string, filter string) []string {
	var out = make([]string, 0, len(slice))
	for _, v := range slice {
		if v == filter {
			continue
		}
		out = append(out, v)
	}
	return out
}
