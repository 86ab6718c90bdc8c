package services

import (
	"fmt"
	"strings"
)

// maxSheetNameLen is the xlsx limit on worksheet names.
const maxSheetNameLen = 31

// SanitizeSheetName strips the characters xlsx forbids in worksheet names
// and truncates to the 31-character limit. An empty result falls back to
// "Sheet".
func SanitizeSheetName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', '*', '?', '[', ']', ':':
			return -1
		}
		return r
	}, name)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		cleaned = "Sheet"
	}
	if len(cleaned) > maxSheetNameLen {
		cleaned = strings.TrimSpace(cleaned[:maxSheetNameLen])
	}
	return cleaned
}

// SheetNamer hands out sanitized, workbook-unique sheet names. Two names
// that sanitize or truncate identically get numeric suffixes instead of
// silently colliding. Uniqueness is case-insensitive, matching xlsx rules.
type SheetNamer struct {
	used map[string]bool
}

func NewSheetNamer() *SheetNamer {
	return &SheetNamer{used: make(map[string]bool)}
}

// Name returns a unique sheet name derived from base.
func (n *SheetNamer) Name(base string) string {
	name := SanitizeSheetName(base)
	if !n.used[strings.ToLower(name)] {
		n.used[strings.ToLower(name)] = true
		return name
	}

	for i := 2; ; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		trimmed := name
		if len(trimmed)+len(suffix) > maxSheetNameLen {
			trimmed = strings.TrimSpace(trimmed[:maxSheetNameLen-len(suffix)])
		}
		candidate := trimmed + suffix
		if !n.used[strings.ToLower(candidate)] {
			n.used[strings.ToLower(candidate)] = true
			return candidate
		}
	}
}
