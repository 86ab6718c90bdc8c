package services

import (
	"fmt"
	"sort"
	"strings"
)

// AnswersToRequirements flattens questionnaire answers into the free-text
// requirements string sent to the generator. Keys are sorted so the same
// answers always produce the same string. Empty answers are skipped; slice
// answers are comma-joined.
func AnswersToRequirements(answers map[string]any) string {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		switch v := answers[k].(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(v) == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.TrimSpace(v)))
		case []string:
			if len(v) == 0 {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(v, ", ")))
		case []any:
			if len(v) == 0 {
				continue
			}
			strs := make([]string, 0, len(v))
			for _, e := range v {
				strs = append(strs, fmt.Sprint(e))
			}
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(strs, ", ")))
		default:
			parts = append(parts, fmt.Sprintf("%s: %v", k, v))
		}
	}
	return strings.Join(parts, "; ")
}
