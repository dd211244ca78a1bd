package memory

import (
	"encoding/json"
	"strings"
)

// EncodeTags serializes a tag list for storage. Tags are lowercased and
// deduplicated; an empty list encodes to "".
func EncodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	seen := make(map[string]bool, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		normalized = append(normalized, t)
	}
	if len(normalized) == 0 {
		return ""
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return ""
	}
	return string(data)
}

// DecodeTags parses a stored tag encoding. A malformed encoding is
// treated as "no tags" so one bad record never aborts a ranking pass.
func DecodeTags(tagsJSON string) []string {
	if tagsJSON == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
		return nil
	}
	for i, t := range tags {
		tags[i] = strings.ToLower(t)
	}
	return tags
}
