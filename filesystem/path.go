package filesystem

import "strings"

// SplitPath splits a raw path on '/' and drops empty segments, so
// "//a//b/" yields the same segments as "a/b". A leading slash carries no
// anchoring meaning; resolution always starts from the handle it is given.
func SplitPath(rawPath string) []string {
	parts := strings.Split(rawPath, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}
