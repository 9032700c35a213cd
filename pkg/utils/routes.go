package utils

import (
	"net/url"
	"strings"
)

// SanitizeRoute turns a framework route id like
// "(app)/prompts/[project_id]/[task_id]" into a plain path
// "/prompts/project_id/task_id": layout-group segments "(...)" are
// dropped, "[param]" segments are unwrapped, and each remaining
// segment is percent-encoded.
func SanitizeRoute(route string) string {
	segments := strings.Split(route, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "(") && strings.HasSuffix(seg, ")") {
			continue
		}
		if strings.HasPrefix(seg, "[") && strings.HasSuffix(seg, "]") {
			seg = seg[1 : len(seg)-1]
		}
		out = append(out, url.PathEscape(seg))
	}
	return "/" + strings.Join(out, "/")
}
