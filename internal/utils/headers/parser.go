package headers

import (
	"strings"
)

// ParseHeaders converts "Key: Value" lines into a map. Lines without a colon
// are ignored; later lines override earlier ones.
func ParseHeaders(h []string) map[string]string {
	m := make(map[string]string)
	for _, hdr := range h {
		parts := strings.SplitN(hdr, ":", 2)
		if len(parts) == 2 {
			m[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return m
}
