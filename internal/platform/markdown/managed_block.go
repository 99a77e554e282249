package markdown

import "strings"

// ReplaceManagedBlock swaps the text between the markers for generated,
// leaving everything the user wrote around it untouched. Without markers the
// block is appended.
func ReplaceManagedBlock(body, startMarker, endMarker, generated string) string {
	start := strings.Index(body, startMarker)
	end := strings.Index(body, endMarker)
	block := startMarker + "\n" + strings.TrimRight(generated, "\n") + "\n" + endMarker

	if start >= 0 && end > start {
		end += len(endMarker)
		return body[:start] + block + body[end:]
	}

	if strings.TrimSpace(body) == "" {
		return block + "\n"
	}
	if strings.HasSuffix(body, "\n") {
		return body + "\n" + block + "\n"
	}
	return body + "\n\n" + block + "\n"
}
