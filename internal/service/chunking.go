package service

import (
	"strings"
	"unicode"
)

const (
	chunkMaxChars  = 1200
	chunkMinChars  = 400
	chunkMaxChunks = 8
)

// chunkTicketText splits subject+body into the chunk rows stored for the
// remote embedding service. Splits prefer whitespace boundaries.
func chunkTicketText(subject, body string) []string {
	text := strings.TrimSpace(subject + "\n\n" + body)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= chunkMaxChars {
		return []string{text}
	}

	chunks := make([]string, 0, 4)
	start := 0
	for start < len(runes) && len(chunks) < chunkMaxChunks {
		end := start + chunkMaxChars
		if end > len(runes) {
			end = len(runes)
		}
		if end < len(runes) {
			cut := end
			minCut := start + chunkMinChars
			for i := end; i > minCut; i-- {
				if unicode.IsSpace(runes[i-1]) {
					cut = i
					break
				}
			}
			end = cut
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		start = end
	}
	return chunks
}
