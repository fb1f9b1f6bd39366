// Package splitter segments raw document text into bounded-size,
// overlapping chunks suitable for embedding and retrieval.
package splitter

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 500

	// DefaultOverlap is the number of characters shared between
	// consecutive chunks.
	DefaultOverlap = 50
)

// separators are tried in order when looking for a natural cut point:
// paragraph break, line break, sentence end, word boundary. A hard
// character cut is the fallback.
var separators = []string{"\n\n", "\n", ". ", " "}

// Split divides text into an ordered sequence of chunks of at most
// chunkSize characters, with consecutive chunks overlapping by roughly
// overlap characters. Sizes count runes, not bytes, so cuts and overlap
// step-backs never land inside a multi-byte character. Cuts prefer
// natural boundaries. Output is deterministic for identical input and
// configuration.
func Split(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultOverlap
		if overlap >= chunkSize {
			overlap = chunkSize / 10
		}
	}

	runes := []rune(text)

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			if chunk := strings.TrimSpace(string(runes[start:])); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := cutPoint(runes[start:end])
		if chunk := strings.TrimSpace(string(runes[start : start+cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		// Step back by the overlap, but always make forward progress.
		next := start + cut - overlap
		if next <= start {
			next = start + cut
		}
		start = next
	}

	return chunks
}

// cutPoint returns the number of leading runes of window to keep, ending
// at the latest natural boundary found. The separator itself stays with
// the leading chunk. Falls back to the full window (hard cut).
func cutPoint(window []rune) int {
	s := string(window)
	for _, sep := range separators {
		if idx := strings.LastIndex(s, sep); idx > 0 {
			return utf8.RuneCountInString(s[:idx+len(sep)])
		}
	}
	return len(window)
}
