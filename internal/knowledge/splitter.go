// Package knowledge holds the clinic document index: ingestion splits raw
// text into overlapping chunks, embeds them, and retrieval returns the
// closest chunks for a patient question.
package knowledge

import "strings"

const (
	defaultChunkSize = 500
	defaultOverlap   = 100
)

// Splitter cuts document text into overlapping character chunks, preferring
// to break at whitespace so words stay intact.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

// NewSplitter returns a splitter with the default chunking parameters.
func NewSplitter() *Splitter {
	return &Splitter{ChunkSize: defaultChunkSize, Overlap: defaultOverlap}
}

// Split returns the chunks for one document. Empty and whitespace-only
// input yields no chunks.
func (s *Splitter) Split(text string) []string {
	size := s.ChunkSize
	if size <= 0 {
		size = defaultChunkSize
	}
	overlap := s.Overlap
	if overlap < 0 || overlap >= size {
		overlap = defaultOverlap
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else {
			// back up to the last whitespace inside the window, if any
			if cut := lastSpace(runes[start:end]); cut > overlap {
				end = start + cut
			}
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

func lastSpace(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case ' ', '\n', '\t':
			return i
		}
	}
	return -1
}
