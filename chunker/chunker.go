// Package chunker splits extracted document text into overlapping
// word windows, the unit of embedding and retrieval.
package chunker

import "strings"

// DefaultWindowWords is the default number of words per chunk.
const DefaultWindowWords = 500

// DefaultOverlapWords is the default number of words repeated between
// consecutive chunks.
const DefaultOverlapWords = 50

// Chunk splits text into overlapping windows of windowSize words,
// each joined by single spaces. Consecutive windows share overlap
// words; overlap must be smaller than windowSize. The output is a
// pure function of the input, so re-chunking identical text always
// reproduces the same boundaries.
func Chunk(text string, windowSize, overlap int) []string {
	if windowSize <= 0 {
		windowSize = DefaultWindowWords
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= windowSize {
		overlap = windowSize - 1
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(words); {
		end := i + windowSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
		i += windowSize - overlap
	}
	return chunks
}

// EstimateTokens returns a cheap token-count proxy for content
// (roughly one token per four characters). Not a tokenizer.
func EstimateTokens(content string) int {
	return len(content) / 4
}
