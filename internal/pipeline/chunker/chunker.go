// Package chunker splits reply text into transport-sized message segments.
// ManyChat renders each segment as its own Instagram message, in order.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the per-message character budget for Instagram delivery.
const DefaultMaxChars = 240

var dashReplacer = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
)

// Chunk splits text into segments of at most maxChars characters. Sentences
// are packed greedily; a sentence that cannot fit on its own is word-packed.
// A single token longer than the budget is emitted as its own oversized
// segment rather than truncated. Blank input yields a single empty segment.
func Chunk(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{""}
	}

	normalized := dashReplacer.Replace(trimmed)

	var chunks []string
	var buf string

	for _, sentence := range splitSentences(normalized) {
		candidate := sentence
		if buf != "" {
			candidate = buf + " " + sentence
		}

		if utf8.RuneCountInString(candidate) <= maxChars {
			buf = candidate
			continue
		}

		if buf != "" {
			chunks = append(chunks, buf)
			buf = ""
		}

		if utf8.RuneCountInString(sentence) <= maxChars {
			buf = sentence
			continue
		}

		chunks = append(chunks, packWords(sentence, maxChars)...)
	}

	if buf != "" {
		chunks = append(chunks, buf)
	}

	if len(chunks) == 0 {
		return []string{""}
	}
	return chunks
}

// splitSentences cuts after '.', '!' or '?' followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		if i+1 < len(text) && !isSpace(text[i+1]) {
			continue
		}

		s := strings.TrimSpace(text[start : i+1])
		if s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}

	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}

	return sentences
}

// packWords greedily packs whitespace-separated tokens. A token exceeding the
// budget passes through as its own segment.
func packWords(sentence string, maxChars int) []string {
	var chunks []string
	var buf string

	for _, word := range strings.Fields(sentence) {
		candidate := word
		if buf != "" {
			candidate = buf + " " + word
		}

		if utf8.RuneCountInString(candidate) <= maxChars {
			buf = candidate
			continue
		}

		if buf != "" {
			chunks = append(chunks, buf)
		}

		if utf8.RuneCountInString(word) <= maxChars {
			buf = word
		} else {
			chunks = append(chunks, word)
			buf = ""
		}
	}

	if buf != "" {
		chunks = append(chunks, buf)
	}

	return chunks
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
