// Package segment splits raw text into bounded-length speakable chunks.
package segment

import (
	"strings"
)

// DefaultLimit is the maximum chunk length, in characters, used when no
// explicit limit is provided. Synthesis quality and latency degrade on very
// long inputs, so text is regrouped into chunks at most this long whenever
// the sentence structure allows it.
const DefaultLimit = 200

// Split divides text into an ordered sequence of speakable chunks.
//
// The text is first cut into sentence-like units at terminator boundaries
// (periods, exclamation and question marks, and newlines), keeping the
// terminator attached to its unit. Consecutive units are then greedily
// accumulated: whenever appending the next unit would push the running chunk
// past limit, the chunk is closed and a new one starts with that unit. A
// single unit longer than limit becomes a chunk on its own, so a chunk never
// exceeds twice the limit unless one sentence does.
//
// Whitespace-only input yields no chunks. The same input always yields the
// same sequence.
func Split(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}

	units := units(text)
	if len(units) == 0 {
		return nil
	}

	var chunks []string
	var buf strings.Builder

	for _, unit := range units {
		if buf.Len() > 0 && buf.Len()+len(unit) > limit {
			chunk := strings.TrimSpace(buf.String())
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			buf.Reset()
		}
		buf.WriteString(unit)
	}

	if chunk := strings.TrimSpace(buf.String()); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// units cuts text into sentence-like units, each retaining its terminator.
// Text without any terminator is returned as a single unit.
func units(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []string
	start := 0
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		// Collect runs of terminators (e.g. "?!", "...") into one boundary.
		end := i + 1
		for end < len(runes) && isTerminator(runes[end]) {
			end++
		}
		unit := string(runes[start:end])
		if strings.TrimSpace(unit) != "" {
			out = append(out, unit)
		}
		start = end
		i = end - 1
	}

	if start < len(runes) {
		unit := string(runes[start:])
		if strings.TrimSpace(unit) != "" {
			out = append(out, unit)
		}
	}

	return out
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '\n':
		return true
	}
	return false
}
