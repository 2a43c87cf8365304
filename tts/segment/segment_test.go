package segment

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n\t"} {
		if got := Split(input, DefaultLimit); len(got) != 0 {
			t.Errorf("Split(%q) = %v, want no chunks", input, got)
		}
	}
}

func TestSplitNoTerminator(t *testing.T) {
	input := "short text without any sentence ending"
	got := Split(input, DefaultLimit)
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(got), got)
	}
	if got[0] != input {
		t.Errorf("chunk = %q, want %q", got[0], input)
	}
}

func TestSplitReconstructsContent(t *testing.T) {
	inputs := []string{
		"One. Two! Three? Four.",
		"First sentence here. Second sentence is a bit longer than the first one. Third.",
		"A line\nanother line\nlast line without terminator",
		"Hello world. " + strings.Repeat("word ", 80) + "end.",
		"Punctuation runs?! Really... Yes.",
	}

	for _, input := range inputs {
		chunks := Split(input, 60)
		joined := strings.Join(chunks, " ")
		if !reflect.DeepEqual(strings.Fields(joined), strings.Fields(input)) {
			t.Errorf("Split(%q) dropped or duplicated content:\n got %q", input, joined)
		}
	}
}

func TestSplitGreedyAccumulation(t *testing.T) {
	// Units each below the limit must never produce a chunk above it.
	input := strings.Repeat("This sentence is about forty chars long. ", 20)
	chunks := Split(input, 200)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 200 {
			t.Errorf("chunk %d exceeds limit: %d chars", i, len(c))
		}
	}
}

func TestSplitLongUnitOverflows(t *testing.T) {
	long := strings.Repeat("x", 300) + "."
	input := "Short lead-in. " + long + " Short tail."
	chunks := Split(input, 200)

	found := false
	for _, c := range chunks {
		if len(c) > 200 {
			// Only a single oversized unit may overflow, and it stays alone.
			if !strings.Contains(c, strings.Repeat("x", 300)) {
				t.Errorf("oversized chunk is not the long unit: %q", c[:40])
			}
			found = true
		}
	}
	if !found {
		t.Error("long unit was not preserved as its own chunk")
	}
}

func TestSplitThreeChunkScenario(t *testing.T) {
	// 450 characters with terminators near positions 180 and 360.
	s1 := strings.Repeat("a", 179) + ". "
	s2 := strings.Repeat("b", 178) + ". "
	s3 := strings.Repeat("c", 88) + "."
	input := s1 + s2 + s3

	chunks := Split(input, 200)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 200 {
			t.Errorf("chunk %d has %d chars, want <= 200", i, len(c))
		}
	}
}

func TestSplitTrailingWhitespaceDiscarded(t *testing.T) {
	chunks := Split("A sentence.   \n  ", 200)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "A sentence." {
		t.Errorf("chunk = %q", chunks[0])
	}
}

func TestSplitDeterministic(t *testing.T) {
	input := "Alpha. Beta! Gamma? Delta.\nEpsilon."
	a := Split(input, 20)
	b := Split(input, 20)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Split is not deterministic: %v vs %v", a, b)
	}
}

func TestFromMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     []string // substrings that must appear
		absent   []string // substrings that must not appear
	}{
		{
			name:     "heading and paragraph",
			markdown: "# Title\n\nBody text here.",
			want:     []string{"Title", "Body text here."},
		},
		{
			name:     "code block dropped",
			markdown: "Before.\n\n```go\nfunc main() {}\n```\n\nAfter.",
			want:     []string{"Before.", "After."},
			absent:   []string{"func main"},
		},
		{
			name:     "link text kept",
			markdown: "See [the docs](https://example.com/docs) for more.",
			want:     []string{"the docs", "for more."},
			absent:   []string{"https://example.com"},
		},
		{
			name:     "inline code dropped",
			markdown: "Run `go build` to compile.",
			want:     []string{"Run", "to compile."},
			absent:   []string{"go build"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromMarkdown(tt.markdown)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("missing %q in %q", w, got)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(got, a) {
					t.Errorf("unexpected %q in %q", a, got)
				}
			}
		})
	}
}
