package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/notevox/notevox/tts/audio"
)

func TestParseVoice(t *testing.T) {
	tests := []struct {
		in      string
		want    Voice
		wantErr bool
	}{
		{"alloy", VoiceAlloy, false},
		{"Nova", VoiceNova, false},
		{"  SHIMMER ", VoiceShimmer, false},
		{"robot", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseVoice(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVoice(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVoice(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMockProducesDecodablePCM(t *testing.T) {
	m := NewMock()
	m.SamplesPerChar = 4

	payload, err := m.Synthesize(context.Background(), "hello world", VoiceAlloy)
	if err != nil {
		t.Fatal(err)
	}

	raw, err := audio.DecodeBase64(payload)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := audio.DecodePCM(raw)
	if err != nil {
		t.Fatal(err)
	}
	if want := len("hello world") * 4; buf.Len() != want {
		t.Errorf("decoded %d samples, want %d", buf.Len(), want)
	}
}

func TestMockDeterministic(t *testing.T) {
	m := NewMock()
	a, err := m.Synthesize(context.Background(), "same text", VoiceEcho)
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Synthesize(context.Background(), "same text", VoiceEcho)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("mock synthesis is not deterministic")
	}

	c, err := m.Synthesize(context.Background(), "same text", VoiceOnyx)
	if err != nil {
		t.Fatal(err)
	}
	if a == c {
		t.Error("different voices produced identical audio")
	}
}

func TestMockFailureInjection(t *testing.T) {
	m := NewMock()
	boom := errors.New("boom")
	m.FailWith("bad chunk", boom)

	if _, err := m.Synthesize(context.Background(), "bad chunk", VoiceAlloy); !errors.Is(err, ErrSynthesis) {
		t.Errorf("error = %v, want ErrSynthesis", err)
	}
	if _, err := m.Synthesize(context.Background(), "good chunk", VoiceAlloy); err != nil {
		t.Errorf("unrelated chunk failed: %v", err)
	}

	m.ClearFailure("bad chunk")
	if _, err := m.Synthesize(context.Background(), "bad chunk", VoiceAlloy); err != nil {
		t.Errorf("cleared failure still fails: %v", err)
	}
	if m.Calls() != 3 {
		t.Errorf("calls = %d, want 3", m.Calls())
	}
}

func TestMockCancelled(t *testing.T) {
	m := NewMock()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Synthesize(ctx, "text", VoiceAlloy); !errors.Is(err, ErrSynthesis) {
		t.Errorf("error = %v, want ErrSynthesis", err)
	}
}
