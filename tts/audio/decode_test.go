package audio

import (
	"bytes"
	"encoding/base64"
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestDecodeBase64RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 2, 7, 256, 4096} {
		raw := make([]byte, n)
		rng.Read(raw)

		got, err := DecodeBase64(base64.StdEncoding.EncodeToString(raw))
		if err != nil {
			t.Fatalf("decode failed for %d bytes: %v", n, err)
		}
		if !bytes.Equal(got, raw) {
			t.Errorf("round trip not byte-for-byte for %d bytes", n)
		}
	}
}

func TestDecodeBase64Invalid(t *testing.T) {
	if _, err := DecodeBase64("not;;base64!!"); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestDecodePCMSampleCount(t *testing.T) {
	for _, n := range []int{2, 4, 100, 4096} {
		buf, err := DecodePCM(make([]byte, n))
		if err != nil {
			t.Fatalf("DecodePCM(%d bytes): %v", n, err)
		}
		if buf.Len() != n/2 {
			t.Errorf("DecodePCM(%d bytes) = %d samples, want %d", n, buf.Len(), n/2)
		}
		if buf.Rate != SampleRate {
			t.Errorf("rate = %d, want %d", buf.Rate, SampleRate)
		}
	}
}

func TestDecodePCMOddLength(t *testing.T) {
	for _, n := range []int{1, 3, 101} {
		if _, err := DecodePCM(make([]byte, n)); !errors.Is(err, ErrDecode) {
			t.Errorf("DecodePCM(%d bytes) error = %v, want ErrDecode", n, err)
		}
	}
}

func TestDecodePCMEmpty(t *testing.T) {
	if _, err := DecodePCM(nil); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode for empty payload, got %v", err)
	}
}

func TestDecodePCMNormalization(t *testing.T) {
	tests := []struct {
		name  string
		bytes []byte
		want  float64
	}{
		{"max positive", []byte{0xFF, 0x7F}, 32767.0 / 32768.0},
		{"min negative", []byte{0x00, 0x80}, -1.0},
		{"zero", []byte{0x00, 0x00}, 0},
		{"one", []byte{0x01, 0x00}, 1.0 / 32768.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := DecodePCM(tt.bytes)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(buf.Samples[0]-tt.want) > 1e-12 {
				t.Errorf("sample = %v, want %v", buf.Samples[0], tt.want)
			}
		})
	}
}

func TestBufferDuration(t *testing.T) {
	buf := &Buffer{Samples: make([]float64, SampleRate), Rate: SampleRate}
	if got := buf.Duration().Seconds(); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("duration = %vs, want 1s", got)
	}
}
