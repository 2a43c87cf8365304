package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// DecodeBase64 decodes a base64-encoded wire payload into raw bytes. It is a
// pure transform: the output is byte-for-byte the payload the synthesis
// service produced.
func DecodeBase64(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrDecode, err)
	}
	return data, nil
}

// DecodePCM converts raw little-endian signed 16-bit PCM bytes into a
// playable buffer at the synthesis sample rate. Each sample is normalized to
// [-1, 1] by dividing by 32768. A byte length that is not a whole number of
// samples is a decode error.
func DecodePCM(data []byte) (*Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	if len(data)%BytesPerSample != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of %d-byte samples",
			ErrDecode, len(data), BytesPerSample)
	}

	samples := make([]float64, len(data)/BytesPerSample)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(data[i*BytesPerSample:]))
		samples[i] = float64(s) / 32768.0
	}

	return &Buffer{Samples: samples, Rate: SampleRate}, nil
}
