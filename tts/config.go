package tts

import (
	"fmt"

	"github.com/notevox/notevox/tts/segment"
	"github.com/notevox/notevox/tts/synth"
)

// Engine selection modes for Config.Engine.
const (
	EngineAuto = "auto"
	EngineOto  = "oto"
	EngineMock = "mock"
)

// Config holds the playback settings shared by the CLI flags, the config
// file and the environment.
type Config struct {
	Voice      string  `env:"NOTEVOX_VOICE"`
	Speed      float64 `env:"NOTEVOX_SPEED"`
	ChunkLimit int     `env:"NOTEVOX_CHUNK_LIMIT"`
	Engine     string  `env:"NOTEVOX_ENGINE"`
	APIKey     string  `env:"OPENAI_API_KEY"`
	Model      string  `env:"NOTEVOX_TTS_MODEL"`
	BaseURL    string  `env:"NOTEVOX_TTS_BASE_URL"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Voice:      string(synth.DefaultVoice),
		Speed:      1.0,
		ChunkLimit: segment.DefaultLimit,
		Engine:     EngineAuto,
		Model:      synth.DefaultModel,
	}
}

// Validate checks the config and reports the first problem found.
func (c Config) Validate() error {
	if _, err := synth.ParseVoice(c.Voice); err != nil {
		return err
	}
	if c.Speed < MinSpeed || c.Speed > MaxSpeed {
		return fmt.Errorf("%w: %.2f not in [%.1f, %.1f]", ErrSpeedOutOfRange, c.Speed, MinSpeed, MaxSpeed)
	}
	if c.ChunkLimit <= 0 {
		return fmt.Errorf("tts: chunk limit must be positive, got %d", c.ChunkLimit)
	}
	switch c.Engine {
	case EngineAuto, EngineOto, EngineMock:
	default:
		return fmt.Errorf("tts: unknown engine %q (want %s, %s or %s)", c.Engine, EngineAuto, EngineOto, EngineMock)
	}
	return nil
}
