package synth

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is the speech model used when none is configured.
const DefaultModel = "gpt-4o-mini-tts"

// Client implements Synthesizer against an OpenAI-compatible speech
// endpoint. Requesting the pcm response format yields exactly the wire
// contract the decoder expects: mono 16-bit little-endian at 24000 Hz.
type Client struct {
	client oai.Client
	model  string
}

// config holds optional configuration for the client.
type config struct {
	baseURL string
	model   string
	timeout time.Duration
}

// Option is a functional option for Client.
type Option func(*config)

// WithBaseURL overrides the default API base URL, for OpenAI-compatible
// backends.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithModel selects the speech model.
func WithModel(model string) Option {
	return func(c *config) {
		c.model = model
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a speech synthesis client.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("synth: apiKey must not be empty")
	}

	cfg := &config{model: DefaultModel}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Client{
		client: oai.NewClient(reqOpts...),
		model:  cfg.model,
	}, nil
}

// Synthesize implements Synthesizer.
func (c *Client) Synthesize(ctx context.Context, text string, voice Voice) (string, error) {
	start := time.Now()

	res, err := c.client.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
		Model:          oai.SpeechModel(c.model),
		Voice:          oai.AudioSpeechNewParamsVoice(voice),
		Input:          text,
		ResponseFormat: oai.AudioSpeechNewParamsResponseFormatPCM,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	defer res.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrSynthesis, err)
	}

	log.Debug("synthesis complete",
		"model", c.model,
		"voice", voice,
		"textLen", len(text),
		"audio", humanize.Bytes(uint64(len(data))),
		"took", time.Since(start))

	return base64.StdEncoding.EncodeToString(data), nil
}
