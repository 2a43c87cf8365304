package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/notevox/notevox/tts"
	"github.com/notevox/notevox/tts/audio"
	"github.com/notevox/notevox/tts/segment"
	"github.com/notevox/notevox/tts/synth"
	"github.com/notevox/notevox/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	voiceName  string
	speed      float64
	chunkLimit int
	engineName string
	watchMode  bool
	plainMode  bool

	cfg tts.Config

	rootCmd = &cobra.Command{
		Use:   "notevox [SOURCE]",
		Short: "Read text and markdown aloud from the command line",
		Long: "\nRead a file, or whatever is piped in, aloud: text is chunked at sentence\n" +
			"boundaries, synthesized incrementally and played back with live speed,\n" +
			"pause and per-chunk retry controls.",
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadSettings(cmd)
		},
		RunE: execute,
	}
)

// loadSettings merges the config file, the environment and the command
// line, in that order of precedence, into cfg.
func loadSettings(cmd *cobra.Command) error {
	cfg = tts.DefaultConfig()
	if v := viper.GetString("voice"); v != "" {
		cfg.Voice = v
	}
	if v := viper.GetFloat64("speed"); v != 0 {
		cfg.Speed = v
	}
	if v := viper.GetInt("chunk_limit"); v != 0 {
		cfg.ChunkLimit = v
	}
	if v := viper.GetString("engine"); v != "" {
		cfg.Engine = v
	}
	if v := viper.GetString("model"); v != "" {
		cfg.Model = v
	}

	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("error parsing environment: %w", err)
	}

	if cmd.Flags().Changed("voice") {
		cfg.Voice = voiceName
	}
	if cmd.Flags().Changed("speed") {
		cfg.Speed = speed
	}
	if cmd.Flags().Changed("chunk-limit") {
		cfg.ChunkLimit = chunkLimit
	}
	if cmd.Flags().Changed("engine") {
		cfg.Engine = engineName
	}

	return cfg.Validate()
}

// source provides readable text to speak.
type source struct {
	reader io.ReadCloser
	path   string
}

// sourceFromArg opens the named file, or stdin for "-".
func sourceFromArg(arg string) (*source, error) {
	if arg == "-" {
		return &source{reader: os.Stdin}, nil
	}
	r, err := os.Open(arg)
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	p, err := filepath.Abs(arg)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}
	return &source{reader: r, path: p}, nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	var src *source
	switch {
	case len(args) == 1:
		s, err := sourceFromArg(args[0])
		if err != nil {
			return err
		}
		src = s
	default:
		yes, err := stdinIsPipe()
		if err != nil {
			return err
		}
		if !yes {
			return errors.New("missing input: pass a file or pipe text in")
		}
		src = &source{reader: os.Stdin}
	}
	defer src.reader.Close() //nolint:errcheck

	text, err := readSource(src)
	if err != nil {
		return err
	}

	if watchMode && src.path == "" {
		return errors.New("--watch needs a file to watch")
	}

	engine := buildEngine()
	syn, err := buildSynth()
	if err != nil {
		return err
	}

	voice, err := synth.ParseVoice(cfg.Voice)
	if err != nil {
		return err
	}
	ctrl := tts.NewController(engine, syn,
		tts.WithVoice(voice),
		tts.WithSpeed(cfg.Speed),
		tts.WithChunkLimit(cfg.ChunkLimit),
	)
	defer logStats(ctrl)
	defer ctrl.Close() //nolint:errcheck

	ctrl.SetText(text)
	if ctrl.Snapshot().Total == 0 && !watchMode {
		return errors.New("nothing to speak")
	}

	if plainMode || watchMode || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runPlain(ctrl, src.path)
	}
	return runPlayer(ctrl, engine)
}

// readSource reads everything and flattens markdown sources to the prose
// that should be spoken.
func readSource(src *source) (string, error) {
	b, err := io.ReadAll(src.reader)
	if err != nil {
		return "", fmt.Errorf("unable to read input: %w", err)
	}
	return speakableText(src.path, string(b)), nil
}

func buildEngine() audio.Engine {
	switch cfg.Engine {
	case tts.EngineMock:
		return audio.NewMockEngine()
	default:
		eng, err := audio.NewOtoEngine()
		if err == nil {
			return eng
		}
		if cfg.Engine == tts.EngineOto {
			log.Error("audio device unavailable", "error", err)
		} else {
			log.Warn("audio device unavailable, playback will be silent", "error", err)
		}
		return audio.NewMockEngine()
	}
}

func buildSynth() (synth.Synthesizer, error) {
	if cfg.APIKey == "" {
		log.Warn("OPENAI_API_KEY not set, speaking with offline tones")
		return synth.NewMock(), nil
	}
	opts := []synth.Option{synth.WithModel(cfg.Model)}
	if cfg.BaseURL != "" {
		opts = append(opts, synth.WithBaseURL(cfg.BaseURL))
	}
	client, err := synth.New(cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create synthesizer: %w", err)
	}
	return client, nil
}

func runPlayer(ctrl *tts.Controller, engine audio.Engine) error {
	vis := tts.NewVisualizer(engine, tts.DefaultBins)
	if _, err := ui.NewProgram(ctrl, vis).Run(); err != nil {
		return fmt.Errorf("unable to run player: %w", err)
	}
	return nil
}

func speakableText(path, content string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown":
		return segment.FromMarkdown(content)
	default:
		return content
	}
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&voiceName, "voice", "v", string(synth.DefaultVoice), "synthesis voice")
	rootCmd.Flags().Float64VarP(&speed, "speed", "s", 1.0, fmt.Sprintf("playback rate (%.1f to %.1f)", tts.MinSpeed, tts.MaxSpeed))
	rootCmd.Flags().IntVar(&chunkLimit, "chunk-limit", 0, "character budget per synthesized chunk")
	rootCmd.Flags().StringVarP(&engineName, "engine", "e", tts.EngineAuto, "audio engine (auto/oto/mock)")
	rootCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "re-read the file when it changes (plain output)")
	rootCmd.Flags().BoolVarP(&plainMode, "plain", "p", false, "plain line output instead of the interactive player")
	_ = rootCmd.Flags().MarkHidden("chunk-limit")

	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("speed", rootCmd.Flags().Lookup("speed"))
	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))

	viper.SetDefault("voice", string(synth.DefaultVoice))
	viper.SetDefault("speed", 1.0)
	viper.SetDefault("engine", tts.EngineAuto)
	viper.SetDefault("model", synth.DefaultModel)
	viper.SetDefault("chunk_limit", 0)

	rootCmd.AddCommand(configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "notevox")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find the configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "notevox")}, dirs...)
	}

	if c := os.Getenv("NOTEVOX_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("notevox")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("notevox")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], "notevox.yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
