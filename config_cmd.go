package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# synthesis voice: alloy, echo, fable, onyx, nova or shimmer
voice: "alloy"
# playback rate, between 0.5 and 2.0
speed: 1.0
# audio engine: auto, oto or mock
engine: "auto"
# speech model for the OpenAI-compatible backend
model: "gpt-4o-mini-tts"
# character budget per synthesized chunk (0 uses the default)
chunk_limit: 0
`

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Show the notevox config file",
	Long:    "\nShow the path of the notevox config file, creating it with defaults if it doesn't exist.",
	Example: "notevox config\nnotevox config --config path/to/config.yml",
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}
		fmt.Println(configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
		if err := os.WriteFile(configFile, []byte(defaultConfig), 0o600); err != nil {
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("could not stat configuration file: %w", err)
	}

	viper.SetConfigFile(configFile)
	return nil
}
