package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/notevox/notevox/tts"
)

const defaultConfig = `# maximum characters per chunk sent to the backend
max_chunk_length: 500
# never let a chunk span a paragraph break
respect_paragraphs: true
# strip markdown before speaking
markdown: false

# give quoted and emphasized text their own voices
use_distinct_voices: true
# voice for plain narration
default_voice: "af_bella"
# voice for "quoted" text
quoted_voice: "af_sarah"
# voice for *emphasized* text
emphasis_voice: "af_nicole"

# speech speed (0.25 to 4.0)
speed: 1.0
# play audio on the backend as it is generated
autoplay: true
# trim leading and trailing silence from generated audio
trim_silence: false
trim_amount: 0.1
# save session audio to this directory (empty disables saving)
# save_dir: "~/notevox-audio"

# Kokoro backend configuration
kokoro:
  host: "localhost"
  port: 7851
  # manage the backend process from notevox
  manage: false
  # required when manage is true:
  python: "python3"
  # script: "~/kokoro/kokoro_backend.py"
  # model_path: "~/kokoro/kokoro-v0_19.pth"
  # voices_path: "~/kokoro/voices"
  connect_timeout: "30s"
  speak_timeout: "2m0s"
  max_reconnects: 5
`

var showConfig bool

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the notevox config file",
	Long:    paragraph(fmt.Sprintf("\n%s the notevox config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("notevox config\nnotevox config --show\nnotevox config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if showConfig {
			return printEffectiveConfig()
		}

		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Notevox", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&showConfig, "show", false, "print the effective configuration and exit")
}

// printEffectiveConfig prints the configuration after defaults, config
// file, flags and environment have all been applied.
func printEffectiveConfig() error {
	cfg, err := tts.LoadConfig()
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close() //nolint:errcheck
	return enc.Encode(cfg)
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
