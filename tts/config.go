package tts

import (
	"fmt"
	"time"
)

// Config contains all narration configuration options. Defaults come
// from DefaultConfig, never from envDefault tags: env.Parse must only
// touch fields whose variables are actually set, or it would clobber
// values loaded from the config file.
type Config struct {
	// Chunking settings
	MaxChunkLength    int  `yaml:"max_chunk_length" env:"NOTEVOX_MAX_CHUNK_LENGTH"`
	RespectParagraphs bool `yaml:"respect_paragraphs" env:"NOTEVOX_RESPECT_PARAGRAPHS"`
	Markdown          bool `yaml:"markdown" env:"NOTEVOX_MARKDOWN"`

	// Voice settings
	UseDistinctVoices bool   `yaml:"use_distinct_voices" env:"NOTEVOX_USE_DISTINCT_VOICES"`
	DefaultVoice      string `yaml:"default_voice" env:"NOTEVOX_DEFAULT_VOICE"`
	QuotedVoice       string `yaml:"quoted_voice" env:"NOTEVOX_QUOTED_VOICE"`
	EmphasisVoice     string `yaml:"emphasis_voice" env:"NOTEVOX_EMPHASIS_VOICE"`

	// Synthesis settings
	Speed       float64 `yaml:"speed" env:"NOTEVOX_SPEED"`
	Autoplay    bool    `yaml:"autoplay" env:"NOTEVOX_AUTOPLAY"`
	TrimSilence bool    `yaml:"trim_silence" env:"NOTEVOX_TRIM_SILENCE"`
	TrimAmount  float64 `yaml:"trim_amount" env:"NOTEVOX_TRIM_AMOUNT"`
	SaveDir     string  `yaml:"save_dir" env:"NOTEVOX_SAVE_DIR"`

	// Backend configuration
	Kokoro KokoroConfig `yaml:"kokoro"`
}

// KokoroConfig contains Kokoro backend specific settings.
type KokoroConfig struct {
	Host           string        `yaml:"host" env:"NOTEVOX_KOKORO_HOST"`
	Port           int           `yaml:"port" env:"NOTEVOX_KOKORO_PORT"`
	Python         string        `yaml:"python" env:"NOTEVOX_KOKORO_PYTHON"`
	Script         string        `yaml:"script" env:"NOTEVOX_KOKORO_SCRIPT"`
	ModelPath      string        `yaml:"model_path" env:"NOTEVOX_KOKORO_MODEL_PATH"`
	VoicesPath     string        `yaml:"voices_path" env:"NOTEVOX_KOKORO_VOICES_PATH"`
	Manage         bool          `yaml:"manage" env:"NOTEVOX_KOKORO_MANAGE"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"NOTEVOX_KOKORO_CONNECT_TIMEOUT"`
	SpeakTimeout   time.Duration `yaml:"speak_timeout" env:"NOTEVOX_KOKORO_SPEAK_TIMEOUT"`
	MaxReconnects  int           `yaml:"max_reconnects" env:"NOTEVOX_KOKORO_MAX_RECONNECTS"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxChunkLength:    500,
		RespectParagraphs: true,
		Markdown:          false,

		UseDistinctVoices: true,
		DefaultVoice:      "af_bella",
		QuotedVoice:       "af_sarah",
		EmphasisVoice:     "af_nicole",

		Speed:       1.0,
		Autoplay:    true,
		TrimSilence: false,
		TrimAmount:  0.1,

		Kokoro: DefaultKokoroConfig(),
	}
}

// DefaultKokoroConfig returns default Kokoro backend configuration.
func DefaultKokoroConfig() KokoroConfig {
	return KokoroConfig{
		Host:           "localhost",
		Port:           7851,
		Python:         "python3",
		Manage:         false,
		ConnectTimeout: 30 * time.Second,
		SpeakTimeout:   120 * time.Second,
		MaxReconnects:  5,
	}
}

// MarshalYAML renders the durations as strings like "30s" so marshaled
// output matches the config-file format the loader parses back.
func (c KokoroConfig) MarshalYAML() (any, error) {
	return struct {
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		Python         string `yaml:"python"`
		Script         string `yaml:"script,omitempty"`
		ModelPath      string `yaml:"model_path,omitempty"`
		VoicesPath     string `yaml:"voices_path,omitempty"`
		Manage         bool   `yaml:"manage"`
		ConnectTimeout string `yaml:"connect_timeout"`
		SpeakTimeout   string `yaml:"speak_timeout"`
		MaxReconnects  int    `yaml:"max_reconnects"`
	}{
		Host:           c.Host,
		Port:           c.Port,
		Python:         c.Python,
		Script:         c.Script,
		ModelPath:      c.ModelPath,
		VoicesPath:     c.VoicesPath,
		Manage:         c.Manage,
		ConnectTimeout: c.ConnectTimeout.String(),
		SpeakTimeout:   c.SpeakTimeout.String(),
		MaxReconnects:  c.MaxReconnects,
	}, nil
}

// Validate checks if the configuration is valid. An invalid chunk length
// is rejected here so the segmentation engine never sees one.
func (c *Config) Validate() error {
	if c.MaxChunkLength <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidChunkLength, c.MaxChunkLength)
	}

	if c.Speed < 0.25 || c.Speed > 4.0 {
		return fmt.Errorf("%w: must be between 0.25 and 4.0, got %f", ErrInvalidSpeed, c.Speed)
	}

	if c.TrimAmount < 0.0 || c.TrimAmount > 1.0 {
		return fmt.Errorf("%w: trim_amount must be between 0.0 and 1.0, got %f", ErrInvalidConfig, c.TrimAmount)
	}

	if c.DefaultVoice == "" {
		return fmt.Errorf("%w: default_voice cannot be empty", ErrInvalidConfig)
	}
	if c.QuotedVoice == "" {
		c.QuotedVoice = c.DefaultVoice
	}
	if c.EmphasisVoice == "" {
		c.EmphasisVoice = c.DefaultVoice
	}

	if err := c.Kokoro.Validate(); err != nil {
		return fmt.Errorf("kokoro config: %w", err)
	}

	return nil
}

// Validate checks if the Kokoro backend configuration is valid.
func (c *KokoroConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidConfig)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be between 1 and 65535, got %d", ErrInvalidConfig, c.Port)
	}

	if c.ConnectTimeout < time.Second {
		return fmt.Errorf("%w: connect_timeout must be at least 1 second, got %v", ErrInvalidConfig, c.ConnectTimeout)
	}

	if c.SpeakTimeout < time.Second {
		return fmt.Errorf("%w: speak_timeout must be at least 1 second, got %v", ErrInvalidConfig, c.SpeakTimeout)
	}

	if c.MaxReconnects < 0 {
		return fmt.Errorf("%w: max_reconnects cannot be negative, got %d", ErrInvalidConfig, c.MaxReconnects)
	}

	if c.Manage {
		if c.Script == "" {
			return fmt.Errorf("%w: script is required when manage is enabled", ErrInvalidConfig)
		}
		if c.ModelPath == "" || c.VoicesPath == "" {
			return fmt.Errorf("%w: model_path and voices_path are required when manage is enabled", ErrInvalidConfig)
		}
	}

	return nil
}
