package tts

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// LoadConfig loads narration configuration with the usual precedence:
// defaults, then the viper config file, then NOTEVOX_* environment
// variables. The result is validated before it is returned.
func LoadConfig() (Config, error) {
	cfg := loadConfigFromViper()

	// Environment variables override file values.
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	if err := expandPaths(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid narration configuration: %w", err)
	}

	return cfg, nil
}

// loadConfigFromViper loads configuration values set in the config file.
func loadConfigFromViper() Config {
	cfg := DefaultConfig()

	if viper.IsSet("max_chunk_length") {
		cfg.MaxChunkLength = viper.GetInt("max_chunk_length")
	}
	if viper.IsSet("respect_paragraphs") {
		cfg.RespectParagraphs = viper.GetBool("respect_paragraphs")
	}
	if viper.IsSet("markdown") {
		cfg.Markdown = viper.GetBool("markdown")
	}

	if viper.IsSet("use_distinct_voices") {
		cfg.UseDistinctVoices = viper.GetBool("use_distinct_voices")
	}
	if viper.IsSet("default_voice") {
		cfg.DefaultVoice = viper.GetString("default_voice")
	}
	if viper.IsSet("quoted_voice") {
		cfg.QuotedVoice = viper.GetString("quoted_voice")
	}
	if viper.IsSet("emphasis_voice") {
		cfg.EmphasisVoice = viper.GetString("emphasis_voice")
	}

	if viper.IsSet("speed") {
		cfg.Speed = viper.GetFloat64("speed")
	}
	if viper.IsSet("autoplay") {
		cfg.Autoplay = viper.GetBool("autoplay")
	}
	if viper.IsSet("trim_silence") {
		cfg.TrimSilence = viper.GetBool("trim_silence")
	}
	if viper.IsSet("trim_amount") {
		cfg.TrimAmount = viper.GetFloat64("trim_amount")
	}
	if viper.IsSet("save_dir") {
		cfg.SaveDir = viper.GetString("save_dir")
	}

	cfg.Kokoro = loadKokoroConfig()

	return cfg
}

// loadKokoroConfig loads Kokoro backend configuration from viper.
func loadKokoroConfig() KokoroConfig {
	cfg := DefaultKokoroConfig()

	if viper.IsSet("kokoro.host") {
		cfg.Host = viper.GetString("kokoro.host")
	}
	if viper.IsSet("kokoro.port") {
		cfg.Port = viper.GetInt("kokoro.port")
	}
	if viper.IsSet("kokoro.python") {
		cfg.Python = viper.GetString("kokoro.python")
	}
	if viper.IsSet("kokoro.script") {
		cfg.Script = viper.GetString("kokoro.script")
	}
	if viper.IsSet("kokoro.model_path") {
		cfg.ModelPath = viper.GetString("kokoro.model_path")
	}
	if viper.IsSet("kokoro.voices_path") {
		cfg.VoicesPath = viper.GetString("kokoro.voices_path")
	}
	if viper.IsSet("kokoro.manage") {
		cfg.Manage = viper.GetBool("kokoro.manage")
	}
	if viper.IsSet("kokoro.connect_timeout") {
		cfg.ConnectTimeout = parseDurationSetting("kokoro.connect_timeout", cfg.ConnectTimeout)
	}
	if viper.IsSet("kokoro.speak_timeout") {
		cfg.SpeakTimeout = parseDurationSetting("kokoro.speak_timeout", cfg.SpeakTimeout)
	}
	if viper.IsSet("kokoro.max_reconnects") {
		cfg.MaxReconnects = viper.GetInt("kokoro.max_reconnects")
	}

	return cfg
}

// parseDurationSetting parses a duration value from the config file,
// warning and keeping the fallback when the value does not parse. A typo
// in a timeout should not silently change behavior without a trace.
func parseDurationSetting(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn("invalid duration in configuration, keeping default",
			"key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

// expandPaths resolves "~" in user supplied path settings.
func expandPaths(cfg *Config) error {
	for _, p := range []*string{
		&cfg.SaveDir,
		&cfg.Kokoro.Script,
		&cfg.Kokoro.ModelPath,
		&cfg.Kokoro.VoicesPath,
	} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// SetDefaults sets default values in viper for narration configuration.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("max_chunk_length", defaults.MaxChunkLength)
	viper.SetDefault("respect_paragraphs", defaults.RespectParagraphs)
	viper.SetDefault("markdown", defaults.Markdown)

	viper.SetDefault("use_distinct_voices", defaults.UseDistinctVoices)
	viper.SetDefault("default_voice", defaults.DefaultVoice)
	viper.SetDefault("quoted_voice", defaults.QuotedVoice)
	viper.SetDefault("emphasis_voice", defaults.EmphasisVoice)

	viper.SetDefault("speed", defaults.Speed)
	viper.SetDefault("autoplay", defaults.Autoplay)
	viper.SetDefault("trim_silence", defaults.TrimSilence)
	viper.SetDefault("trim_amount", defaults.TrimAmount)

	viper.SetDefault("kokoro.host", defaults.Kokoro.Host)
	viper.SetDefault("kokoro.port", defaults.Kokoro.Port)
	viper.SetDefault("kokoro.python", defaults.Kokoro.Python)
	viper.SetDefault("kokoro.manage", defaults.Kokoro.Manage)
	viper.SetDefault("kokoro.connect_timeout", defaults.Kokoro.ConnectTimeout.String())
	viper.SetDefault("kokoro.speak_timeout", defaults.Kokoro.SpeakTimeout.String())
	viper.SetDefault("kokoro.max_reconnects", defaults.Kokoro.MaxReconnects)
}
