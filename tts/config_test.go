package tts

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration is invalid: %v", err)
	}
}

func TestValidateChunkLength(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		wantErr bool
	}{
		{name: "positive", length: 500, wantErr: false},
		{name: "one", length: 1, wantErr: false},
		{name: "zero", length: 0, wantErr: true},
		{name: "negative", length: -10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MaxChunkLength = tt.length
			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidChunkLength) {
					t.Errorf("Validate() = %v, want ErrInvalidChunkLength", err)
				}
			} else if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestValidateSpeed(t *testing.T) {
	for _, speed := range []float64{0.25, 1.0, 4.0} {
		cfg := DefaultConfig()
		cfg.Speed = speed
		if err := cfg.Validate(); err != nil {
			t.Errorf("speed %f rejected: %v", speed, err)
		}
	}
	for _, speed := range []float64{0.0, 0.1, 4.5, -1.0} {
		cfg := DefaultConfig()
		cfg.Speed = speed
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidSpeed) {
			t.Errorf("speed %f: Validate() = %v, want ErrInvalidSpeed", speed, err)
		}
	}
}

func TestValidateVoiceFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QuotedVoice = ""
	cfg.EmphasisVoice = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.QuotedVoice != cfg.DefaultVoice {
		t.Errorf("empty quoted voice not defaulted: %q", cfg.QuotedVoice)
	}
	if cfg.EmphasisVoice != cfg.DefaultVoice {
		t.Errorf("empty emphasis voice not defaulted: %q", cfg.EmphasisVoice)
	}

	cfg = DefaultConfig()
	cfg.DefaultVoice = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty default voice accepted")
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	// Values set in the config file must survive the environment pass
	// when the corresponding variables are not set.
	viper.Set("max_chunk_length", 300)
	viper.Set("respect_paragraphs", false)
	viper.Set("default_voice", "am_adam")
	viper.Set("kokoro.port", 7900)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxChunkLength != 300 {
		t.Errorf("max chunk length = %d, want the file value 300", cfg.MaxChunkLength)
	}
	if cfg.RespectParagraphs {
		t.Error("respect_paragraphs reset to default, want the file value false")
	}
	if cfg.DefaultVoice != "am_adam" {
		t.Errorf("default voice = %q, want the file value am_adam", cfg.DefaultVoice)
	}
	if cfg.Kokoro.Port != 7900 {
		t.Errorf("kokoro port = %d, want the file value 7900", cfg.Kokoro.Port)
	}

	// An environment variable overrides the file, and only for the field
	// it names.
	t.Setenv("NOTEVOX_MAX_CHUNK_LENGTH", "250")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxChunkLength != 250 {
		t.Errorf("max chunk length = %d, want the env value 250", cfg.MaxChunkLength)
	}
	if cfg.DefaultVoice != "am_adam" {
		t.Errorf("default voice = %q, env pass touched an unset field", cfg.DefaultVoice)
	}
}

func TestLoadKokoroConfigBadDurationWarns(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("kokoro.connect_timeout", "soon")

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	cfg := loadKokoroConfig()
	if cfg.ConnectTimeout != DefaultKokoroConfig().ConnectTimeout {
		t.Errorf("connect timeout = %v, want the default kept", cfg.ConnectTimeout)
	}
	if !strings.Contains(buf.String(), "kokoro.connect_timeout") {
		t.Errorf("no warning logged for the bad duration: %q", buf.String())
	}
}

func TestKokoroConfigMarshalsDurationsAsStrings(t *testing.T) {
	out, err := yaml.Marshal(DefaultKokoroConfig())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, want := range []string{"connect_timeout: 30s", "speak_timeout: 2m0s"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("marshaled config missing %q:\n%s", want, out)
		}
	}
}

func TestValidateKokoro(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*KokoroConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*KokoroConfig) {}, wantErr: false},
		{name: "empty host", mutate: func(c *KokoroConfig) { c.Host = "" }, wantErr: true},
		{name: "port too low", mutate: func(c *KokoroConfig) { c.Port = 0 }, wantErr: true},
		{name: "port too high", mutate: func(c *KokoroConfig) { c.Port = 70000 }, wantErr: true},
		{name: "short connect timeout", mutate: func(c *KokoroConfig) { c.ConnectTimeout = 100 * time.Millisecond }, wantErr: true},
		{name: "negative reconnects", mutate: func(c *KokoroConfig) { c.MaxReconnects = -1 }, wantErr: true},
		{
			name: "manage without script",
			mutate: func(c *KokoroConfig) {
				c.Manage = true
			},
			wantErr: true,
		},
		{
			name: "manage fully configured",
			mutate: func(c *KokoroConfig) {
				c.Manage = true
				c.Script = "/opt/kokoro/backend.py"
				c.ModelPath = "/opt/kokoro/model.pth"
				c.VoicesPath = "/opt/kokoro/voices"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultKokoroConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}
