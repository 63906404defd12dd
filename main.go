// Package main provides the entry point for the notevox CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/notevox/notevox/tts"
	"github.com/notevox/notevox/tts/dispatch"
	"github.com/notevox/notevox/tts/engines/kokoro"
	"github.com/notevox/notevox/tts/notetext"
	"github.com/notevox/notevox/tts/segment"
	"github.com/notevox/notevox/tts/voices"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	width      uint
	quiet      bool

	rootCmd = &cobra.Command{
		Use:   "notevox [FILE]",
		Short: "Read your notes aloud, with character!",
		Long: paragraph(
			fmt.Sprintf("\nSegment a note into voiced chunks and speak them %s through the Kokoro backend.", keyword("in order")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: executeSpeak,
	}

	planCmd = &cobra.Command{
		Use:   "plan [FILE]",
		Short: "Show the chunk plan without speaking",
		Long:  paragraph("\nRun the segmentation pipeline and print the resulting chunks, one per line with its voice, without contacting the backend."),
		Args:  cobra.MaximumNArgs(1),
		RunE:  executePlan,
	}

	voicesCmd = &cobra.Command{
		Use:   "voices",
		Short: "List the available voices",
		Long:  paragraph("\nList every voice the engine can resolve, including voices discovered in the configured voices directory."),
		Args:  cobra.NoArgs,
		RunE:  executeVoices,
	}
)

// source provides a readable note source.
type source struct {
	reader io.ReadCloser
	URL    string
}

// sourceFromArg parses an argument and creates a readable source for it.
func sourceFromArg(arg string) (*source, error) {
	// from stdin
	if arg == "-" {
		return &source{reader: os.Stdin}, nil
	}

	// HTTP(S) URLs:
	if u, err := url.ParseRequestURI(arg); err == nil && strings.Contains(arg, "://") {
		if u.Scheme != "" {
			if u.Scheme != "http" && u.Scheme != "https" {
				return nil, fmt.Errorf("%s is not a supported protocol", u.Scheme)
			}
			// consumer of the source is responsible for closing the ReadCloser.
			resp, err := http.Get(u.String()) //nolint: noctx,bodyclose
			if err != nil {
				return nil, fmt.Errorf("unable to get url: %w", err)
			}
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
			}
			return &source{resp.Body, u.String()}, nil
		}
	}

	r, err := os.Open(arg)
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	u, err := filepath.Abs(arg)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}
	return &source{r, u}, nil
}

func validateOptions(cmd *cobra.Command) error {
	quiet = viper.GetBool("quiet")

	// Detect terminal width for plan output
	if !cmd.Flags().Changed("width") {
		if term.IsTerminal(int(os.Stdout.Fd())) && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}
			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// sourceFromInvocation resolves the note source for a command run: a
// piped stdin wins, then an explicit argument. No argument and no pipe
// is an error; notes do not have a default location.
func sourceFromInvocation(args []string) (*source, error) {
	if yes, err := stdinIsPipe(); err != nil {
		return nil, err
	} else if yes {
		return &source{reader: os.Stdin}, nil
	}
	if len(args) == 0 {
		return nil, errors.New("missing note source: pass a file, a URL, or pipe text on stdin")
	}
	return sourceFromArg(args[0])
}

// readNote loads the source and, when markdown mode is on, strips the
// note down to speakable text.
func readNote(src *source, cfg tts.Config) (string, error) {
	b, err := io.ReadAll(src.reader)
	if err != nil {
		return "", fmt.Errorf("unable to read from reader: %w", err)
	}

	text := string(b)
	if cfg.Markdown {
		text = notetext.Strip(text)
	}
	return text, nil
}

// buildVoiceTable creates the voice table, folding in any voices found
// in the backend's voices directory. A missing directory is not fatal;
// the built-in set still works.
func buildVoiceTable(cfg tts.Config) *voices.Table {
	table := voices.NewTable(cfg.DefaultVoice)
	if cfg.Kokoro.VoicesPath == "" {
		return table
	}

	discovered, err := table.WithDiscovered(cfg.Kokoro.VoicesPath)
	if err != nil {
		log.Warn("could not scan voices directory", "dir", cfg.Kokoro.VoicesPath, "err", err)
		return table
	}
	return discovered
}

// buildChunks runs the full text pipeline for one source.
func buildChunks(args []string, cfg tts.Config) ([]tts.Chunk, string, error) {
	src, err := sourceFromInvocation(args)
	if err != nil {
		return nil, "", err
	}
	defer src.reader.Close() //nolint:errcheck

	text, err := readNote(src, cfg)
	if err != nil {
		return nil, "", err
	}

	engine, err := segment.New(cfg, buildVoiceTable(cfg))
	if err != nil {
		return nil, "", err
	}
	return engine.SegmentAndChunk(text), baseName(src.URL), nil
}

// baseName derives the save-file base name from the source path.
func baseName(sourceURL string) string {
	if sourceURL == "" {
		return ""
	}
	base := filepath.Base(sourceURL)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func executeSpeak(cmd *cobra.Command, args []string) error {
	cfg, err := tts.LoadConfig()
	if err != nil {
		return err
	}

	chunks, base, err := buildChunks(args, cfg)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		fmt.Println("Nothing to speak.")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if cfg.Kokoro.Manage {
		backend, err := kokoro.StartBackend(cfg.Kokoro, log.Default())
		if err != nil {
			return err
		}
		defer func() {
			if err := backend.Stop(5 * time.Second); err != nil {
				log.Warn("could not stop backend", "err", err)
			}
		}()
	}

	client := kokoro.NewClient(cfg.Kokoro, log.Default())
	defer client.Close() //nolint:errcheck

	if err := client.Connect(ctx); err != nil {
		return err
	}
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("backend is not responding: %w", err)
	}

	opts := dispatch.Options{
		SaveDir:     cfg.SaveDir,
		BaseName:    base,
		Autoplay:    cfg.Autoplay,
		Speed:       cfg.Speed,
		TrimSilence: cfg.TrimSilence,
		TrimAmount:  cfg.TrimAmount,
	}
	if !quiet {
		opts.Progress = func(i, total int, chunk tts.Chunk) {
			fmt.Printf("%s %s %s\n",
				chunkIndexStyle.Render(fmt.Sprintf("%d/%d", i+1, total)),
				voiceNameStyle.Render(chunk.Voice),
				truncate(chunk.Text, int(width)-20),
			)
		}
	}

	d := dispatch.New(client, log.Default())
	if err := d.Dispatch(ctx, chunks, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			// The user interrupted; tell the backend to stop speaking.
			stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if stopErr := d.Stop(stopCtx); stopErr != nil {
				log.Warn("could not stop backend session", "err", stopErr)
			}
			fmt.Println(errorStyle.Render("Interrupted."))
			return nil
		}
		return err
	}
	return nil
}

func executePlan(_ *cobra.Command, args []string) error {
	cfg, err := tts.LoadConfig()
	if err != nil {
		return err
	}

	chunks, _, err := buildChunks(args, cfg)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		fmt.Println("Nothing to speak.")
		return nil
	}

	for i, chunk := range chunks {
		fmt.Printf("%s %s %s %s\n",
			chunkIndexStyle.Render(fmt.Sprintf("%d", i+1)),
			voiceNameStyle.Render(chunk.Voice),
			voiceMetaStyle.Render(fmt.Sprintf("(%d chars)", len([]rune(chunk.Text)))),
			truncate(chunk.Text, int(width)-30),
		)
	}
	return nil
}

func executeVoices(*cobra.Command, []string) error {
	cfg, err := tts.LoadConfig()
	if err != nil {
		return err
	}

	table := buildVoiceTable(cfg)
	for _, v := range table.Voices() {
		marker := " "
		if v.ID == table.Default() {
			marker = "*"
		}
		meta := strings.TrimSpace(v.Language + " " + v.Gender)
		fmt.Printf("%s %s %s\n",
			marker,
			voiceNameStyle.Render(fmt.Sprintf("%-14s", v.ID)),
			voiceMetaStyle.Render(meta),
		)
	}
	return nil
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
	tts.SetDefaults()

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
	rootCmd.PersistentFlags().StringP("voice", "v", "", "default voice")
	rootCmd.PersistentFlags().Float64("speed", 0, "speech speed (0.25 to 4.0)")
	rootCmd.PersistentFlags().BoolP("markdown", "m", false, "treat the note as markdown")
	rootCmd.PersistentFlags().Int("max-chunk-length", 0, "maximum characters per chunk")
	rootCmd.PersistentFlags().Bool("distinct-voices", true, "use distinct voices for quoted and emphasized text")
	rootCmd.Flags().String("save-dir", "", "save session audio to this directory")
	rootCmd.Flags().Bool("autoplay", true, "play audio on the backend as it is generated")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress per-chunk progress output")
	rootCmd.PersistentFlags().UintVarP(&width, "width", "w", 0, "truncate chunk previews at width (set to 0 for terminal width)")

	// Config bindings
	_ = viper.BindPFlag("default_voice", rootCmd.PersistentFlags().Lookup("voice"))
	_ = viper.BindPFlag("speed", rootCmd.PersistentFlags().Lookup("speed"))
	_ = viper.BindPFlag("markdown", rootCmd.PersistentFlags().Lookup("markdown"))
	_ = viper.BindPFlag("max_chunk_length", rootCmd.PersistentFlags().Lookup("max-chunk-length"))
	_ = viper.BindPFlag("use_distinct_voices", rootCmd.PersistentFlags().Lookup("distinct-voices"))
	_ = viper.BindPFlag("save_dir", rootCmd.Flags().Lookup("save-dir"))
	_ = viper.BindPFlag("autoplay", rootCmd.Flags().Lookup("autoplay"))
	_ = viper.BindPFlag("quiet", rootCmd.Flags().Lookup("quiet"))

	rootCmd.AddCommand(planCmd, voicesCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "notevox")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
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

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "notevox.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
