// Package main provides the CLI entrypoint for keydrill.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/keydrill/internal/clock"
	"github.com/verte-zerg/keydrill/internal/config"
	"github.com/verte-zerg/keydrill/internal/historyui"
	"github.com/verte-zerg/keydrill/internal/model"
	"github.com/verte-zerg/keydrill/internal/session"
	"github.com/verte-zerg/keydrill/internal/stats"
	"github.com/verte-zerg/keydrill/internal/store"
	"github.com/verte-zerg/keydrill/internal/textsource"
	"github.com/verte-zerg/keydrill/internal/tui"
	"github.com/verte-zerg/keydrill/internal/wordfetch"
)

const (
	defaultDuration      = 30
	defaultSource        = "builtin"
	defaultMaxWordLength = 7
	defaultLang          = "en"
	defaultCurveWindow   = 20
	defaultWordlistSz    = 10000

	systemDictPath = "/usr/share/dict/words"
)

var (
	practiceDuration   int
	practiceCorrection bool
	practiceSource     string
	practiceMaxLen     int
	practiceLang       string
	practiceFile       string

	historySource      string
	historySince       string
	historyLast        int
	historyCurveWindow int
	historyCSV         bool

	wordlistLang  string
	wordlistSize  int
	wordlistForce bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keydrill",
		Short:         "TUI typing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().IntVar(&practiceDuration, "duration", defaultDuration, "session duration in seconds")
	rootCmd.Flags().BoolVar(&practiceCorrection, "require-correction", false, "block the cursor on mistakes until corrected")
	rootCmd.Flags().StringVar(&practiceSource, "source", defaultSource, "text source: builtin, words, dict, or file")
	rootCmd.Flags().IntVar(&practiceMaxLen, "max-word-length", defaultMaxWordLength, "maximum word length for word sources (3-20)")
	rootCmd.Flags().StringVar(&practiceLang, "lang", defaultLang, "language code for the words source")
	rootCmd.Flags().StringVar(&practiceFile, "file", "", "code file to type (source: file)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newWordlistCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "duration", &practiceDuration, fileCfg.Practice.Duration)
	applyBoolConfig(cmd, "require-correction", &practiceCorrection, fileCfg.Practice.RequireCorrection)
	applyStringConfig(cmd, "source", &practiceSource, fileCfg.Practice.Source)
	applyIntConfig(cmd, "max-word-length", &practiceMaxLen, fileCfg.Practice.MaxWordLength)
	applyStringConfig(cmd, "lang", &practiceLang, fileCfg.Practice.Lang)
	applyStringConfig(cmd, "file", &practiceFile, fileCfg.Practice.File)

	cfg := model.Config{
		DurationSeconds:   practiceDuration,
		RequireCorrection: practiceCorrection,
		Source:            model.SourceKind(practiceSource),
		MaxWordLength:     practiceMaxLen,
		Lang:              practiceLang,
		CodeFile:          practiceFile,
	}

	if err := validateConfig(cfg); err != nil {
		return err
	}

	source, err := resolveSource(cfg)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctrl := session.New(cfg, source, clock.System())
	tuiModel, err := tui.NewModel(ctrl, st)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	program := tea.NewProgram(tuiModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func resolveSource(cfg model.Config) (textsource.Source, error) {
	switch cfg.Source {
	case model.SourceBuiltin:
		return textsource.NewBuiltin(), nil
	case model.SourceWords:
		listPath := config.DefaultWordListPath(cfg.Lang)
		if _, err := os.Stat(listPath); err == nil {
			return textsource.NewFromFile(listPath, cfg.MaxWordLength)
		}
		if cfg.Lang == defaultLang {
			return textsource.NewEmbedded(cfg.MaxWordLength)
		}
		return nil, wordListLoadError(cfg.Lang, listPath)
	case model.SourceDict:
		return textsource.NewDictionary(systemDictPath, cfg.MaxWordLength)
	case model.SourceFile:
		return textsource.NewFile(cfg.CodeFile)
	default:
		return nil, fmt.Errorf("unknown source %q (use builtin, words, dict, or file)", cfg.Source)
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List downloaded word list languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	langs, err := wordfetch.ListDownloaded(config.DefaultWordListDir())
	if err != nil {
		return err
	}
	if len(langs) == 0 {
		logErrf("No word lists found. Download with: keydrill wordlist --lang <code>\n")
		return fmt.Errorf("no word lists found")
	}
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse session history",
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySource, "source", "", "source filter (builtin, words, dict, file)")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&historyCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&historyCSV, "csv", false, "export history as CSV to stdout")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	filter := model.HistoryFilter{
		Source: historySource,
		Since:  sinceTime,
		Last:   historyLast,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if historyCSV {
		return st.ExportCSV(ctx, out, filter)
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		uiModel := historyui.NewModel(st, historyui.Options{
			Filter:      filter,
			CurveWindow: historyCurveWindow,
		})
		program := tea.NewProgram(uiModel, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run history TUI: %w", err)
		}
		return nil
	}

	entries, err := st.ListSessions(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if err := stats.RenderSummary(out, entries); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if err := stats.RenderSessions(out, entries); err != nil {
		return fmt.Errorf("failed to render sessions: %w", err)
	}
	if err := stats.RenderCurves(out, entries, historyCurveWindow); err != nil {
		return fmt.Errorf("failed to render curves: %w", err)
	}
	return nil
}

func newWordlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordlist",
		Short: "Download word lists",
		RunE:  runWordlistCmd,
	}
	cmd.Flags().StringVar(&wordlistLang, "lang", defaultLang, "language code")
	cmd.Flags().IntVar(&wordlistSize, "size", defaultWordlistSz, "number of words")
	cmd.Flags().BoolVar(&wordlistForce, "force", false, "overwrite an existing list")
	return cmd
}

func runWordlistCmd(_ *cobra.Command, _ []string) error {
	if wordlistSize <= 0 {
		return fmt.Errorf("--size must be greater than 0")
	}
	logErrf("Downloading %s word list...\n", wordlistLang)
	res, err := wordfetch.Download(context.Background(), wordlistLang, config.DefaultWordListDir(), wordlistSize, wordlistForce)
	if err != nil {
		return fmt.Errorf("failed to download word list: %w", err)
	}
	if res.Cached {
		logErrf("Using cached list %s (use --force to refresh)\n", res.Path)
		return nil
	}
	logErrf("Wrote %s (%d words)\n", res.Path, res.Words)
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keydrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# duration = %d             # Session duration in seconds
# require-correction = false # Block the cursor on mistakes until corrected
# source = %q          # Text source: builtin, words, dict, or file
# max-word-length = %d       # Maximum word length for word sources (3-20)
# lang = %q                # Language code for the words source
# file = ""                 # Code file to type (source: file)
`,
		defaultDuration,
		defaultSource,
		defaultMaxWordLength,
		defaultLang,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.DurationSeconds <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	if cfg.MaxWordLength < 3 || cfg.MaxWordLength > 20 {
		return fmt.Errorf("--max-word-length must be between 3 and 20")
	}
	switch cfg.Source {
	case model.SourceBuiltin, model.SourceWords, model.SourceDict:
	case model.SourceFile:
		if cfg.CodeFile == "" {
			return fmt.Errorf("--file is required with --source file")
		}
	default:
		return fmt.Errorf("--source must be builtin, words, dict, or file")
	}
	return nil
}

func wordListLoadError(lang, path string) error {
	lines := []string{
		fmt.Sprintf("no word list for language %q", lang),
		fmt.Sprintf("expected word list at: %s", path),
		"Run: keydrill langs",
		fmt.Sprintf("Download: keydrill wordlist --lang %s", lang),
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
