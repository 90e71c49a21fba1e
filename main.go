package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"oops/internal/config"
	"oops/internal/corrector"
	"oops/internal/logging"
	"oops/internal/model"
	"oops/internal/rules"
	"oops/internal/shell"
	"oops/internal/tui"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const defaultAlias = "oops"

// errNoFixes makes main exit with status 1 without printing anything more.
var errNoFixes = errors.New("no fixes found")

type rootFlags struct {
	forceCommand string
	debug        bool
	yes          bool
	repeat       bool
	noColors     bool
	json         bool
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errNoFixes) {
			fmt.Fprintf(os.Stderr, "oops: %v\n", err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "oops [flags] [command...]",
		Short: "Correct the previous console command",
		Long: `oops looks at the command you just ran and the output it produced,
and suggests corrected versions of it.

Install the shell function once with:
  eval "$(oops alias)"
then type 'oops' after a command fails.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), flags, args)
		},
	}
	// Everything after the first word belongs to the command being fixed.
	cmd.Flags().SetInterspersed(false)
	addRootFlags(cmd.Flags(), &flags)

	cmd.AddCommand(aliasCmd(), shellCmd(), initCmd(), configCmd(), versionCmd())
	return cmd
}

func addRootFlags(fs *pflag.FlagSet, flags *rootFlags) {
	fs.StringVarP(&flags.forceCommand, "force-command", "f", "", "Correct this command (or history block) instead of the arguments")
	fs.BoolVarP(&flags.debug, "debug", "d", false, "Log rule evaluation to stderr")
	fs.BoolVarP(&flags.yes, "yes", "y", false, "Use the first fix without asking")
	fs.BoolVarP(&flags.repeat, "repeat", "r", false, "Try the next fix if the chosen one fails too")
	fs.BoolVar(&flags.noColors, "no-colors", false, "Disable colored output")
	fs.BoolVarP(&flags.json, "json", "j", false, "Print all candidate fixes as JSON and exit")
}

// runFix writes the chosen fix to stdout for the shell function to eval.
// Everything meant for the user goes to stderr.
func runFix(ctx context.Context, stdout, stderr io.Writer, flags rootFlags, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	settings, settingsErr := loadSettings()
	settings.Apply(config.Overrides{
		Yes:      flags.yes,
		Repeat:   flags.repeat,
		Debug:    flags.debug,
		NoColors: flags.noColors,
	})

	logger, err := logging.New(settings.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if settingsErr != nil {
		logger.Warn("Using partial settings", zap.Error(settingsErr))
	}

	sh := shell.DetectShell(os.Getenv)
	script, err := resolveScript(sh, flags.forceCommand, args, settings.HistoryLimit)
	if err != nil {
		return err
	}
	logger.Debug("Correcting command", zap.String("script", script), zap.String("shell", sh.Name()))

	cmd, err := captureCommand(ctx, sh, script, settings, logger)
	if err != nil {
		return err
	}

	catalog := rules.Builtin(rules.Options{
		SearchDirs:      model.SearchDirs(os.Getenv("PATH"), settings.ExcludedSearchPathPrefixes),
		NumCloseMatches: settings.NumCloseMatches,
	})
	if dir, err := config.Dir(); err == nil {
		userRules, err := rules.LoadUserRules(config.RulesDir(dir), logger)
		if err != nil {
			logger.Warn("Skipping user rules", zap.Error(err))
		}
		catalog = append(catalog, userRules...)
	}

	candidates := corrector.New(catalog, settings, logger).GetCorrectedCommands(cmd)

	if flags.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	}

	if len(candidates) == 0 {
		fmt.Fprintln(stderr, "No fixes found")
		return errNoFixes
	}

	chosen, err := choose(candidates, settings)
	if errors.Is(err, tui.ErrAborted) {
		return errNoFixes
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, fixedScript(sh, chosen.Script, settings.Repeat))
	return nil
}

func loadSettings() (*config.Settings, error) {
	dir, err := config.Dir()
	if err != nil {
		s := config.Default()
		return s, errors.Join(err, s.ApplyEnv(nil))
	}
	return config.Load(dir, nil)
}

// resolveScript finds the command to correct: the --force-command value
// (usually the recent history block exported by the shell function), then
// the positional arguments, then the shell's history file.
func resolveScript(sh shell.Shell, forced string, args []string, limit int) (string, error) {
	alias := os.Getenv("OOPS_ALIAS")
	if forced != "" {
		if script := shell.RawCommandFromHistory(forced, alias, limit); script != "" {
			return script, nil
		}
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	script, err := shell.LastCommand(sh, alias, limit)
	if err != nil {
		return "", err
	}
	if script == "" {
		return "", errors.New("no previous command to correct")
	}
	return script, nil
}

// captureCommand re-runs script to collect its output. A command that
// times out is corrected from its script alone.
func captureCommand(ctx context.Context, sh shell.Shell, script string, settings *config.Settings, logger *zap.Logger) (*model.Command, error) {
	runner := shell.NewRunner(settings.Env, logger)
	out, err := runner.GetOutput(ctx, script, sh.ExpandAliases(script), settings.Timeout(script))
	if err != nil {
		return nil, err
	}
	if out.TimedOut {
		return model.NewCommand(script), nil
	}
	return model.NewCommandWithOutput(script, out.Text), nil
}

func choose(candidates []model.CorrectedCommand, settings *config.Settings) (model.CorrectedCommand, error) {
	if !settings.RequireConfirmation || !isTerminal(os.Stderr) {
		return candidates[0], nil
	}
	return tui.Select(candidates, tui.Options{
		NoColors: settings.NoColors,
		Output:   os.Stderr,
	})
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// fixedScript is what the shell function evaluates. With repeat, a failing
// fix hands itself back to oops.
func fixedScript(sh shell.Shell, script string, repeat bool) string {
	if !repeat {
		return script
	}
	return sh.Or(script, "oops --repeat --force-command "+sh.Quote(script))
}

func aliasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alias [name]",
		Short: "Print the shell function to eval in your shell's rc file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := defaultAlias
			if len(args) == 1 {
				name = args[0]
			}
			settings, _ := loadSettings()
			sh := shell.DetectShell(os.Getenv)
			_, err := io.WriteString(cmd.OutOrStdout(), sh.AppAlias(name, settings.AlterHistory))
			return err
		},
	}
}

func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Print the detected shell",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), shell.DetectShell(os.Getenv).Name())
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the settings file and rules directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			created, err := config.Init(dir)
			for _, path := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
			}
			if err == nil && len(created) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already initialized\n", dir)
			}
			return err
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			out, err := settings.YAML()
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func versionCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "oops version %s\n", version)
			if check {
				checkUpdate(cmd.OutOrStdout(), version)
			}
		},
	}
	cmd.Flags().BoolVarP(&check, "check", "c", false, "Check GitHub for a newer release")
	return cmd
}

func checkUpdate(w io.Writer, currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      "abulka",
		Repository: "oops",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		fmt.Fprintf(w, "Could not check for updates: %v\n", err)
		return
	}

	if res.Outdated {
		fmt.Fprintf(w, "A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Fprintln(w, "Download it from https://github.com/abulka/oops/releases")
	} else {
		fmt.Fprintf(w, "You are using the latest version: %s\n", currentVer)
	}
}
