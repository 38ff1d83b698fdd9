package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kicad-web-opener/kicad-web-opener/internal/app"
	"github.com/kicad-web-opener/kicad-web-opener/internal/config"
	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
	"github.com/kicad-web-opener/kicad-web-opener/internal/tui"
	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
	"github.com/kicad-web-opener/kicad-web-opener/pkg/version"
)

var (
	// Dependencies for testing
	osExecutable      = os.Executable
	execLookPath      = exec.LookPath
	buildOrchestrator = app.Build
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render(domain.UserMessage(err)))
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	cfgFile string
	verbose bool
	quiet   bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "kicad-web-opener [url]",
		Short: "Open KiCad projects from the web",
		Long: `kicad-web-opener fetches a KiCad project from a kicad-project:// link
or a plain URL and opens it in KiCad.

  kicad-project://zip?source=https%3A%2F%2Fexample.com%2Famp.zip
  kicad-project://git?source=https%3A%2F%2Fgithub.com%2Facme%2Fboard.git
  https://example.com/amp.zip        (archive)
  https://github.com/acme/board      (git repository)

Run 'kicad-web-opener setup' once to choose the KiCad executable and to
register the kicad-project:// scheme with the desktop.`,
		Version:       version.Short(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.cfgFile, "config", "", "config file (default is ~/.kicad-web-opener/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "Hide progress bars")

	rootCmd.Flags().StringP("dest", "d", "", "Destination directory (default is <default_save_path>/<project name>)")
	rootCmd.Flags().Bool("no-launch", false, "Fetch the project without starting KiCad")
	rootCmd.Flags().String("git-backend", "", "Clone with: auto, cli or builtin")
	rootCmd.Flags().Bool("browser-tls", false, "Download with a browser TLS fingerprint")
	rootCmd.Flags().Int("retries", -1, "Download retries (default from config)")

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runOpen(cmd, g, args)
	}

	rootCmd.AddCommand(
		newSetupCmd(g),
		newRegisterCmd(g),
		newHistoryCmd(g),
		newDoctorCmd(g),
		newVersionCmd(),
	)

	return rootCmd
}

func runOpen(cmd *cobra.Command, g *globalFlags, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg, g)

	noLaunch, _ := cmd.Flags().GetBool("no-launch")
	if !noLaunch {
		if err := cfg.RequireSetup(); err != nil {
			return err
		}
	}

	dest, _ := cmd.Flags().GetString("dest")
	req, err := app.ResolveRequest(args[0], dest, cfg.Paths.DefaultSavePath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, err := buildOrchestrator(cfg, app.BuildOptions{
		Logger:   log,
		Progress: progressWriter(cmd, g),
	})
	if err != nil {
		return err
	}
	defer orch.Close()

	outcome, err := orch.Open(ctx, req, !noLaunch)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("Interrupted")
			return err
		}
		log.Debug().Str("kind", string(domain.KindOf(err))).Err(err).Msg("Open failed")
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tui.SuccessStyle.Render("Project ready: "+outcome.ProjectFile))
	if noLaunch {
		fmt.Fprintln(out, tui.DescriptionStyle.Render("KiCad was not started (--no-launch)"))
	}
	return nil
}

// loadConfig reads the configuration and applies the root command's
// flag overrides.
func loadConfig(cmd *cobra.Command, g *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(g.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Lookup("git-backend") != nil && flags.Changed("git-backend") {
		cfg.Git.Backend, _ = flags.GetString("git-backend")
	}
	if flags.Lookup("browser-tls") != nil && flags.Changed("browser-tls") {
		cfg.Download.BrowserTLS, _ = flags.GetBool("browser-tls")
	}
	if flags.Lookup("retries") != nil && flags.Changed("retries") {
		cfg.Download.MaxRetries, _ = flags.GetInt("retries")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config, g *globalFlags) *utils.Logger {
	return utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cmd.ErrOrStderr(),
		Verbose: g.verbose,
	})
}

func progressWriter(cmd *cobra.Command, g *globalFlags) io.Writer {
	if g.quiet {
		return nil
	}
	return cmd.ErrOrStderr()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func configPath(g *globalFlags) string {
	if g.cfgFile != "" {
		return g.cfgFile
	}
	return config.ConfigFilePath()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}
