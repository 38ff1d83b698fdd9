package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kicad-web-opener/kicad-web-opener/internal/app"
	"github.com/kicad-web-opener/kicad-web-opener/internal/config"
	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
	"github.com/kicad-web-opener/kicad-web-opener/internal/scheme"
	"github.com/kicad-web-opener/kicad-web-opener/internal/tui"
	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
)

func newSetupCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Choose the KiCad executable and register the URL scheme",
		Long: `Setup stores the KiCad executable and the default save directory in the
config file, then registers kicad-web-opener as the kicad-project:// handler.

Without --application an interactive form is shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd, g)
		},
	}

	cmd.Flags().String("application", "", "Path to the KiCad executable (skips the form)")
	cmd.Flags().String("save-dir", "", "Default directory for fetched projects")
	cmd.Flags().Bool("no-register", false, "Do not register the kicad-project:// scheme")
	cmd.Flags().Bool("accessible", false, "Use the screen-reader friendly form")

	return cmd
}

func runSetup(cmd *cobra.Command, g *globalFlags) error {
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return err
	}
	path := configPath(g)
	save := func(c *config.Config) error { return config.Save(c, path) }

	application, _ := cmd.Flags().GetString("application")
	saveDir, _ := cmd.Flags().GetString("save-dir")
	noRegister, _ := cmd.Flags().GetBool("no-register")
	register := !noRegister

	if application != "" {
		if err := tui.ValidateApplication(application); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrNotConfigured, err)
		}
		cfg.KiCad.ApplicationPath = application
		if saveDir != "" {
			if err := tui.ValidateSaveDir(saveDir); err != nil {
				return err
			}
			cfg.Paths.DefaultSavePath = saveDir
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := save(cfg); err != nil {
			return err
		}
	} else {
		if saveDir != "" {
			cfg.Paths.DefaultSavePath = saveDir
		}
		accessible, _ := cmd.Flags().GetBool("accessible")
		result, err := tui.RunSetup(tui.SetupOptions{
			Config:     cfg,
			SaveFunc:   save,
			Accessible: accessible,
		})
		if err != nil {
			return err
		}
		cfg = result.Config
		register = register && result.Register
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tui.SuccessStyle.Render("Configuration saved to "+path))

	if !register {
		return nil
	}
	if err := registerExecutable(cmd, g, cfg); err != nil {
		if errors.Is(err, domain.ErrUnsupportedPlatform) {
			fmt.Fprintln(out, tui.WarnStyle.Render("URL scheme registration is not available on this platform"))
			return nil
		}
		return err
	}
	return nil
}

func newRegisterCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register this executable as the kicad-project:// handler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			return registerExecutable(cmd, g, cfg)
		},
	}
}

func registerExecutable(cmd *cobra.Command, g *globalFlags, cfg *config.Config) error {
	exe, err := osExecutable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	noHistory := *cfg
	noHistory.History.Enabled = false
	orch, err := buildOrchestrator(&noHistory, app.BuildOptions{Logger: newLogger(cmd, cfg, g)})
	if err != nil {
		return err
	}
	defer orch.Close()

	if err := orch.Register(exe); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), tui.SuccessStyle.Render("Registered kicad-project:// handler in "+orch.RegistrationLocation()))
	return nil
}

func newHistoryCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently opened projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, tui.WarnStyle.Render("History is disabled (history.enabled: false)"))
				return nil
			}

			orch, err := buildOrchestrator(cfg, app.BuildOptions{Logger: newLogger(cmd, cfg, g)})
			if err != nil {
				return err
			}
			defer orch.Close()

			if clearAll, _ := cmd.Flags().GetBool("clear"); clearAll {
				if err := orch.ClearHistory(); err != nil {
					return fmt.Errorf("clear history: %w", err)
				}
				fmt.Fprintln(out, tui.SuccessStyle.Render("History cleared"))
				return nil
			}

			limit, _ := cmd.Flags().GetInt("limit")
			entries, err := orch.Recent(commandContext(cmd), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, tui.DescriptionStyle.Render("No projects opened yet"))
				return nil
			}

			for _, e := range entries {
				fmt.Fprintf(out, "%s  %-3s  %s\n", e.OpenedAt.Local().Format(time.DateTime), e.Type, tui.TitleStyle.Render(e.Name))
				fmt.Fprintf(out, "    %s\n", tui.DescriptionStyle.Render(e.ProjectFile))
				fmt.Fprintf(out, "    %s\n", tui.DescriptionStyle.Render(shareLink(e)))
			}
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 10, "Number of entries to show")
	cmd.Flags().Bool("clear", false, "Remove all entries")

	return cmd
}

func newDoctorCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check system dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Checking system dependencies...")

			allOK := true

			path := configPath(g)
			if utils.FileExists(path) {
				fmt.Fprintln(out, tui.Check(true, "Config file", path))
			} else {
				fmt.Fprintln(out, tui.Check(false, "Config file", "not found, run 'kicad-web-opener setup'"))
				allOK = false
			}

			if err := tui.ValidateApplication(cfg.KiCad.ApplicationPath); err != nil {
				fmt.Fprintln(out, tui.Check(false, "KiCad", err.Error()))
				allOK = false
			} else {
				fmt.Fprintln(out, tui.Check(true, "KiCad", cfg.KiCad.ApplicationPath))
			}

			if err := tui.ValidateSaveDir(cfg.Paths.DefaultSavePath); err != nil {
				fmt.Fprintln(out, tui.Check(false, "Save directory", err.Error()))
				allOK = false
			} else {
				fmt.Fprintln(out, tui.Check(true, "Save directory", cfg.Paths.DefaultSavePath))
			}

			// A missing git binary is not fatal: the built-in client takes over
			if gitPath, err := execLookPath(cfg.Git.Binary); err == nil {
				fmt.Fprintln(out, tui.Check(true, "Git", gitPath))
			} else {
				fmt.Fprintln(out, tui.Check(cfg.Git.Backend != config.GitBackendCLI, "Git",
					"not found on PATH, repositories are cloned with the built-in client"))
				if cfg.Git.Backend == config.GitBackendCLI {
					allOK = false
				}
			}

			fmt.Fprintln(out)
			if !allOK {
				fmt.Fprintln(out, tui.ErrorStyle.Render("Some checks failed. Please resolve the issues above."))
				return fmt.Errorf("%w: doctor found problems", domain.ErrNotConfigured)
			}
			fmt.Fprintln(out, tui.SuccessStyle.Render("All critical checks passed!"))
			return nil
		},
	}
}

// shareLink rebuilds the kicad-project link that reopens e
func shareLink(e domain.HistoryEntry) string {
	ref, err := domain.NewProjectReference(e.Type, e.SourceURL, e.Name)
	if err != nil {
		return e.SourceURL
	}
	return scheme.BuildURL(ref)
}
