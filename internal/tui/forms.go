package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/kicad-web-opener/kicad-web-opener/internal/config"
)

// CreateSetupForm builds the first-run form: where KiCad lives, where
// projects go, and whether to register the URL scheme.
func CreateSetupForm(values *SetupValues, accessible bool) *huh.Form {
	theme := GetTheme()
	if accessible {
		theme = GetAccessibleTheme()
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("kicad-web-opener setup").
				Description("Links of the form kicad-project://zip?source=... or\nkicad-project://git?source=... will be fetched and opened in KiCad."),

			huh.NewInput().
				Key("application_path").
				Title("KiCad Application").
				Description("Path of the KiCad executable started on the fetched project").
				Value(&values.ApplicationPath).
				Placeholder(applicationPlaceholder()).
				Validate(ValidateApplication),

			huh.NewInput().
				Key("default_save_path").
				Title("Default Save Path").
				Description("Projects are fetched into a folder named after the project here").
				Value(&values.DefaultSavePath).
				Placeholder(config.DefaultSavePath()).
				Validate(ValidateSaveDir),
		),

		huh.NewGroup(
			huh.NewSelect[string]().
				Key("git_backend").
				Title("Git Backend").
				Description("auto uses the git command when installed, otherwise the built-in client").
				Options(
					huh.NewOption("auto", config.GitBackendAuto),
					huh.NewOption("git command", config.GitBackendCLI),
					huh.NewOption("built-in", config.GitBackendBuiltin),
				).
				Value(&values.GitBackend),

			huh.NewInput().
				Key("download_timeout").
				Title("Download Timeout").
				Description("Upper bound for one archive download (e.g., 90s, 5m)").
				Value(&values.DownloadTimeout).
				Placeholder(config.DefaultDownloadTimeout.String()).
				Validate(ValidateDuration),

			huh.NewInput().
				Key("max_retries").
				Title("Download Retries").
				Description("Retries after a transient download failure (0-10)").
				Value(&values.MaxRetries).
				Placeholder("3").
				Validate(ValidateIntRange(0, 10)),
		),

		huh.NewGroup(
			huh.NewConfirm().
				Key("register").
				Title("Register kicad-project:// links").
				Description("Make this program the handler for kicad-project links in your browser").
				Value(&values.Register),
		),
	).WithTheme(theme).WithAccessible(accessible)
}

func applicationPlaceholder() string {
	if isWindows {
		return `C:\Program Files\KiCad\8.0\bin\kicad.exe`
	}
	return "/usr/bin/kicad"
}
