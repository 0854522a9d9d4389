// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/JamesHenry/universe/internal/config"
	"github.com/JamesHenry/universe/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom manifest file
	cfgFile string

	// logger is the CLI-wide logger; resolution warnings and remote-load
	// diagnostics from pkg/share and pkg/remote are routed through it.
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "universe",
		Short: "A module-federation runtime and preloader",
		Long: TitleStyle.Render("universe") + SubtitleStyle.Render(" - A module-federation runtime and preloader") + `

universe shares dependencies between independently deployed applications
and loads modules exposed by remote containers. Shares and remotes are
declared in a 'federation.cue' manifest using CUE format.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Create a federation.cue in your project directory
  2. Declare shares (with version ranges) and remotes (with entry URLs)
  3. Preload the remotes with: universe preload

` + SubtitleStyle.Render("Examples:") + `
  universe validate         Validate the manifest and print the share list
  universe resolve react    Resolve the 'react' share against the remotes
  universe preload          Load every module every remote exposes`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "manifest file (default is ./federation.cue)")

	// Add subcommands
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(preloadCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// initRootConfig applies manifest UI settings before any command runs.
func initRootConfig() {
	// A manifest is not required here; commands surface their own load
	// errors. This pass only picks up ui.verbose for logging.
	m, err := config.NewProvider().Load(context.Background(), config.LoadOptions{
		ManifestFilePath: cfgFile,
	})
	if err == nil && m != nil && !verbose {
		verbose = m.UI.Verbose
	}

	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
}

// loadManifest loads the federation manifest, honoring the --config flag.
func loadManifest(ctx context.Context) (*config.Manifest, error) {
	return config.NewProvider().Load(ctx, config.LoadOptions{
		ManifestFilePath: cfgFile,
	})
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
