// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/JamesHenry/universe/pkg/share"

	"github.com/spf13/cobra"
)

// validateCmd loads the federation manifest, normalizes its share
// declarations, and prints the result.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the federation manifest",
	Long: `Validate loads the federation manifest, checks it against the schema,
normalizes every share declaration, and prints the effective configuration.

A declaration that fails to normalize (unknown option, non-string list
entry, malformed version range) is a hard error.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := loadManifest(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
			return &ExitError{Code: 1, Err: err}
		}

		entries, err := share.Parse(m.ShareDeclaration())
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
			return &ExitError{Code: 1, Err: err}
		}

		out := cmd.OutOrStdout()

		fmt.Fprintln(out, TitleStyle.Render("Manifest")+SubtitleStyle.Render(" ("+m.Name+")"))
		fmt.Fprintln(out, SubtitleStyle.Render("  share scope: ")+m.Scope())
		fmt.Fprintln(out)

		fmt.Fprintln(out, TitleStyle.Render("Shares"))
		if len(entries) == 0 {
			fmt.Fprintln(out, SubtitleStyle.Render("  (none)"))
		}
		for _, e := range entries {
			fmt.Fprintf(out, "  %s\n", KeyStyle.Render(e.Key))
			fmt.Fprintf(out, "    import:   %s\n", describeImport(e.Config))
			if e.Config.RequiredVersion != "" {
				fmt.Fprintf(out, "    requires: %s\n", e.Config.RequiredVersion)
			}
			if e.Config.Version != "" {
				fmt.Fprintf(out, "    provides: %s\n", e.Config.Version)
			}
			if flags := describeFlags(e.Config); flags != "" {
				fmt.Fprintf(out, "    flags:    %s\n", flags)
			}
			if e.Config.ShareScope != share.DefaultScope {
				fmt.Fprintf(out, "    scope:    %s\n", e.Config.ShareScope)
			}
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, TitleStyle.Render("Remotes"))
		remotes := m.RemoteMap()
		if len(remotes) == 0 {
			fmt.Fprintln(out, SubtitleStyle.Render("  (none)"))
		}
		names := make([]string, 0, len(remotes))
		for name := range remotes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %s %s\n", KeyStyle.Render(name), SubtitleStyle.Render(remotes[name]))
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, SuccessStyle.Render("Manifest is valid."))
		return nil
	},
}

func describeImport(cfg share.Config) string {
	if cfg.ImportDisabled {
		return SubtitleStyle.Render("(consume only)")
	}
	return cfg.Import
}

func describeFlags(cfg share.Config) string {
	var flags []string
	if cfg.Singleton {
		flags = append(flags, "singleton")
	}
	if cfg.StrictVersion {
		flags = append(flags, "strict")
	}
	if cfg.Eager {
		flags = append(flags, "eager")
	}
	return strings.Join(flags, ", ")
}
