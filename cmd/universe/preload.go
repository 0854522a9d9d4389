// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/JamesHenry/universe/pkg/remote"
	"github.com/JamesHenry/universe/pkg/share"
	"github.com/JamesHenry/universe/pkg/types"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

var (
	// preloadStrict makes any failed entry fail the command.
	preloadStrict bool
	// preloadOutput is where the preload manifest is written.
	preloadOutput string
	// preloadConcurrency bounds module loads per remote.
	preloadConcurrency int
)

type (
	// preloadManifest is the TOML record written after a sweep. It lists
	// every module that made it into the cache so a later run (or another
	// tool) can tell what is already available offline.
	preloadManifest struct {
		Host        string           `toml:"host"`
		GeneratedAt time.Time        `toml:"generated_at"`
		Modules     []preloadModule  `toml:"modules,omitempty"`
		Failures    []preloadFailure `toml:"failures,omitempty"`
	}

	preloadModule struct {
		// Key is "remoteName/moduleName", the bulk-load result key.
		Key    string `toml:"key"`
		Remote string `toml:"remote"`
		Module string `toml:"module"`
	}

	preloadFailure struct {
		Remote string `toml:"remote"`
		Module string `toml:"module,omitempty"`
		Kind   string `toml:"kind"`
		Error  string `toml:"error"`
	}
)

// preloadCmd bulk-loads every module every remote exposes and records the
// outcome in a preload manifest.
var preloadCmd = &cobra.Command{
	Use:   "preload",
	Short: "Load every module every remote exposes",
	Long: `Preload resolves every remote in the manifest, enumerates the modules
each one exposes, and loads them all. Failures never abort the sweep:
modules that load are kept and every failure is reported per entry.

The outcome is written as a TOML preload manifest (universe.preload.toml
by default) listing the loaded module keys and any failures.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := loadManifest(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
			return &ExitError{Code: 1, Err: err}
		}

		if _, errs := types.FilesystemPath(preloadOutput).IsValid(); len(errs) > 0 {
			return errs[0]
		}

		remotes := m.RemoteMap()
		if len(remotes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("No remotes declared; nothing to preload."))
			return nil
		}

		scopes := share.NewScopeRegistry()
		reg := remote.NewRegistry(remote.NewEntryFetcher(), scopes, remote.WithRegistryLogger(logger))

		result := reg.BulkLoad(cmd.Context(), remotes,
			remote.WithModuleConcurrency(preloadConcurrency),
			remote.WithScope(m.Scope()))

		printPreloadSummary(cmd, remotes, result)

		if err := writePreloadManifest(m.Name, result); err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
			return &ExitError{Code: 1, Err: err}
		}
		fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("Wrote "+preloadOutput))

		if preloadStrict && len(result.Errors) > 0 {
			return &ExitError{
				Code: 1,
				Err:  fmt.Errorf("preload finished with %d failure(s)", len(result.Errors)),
			}
		}
		return nil
	},
}

func init() {
	preloadCmd.Flags().BoolVar(&preloadStrict, "strict", false, "exit non-zero if any entry fails to load")
	preloadCmd.Flags().StringVarP(&preloadOutput, "output", "o", "universe.preload.toml", "preload manifest output path")
	preloadCmd.Flags().IntVar(&preloadConcurrency, "concurrency", 8, "max concurrent module loads per remote")
}

func printPreloadSummary(cmd *cobra.Command, remotes map[string]string, result *remote.BulkResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, TitleStyle.Render("Preload")+SubtitleStyle.Render(
		fmt.Sprintf(" (%d remote(s))", len(remotes))))

	keys := make([]string, 0, len(result.Loaded))
	for key := range result.Loaded {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintln(out, SuccessStyle.Render("  ✓ ")+KeyStyle.Render(key))
	}

	for _, failure := range result.Errors {
		label := failure.Remote
		if failure.Module != "" {
			label += " " + failure.Module
		}
		fmt.Fprintln(out, ErrorStyle.Render("  ✗ ")+KeyStyle.Render(label)+
			SubtitleStyle.Render(fmt.Sprintf(" (%s) ", failure.Kind))+
			VerboseStyle.Render(failure.Err.Error()))
	}

	fmt.Fprintf(out, "%s loaded, %s failed\n",
		SuccessStyle.Render(fmt.Sprintf("%d", len(result.Loaded))),
		ErrorStyle.Render(fmt.Sprintf("%d", len(result.Errors))))
}

func writePreloadManifest(host string, result *remote.BulkResult) error {
	manifest := preloadManifest{
		Host:        host,
		GeneratedAt: time.Now().UTC(),
	}

	keys := make([]string, 0, len(result.Loaded))
	for key := range result.Loaded {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		manifest.Modules = append(manifest.Modules, splitPreloadKey(key))
	}

	for _, failure := range result.Errors {
		manifest.Failures = append(manifest.Failures, preloadFailure{
			Remote: failure.Remote,
			Module: failure.Module,
			Kind:   string(failure.Kind),
			Error:  failure.Err.Error(),
		})
	}

	data, err := toml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode preload manifest: %w", err)
	}
	if err := os.WriteFile(preloadOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preload manifest: %w", err)
	}
	return nil
}

// splitPreloadKey splits a "remoteName/moduleName" bulk-load key back into
// its parts. Remote names never contain "/" (enforced at manifest load).
func splitPreloadKey(key string) preloadModule {
	for i, r := range key {
		if r == '/' {
			return preloadModule{Key: key, Remote: key[:i], Module: key[i+1:]}
		}
	}
	return preloadModule{Key: key, Remote: key}
}
