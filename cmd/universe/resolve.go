// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/JamesHenry/universe/internal/issue"
	"github.com/JamesHenry/universe/pkg/remote"
	"github.com/JamesHenry/universe/pkg/share"

	"github.com/spf13/cobra"
)

// resolveCmd simulates runtime resolution of one share key: it loads every
// remote from the manifest, lets them register their shared modules, then
// resolves the requested key against the populated scope.
var resolveCmd = &cobra.Command{
	Use:   "resolve <share-key>",
	Short: "Resolve a share key against the manifest's remotes",
	Long: `Resolve loads every remote declared in the manifest, initializes them
into the share scope, and resolves the given share key the way the
runtime would: version filter first, then singleton check, then highest
satisfying version with registration order breaking ties.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		shareKey := args[0]

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

		consume, ok := findConsume(entries, shareKey)
		if !ok {
			return fmt.Errorf("share key %q is not declared in the manifest", shareKey)
		}

		ctx := cmd.Context()
		scopes := share.NewScopeRegistry()
		reg := remote.NewRegistry(remote.NewEntryFetcher(), scopes, remote.WithRegistryLogger(logger))

		remotes := m.RemoteMap()
		names := make([]string, 0, len(remotes))
		for name := range remotes {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			desc := remote.Descriptor{Name: name, EntryURL: remotes[name], Scope: m.Scope()}
			if _, err := reg.Resolve(ctx, desc); err != nil {
				logger.Warn("remote unavailable", "remote", name, "err", err)
			}
		}

		resolver := share.NewResolver(scopes, share.WithLogger(logger))
		res, err := resolver.Resolve(consume.ShareScope, consume.ShareKey, consume.Requirement())
		if err != nil {
			renderResolutionIssue(err)
			return &ExitError{Code: 1, Err: err}
		}

		out := cmd.OutOrStdout()
		if res.Fallback {
			fmt.Fprintln(out, WarningStyle.Render("fallback: ")+
				fmt.Sprintf("no suitable %s in scope %q, using the bundled copy (%s)",
					KeyStyle.Render(consume.ShareKey), consume.ShareScope, consume.Import))
			return nil
		}

		fmt.Fprintln(out, SuccessStyle.Render("resolved: ")+
			fmt.Sprintf("%s %s from scope %q",
				KeyStyle.Render(res.Instance.ShareKey), res.Instance.Version, res.Instance.Scope))
		if verbose {
			fmt.Fprintln(out, VerboseStyle.Render(
				fmt.Sprintf("  eager=%v required=%q strict=%v singleton=%v",
					res.Instance.Eager, consume.RequiredVersion, consume.StrictVersion, consume.Singleton)))
		}
		return nil
	},
}

// findConsume locates the consume config for a share key, matching the
// declaration key first and the (possibly renamed) share key second.
func findConsume(entries []share.Entry, shareKey string) (share.ConsumesConfig, bool) {
	consumes := share.NewConsumeRegistry(entries).AllConsumes()
	for _, ce := range consumes {
		if ce.Key == shareKey {
			return ce.Consumes, true
		}
	}
	for _, ce := range consumes {
		if ce.Consumes.ShareKey == shareKey {
			return ce.Consumes, true
		}
	}
	return share.ConsumesConfig{}, false
}

// renderResolutionIssue prints the remediation card for known resolution
// failure classes, falling back to the plain error text.
func renderResolutionIssue(err error) {
	var id issue.Id
	switch {
	case errors.Is(err, share.ErrSingletonViolation):
		id = issue.SingletonConflictId
	case errors.Is(err, share.ErrVersionMismatch):
		id = issue.VersionMismatchId
	default:
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return
	}

	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
	if rendered, renderErr := issue.Get(id).Render(""); renderErr == nil {
		fmt.Fprintln(os.Stderr, rendered)
	}
}
