// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ManifestNotFoundId Id = iota + 1
	ManifestParseErrorId
	RemoteUnreachableId
	RemoteInitFailedId
	ModuleNotFoundId
	VersionMismatchId
	SingletonConflictId
	ShareScopeEmptyId
	ConfigLoadFailedId
	InvalidRangeId
	PreloadFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No federation manifest found!

We searched for a federation manifest but couldn't find one in the expected locations.

## Search locations (in order of precedence):
1. Current directory (federation.cue)
2. Paths configured in your config file

## Things you can try:
- Create a manifest in your current directory:
~~~cue
name: "host"

shares: {
  react: {
    requiredVersion: "^18.0.0"
    singleton:       true
  }
}

remotes: {
  app1: "https://cdn.example.com/app1/remote-entry.json"
}
~~~

- Or point at a different manifest:
~~~
$ universe --config /path/to/federation.cue validate
~~~`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to parse federation manifest!

Your manifest contains syntax errors or invalid configuration.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names in a share entry
- A requiredVersion that is not a valid semver range
- A singleton or eager flag set to a non-boolean value

## Things you can try:
- Check the error message above for the specific path
- Run with verbose mode for more details:
~~~
$ universe --verbose validate
~~~

## Example of a valid share entry:
~~~cue
shares: {
  react: {
    requiredVersion: "^18.0.0"
    singleton:       true
    strictVersion:   false
  }
}
~~~`,
	}

	remoteUnreachableIssue = &Issue{
		id: RemoteUnreachableId,
		mdMsg: `
# Remote unreachable!

We could not fetch the remote entry for one of your configured remotes.

## Common causes:
- The entry URL is wrong or the host is down
- The entry file does not exist at the configured path
- A proxy or firewall is blocking the request
- The entry is larger than the fetch limit

## Things you can try:
- Fetch the entry URL manually to confirm it responds:
~~~
$ curl -fsS https://cdn.example.com/app1/remote-entry.json
~~~

- Check the remotes section of your manifest for typos
- Retry the preload; loads that fail are reported per remote:
~~~
$ universe preload
~~~`,
	}

	remoteInitFailedIssue = &Issue{
		id: RemoteInitFailedId,
		mdMsg: `
# Remote initialization failed!

The remote entry was fetched, but registering its shared modules into the
share scope failed.

## Common causes:
- The entry manifest is missing a name or version
- A shared entry has an empty share key
- A shared entry declares an invalid version

## Things you can try:
- Validate the remote's entry manifest against the expected shape:
~~~json
{
  "name": "app1",
  "exposes": {"./Button": "./modules/button.json"},
  "shared": [{"shareKey": "react", "version": "18.2.0"}]
}
~~~

- Contact the remote's owner if the entry is malformed`,
	}

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		mdMsg: `
# Module not found!

The module you requested is not exposed by the remote.

## Things you can try:
- Preload the remotes to see every module they expose:
~~~
$ universe preload
~~~

- Check for typos in the module name; exposed names start with "./"
- Verify the remote's entry manifest lists the module under exposes`,
	}

	versionMismatchIssue = &Issue{
		id: VersionMismatchId,
		mdMsg: `
# Shared version mismatch!

No registered version of a shared module satisfies the required range, and
strictVersion is enabled for that share.

## Things you can try:
- Relax the required range in your manifest:
~~~cue
shares: {
  react: {requiredVersion: ">=17.0.0"}
}
~~~

- Disable strict matching to fall back to the highest available version:
~~~cue
shares: {
  react: {strictVersion: false}
}
~~~

- Upgrade the remote that provides the outdated version`,
	}

	singletonConflictIssue = &Issue{
		id: SingletonConflictId,
		mdMsg: `
# Singleton conflict!

A share marked singleton has more than one version registered in its scope.
Only one version of a singleton may ever be instantiated.

## Things you can try:
- Align the version of the shared module across all remotes
- If the conflict is tolerable, keep strictVersion off; resolution will
  warn and pick the highest version
- If the share does not need to be a singleton, remove the flag:
~~~cue
shares: {
  react: {singleton: false}
}
~~~`,
	}

	shareScopeEmptyIssue = &Issue{
		id: ShareScopeEmptyId,
		mdMsg: `
# Share scope has no providers!

Resolution fell back to the local copy because no remote registered the
requested share key in the scope.

## Common causes:
- No remote provides the shared module at all
- The remotes that provide it register into a different share scope
- Remotes have not been initialized yet

## Things you can try:
- Check which scope each remote registers into (shareScope in the manifest)
- Initialize the remotes before resolving, e.g. via preload`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the universe configuration file.

## Configuration file locations:
- Linux: ~/.config/universe/config.cue
- macOS: ~/Library/Application Support/universe/config.cue
- Windows: %APPDATA%\universe\config.cue

## Things you can try:
- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/universe/config.cue
~~~

## Example configuration:
~~~cue
manifest_path: "./federation.cue"

ui: {
  color_scheme: "auto"
  verbose: false
}
~~~`,
	}

	invalidRangeIssue = &Issue{
		id: InvalidRangeId,
		mdMsg: `
# Invalid version range!

A requiredVersion in your manifest is not a recognized semver range.

## Supported range forms:
- Exact: ` + "`18.2.0`" + `
- Caret: ` + "`^18.0.0`" + ` (compatible within major)
- Tilde: ` + "`~18.2.0`" + ` (compatible within minor)
- Comparators: ` + "`>=17.0.0 <19.0.0`" + `
- Wildcard: ` + "`*`" + ` (any version)

## Things you can try:
- Fix the range in the offending share entry
- Use an exact version if you are unsure about range behavior`,
	}

	preloadFailedIssue = &Issue{
		id: PreloadFailedId,
		mdMsg: `
# Preload finished with failures!

Some remotes or modules could not be loaded during the bulk preload. The
modules that did load are still usable; the failures are listed per remote.

## Things you can try:
- Inspect the per-remote failures printed above
- Re-run the preload; transient network failures often clear:
~~~
$ universe preload
~~~

- Use strict mode to make partial preloads fail the command:
~~~
$ universe preload --strict
~~~`,
	}

	issues = map[Id]*Issue{
		manifestNotFoundIssue.Id():   manifestNotFoundIssue,
		manifestParseErrorIssue.Id(): manifestParseErrorIssue,
		remoteUnreachableIssue.Id():  remoteUnreachableIssue,
		remoteInitFailedIssue.Id():   remoteInitFailedIssue,
		moduleNotFoundIssue.Id():     moduleNotFoundIssue,
		versionMismatchIssue.Id():    versionMismatchIssue,
		singletonConflictIssue.Id():  singletonConflictIssue,
		shareScopeEmptyIssue.Id():    shareScopeEmptyIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		invalidRangeIssue.Id():       invalidRangeIssue,
		preloadFailedIssue.Id():      preloadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
