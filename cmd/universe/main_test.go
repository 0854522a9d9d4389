// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JamesHenry/universe/internal/issue"
	"github.com/JamesHenry/universe/pkg/remote"
	"github.com/JamesHenry/universe/pkg/share"

	"github.com/pelletier/go-toml/v2"
)

func TestGetVersionString(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, BuildDate
	defer func() { Version, Commit, BuildDate = origVersion, origCommit, origDate }()

	Version = "dev"
	if got := getVersionString(); got != "dev (built from source)" {
		t.Errorf("getVersionString() = %q", got)
	}

	Version, Commit, BuildDate = "1.2.3", "abc123", "2026-08-29"
	got := getVersionString()
	for _, want := range []string{"1.2.3", "abc123", "2026-08-29"} {
		if !strings.Contains(got, want) {
			t.Errorf("getVersionString() = %q, should contain %q", got, want)
		}
	}
}

func TestFormatErrorForDisplay(t *testing.T) {
	plain := errors.New("boom")
	if got := formatErrorForDisplay(plain, false); got != "boom" {
		t.Errorf("formatErrorForDisplay(plain) = %q", got)
	}

	actionable := issue.NewErrorContext().
		WithOperation("load federation manifest").
		WithSuggestion("Check the manifest path").
		Wrap(plain).
		BuildError()

	got := formatErrorForDisplay(actionable, false)
	if !strings.Contains(got, "failed to load federation manifest") {
		t.Errorf("formatted error missing operation: %q", got)
	}
	if !strings.Contains(got, "Check the manifest path") {
		t.Errorf("formatted error missing suggestion: %q", got)
	}

	verbose := formatErrorForDisplay(actionable, true)
	if !strings.Contains(verbose, "Error chain:") {
		t.Errorf("verbose format missing error chain: %q", verbose)
	}
}

func TestDescribeFlags(t *testing.T) {
	tests := []struct {
		name string
		cfg  share.Config
		want string
	}{
		{"none", share.Config{}, ""},
		{"singleton only", share.Config{Singleton: true}, "singleton"},
		{"all", share.Config{Singleton: true, StrictVersion: true, Eager: true}, "singleton, strict, eager"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeFlags(tt.cfg); got != tt.want {
				t.Errorf("describeFlags() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindConsume(t *testing.T) {
	entries, err := share.Parse(map[string]any{
		"react": map[string]any{
			"requiredVersion": "^18.0.0",
			"singleton":       true,
		},
		"utils": map[string]any{
			"shareKey": "shared-utils",
		},
	})
	if err != nil {
		t.Fatalf("share.Parse failed: %v", err)
	}

	react, ok := findConsume(entries, "react")
	if !ok {
		t.Fatal("react should be found by declaration key")
	}
	if string(react.RequiredVersion) != "^18.0.0" || !react.Singleton {
		t.Errorf("unexpected consume config: %+v", react)
	}

	// Lookup by renamed share key
	utils, ok := findConsume(entries, "shared-utils")
	if !ok {
		t.Fatal("utils should be found by share key")
	}
	if utils.ShareKey != "shared-utils" {
		t.Errorf("ShareKey = %q", utils.ShareKey)
	}

	if _, ok := findConsume(entries, "unknown"); ok {
		t.Error("unknown key should not be found")
	}
}

func TestSplitPreloadKey(t *testing.T) {
	tests := []struct {
		key    string
		remote string
		module string
	}{
		{"app1/Button", "app1", "Button"},
		{"app1/widgets/Button", "app1", "widgets/Button"},
		{"app1", "app1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := splitPreloadKey(tt.key)
			if got.Remote != tt.remote || got.Module != tt.module || got.Key != tt.key {
				t.Errorf("splitPreloadKey(%q) = %+v", tt.key, got)
			}
		})
	}
}

func TestWritePreloadManifest_RoundTrip(t *testing.T) {
	origOutput := preloadOutput
	defer func() { preloadOutput = origOutput }()
	preloadOutput = filepath.Join(t.TempDir(), "universe.preload.toml")

	result := &remote.BulkResult{
		Loaded: map[string]any{
			"app1/Button": "payload",
			"app1/Header": "payload",
		},
		Errors: []remote.LoadFailure{
			{Remote: "app2", Kind: remote.FailureRemoteLoad, Err: errors.New("connection refused")},
		},
	}

	if err := writePreloadManifest("shop", result); err != nil {
		t.Fatalf("writePreloadManifest() returned error: %v", err)
	}

	data, err := os.ReadFile(preloadOutput)
	if err != nil {
		t.Fatalf("failed to read preload manifest: %v", err)
	}

	var decoded preloadManifest
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to decode preload manifest: %v", err)
	}

	if decoded.Host != "shop" {
		t.Errorf("Host = %q, want %q", decoded.Host, "shop")
	}
	if len(decoded.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(decoded.Modules))
	}
	// Sorted by key
	if decoded.Modules[0].Key != "app1/Button" || decoded.Modules[1].Key != "app1/Header" {
		t.Errorf("unexpected module order: %+v", decoded.Modules)
	}
	if len(decoded.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(decoded.Failures))
	}
	if decoded.Failures[0].Kind != "remote_load" {
		t.Errorf("failure kind = %q", decoded.Failures[0].Kind)
	}
}

func TestPreloadCommand_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app1/remote-entry.json":
			_, _ = w.Write([]byte(`{
				"name": "app1",
				"version": "1.0.0",
				"exposes": {"./Button": "./modules/button.json"},
				"shared": [{"shareKey": "react", "version": "18.2.0", "module": "./shared/react.json"}]
			}`))
		case "/app1/modules/button.json", "/app1/shared/react.json":
			_, _ = w.Write([]byte(`{"ok": true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "federation.cue")
	manifest := `
name: "shop"
remotes: app1: "` + server.URL + `/app1/remote-entry.json"
`
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	origCfg, origOutput, origStrict := cfgFile, preloadOutput, preloadStrict
	defer func() { cfgFile, preloadOutput, preloadStrict = origCfg, origOutput, origStrict }()
	cfgFile = manifestPath
	preloadOutput = filepath.Join(dir, "universe.preload.toml")
	preloadStrict = true

	var buf bytes.Buffer
	preloadCmd.SetOut(&buf)
	preloadCmd.SetContext(context.Background())

	if err := preloadCmd.RunE(preloadCmd, nil); err != nil {
		t.Fatalf("preload returned error: %v\noutput:\n%s", err, buf.String())
	}

	out := buf.String()
	if !strings.Contains(out, "app1/Button") {
		t.Errorf("summary should list app1/Button:\n%s", out)
	}

	data, err := os.ReadFile(preloadOutput)
	if err != nil {
		t.Fatalf("preload manifest not written: %v", err)
	}
	var decoded preloadManifest
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to decode preload manifest: %v", err)
	}
	if len(decoded.Modules) != 1 || decoded.Modules[0].Key != "app1/Button" {
		t.Errorf("unexpected modules: %+v", decoded.Modules)
	}
	if len(decoded.Failures) != 0 {
		t.Errorf("unexpected failures: %+v", decoded.Failures)
	}
}

func TestValidateCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "federation.cue")
	manifest := `
name: "shop"

shares: {
	react: {
		required_version: "^18.0.0"
		singleton:        true
	}
}

remotes: app1: "https://cdn.example.com/app1/remote-entry.json"
`
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	origCfg := cfgFile
	defer func() { cfgFile = origCfg }()
	cfgFile = manifestPath

	var buf bytes.Buffer
	validateCmd.SetOut(&buf)
	validateCmd.SetContext(context.Background())

	if err := validateCmd.RunE(validateCmd, nil); err != nil {
		t.Fatalf("validate returned error: %v\noutput:\n%s", err, buf.String())
	}

	out := buf.String()
	for _, want := range []string{"react", "^18.0.0", "singleton", "app1", "Manifest is valid."} {
		if !strings.Contains(out, want) {
			t.Errorf("validate output missing %q:\n%s", want, out)
		}
	}
}

func TestResolveCommand_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/app1/remote-entry.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{
			"name": "app1",
			"version": "1.0.0",
			"exposes": {},
			"shared": [{"shareKey": "react", "version": "18.2.0", "module": "./shared/react.json"}]
		}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "federation.cue")
	manifest := `
name: "shop"
shares: react: required_version: "^18.0.0"
remotes: app1: "` + server.URL + `/app1/remote-entry.json"
`
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	origCfg := cfgFile
	defer func() { cfgFile = origCfg }()
	cfgFile = manifestPath

	var buf bytes.Buffer
	resolveCmd.SetOut(&buf)
	resolveCmd.SetContext(context.Background())

	if err := resolveCmd.RunE(resolveCmd, []string{"react"}); err != nil {
		t.Fatalf("resolve returned error: %v\noutput:\n%s", err, buf.String())
	}

	out := buf.String()
	if !strings.Contains(out, "18.2.0") {
		t.Errorf("resolve output should name the chosen version:\n%s", out)
	}
}

func TestResolveCommand_ManifestScope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/app1/remote-entry.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{
			"name": "app1",
			"version": "1.0.0",
			"exposes": {},
			"shared": [{"shareKey": "react", "version": "18.2.0", "module": "./shared/react.json"}]
		}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "federation.cue")
	manifest := `
name: "shop"
share_scope: "ui"
shares: react: required_version: "^18.0.0"
remotes: app1: "` + server.URL + `/app1/remote-entry.json"
`
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	origCfg := cfgFile
	defer func() { cfgFile = origCfg }()
	cfgFile = manifestPath

	var buf bytes.Buffer
	resolveCmd.SetOut(&buf)
	resolveCmd.SetContext(context.Background())

	if err := resolveCmd.RunE(resolveCmd, []string{"react"}); err != nil {
		t.Fatalf("resolve returned error: %v\noutput:\n%s", err, buf.String())
	}

	// The remotes register into the manifest scope and the declaration
	// inherits it, so the lookup must hit the provider, not the fallback.
	out := buf.String()
	if strings.Contains(out, "fallback") {
		t.Fatalf("resolve fell back despite a satisfying provider in scope %q:\n%s", "ui", out)
	}
	if !strings.Contains(out, "18.2.0") || !strings.Contains(out, `"ui"`) {
		t.Errorf("resolve output should name the version and scope:\n%s", out)
	}
}

func TestResolveCommand_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "federation.cue")
	if err := os.WriteFile(manifestPath, []byte(`name: "shop"`), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	origCfg := cfgFile
	defer func() { cfgFile = origCfg }()
	cfgFile = manifestPath

	resolveCmd.SetOut(new(bytes.Buffer))
	resolveCmd.SetContext(context.Background())

	err := resolveCmd.RunE(resolveCmd, []string{"react"})
	if err == nil {
		t.Fatal("expected error for undeclared share key")
	}
	if !strings.Contains(err.Error(), "not declared") {
		t.Errorf("unexpected error: %v", err)
	}
}
