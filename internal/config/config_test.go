// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JamesHenry/universe/internal/issue"
)

func TestDefaultManifest(t *testing.T) {
	m := DefaultManifest()

	if m.Name != "host" {
		t.Errorf("Name = %q, want %q", m.Name, "host")
	}
	if m.ShareScope != "default" {
		t.Errorf("ShareScope = %q, want %q", m.ShareScope, "default")
	}
	if len(m.Shares) != 0 {
		t.Errorf("Shares should be empty, got %d entries", len(m.Shares))
	}
	if len(m.Remotes) != 0 {
		t.Errorf("Remotes should be empty, got %d entries", len(m.Remotes))
	}
	if m.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("UI.ColorScheme = %q, want %q", m.UI.ColorScheme, ColorSchemeAuto)
	}
	if m.UI.Verbose {
		t.Error("UI.Verbose should default to false")
	}

	if ok, errs := m.IsValid(); !ok {
		t.Errorf("default manifest should be valid, got: %v", errs)
	}
}

func TestConfigDir(t *testing.T) {
	t.Cleanup(Reset)

	// Override wins unconditionally
	SetConfigDirOverride("/custom/config/dir")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if dir != "/custom/config/dir" {
		t.Errorf("ConfigDir() = %q, want %q", dir, "/custom/config/dir")
	}

	Reset()

	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if !strings.HasSuffix(dir, AppName) {
		t.Errorf("ConfigDir() = %q, should end with %q", dir, AppName)
	}
}

func TestReset(t *testing.T) {
	SetConfigDirOverride("/some/dir")
	Reset()

	if configDirOverride != "" {
		t.Error("Reset() should clear the config dir override")
	}
}

func TestEnsureConfigDir(t *testing.T) {
	t.Cleanup(Reset)

	dir := filepath.Join(t.TempDir(), "nested", AppName)
	SetConfigDirOverride(dir)

	if err := EnsureConfigDir(); err != nil {
		t.Fatalf("EnsureConfigDir() returned error: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("config dir was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("config dir path is not a directory")
	}
}

func TestLoad_ReturnsDefaultsWhenNoManifest(t *testing.T) {
	m, path, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("loadWithOptions() returned error: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path should be empty, got %q", path)
	}
	if m.Name != "host" {
		t.Errorf("Name = %q, want default %q", m.Name, "host")
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := loadWithOptions(ctx, LoadOptions{ConfigDirPath: t.TempDir()})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should wrap context.Canceled, got: %v", err)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	manifest := `
name: "shop"
share_scope: "ui"

shares: {
	react: {
		required_version: "^18.0.0"
		singleton:        true
	}
}

remotes: {
	checkout: "https://cdn.example.com/checkout/remote-entry.json"
}

ui: {
	color_scheme: "dark"
	verbose:      true
}
`
	writeManifest(t, dir, manifest)

	m, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() returned error: %v", err)
	}
	if path != filepath.Join(dir, "federation.cue") {
		t.Errorf("resolved path = %q", path)
	}

	if m.Name != "shop" {
		t.Errorf("Name = %q, want %q", m.Name, "shop")
	}
	if m.ShareScope != "ui" {
		t.Errorf("ShareScope = %q, want %q", m.ShareScope, "ui")
	}

	react, ok := m.Shares["react"]
	if !ok {
		t.Fatal("shares should contain react")
	}
	if react.RequiredVersion != "^18.0.0" {
		t.Errorf("react.RequiredVersion = %q, want %q", react.RequiredVersion, "^18.0.0")
	}
	if !react.Singleton {
		t.Error("react.Singleton should be true")
	}

	if got := m.Remotes["checkout"]; got != "https://cdn.example.com/checkout/remote-entry.json" {
		t.Errorf("checkout entry = %q", got)
	}

	if m.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("UI.ColorScheme = %q, want dark", m.UI.ColorScheme)
	}
	if !m.UI.Verbose {
		t.Error("UI.Verbose should be true")
	}
}

func TestLoad_CustomPath_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "my-federation.cue")
	content := `
name: "host"
remotes: app1: "./fixtures/app1/remote-entry.json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	m, resolved, err := loadWithOptions(context.Background(), LoadOptions{ManifestFilePath: path})
	if err != nil {
		t.Fatalf("loadWithOptions() returned error: %v", err)
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if len(m.Remotes) != 1 {
		t.Errorf("expected 1 remote, got %d", len(m.Remotes))
	}
}

func TestLoad_CustomPath_NotFound_ReturnsError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist.cue")

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ManifestFilePath: missing})
	if err == nil {
		t.Fatal("expected error for missing manifest")
	}

	var actionable *issue.ActionableError
	if !errors.As(err, &actionable) {
		t.Fatalf("error should be *issue.ActionableError, got %T", err)
	}
	if !actionable.HasSuggestions() {
		t.Error("actionable error should carry suggestions")
	}
	if !strings.Contains(err.Error(), "manifest not found") {
		t.Errorf("error message should mention the missing manifest, got: %v", err)
	}
}

func TestLoad_CustomPath_InvalidCUE_ReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "federation.cue")
	if err := os.WriteFile(path, []byte(`name: "unclosed`), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ManifestFilePath: path})
	if err == nil {
		t.Fatal("expected error for invalid CUE")
	}

	var actionable *issue.ActionableError
	if !errors.As(err, &actionable) {
		t.Fatalf("error should be *issue.ActionableError, got %T", err)
	}
}

func TestLoad_SchemaRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
name: "host"
bogus_field: 42
`)

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoad_InvalidRange_ReturnsManifestError(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
shares: react: required_version: "not-a-range"
`)

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err == nil {
		t.Fatal("expected error for invalid range")
	}
	if !errors.Is(err, ErrInvalidManifest) {
		t.Errorf("error should wrap ErrInvalidManifest, got: %v", err)
	}
}

func TestLoad_InvalidRemoteName_ReturnsManifestError(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
remotes: "app/one": "https://example.com/entry.json"
`)

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err == nil {
		t.Fatal("expected error for invalid remote name")
	}
	if !errors.Is(err, ErrInvalidManifest) {
		t.Errorf("error should wrap ErrInvalidManifest, got: %v", err)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	t.Cleanup(Reset)

	dir := t.TempDir()
	SetConfigDirOverride(dir)

	m := DefaultManifest()
	m.Name = "shop"
	m.Shares["react"] = ShareDecl{
		RequiredVersion: "^18.0.0",
		Singleton:       true,
	}
	m.Remotes["checkout"] = "https://cdn.example.com/checkout/remote-entry.json"

	if err := Save(m); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	loaded, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() returned error: %v", err)
	}

	if loaded.Name != "shop" {
		t.Errorf("Name = %q, want %q", loaded.Name, "shop")
	}
	react := loaded.Shares["react"]
	if react.RequiredVersion != "^18.0.0" || !react.Singleton {
		t.Errorf("react round-trip mismatch: %+v", react)
	}
	if loaded.Remotes["checkout"] != "https://cdn.example.com/checkout/remote-entry.json" {
		t.Errorf("checkout round-trip mismatch: %q", loaded.Remotes["checkout"])
	}
}

func TestSave_RejectsSchemaInvalidManifest(t *testing.T) {
	t.Cleanup(Reset)

	dir := t.TempDir()
	SetConfigDirOverride(dir)

	m := DefaultManifest()
	m.UI.ColorScheme = "sepia"

	err := Save(m)
	if err == nil {
		t.Fatal("Save() accepted a manifest the schema rejects")
	}
	if !strings.Contains(err.Error(), "schema validation") {
		t.Errorf("unexpected error: %v", err)
	}

	// Nothing was written.
	if fileExists(filepath.Join(dir, ManifestFileName+"."+ManifestFileExt)) {
		t.Error("Save() wrote a manifest file despite failing validation")
	}
}

func TestCreateDefaultManifest(t *testing.T) {
	t.Cleanup(Reset)

	dir := t.TempDir()
	SetConfigDirOverride(dir)

	if err := CreateDefaultManifest(); err != nil {
		t.Fatalf("CreateDefaultManifest() returned error: %v", err)
	}

	path := filepath.Join(dir, "federation.cue")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("manifest was not created: %v", err)
	}

	// Second call is a no-op and must not fail
	if err := CreateDefaultManifest(); err != nil {
		t.Fatalf("second CreateDefaultManifest() returned error: %v", err)
	}
}

func TestGenerateCUE(t *testing.T) {
	m := DefaultManifest()
	m.Shares["react"] = ShareDecl{RequiredVersion: "^18.0.0", Singleton: true}
	m.Remotes["app1"] = "./fixtures/app1/remote-entry.json"

	content := GenerateCUE(m)

	for _, want := range []string{
		`name: "host"`,
		`share_scope: "default"`,
		`required_version: "^18.0.0"`,
		`singleton: true`,
		`"app1": "./fixtures/app1/remote-entry.json"`,
		`color_scheme: "auto"`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("generated CUE missing %q:\n%s", want, content)
		}
	}
}

func TestConstants(t *testing.T) {
	if AppName != "universe" {
		t.Errorf("AppName = %q, want %q", AppName, "universe")
	}
	if ManifestFileName != "federation" {
		t.Errorf("ManifestFileName = %q, want %q", ManifestFileName, "federation")
	}
	if ManifestFileExt != "cue" {
		t.Errorf("ManifestFileExt = %q, want %q", ManifestFileExt, "cue")
	}
}

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()

	path := filepath.Join(dir, ManifestFileName+"."+ManifestFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
}
