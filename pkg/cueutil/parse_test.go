// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

// Simple test schema for parsing tests
const testSchema = `
#TestEntry: {
	name:     string
	port:     int
	secure:   bool
	comment?: string
}
`

// TestEntry is a simple struct for testing generic parsing
type TestEntry struct {
	Name    string `json:"name"`
	Port    int    `json:"port"`
	Secure  bool   `json:"secure"`
	Comment string `json:"comment,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Run("valid data parses successfully", func(t *testing.T) {
		data := []byte(`
name: "cdn"
port: 443
secure: true
comment: "edge entry"
`)
		result, err := ParseAndDecode[TestEntry]([]byte(testSchema), data, "#TestEntry")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}

		if result.Value.Name != "cdn" {
			t.Errorf("expected name='cdn', got %q", result.Value.Name)
		}
		if result.Value.Port != 443 {
			t.Errorf("expected port=443, got %d", result.Value.Port)
		}
		if !result.Value.Secure {
			t.Error("expected secure=true")
		}
		if result.Value.Comment != "edge entry" {
			t.Errorf("expected comment='edge entry', got %q", result.Value.Comment)
		}
	})

	t.Run("optional field can be omitted", func(t *testing.T) {
		data := []byte(`
name: "minimal"
port: 80
secure: false
`)
		result, err := ParseAndDecode[TestEntry]([]byte(testSchema), data, "#TestEntry")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}

		if result.Value.Name != "minimal" {
			t.Errorf("expected name='minimal', got %q", result.Value.Name)
		}
		if result.Value.Comment != "" {
			t.Errorf("expected empty comment, got %q", result.Value.Comment)
		}
	})

	t.Run("invalid type returns error", func(t *testing.T) {
		data := []byte(`
name: "cdn"
port: "not a number"  // Should be int
secure: true
`)
		_, err := ParseAndDecode[TestEntry]([]byte(testSchema), data, "#TestEntry")
		if err == nil {
			t.Error("expected error for invalid type")
		}
	})

	t.Run("missing required field returns error", func(t *testing.T) {
		data := []byte(`
name: "cdn"
// port is missing
secure: true
`)
		_, err := ParseAndDecode[TestEntry]([]byte(testSchema), data, "#TestEntry")
		if err == nil {
			t.Error("expected error for missing required field")
		}
	})

	t.Run("WithFilename sets filename in errors", func(t *testing.T) {
		data := []byte(`
name: "cdn"
port: "invalid"
secure: true
`)
		_, err := ParseAndDecode[TestEntry](
			[]byte(testSchema),
			data,
			"#TestEntry",
			WithFilename("my-manifest.cue"),
		)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "my-manifest.cue") {
			t.Errorf("error should contain filename, got: %v", err)
		}
	})
}

// Tests parsing a share-declaration shaped schema with optional fields and
// enum constraints.
func TestParseShareDeclShape(t *testing.T) {
	declSchema := `
#Decl: {
	import?:           string
	required_version?: string
	share_scope?:      string & !=""
	singleton?:        bool
	strategy?:         "version-first" | "loaded-first"
}
`

	type Decl struct {
		Import          string `json:"import,omitempty"`
		RequiredVersion string `json:"required_version,omitempty"`
		ShareScope      string `json:"share_scope,omitempty"`
		Singleton       bool   `json:"singleton,omitempty"`
		Strategy        string `json:"strategy,omitempty"`
	}

	t.Run("full declaration parses successfully", func(t *testing.T) {
		data := []byte(`
import: "react"
required_version: "^18.0.0"
share_scope: "default"
singleton: true
strategy: "version-first"
`)
		result, err := ParseAndDecode[Decl]([]byte(declSchema), data, "#Decl")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}

		if result.Value.RequiredVersion != "^18.0.0" {
			t.Errorf("expected required_version='^18.0.0', got %q", result.Value.RequiredVersion)
		}
		if !result.Value.Singleton {
			t.Error("expected singleton=true")
		}
	})

	t.Run("empty declaration parses with WithConcrete(false)", func(t *testing.T) {
		data := []byte(`{}`)
		result, err := ParseAndDecode[Decl](
			[]byte(declSchema),
			data,
			"#Decl",
			WithConcrete(false),
		)
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}

		if result.Value.Import != "" {
			t.Errorf("expected empty import, got %q", result.Value.Import)
		}
	})

	t.Run("invalid enum value returns error", func(t *testing.T) {
		data := []byte(`
strategy: "newest"  // Invalid: not a known strategy
`)
		_, err := ParseAndDecode[Decl]([]byte(declSchema), data, "#Decl")
		if err == nil {
			t.Error("expected error for invalid enum value")
		}
	})
}

func TestFileSizeLimit(t *testing.T) {
	t.Run("file within limit parses successfully", func(t *testing.T) {
		data := []byte(`
name: "cdn"
port: 1
secure: true
`)
		_, err := ParseAndDecode[TestEntry](
			[]byte(testSchema),
			data,
			"#TestEntry",
			WithMaxFileSize(1024), // 1KB limit
		)
		if err != nil {
			t.Errorf("expected success, got error: %v", err)
		}
	})

	t.Run("file exceeding limit returns error", func(t *testing.T) {
		data := make([]byte, 200)
		for i := range data {
			data[i] = 'a'
		}

		_, err := ParseAndDecode[TestEntry](
			[]byte(testSchema),
			data,
			"#TestEntry",
			WithMaxFileSize(100), // 100 byte limit
		)
		if err == nil {
			t.Error("expected error for oversized file")
		}
		if !strings.Contains(err.Error(), "exceeds maximum") {
			t.Errorf("error should mention size limit, got: %v", err)
		}
	})

	t.Run("default limit is applied", func(t *testing.T) {
		data := []byte(`name: "cdn"
port: 1
secure: true
`)
		_, err := ParseAndDecode[TestEntry]([]byte(testSchema), data, "#TestEntry")
		if err != nil {
			t.Errorf("expected success with default limit, got error: %v", err)
		}
	})
}

// Test ParseAndDecodeString convenience function
func TestParseAndDecodeString(t *testing.T) {
	data := []byte(`
name: "cdn"
port: 443
secure: true
`)
	result, err := ParseAndDecodeString[TestEntry](testSchema, data, "#TestEntry")
	if err != nil {
		t.Fatalf("ParseAndDecodeString failed: %v", err)
	}

	if result.Value.Name != "cdn" {
		t.Errorf("expected name='cdn', got %q", result.Value.Name)
	}
}

// Test that Unified value is accessible
func TestUnifiedValueAccess(t *testing.T) {
	data := []byte(`
name: "cdn"
port: 443
secure: true
`)
	result, err := ParseAndDecode[TestEntry]([]byte(testSchema), data, "#TestEntry")
	if err != nil {
		t.Fatalf("ParseAndDecode failed: %v", err)
	}

	if result.Unified.Err() != nil {
		t.Errorf("unified value has error: %v", result.Unified.Err())
	}
}
