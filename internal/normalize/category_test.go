package normalize

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractTag(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"Tagged", "[TS] Soccorso", "TS"},
		{"TagOnly", "[ORDINARIO]", "ORDINARIO"},
		{"NoBrackets", "NoTagHere", ""},
		{"Empty", "", ""},
		{"FirstPairWins", "[A] then [B]", "A"},
		{"EmptyBrackets", "[] rest", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTag(tt.raw); got != tt.want {
				t.Errorf("ExtractTag(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCategoryMapResolve(t *testing.T) {
	cmap := DefaultCategoryMap()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"TaggedMapped", "[TS] Soccorso", "Soccorso ECHO"},
		{"TaggedOrdinary", "[ORDINARIO] Trasporto", "Ordinari"},
		{"FullStringMapped", "ORDINARIO", "Ordinari"},
		{"UnmappedTag", "[XYZ] Ignoto", FallbackCategory},
		{"NoTagUnmapped", "NoTagHere", FallbackCategory},
		{"Empty", "", FallbackCategory},
		{"CaseSensitive", "[ts] minuscolo", FallbackCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cmap.Resolve(tt.raw); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLoadCategoryMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.yaml")
	content := "TS: Soccorso ECHO\nNOTTE: Turno Notturno\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cmap, err := LoadCategoryMap(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cmap.Resolve("[NOTTE] 20-24"); got != "Turno Notturno" {
		t.Errorf("Resolve = %q, want %q", got, "Turno Notturno")
	}

	if _, err := LoadCategoryMap(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	emptyPath := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(emptyPath, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCategoryMap(emptyPath); err == nil {
		t.Error("expected error for empty map")
	}
}
