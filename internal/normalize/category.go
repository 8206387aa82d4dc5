package normalize

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// FallbackCategory is assigned to every raw label whose tag has no mapping.
// Unmapped records are never dropped.
const FallbackCategory = "Altro"

var tagRe = regexp.MustCompile(`\[([^\]]+)\]`)

// ExtractTag returns the substring inside the first square-bracket pair of a
// raw label, or "" when the label carries no brackets. Absence is not an
// error: the full label then acts as the lookup key.
func ExtractTag(raw string) string {
	m := tagRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return m[1]
}

// CategoryMap maps raw tags to display labels. Lookup is case-sensitive and
// exact.
type CategoryMap map[string]string

// DefaultCategoryMap covers the tags the organization's exports are known to
// use. A YAML file can replace it entirely.
func DefaultCategoryMap() CategoryMap {
	return CategoryMap{
		"ORDINARIO": "Ordinari",
		"TS":        "Soccorso ECHO",
		"TSSA":      "Soccorso Sanitario",
		"POLI":      "Poliambulatorio",
		"DIA":       "Dialisi",
		"DIM":       "Dimissioni",
		"SPORT":     "Assistenza Sportiva",
		"EVENTO":    "Eventi",
	}
}

// LoadCategoryMap reads a tag -> label mapping from a YAML file.
func LoadCategoryMap(path string) (CategoryMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category map: %w", err)
	}
	var m CategoryMap
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse category map: %w", err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("category map %q is empty", path)
	}
	return m, nil
}

// Resolve derives the display label for a raw category string: the
// bracket tag when present, otherwise the full trimmed label, looked up in
// the map, falling back to FallbackCategory. Never empty, never an error.
func (m CategoryMap) Resolve(raw string) string {
	key := ExtractTag(raw)
	if key == "" {
		key = strings.TrimSpace(raw)
	}
	if label, ok := m[key]; ok {
		return label
	}
	return FallbackCategory
}
