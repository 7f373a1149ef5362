package analysis

import (
	"fmt"
	"unicode/utf16"
)

// Heuristic limits used by the catalogs. Counts must exceed the limit to fire.
const (
	DefaultMetaDescriptionMin = 120
	DefaultScriptMax          = 15
	DefaultExternalLinkMax    = 20
	DefaultTitleMax           = 60

	LegacyScriptMax       = 10
	LegacyExternalLinkMax = 10
)

// Thresholds carries the numeric limits a catalog compares against.
// A zero field means "use the catalog default".
type Thresholds struct {
	MetaDescriptionMin int `mapstructure:"meta_description_min"`
	ScriptMax          int `mapstructure:"script_max"`
	ExternalLinkMax    int `mapstructure:"external_link_max"`
	TitleMax           int `mapstructure:"title_max"`
}

// DefaultThresholds returns the limits used by the standard catalog.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MetaDescriptionMin: DefaultMetaDescriptionMin,
		ScriptMax:          DefaultScriptMax,
		ExternalLinkMax:    DefaultExternalLinkMax,
		TitleMax:           DefaultTitleMax,
	}
}

// LegacyThresholds returns the limits used by the legacy catalog.
func LegacyThresholds() Thresholds {
	return Thresholds{
		MetaDescriptionMin: DefaultMetaDescriptionMin,
		ScriptMax:          LegacyScriptMax,
		ExternalLinkMax:    LegacyExternalLinkMax,
		TitleMax:           DefaultTitleMax,
	}
}

// Merge fills zero fields of t from def.
func (t Thresholds) Merge(def Thresholds) Thresholds {
	if t.MetaDescriptionMin == 0 {
		t.MetaDescriptionMin = def.MetaDescriptionMin
	}
	if t.ScriptMax == 0 {
		t.ScriptMax = def.ScriptMax
	}
	if t.ExternalLinkMax == 0 {
		t.ExternalLinkMax = def.ExternalLinkMax
	}
	if t.TitleMax == 0 {
		t.TitleMax = def.TitleMax
	}
	return t
}

// Validate rejects negative limits.
func (t Thresholds) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"meta_description_min", t.MetaDescriptionMin},
		{"script_max", t.ScriptMax},
		{"external_link_max", t.ExternalLinkMax},
		{"title_max", t.TitleMax},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("threshold %s must be >= 0", f.name)
		}
	}
	return nil
}

// textLength counts UTF-16 code units, the unit browsers report for string length.
func textLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}
