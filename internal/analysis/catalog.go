package analysis

import (
	"errors"
	"fmt"
	"sort"

	"github.com/JakeFAU/site-swot/internal/document"
)

// ErrUnknownCatalog is returned when a catalog name is not registered.
var ErrUnknownCatalog = errors.New("unknown rule catalog")

// Catalog names accepted by Lookup.
const (
	CatalogStandard = "standard"
	CatalogLegacy   = "legacy"
)

// Rule emits zero or more findings for a document. Rules only read the tree.
type Rule struct {
	Name string
	Eval func(doc document.Tree, th Thresholds) []string
}

// Catalog is an ordered rule list per category plus the limits it was tuned for.
type Catalog struct {
	Name          string
	Thresholds    Thresholds
	Strengths     []Rule
	Weaknesses    []Rule
	Opportunities []Rule
	Threats       []Rule
}

// Rules returns the rules registered for c.
func (c Catalog) Rules(cat Category) []Rule {
	switch cat {
	case CategoryStrengths:
		return c.Strengths
	case CategoryWeaknesses:
		return c.Weaknesses
	case CategoryOpportunities:
		return c.Opportunities
	case CategoryThreats:
		return c.Threats
	default:
		return nil
	}
}

var catalogs = map[string]func() Catalog{
	CatalogStandard: Standard,
	CatalogLegacy:   Legacy,
}

// Lookup returns the catalog registered under name.
func Lookup(name string) (Catalog, error) {
	build, ok := catalogs[name]
	if !ok {
		return Catalog{}, fmt.Errorf("%w: %q", ErrUnknownCatalog, name)
	}
	return build(), nil
}

// CatalogNames lists registered catalogs in sorted order.
func CatalogNames() []string {
	names := make([]string, 0, len(catalogs))
	for name := range catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func fixed(name, text string) Rule {
	return Rule{
		Name: name,
		Eval: func(document.Tree, Thresholds) []string {
			return []string{text}
		},
	}
}

func when(cond bool, text string) []string {
	if !cond {
		return nil
	}
	return []string{text}
}

func either(cond bool, yes, no string) []string {
	if cond {
		return []string{yes}
	}
	return []string{no}
}
