package analysis

import (
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/site-swot/internal/document"
)

// Evaluator runs a Catalog against documents. It holds no per-run state and
// is safe for concurrent use.
type Evaluator struct {
	catalog    Catalog
	thresholds Thresholds
	parallel   bool
}

// Option customizes an Evaluator.
type Option func(*Evaluator)

// WithThresholds overrides catalog limits; zero fields keep the catalog value.
func WithThresholds(th Thresholds) Option {
	return func(e *Evaluator) {
		e.thresholds = th.Merge(e.catalog.Thresholds)
	}
}

// WithParallel evaluates the four categories on separate goroutines.
func WithParallel(enabled bool) Option {
	return func(e *Evaluator) {
		e.parallel = enabled
	}
}

// NewEvaluator builds an Evaluator for catalog.
func NewEvaluator(catalog Catalog, opts ...Option) *Evaluator {
	e := &Evaluator{
		catalog:    catalog,
		thresholds: catalog.Thresholds,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the name of the catalog in use.
func (e *Evaluator) Catalog() string {
	return e.catalog.Name
}

// Thresholds returns the effective limits.
func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// Evaluate runs every rule against doc. It never fails: an empty tree simply
// matches nothing. Every list in the result is non-nil.
func (e *Evaluator) Evaluate(doc document.Tree) Report {
	results := make([][]string, len(Categories))
	if e.parallel {
		var g errgroup.Group
		for i, cat := range Categories {
			g.Go(func() error {
				results[i] = e.run(cat, doc)
				return nil
			})
		}
		_ = g.Wait() // category passes never return an error
	} else {
		for i, cat := range Categories {
			results[i] = e.run(cat, doc)
		}
	}

	var report Report
	for i, cat := range Categories {
		report.set(cat, results[i])
	}
	return report
}

func (e *Evaluator) run(cat Category, doc document.Tree) []string {
	findings := make([]string, 0)
	for _, rule := range e.catalog.Rules(cat) {
		findings = append(findings, rule.Eval(doc, e.thresholds)...)
	}
	return findings
}

// Evaluate runs the standard catalog with default limits.
func Evaluate(doc document.Tree) Report {
	return NewEvaluator(Standard()).Evaluate(doc)
}
