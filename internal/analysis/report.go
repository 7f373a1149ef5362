// Package analysis turns a parsed document into a SWOT report by running a
// fixed catalog of independent markup checks.
package analysis

// Category identifies one of the four report sections.
type Category string

// Report sections in serialization order.
const (
	CategoryStrengths     Category = "strengths"
	CategoryWeaknesses    Category = "weaknesses"
	CategoryOpportunities Category = "opportunities"
	CategoryThreats       Category = "threats"
)

// Categories lists every Category in report order.
var Categories = []Category{
	CategoryStrengths,
	CategoryWeaknesses,
	CategoryOpportunities,
	CategoryThreats,
}

// Report holds the findings of one analysis run. Each list keeps rule order
// and may contain duplicates.
type Report struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// Findings returns the list stored under c.
func (r Report) Findings(c Category) []string {
	switch c {
	case CategoryStrengths:
		return r.Strengths
	case CategoryWeaknesses:
		return r.Weaknesses
	case CategoryOpportunities:
		return r.Opportunities
	case CategoryThreats:
		return r.Threats
	default:
		return nil
	}
}

func (r *Report) set(c Category, findings []string) {
	switch c {
	case CategoryStrengths:
		r.Strengths = findings
	case CategoryWeaknesses:
		r.Weaknesses = findings
	case CategoryOpportunities:
		r.Opportunities = findings
	case CategoryThreats:
		r.Threats = findings
	}
}
