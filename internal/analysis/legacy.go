package analysis

import "github.com/JakeFAU/site-swot/internal/document"

// Legacy returns the first-generation catalog. Every check reports either
// outcome, so strengths and weaknesses always hold three entries each.
func Legacy() Catalog {
	return Catalog{
		Name:       CatalogLegacy,
		Thresholds: LegacyThresholds(),
		Strengths: []Rule{
			{Name: "meta-description", Eval: func(doc document.Tree, _ Thresholds) []string {
				content, _ := doc.Attr(selMetaDescription, "content")
				return either(content != "", "Has meta description", "No meta description")
			}},
			{Name: "h1-present", Eval: func(doc document.Tree, _ Thresholds) []string {
				return either(doc.Count(selH1) > 0, "Has H1 tag", "No H1 tag")
			}},
			{Name: "image-alt-coverage", Eval: func(doc document.Tree, _ Thresholds) []string {
				return either(doc.Count(selImgWithAlt) == doc.Count(selImg),
					"All images have alt text", "Some images missing alt text")
			}},
		},
		Weaknesses: []Rule{
			{Name: "external-link-count", Eval: func(doc document.Tree, th Thresholds) []string {
				return either(doc.Count(selExternalLink) > th.ExternalLinkMax, "Many external links", "Few external links")
			}},
			{Name: "script-count", Eval: func(doc document.Tree, th Thresholds) []string {
				return either(doc.Count(selScript) > th.ScriptMax, "Many scripts", "Few scripts")
			}},
			{Name: "title-length", Eval: func(doc document.Tree, th Thresholds) []string {
				// every title counts, including inline <svg><title> elements
				return either(textLength(doc.TextAll(selTitle)) > th.TitleMax, "Title too long", "Title length okay")
			}},
		},
		Opportunities: []Rule{
			fixed("structured-data", "Implement structured data"),
			fixed("mobile", "Improve mobile responsiveness"),
			fixed("content", "Enhance content strategy"),
		},
		Threats: []Rule{
			fixed("competition", "Increasing competition in the market"),
			fixed("algorithm-changes", "Changing search engine algorithms"),
			fixed("security", "Potential security vulnerabilities"),
		},
	}
}
