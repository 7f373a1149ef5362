package analysis

import (
	"fmt"
	"strings"

	"github.com/JakeFAU/site-swot/internal/document"
)

var (
	selMetaDescription = document.Tag("meta").Equals("name", "description")
	selMetaViewport    = document.Tag("meta").Equals("name", "viewport")
	selMetaRobots      = document.Tag("meta").Equals("name", "robots")
	selMetaCSRF        = document.Tag("meta").Equals("name", "csrf-token")
	selMetaReferrer    = document.Tag("meta").Equals("name", "referrer")
	selOpenGraph       = document.Tag("meta").HasPrefix("property", "og:")
	selCanonical       = document.Tag("link").Equals("rel", "canonical")
	selH1              = document.Tag("h1")
	selImg             = document.Tag("img")
	selImgWithAlt      = document.Tag("img").With("alt")
	selImgMissingAlt   = document.Tag("img").Without("alt")
	selScript          = document.Tag("script")
	selExternalLink    = document.Tag("a").HasPrefix("href", "http")
	selForm            = document.Tag("form")
	selLabel           = document.Tag("label")
	selInput           = document.Tag("input")
	selPassword        = document.Tag("input").Equals("type", "password")
	selTitle           = document.Tag("title")
)

const (
	textMetaDescriptionRich   = "Comprehensive meta description gives search engines a clear summary of the page"
	textMetaDescriptionShort  = "Has a meta description, but it could be expanded to better describe the page"
	textSingleH1              = "Proper heading hierarchy with a single H1 tag"
	textMultipleH1            = "Multiple H1 tags provide rich content sectioning"
	textAllImagesAlt          = "All images have alt text, improving accessibility"
	textViewport              = "Mobile responsiveness is configured with a viewport meta tag"
	textOpenGraph             = "Optimized for social media sharing with Open Graph tags"
	textMissingH1             = "Missing main heading (H1 tag)"
	textFormLabels            = "Form fields lack proper label associations, reducing accessibility"
	textCanonical             = "Implement canonical URLs to avoid duplicate content issues"
	textRobotsMeta            = "Add a robots meta tag to control how search engines crawl and index the page"
	textStructuredData        = "Implement structured data (Schema.org) to qualify for rich search results"
	textCompression           = "Enable compression and browser caching to improve load performance"
	textAMP                   = "Consider Accelerated Mobile Pages (AMP) for faster mobile loading"
	textSecurityHeaders       = "Add security headers such as Content-Security-Policy and Strict-Transport-Security"
	textThreatCompetition     = "Increasing competition for search engine rankings"
	textThreatAlgorithms      = "Frequent search engine algorithm changes can shift visibility"
	textThreatSecurity        = "Rising user expectations around security and privacy"
	textThreatDevices         = "Growing diversity of browsers and devices to support"
	textThreatMobileFirst     = "Mobile-first indexing penalizes pages that are not mobile friendly"
	textThreatCSRF            = "Forms without a CSRF token may be exposed to cross-site request forgery"
	textThreatReferrerPolicy  = "Password fields without a referrer policy may leak sensitive URLs to third parties"
	formatScriptCount         = "High number of scripts (%d) may slow down page load times"
	formatExternalLinkCount   = "Large number of external links (%d) may dilute link equity"
	formatImagesMissingAltCnt = "%d images are missing alt text"
)

// Standard returns the full rule catalog.
func Standard() Catalog {
	return Catalog{
		Name:       CatalogStandard,
		Thresholds: DefaultThresholds(),
		Strengths: []Rule{
			{Name: "meta-description", Eval: metaDescriptionStrength},
			{Name: "heading-hierarchy", Eval: headingStrength},
			{Name: "image-alt-coverage", Eval: func(doc document.Tree, _ Thresholds) []string {
				images := doc.Count(selImg)
				return when(images > 0 && doc.Count(selImgMissingAlt) == 0, textAllImagesAlt)
			}},
			{Name: "viewport", Eval: func(doc document.Tree, _ Thresholds) []string {
				return when(doc.Count(selMetaViewport) > 0, textViewport)
			}},
			{Name: "open-graph", Eval: func(doc document.Tree, _ Thresholds) []string {
				return when(doc.Count(selOpenGraph) > 0, textOpenGraph)
			}},
		},
		Weaknesses: []Rule{
			{Name: "script-count", Eval: func(doc document.Tree, th Thresholds) []string {
				n := doc.Count(selScript)
				return when(n > th.ScriptMax, fmt.Sprintf(formatScriptCount, n))
			}},
			{Name: "external-link-count", Eval: func(doc document.Tree, th Thresholds) []string {
				n := doc.Count(selExternalLink)
				return when(n > th.ExternalLinkMax, fmt.Sprintf(formatExternalLinkCount, n))
			}},
			{Name: "missing-h1", Eval: func(doc document.Tree, _ Thresholds) []string {
				return when(doc.Count(selH1) == 0, textMissingH1)
			}},
			{Name: "images-missing-alt", Eval: func(doc document.Tree, _ Thresholds) []string {
				n := doc.Count(selImgMissingAlt)
				return when(n > 0, fmt.Sprintf(formatImagesMissingAltCnt, n))
			}},
			{Name: "form-labels", Eval: formLabelWeaknesses},
		},
		Opportunities: []Rule{
			{Name: "canonical", Eval: func(doc document.Tree, _ Thresholds) []string {
				return when(doc.Count(selCanonical) == 0, textCanonical)
			}},
			{Name: "robots-meta", Eval: func(doc document.Tree, _ Thresholds) []string {
				return when(doc.Count(selMetaRobots) == 0, textRobotsMeta)
			}},
			fixed("structured-data", textStructuredData),
			fixed("compression-caching", textCompression),
			fixed("amp", textAMP),
			fixed("security-headers", textSecurityHeaders),
		},
		Threats: []Rule{
			fixed("competition", textThreatCompetition),
			fixed("algorithm-changes", textThreatAlgorithms),
			fixed("security-expectations", textThreatSecurity),
			fixed("device-diversity", textThreatDevices),
			fixed("mobile-first", textThreatMobileFirst),
			{Name: "csrf-token", Eval: func(doc document.Tree, _ Thresholds) []string {
				return when(doc.Count(selForm) > 0 && doc.Count(selMetaCSRF) == 0, textThreatCSRF)
			}},
			{Name: "referrer-policy", Eval: func(doc document.Tree, _ Thresholds) []string {
				return when(doc.Count(selPassword) > 0 && doc.Count(selMetaReferrer) == 0, textThreatReferrerPolicy)
			}},
		},
	}
}

// metaDescriptionStrength trims surrounding whitespace before judging the
// description; whitespace-only content counts as absent.
func metaDescriptionStrength(doc document.Tree, th Thresholds) []string {
	content, ok := doc.Attr(selMetaDescription, "content")
	content = strings.TrimSpace(content)
	if !ok || content == "" {
		return nil
	}
	return either(textLength(content) > th.MetaDescriptionMin, textMetaDescriptionRich, textMetaDescriptionShort)
}

func headingStrength(doc document.Tree, _ Thresholds) []string {
	switch n := doc.Count(selH1); {
	case n == 1:
		return []string{textSingleH1}
	case n > 1:
		return []string{textMultipleH1}
	default:
		return nil
	}
}

// formLabelWeaknesses emits one finding per form with fewer labels than inputs.
func formLabelWeaknesses(doc document.Tree, _ Thresholds) []string {
	var out []string
	for _, form := range doc.Each(selForm) {
		if form.Count(selLabel) < form.Count(selInput) {
			out = append(out, textFormLabels)
		}
	}
	return out
}
