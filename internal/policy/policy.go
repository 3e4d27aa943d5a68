package policy

// Policy groups every tunable threshold and the section-label vocabulary in
// one place so detection and rewriting never drift apart. Values here are
// editorial policy, not derived quantities.
type Policy struct {
	// SectionLabels are the known lead-in labels, stored without the
	// trailing colon. They drive key-term emphasis, heading promotion and
	// the targeted spacing fixes.
	SectionLabels []string

	// ListRunThreshold is the minimum number of disguised list paragraphs
	// before a run is flagged; avoids false positives on incidental dashes.
	ListRunThreshold int

	// BrUsageThreshold is the total <br> count above which content is
	// considered break-driven instead of paragraph-driven.
	BrUsageThreshold int

	// HeadingTextThreshold is the visible-text length above which content
	// with no h2-h4 is flagged as missing headings.
	HeadingTextThreshold int

	// ParagraphTextThreshold is the visible-text length above which content
	// with no <p> at all is flagged as unstructured.
	ParagraphTextThreshold int

	// EmptyParagraphThreshold is how many empty <p></p> are tolerated
	// before they are flagged.
	EmptyParagraphThreshold int

	// HeadingPromotionMaxLen bounds the bolded lead-ins promoted to <h3>;
	// anything longer is treated as an emphasized sentence, not a heading.
	HeadingPromotionMaxLen int

	// MinContentLength is the batch runner's skip threshold; shorter bodies
	// are assumed intentionally terse stubs.
	MinContentLength int

	// PreviewLength caps the fixed-content preview recorded for review.
	PreviewLength int
}

// Default returns the production vocabulary and thresholds.
func Default() Policy {
	return Policy{
		SectionLabels: []string{
			"What it is",
			"What it does",
			"Key benefits",
			"Benefits",
			"How it works",
			"Mechanism of Action",
			"Research",
			"Dosage",
			"Side Effects",
			"Storage",
			"Results",
			"Summary",
			"Warning",
			"Overview",
		},
		ListRunThreshold:        3,
		BrUsageThreshold:        10,
		HeadingTextThreshold:    500,
		ParagraphTextThreshold:  200,
		EmptyParagraphThreshold: 3,
		HeadingPromotionMaxLen:  60,
		MinContentLength:        50,
		PreviewLength:           300,
	}
}

// Merge overlays non-zero fields of override onto p and returns the result.
func Merge(p, override Policy) Policy {
	if len(override.SectionLabels) > 0 {
		p.SectionLabels = override.SectionLabels
	}
	if override.ListRunThreshold > 0 {
		p.ListRunThreshold = override.ListRunThreshold
	}
	if override.BrUsageThreshold > 0 {
		p.BrUsageThreshold = override.BrUsageThreshold
	}
	if override.HeadingTextThreshold > 0 {
		p.HeadingTextThreshold = override.HeadingTextThreshold
	}
	if override.ParagraphTextThreshold > 0 {
		p.ParagraphTextThreshold = override.ParagraphTextThreshold
	}
	if override.EmptyParagraphThreshold > 0 {
		p.EmptyParagraphThreshold = override.EmptyParagraphThreshold
	}
	if override.HeadingPromotionMaxLen > 0 {
		p.HeadingPromotionMaxLen = override.HeadingPromotionMaxLen
	}
	if override.MinContentLength > 0 {
		p.MinContentLength = override.MinContentLength
	}
	if override.PreviewLength > 0 {
		p.PreviewLength = override.PreviewLength
	}
	return p
}
