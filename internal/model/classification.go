package model

// MatchTier identifies which classifier rule produced an assignment. Tiers
// are ordered strongest first; each tier carries a fixed confidence value.
type MatchTier string

// Match tier constants.
const (
	TierExactKeyword   MatchTier = "exact_keyword"
	TierPartialKeyword MatchTier = "partial_keyword"
	TierNativeType     MatchTier = "native_type"
	TierDomainFallback MatchTier = "domain_fallback"
	TierFinalFallback  MatchTier = "final_fallback"
)

// Confidence is a closed, discrete set of values determined by the tier that
// matched, not a continuous statistical score.
const (
	ConfidenceExactKeyword   = 1.0
	ConfidencePartialKeyword = 0.9
	ConfidenceNativeType     = 0.7
	ConfidenceDomainFallback = 0.4
	ConfidenceFinalFallback  = 0.2

	// ConfidenceNeutral is reported for categories with zero mapped accounts:
	// no evidence either way rather than low confidence.
	ConfidenceNeutral = 0.5
)

// Classification is the result of mapping one account or free-text label to
// a category. It is recomputed per request and never persisted.
type Classification struct {
	CategoryKey string
	Tier        MatchTier
	Keyword     string // matched keyword, set only for the keyword tiers
	Confidence  float64
}
