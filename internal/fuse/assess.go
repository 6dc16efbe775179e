package fuse

import (
	"github.com/sells-group/answer-engine/internal/model"
)

// Assessment penalties. Deducted from a starting score of 100; the
// final score maps to a tier and doubles as the confidence value.
const (
	penaltyFewResults    = 20 // fewer than 5 results
	penaltyLowRelevance  = 25 // average relevance below 60
	penaltyFewDomains    = 15 // fewer than 3 unique domains
	penaltyPoorDateCover = 10 // less than half the results dated
)

// Assess scores the overall trustworthiness of a merged result set.
// Pure and idempotent: the same input always yields the same output.
func Assess(results []model.SearchResult) model.QualityAssessment {
	if len(results) == 0 {
		return model.QualityAssessment{
			Tier:       model.TierLow,
			Confidence: 0,
			Issues:     []string{"no results"},
		}
	}

	score := 100.0
	var issues []string

	if len(results) < 5 {
		score -= penaltyFewResults
		issues = append(issues, "few results")
	}

	var relevanceSum float64
	domains := make(map[string]struct{})
	dated := 0
	for _, r := range results {
		relevanceSum += r.Relevance
		if r.Domain != "" {
			domains[r.Domain] = struct{}{}
		}
		if r.PublishedAt != nil {
			dated++
		}
	}

	if relevanceSum/float64(len(results)) < 60 {
		score -= penaltyLowRelevance
		issues = append(issues, "low average relevance")
	}
	if len(domains) < 3 {
		score -= penaltyFewDomains
		issues = append(issues, "low domain diversity")
	}
	if float64(dated)/float64(len(results)) < 0.5 {
		score -= penaltyPoorDateCover
		issues = append(issues, "sparse date coverage")
	}

	return model.QualityAssessment{
		Tier:       tierFor(score),
		Confidence: model.ClampScore(score),
		Issues:     issues,
	}
}

func tierFor(score float64) model.QualityTier {
	switch {
	case score < 50:
		return model.TierLow
	case score < 75:
		return model.TierMedium
	default:
		return model.TierHigh
	}
}
