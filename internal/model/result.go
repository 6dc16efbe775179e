// Package model holds the canonical data types shared across the
// search-fusion pipeline.
package model

import (
	"time"
)

// Intent is the coarse category of a query's purpose.
type Intent string

const (
	IntentTechnical Intent = "technical"
	IntentShopping  Intent = "shopping"
	IntentNews      Intent = "news"
	IntentResearch  Intent = "research"
	IntentGeneral   Intent = "general"
)

// SearchResult is a provider result in canonical schema. URL is the
// primary identity key; Relevance is always clamped to [0,100].
type SearchResult struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Snippet     string     `json:"snippet"`
	Provider    string     `json:"provider"`
	Relevance   float64    `json:"relevance"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	Domain      string     `json:"domain"`
}

// ProviderResponse is the outcome of a single provider call. A failed
// call still produces a response with Success=false; it is consumed
// once by the merge chain and then discarded.
type ProviderResponse struct {
	Provider     string         `json:"provider"`
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
	Duration     time.Duration  `json:"duration"`
	Success      bool           `json:"success"`
	Err          string         `json:"error,omitempty"`
}

// QualityTier labels the overall trustworthiness of a merged result set.
type QualityTier string

const (
	TierHigh   QualityTier = "high"
	TierMedium QualityTier = "medium"
	TierLow    QualityTier = "low"
)

// QualityAssessment scores a merged result set. Recomputed fresh per
// request and never mutated after creation.
type QualityAssessment struct {
	Tier       QualityTier `json:"tier"`
	Confidence float64     `json:"confidence"`
	Issues     []string    `json:"issues"`
}

// AnswerRequest is the inbound contract from the request layer.
type AnswerRequest struct {
	Query   string   `json:"query"`
	Intent  Intent   `json:"intent,omitempty"`
	Context []string `json:"context,omitempty"`
}

// AnswerResponse is the outbound contract: a cited answer, its sources,
// and exactly three follow-up questions.
type AnswerResponse struct {
	Answer            string         `json:"answer"`
	Sources           []SearchResult `json:"sources"`
	FollowUpQuestions []string       `json:"follow_up_questions"`
	Confidence        float64        `json:"confidence"`
	ProcessingTimeMs  int64          `json:"processing_time_ms"`
	QueryIntent       Intent         `json:"query_intent"`
}

// ClampScore bounds a relevance or confidence score to [0,100].
func ClampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
