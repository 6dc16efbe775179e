package fuse

import (
	"os"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/answer-engine/internal/model"
)

// Weights are the composite scoring coefficients. They are hand-tuned
// starting points, exposed through configuration rather than baked in.
type Weights struct {
	Relevance float64 `yaml:"relevance" mapstructure:"relevance"`
	Authority float64 `yaml:"authority" mapstructure:"authority"`
	Freshness float64 `yaml:"freshness" mapstructure:"freshness"`
	Trust     float64 `yaml:"trust" mapstructure:"trust"`
}

// DefaultWeights returns the standard composite weighting.
func DefaultWeights() Weights {
	return Weights{Relevance: 0.4, Authority: 0.3, Freshness: 0.2, Trust: 0.1}
}

const (
	defaultAuthority = 50
	defaultTrust     = 50
	unknownFreshness = 50
)

// defaultAuthorityTable covers well-known domains; everything else
// falls back to defaultAuthority.
var defaultAuthorityTable = map[string]float64{
	"wikipedia.org":         95,
	"github.com":            90,
	"stackoverflow.com":     90,
	"arxiv.org":             88,
	"nature.com":            88,
	"reuters.com":           85,
	"bbc.com":               85,
	"nytimes.com":           82,
	"docs.python.org":       90,
	"developer.mozilla.org": 92,
	"medium.com":            55,
	"reddit.com":            60,
	"quora.com":             50,
}

// Scorer computes composite relevance scores and trims to the top N.
type Scorer struct {
	weights   Weights
	authority map[string]float64
	trust     map[string]float64
	topN      int
	now       func() time.Time
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithWeights overrides the default composite weights.
func WithWeights(w Weights) ScorerOption {
	return func(s *Scorer) { s.weights = w }
}

// WithAuthorityTable replaces the built-in domain authority table.
func WithAuthorityTable(t map[string]float64) ScorerOption {
	return func(s *Scorer) {
		if len(t) > 0 {
			s.authority = t
		}
	}
}

// WithProviderTrust sets per-provider trust weights.
func WithProviderTrust(t map[string]float64) ScorerOption {
	return func(s *Scorer) {
		if len(t) > 0 {
			s.trust = t
		}
	}
}

// WithTopN overrides how many results survive the trim.
func WithTopN(n int) ScorerOption {
	return func(s *Scorer) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithNow fixes the freshness reference time for testing.
func WithNow(now func() time.Time) ScorerOption {
	return func(s *Scorer) { s.now = now }
}

// NewScorer creates a Scorer with default tables and top-N of 15.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		weights:   DefaultWeights(),
		authority: defaultAuthorityTable,
		trust:     map[string]float64{},
		topN:      15,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Score computes the composite score for each result, sorts descending
// (stable, so equal scores keep insertion order), and truncates to the
// top N. The input slice is not modified.
func (s *Scorer) Score(results []model.SearchResult) []model.SearchResult {
	scored := make([]model.SearchResult, len(results))
	copy(scored, results)

	for i := range scored {
		scored[i].Relevance = model.ClampScore(s.composite(scored[i]))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Relevance > scored[j].Relevance
	})

	if len(scored) > s.topN {
		scored = scored[:s.topN]
	}
	return scored
}

func (s *Scorer) composite(r model.SearchResult) float64 {
	return s.weights.Relevance*r.Relevance +
		s.weights.Authority*s.domainAuthority(r.Domain) +
		s.weights.Freshness*s.freshness(r.PublishedAt) +
		s.weights.Trust*s.providerTrust(r.Provider)
}

func (s *Scorer) domainAuthority(domain string) float64 {
	if a, ok := s.authority[domain]; ok {
		return a
	}
	return defaultAuthority
}

func (s *Scorer) providerTrust(provider string) float64 {
	if t, ok := s.trust[provider]; ok {
		return t
	}
	return defaultTrust
}

// freshness buckets results by age in days.
func (s *Scorer) freshness(published *time.Time) float64 {
	if published == nil {
		return unknownFreshness
	}
	age := s.now().Sub(*published)
	days := age.Hours() / 24

	switch {
	case days <= 1:
		return 100
	case days <= 7:
		return 90
	case days <= 30:
		return 80
	case days <= 90:
		return 70
	case days <= 365:
		return 60
	default:
		return 40
	}
}

// LoadAuthorityTable reads a YAML file mapping domain to authority
// score, for deployments that maintain their own table.
func LoadAuthorityTable(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "fuse: read authority table")
	}
	table := make(map[string]float64)
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, eris.Wrap(err, "fuse: parse authority table")
	}
	return table, nil
}
