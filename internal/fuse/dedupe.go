package fuse

import (
	"net/url"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/sells-group/answer-engine/internal/model"
)

const (
	urlSimilarityThreshold   = 0.8
	titleSimilarityThreshold = 0.9
)

// Dedupe removes near-duplicate results across providers. Each incoming
// result is compared against the already-accepted set; on a duplicate
// the result with the higher relevance survives, and first-seen wins
// when relevance is equal. Quadratic over the candidate set, which is
// fine at the tens-of-results scale the orchestrator produces.
func Dedupe(results []model.SearchResult) []model.SearchResult {
	unique := make([]model.SearchResult, 0, len(results))

	for _, candidate := range results {
		dupIdx := -1
		for i, kept := range unique {
			if isDuplicate(candidate, kept) {
				dupIdx = i
				break
			}
		}

		if dupIdx == -1 {
			unique = append(unique, candidate)
			continue
		}
		if candidate.Relevance > unique[dupIdx].Relevance {
			unique[dupIdx] = candidate
		}
	}

	return unique
}

func isDuplicate(a, b model.SearchResult) bool {
	if urlSimilarity(a.URL, b.URL) > urlSimilarityThreshold {
		return true
	}
	return titleSimilarity(a.Title, b.Title) > titleSimilarityThreshold
}

// urlSimilarity returns 0 unless both URLs share a hostname, in which
// case it returns the edit-distance ratio of their paths.
func urlSimilarity(rawA, rawB string) float64 {
	ua, errA := url.Parse(rawA)
	ub, errB := url.Parse(rawB)
	if errA != nil || errB != nil {
		return 0
	}

	hostA := strings.TrimPrefix(strings.ToLower(ua.Hostname()), "www.")
	hostB := strings.TrimPrefix(strings.ToLower(ub.Hostname()), "www.")
	if hostA == "" || hostA != hostB {
		return 0
	}

	pathA := strings.TrimSuffix(ua.Path, "/")
	pathB := strings.TrimSuffix(ub.Path, "/")
	if pathA == "" && pathB == "" {
		return 1
	}
	return levenshtein.Similarity(pathA, pathB, nil)
}

func titleSimilarity(a, b string) float64 {
	return levenshtein.Similarity(strings.ToLower(a), strings.ToLower(b), nil)
}
