// Package intent categorizes queries by purpose using ordered keyword
// matching. Classification is total, deterministic, and side-effect free.
package intent

import (
	"strings"

	"github.com/sells-group/answer-engine/internal/model"
)

// keywordSets are evaluated in order; the first category with a
// matching keyword wins.
var keywordSets = []struct {
	intent   model.Intent
	keywords []string
}{
	{model.IntentTechnical, []string{
		"how to", "error", "bug", "fix", "install", "configure", "debug",
		"code", "api", "programming", "compile", "deploy", "tutorial",
		"syntax", "exception", "stack trace",
	}},
	{model.IntentShopping, []string{
		"buy", "price", "cheap", "deal", "discount", "best laptop",
		"review", "vs", "versus", "compare", "cost", "where to get",
	}},
	{model.IntentNews, []string{
		"latest", "news", "today", "breaking", "announcement", "update",
		"this week", "recent", "happened",
	}},
	{model.IntentResearch, []string{
		"research", "study", "paper", "analysis", "history of", "theory",
		"explain", "why does", "what is", "definition", "overview",
	}},
}

// Classify returns the first matching category for the query, falling
// back to general. Matching is case-insensitive substring containment.
func Classify(query string) model.Intent {
	q := strings.ToLower(query)
	for _, set := range keywordSets {
		for _, kw := range set.keywords {
			if strings.Contains(q, kw) {
				return set.intent
			}
		}
	}
	return model.IntentGeneral
}
