package answer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sells-group/answer-engine/internal/model"
)

var questionPrefixes = []string{
	"how to", "how do i", "how does", "what is", "what are", "why does",
	"why is", "who is", "where is", "when did", "can i", "should i",
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"in": {}, "on": {}, "of": {}, "for": {}, "to": {}, "and": {}, "or": {},
	"my": {}, "your": {}, "with": {}, "about": {}, "best": {}, "do": {}, "does": {},
}

var followUpTemplates = map[model.Intent][]string{
	model.IntentTechnical: {
		"What are common pitfalls when working with %s?",
		"How do I debug issues related to %s?",
		"What are best practices for %s?",
	},
	model.IntentShopping: {
		"What are the top alternatives to %s?",
		"Is %s worth the price?",
		"What should I look for when buying %s?",
	},
	model.IntentNews: {
		"What led up to %s?",
		"What are experts saying about %s?",
		"How might %s develop from here?",
	},
	model.IntentResearch: {
		"What is the history of %s?",
		"What are the main open questions about %s?",
		"How does %s compare to related concepts?",
	},
	model.IntentGeneral: {
		"Can you tell me more about %s?",
		"What are the key facts about %s?",
		"Why is %s important?",
	},
}

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// domainCategories maps known domains to a category used for
// domain-specific follow-ups.
var domainCategories = map[string]string{
	"github.com":        "code",
	"gitlab.com":        "code",
	"stackoverflow.com": "qa",
	"superuser.com":     "qa",
	"quora.com":         "qa",
	"wikipedia.org":     "encyclopedia",
	"britannica.com":    "encyclopedia",
}

// FollowUps derives exactly three related questions from the query's
// intent and the merged results' metadata.
func FollowUps(query string, queryIntent model.Intent, results []model.SearchResult) []string {
	topic := KeyTopic(query)

	var candidates []string

	// Context-sensitive questions from result titles.
	for _, r := range results {
		title := strings.ToLower(r.Title)
		if yearRe.MatchString(r.Title) {
			candidates = append(candidates, fmt.Sprintf("How has %s changed over recent years?", topic))
		}
		if strings.Contains(title, " vs ") || strings.Contains(title, "versus") || strings.Contains(title, "compared") {
			candidates = append(candidates, fmt.Sprintf("How do the main alternatives for %s compare?", topic))
		}
		if strings.Contains(title, "how to") || strings.Contains(title, "guide") || strings.Contains(title, "using") {
			candidates = append(candidates, fmt.Sprintf("What is the best way to get started with %s?", topic))
		}
	}

	// Domain-specific questions.
	seenCategory := map[string]bool{}
	for _, r := range results {
		category, ok := domainCategories[r.Domain]
		if !ok || seenCategory[category] {
			continue
		}
		seenCategory[category] = true
		switch category {
		case "code":
			candidates = append(candidates, fmt.Sprintf("Are there open-source projects related to %s?", topic))
		case "qa":
			candidates = append(candidates, fmt.Sprintf("What problems do people commonly run into with %s?", topic))
		case "encyclopedia":
			candidates = append(candidates, fmt.Sprintf("What is the background history of %s?", topic))
		}
	}

	// Intent templates fill the remainder.
	templates, ok := followUpTemplates[queryIntent]
	if !ok {
		templates = followUpTemplates[model.IntentGeneral]
	}
	for _, tmpl := range templates {
		candidates = append(candidates, fmt.Sprintf(tmpl, topic))
	}

	// Dedupe preserving order, then trim to exactly three.
	seen := map[string]bool{}
	out := make([]string, 0, 3)
	for _, q := range candidates {
		if seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
		if len(out) == 3 {
			break
		}
	}
	return out
}

// KeyTopic extracts the query's subject by stripping question prefixes
// and stop words.
func KeyTopic(query string) string {
	topic := strings.ToLower(strings.TrimSpace(query))
	topic = strings.TrimRight(topic, "?!.")

	for _, prefix := range questionPrefixes {
		if strings.HasPrefix(topic, prefix+" ") {
			topic = strings.TrimPrefix(topic, prefix+" ")
			break
		}
	}

	words := strings.Fields(topic)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := stopWords[w]; stop {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return "this topic"
	}
	return strings.Join(kept, " ")
}
