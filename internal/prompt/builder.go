// Package prompt assembles LLM instructions from merged search results,
// query intent, and conversation history. Building is deterministic:
// identical inputs always produce a byte-identical prompt.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/answer-engine/internal/model"
)

// Complexity selects the persona and depth of the synthesized answer.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityBalanced Complexity = "balanced"
	ComplexityDetailed Complexity = "detailed"
)

const (
	maxSources       = 6
	maxHistoryTurns  = 3
	maxSnippetLength = 400
)

// Context carries everything the builder needs. Immutable once built
// and consumed exactly once by the LLM call.
type Context struct {
	Query           string
	Results         []model.SearchResult
	Intent          model.Intent
	PreviousQueries []string
	Complexity      Complexity
}

var personas = map[Complexity]string{
	ComplexitySimple: "You are a helpful research assistant. Answer plainly " +
		"in a short paragraph a general reader can follow.",
	ComplexityBalanced: "You are a helpful research assistant. Write a clear, " +
		"well-organized answer with a brief introduction, the key facts, and " +
		"a short conclusion.",
	ComplexityDetailed: "You are an expert research analyst. Write a thorough, " +
		"structured answer with sections, covering nuances, caveats, and " +
		"competing viewpoints where the sources disagree.",
}

var intentGuidance = map[model.Intent]string{
	model.IntentTechnical: "This is a technical question. Prefer official documentation " +
		"and include concrete steps or code where the sources provide them.",
	model.IntentShopping: "This is a purchase-oriented question. Compare options " +
		"neutrally and note pricing only when a source states it.",
	model.IntentNews: "This is a current-events question. Lead with the most recent " +
		"developments and state publication dates where known.",
	model.IntentResearch: "This is a research question. Synthesize across sources, " +
		"distinguish established findings from open questions.",
	model.IntentGeneral: "Answer the question directly using the sources provided.",
}

// Build assembles the full (rich) prompt.
func Build(pc Context) string {
	var b strings.Builder

	persona, ok := personas[pc.Complexity]
	if !ok {
		persona = personas[ComplexityBalanced]
	}
	b.WriteString(persona)
	b.WriteString("\n\n")

	guidance, ok := intentGuidance[pc.Intent]
	if !ok {
		guidance = intentGuidance[model.IntentGeneral]
	}
	b.WriteString(guidance)
	b.WriteString("\n\n")

	if len(pc.PreviousQueries) > 0 {
		b.WriteString("Earlier questions in this conversation:\n")
		history := pc.PreviousQueries
		if len(history) > maxHistoryTurns {
			history = history[len(history)-maxHistoryTurns:]
		}
		for _, q := range history {
			b.WriteString("- ")
			b.WriteString(q)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	writeSources(&b, pc.Results)

	b.WriteString("Cite sources inline using bracketed numbers, e.g. [1], that ")
	b.WriteString("refer to the numbered list above. Do not invent sources.\n\n")
	b.WriteString("Question: ")
	b.WriteString(pc.Query)
	b.WriteString("\n")

	return b.String()
}

// BuildSimplified assembles the fallback prompt used after a failed
// generation: no history, fewer sources, minimal instructions.
func BuildSimplified(pc Context) string {
	var b strings.Builder

	b.WriteString("Answer the question below using only the listed sources. ")
	b.WriteString("Keep the answer short and cite sources as [1], [2], ...\n\n")

	results := pc.Results
	if len(results) > 3 {
		results = results[:3]
	}
	writeSources(&b, results)

	b.WriteString("Question: ")
	b.WriteString(pc.Query)
	b.WriteString("\n")

	return b.String()
}

func writeSources(b *strings.Builder, results []model.SearchResult) {
	if len(results) == 0 {
		b.WriteString("No sources were retrieved for this query. State clearly that ")
		b.WriteString("the answer is based on general knowledge without supporting ")
		b.WriteString("sources, and flag that confidence is lower than usual.\n\n")
		return
	}

	if len(results) > maxSources {
		results = results[:maxSources]
	}

	b.WriteString("Sources:\n")
	for i, r := range results {
		fmt.Fprintf(b, "[%d] %s\n", i+1, r.Title)
		fmt.Fprintf(b, "    URL: %s (%s)\n", r.URL, r.Domain)
		fmt.Fprintf(b, "    Relevance: %.0f/100\n", r.Relevance)
		if r.PublishedAt != nil {
			fmt.Fprintf(b, "    Published: %s\n", r.PublishedAt.Format("2006-01-02"))
		}
		fmt.Fprintf(b, "    %s\n", truncate(r.Snippet, maxSnippetLength))
	}
	b.WriteString("\n")
}

// truncate cuts s to at most max bytes without splitting a UTF-8 rune,
// marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
