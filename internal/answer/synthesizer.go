// Package answer turns a prompt context into a validated, cited answer.
// The synthesis chain degrades from the rich prompt to a simplified
// prompt and finally to a deterministic template, so a non-empty answer
// is always produced.
package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/answer-engine/internal/prompt"
	"github.com/sells-group/answer-engine/pkg/anthropic"
)

// Tier names for the synthesis strategy that produced an answer.
const (
	TierRich       = "rich"
	TierSimplified = "simplified"
	TierTemplate   = "template"
)

// Config controls LLM generation and validation thresholds.
type Config struct {
	Model       string
	MaxTokens   int64
	Temperature *float64
	TopP        *float64
	TopK        *int64
	Timeout     time.Duration
	MinLength   int
	MinSections int
}

func (c Config) normalized() Config {
	if c.MaxTokens <= 0 {
		c.MaxTokens = 2048
	}
	if c.Timeout <= 0 {
		c.Timeout = 45 * time.Second
	}
	if c.MinLength <= 0 {
		c.MinLength = 200
	}
	if c.MinSections <= 0 {
		c.MinSections = 2
	}
	return c
}

// Synthesis is a produced answer plus which tier produced it.
type Synthesis struct {
	Answer string
	Tier   string
	Usage  anthropic.TokenUsage
}

// Synthesizer drives the LLM and the fallback chain.
type Synthesizer struct {
	llm anthropic.Client
	cfg Config
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(llm anthropic.Client, cfg Config) *Synthesizer {
	return &Synthesizer{llm: llm, cfg: cfg.normalized()}
}

// Generate produces a validated answer for the prompt context. LLM
// failures never propagate: the chain falls back to a simplified
// prompt, then to the deterministic template.
func (s *Synthesizer) Generate(ctx context.Context, pc prompt.Context) Synthesis {
	if resp, err := s.call(ctx, prompt.Build(pc)); err == nil {
		return Synthesis{
			Answer: s.repair(resp.Text, pc),
			Tier:   TierRich,
			Usage:  resp.Usage,
		}
	} else {
		zap.L().Warn("rich generation failed, retrying simplified",
			zap.String("model", s.cfg.Model),
			zap.Error(err),
		)
	}

	if resp, err := s.call(ctx, prompt.BuildSimplified(pc)); err == nil {
		return Synthesis{
			Answer: s.repair(resp.Text, pc),
			Tier:   TierSimplified,
			Usage:  resp.Usage,
		}
	} else {
		zap.L().Warn("simplified generation failed, using template",
			zap.String("model", s.cfg.Model),
			zap.Error(err),
		)
	}

	return Synthesis{Answer: Template(pc), Tier: TierTemplate}
}

// call runs one generation attempt under the LLM's own timeout budget,
// decoupled from provider deadlines.
func (s *Synthesizer) call(ctx context.Context, p string) (*anthropic.GenerateResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.llm.Generate(callCtx, anthropic.GenerateRequest{
		Model:       s.cfg.Model,
		Prompt:      p,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		TopP:        s.cfg.TopP,
		TopK:        s.cfg.TopK,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, &anthropic.GenerationError{Cause: fmt.Errorf("empty completion")}
	}
	return resp, nil
}

// repair validates the generated text and appends source-derived
// content for any deficiency. Repairs never invent facts: they only
// restate supplied snippets.
func (s *Synthesizer) repair(text string, pc prompt.Context) string {
	deficiencies := Validate(text, len(pc.Results), s.cfg.MinLength, s.cfg.MinSections)
	if len(deficiencies) == 0 {
		return text
	}

	zap.L().Debug("repairing answer",
		zap.Strings("deficiencies", deficiencies),
	)

	var b strings.Builder
	b.WriteString(strings.TrimRight(text, "\n"))
	b.WriteString("\n\n")
	b.WriteString(sourceDigest(pc))
	return b.String()
}

// Template builds the fully deterministic tier-3 answer from result
// titles and snippets alone.
func Template(pc prompt.Context) string {
	var b strings.Builder

	if len(pc.Results) == 0 {
		fmt.Fprintf(&b, "No sources could be retrieved for %q. ", pc.Query)
		b.WriteString("The search providers returned no usable results, so a sourced ")
		b.WriteString("answer cannot be given right now. Try rephrasing the question ")
		b.WriteString("or asking again in a moment.")
		return b.String()
	}

	fmt.Fprintf(&b, "Here is what the available sources say about %q:\n\n", pc.Query)
	b.WriteString(sourceDigest(pc))
	return b.String()
}

// sourceDigest renders a numbered summary of the prompt's sources.
func sourceDigest(pc prompt.Context) string {
	if len(pc.Results) == 0 {
		return "No supporting sources were available for this answer."
	}

	var b strings.Builder
	b.WriteString("Supporting sources:\n")
	for i, r := range pc.Results {
		fmt.Fprintf(&b, "[%d] %s (%s): %s\n", i+1, r.Title, r.Domain, r.Snippet)
	}
	return b.String()
}
