// Package summarizer implements the narrative-summary collaborator
// (spec.md §6): a minimal Summarizer interface with an OpenAI-compatible
// primary, an AWS Bedrock fallback, and a deterministic rule-based
// template as the final, always-available fallback. Shaped after the
// teacher platform's Router/ProviderClient fallback chain
// (packages/llm-router), applied here to a single narrative call instead
// of a chat completion.
package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quantumlayer-dev/solar-placement/internal/model"
)

// Summarizer is the collaborator interface the orchestrator depends on
// (spec.md §6): `(verdict, financial, features) -> string` with a
// deadline.
type Summarizer interface {
	Summarize(ctx context.Context, v model.Verdict, fin model.Financial, f model.Features) (string, error)
}

// Client chains a primary and a fallback Summarizer, finally degrading to
// the deterministic template. It never returns an error: a complete
// pipeline response must never fail because of the summarizer (spec.md
// §4.5 step 7, §7 SummarizerFailure).
type Client struct {
	primary  Summarizer
	fallback Summarizer
	logger   *zap.Logger
}

// New builds the provider-selection wrapper. Either primary or fallback
// may be nil; the template is always available as the last resort.
func New(primary, fallback Summarizer, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{primary: primary, fallback: fallback, logger: logger}
}

// Result carries the produced text and which tier answered, so the
// orchestrator can record ai_provider (spec.md §3).
type Result struct {
	Summary  string
	Provider string
}

// Summarize tries primary, then fallback, then the deterministic
// template, each bounded by the supplied deadline.
func (c *Client) Summarize(ctx context.Context, deadline time.Duration, v model.Verdict, fin model.Financial, f model.Features) Result {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	if c.primary != nil {
		if text, err := c.primary.Summarize(ctx, v, fin, f); err == nil {
			return Result{Summary: text, Provider: "openai"}
		} else {
			c.logger.Warn("primary summarizer failed, falling back", zap.Error(err))
		}
	}

	if c.fallback != nil {
		if text, err := c.fallback.Summarize(ctx, v, fin, f); err == nil {
			return Result{Summary: text, Provider: "bedrock"}
		} else {
			c.logger.Warn("fallback summarizer failed, using template", zap.Error(err))
		}
	}

	return Result{Summary: templateSummary(v, fin), Provider: "fallback-template"}
}

// templateSummary is the deterministic rule-based summary derived from
// grade and top constraint violations (spec.md §4.5 step 7).
func templateSummary(v model.Verdict, fin model.Financial) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This site scores %d/100 (grade %s, %s).", v.Score, v.Grade, v.SuitabilityClass)

	if len(v.ConstraintViolations) > 0 {
		fmt.Fprintf(&b, " Key concern: %s.", v.ConstraintViolations[0])
	} else {
		fmt.Fprintf(&b, " No hard constraints were violated.")
	}

	if fin.AnnualSavings > 0 {
		fmt.Fprintf(&b, " Estimated payback is %.1f years with a projected lifetime profit of %.0f.",
			fin.PaybackYears, fin.LifetimeProfit)
	} else {
		fmt.Fprintf(&b, " Projected savings are not positive at the supplied electricity rate.")
	}

	return b.String()
}
