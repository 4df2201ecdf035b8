package summarizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantumlayer-dev/solar-placement/internal/model"
)

type failingSummarizer struct{}

func (failingSummarizer) Summarize(ctx context.Context, v model.Verdict, fin model.Financial, f model.Features) (string, error) {
	return "", assert.AnError
}

type fixedSummarizer string

func (s fixedSummarizer) Summarize(ctx context.Context, v model.Verdict, fin model.Financial, f model.Features) (string, error) {
	return string(s), nil
}

func TestSummarize_NoBackendsUsesTemplate(t *testing.T) {
	c := New(nil, nil, nil)

	v := model.Verdict{Score: 82, Grade: model.GradeA, SuitabilityClass: model.ClassExcellent}
	fin := model.Financial{AnnualSavings: 1000, PaybackYears: 3.3, LifetimeProfit: 500000}

	got := c.Summarize(context.Background(), time.Second, v, fin, model.Features{})

	assert.Equal(t, "fallback-template", got.Provider)
	assert.Contains(t, got.Summary, "82/100")
	assert.Contains(t, got.Summary, "grade A")
	assert.Contains(t, got.Summary, "3.3 years")
}

func TestSummarize_PrimaryFailureFallsThrough(t *testing.T) {
	c := New(failingSummarizer{}, fixedSummarizer("bedrock says hi"), nil)

	got := c.Summarize(context.Background(), time.Second, model.Verdict{}, model.Financial{}, model.Features{})

	assert.Equal(t, "bedrock", got.Provider)
	assert.Equal(t, "bedrock says hi", got.Summary)
}

func TestSummarize_AllBackendsFailingUsesTemplate(t *testing.T) {
	c := New(failingSummarizer{}, failingSummarizer{}, nil)

	v := model.Verdict{
		Score:                12,
		Grade:                model.GradeF,
		SuitabilityClass:     model.ClassUnsuitable,
		ConstraintViolations: []string{"Solar irradiance insufficient", "Permanent overcast"},
	}

	got := c.Summarize(context.Background(), time.Second, v, model.Financial{}, model.Features{})

	assert.Equal(t, "fallback-template", got.Provider)
	assert.Contains(t, got.Summary, "Solar irradiance insufficient", "the top violation leads the template")
	assert.Contains(t, got.Summary, "not positive")
}
