package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/pulseboard/social-listener/internal/llm"
	"github.com/pulseboard/social-listener/internal/metrics"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/sirupsen/logrus"
)

// Analyzer submits post batches and digest inputs to a language model
type Analyzer struct {
	generator llm.Generator
	now       func() time.Time
}

// NewAnalyzer creates an analyzer backed by the given generator
func NewAnalyzer(generator llm.Generator) *Analyzer {
	return &Analyzer{generator: generator, now: time.Now}
}

// AnalyzeBatch sends one batch to the model and parses the structured result.
// The call is made exactly once; retrying is left to the caller.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, posts []models.Post) (*models.AnalysisResult, error) {
	if len(posts) == 0 {
		return nil, fmt.Errorf("no posts to analyze")
	}

	prompt, err := buildAnalysisPrompt(posts)
	if err != nil {
		return nil, err
	}

	start := a.now()
	logrus.Infof("Analyzing batch of %d posts with %s", len(posts), a.generator.Name())

	raw, err := a.generator.Generate(ctx, analysisSystemPrompt, prompt)
	if err != nil {
		observe("batch", "error", a.now().Sub(start))
		return nil, fmt.Errorf("generate analysis: %w", err)
	}

	result, err := ParseAnalysis(raw)
	elapsed := a.now().Sub(start)
	if err != nil {
		observe("batch", "malformed", elapsed)
		logrus.WithField("response_bytes", len(raw)).Errorf("Analysis response rejected: %v", err)
		return nil, err
	}

	observe("batch", "ok", elapsed)
	result.RawResponse = raw
	result.ProcessingTime = elapsed

	logrus.WithFields(logrus.Fields{
		"themes":      len(result.Themes),
		"alerts":      len(result.Alerts),
		"communities": len(result.CommunitiesIdentified),
		"duration_ms": elapsed.Milliseconds(),
	}).Info("Batch analysis complete")

	return result, nil
}

// GenerateNarrative writes a digest narrative for the given aggregated data
func (a *Analyzer) GenerateNarrative(ctx context.Context, digestType models.DigestType, in DigestInput) (*Narrative, error) {
	prompt, err := buildDigestPrompt(digestType, in)
	if err != nil {
		return nil, err
	}

	start := a.now()
	raw, err := a.generator.Generate(ctx, digestSystemPrompt, prompt)
	if err != nil {
		observe("narrative", "error", a.now().Sub(start))
		return nil, fmt.Errorf("generate %s digest: %w", digestType, err)
	}
	observe("narrative", "ok", a.now().Sub(start))

	narrative := ParseNarrative(raw)
	if narrative.Summary == "" {
		logrus.Warnf("Digest response for %s had no metadata block", digestType)
	}

	return &narrative, nil
}

func observe(kind, result string, elapsed time.Duration) {
	metrics.AnalysisDurationSeconds.WithLabelValues(kind, result).Observe(elapsed.Seconds())
}
