package moderation

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/solace-platform/solace/internal/config"
)

// Classifier is the external moderation service seam.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// OpenAIClassifier calls the OpenAI moderation endpoint.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

func NewOpenAIClassifier(cfg config.OpenAIConfig) *OpenAIClassifier {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClassifier{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.ModerationModel,
	}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	resp, err := c.client.Moderations(ctx, openai.ModerationRequest{
		Input: text,
		Model: c.model,
	})
	if err != nil {
		return Classification{}, fmt.Errorf("moderation request: %w", err)
	}
	if len(resp.Results) == 0 {
		return Classification{}, fmt.Errorf("moderation response had no results")
	}

	result := resp.Results[0]
	cls := Classification{
		Flagged: result.Flagged,
		Scores:  make(map[string]float64),
	}

	for _, cat := range []struct {
		name    string
		flagged bool
		score   float64
	}{
		{"hate", result.Categories.Hate, float64(result.CategoryScores.Hate)},
		{"hate/threatening", result.Categories.HateThreatening, float64(result.CategoryScores.HateThreatening)},
		{"harassment", result.Categories.Harassment, float64(result.CategoryScores.Harassment)},
		{"harassment/threatening", result.Categories.HarassmentThreatening, float64(result.CategoryScores.HarassmentThreatening)},
		{"self-harm", result.Categories.SelfHarm, float64(result.CategoryScores.SelfHarm)},
		{"self-harm/intent", result.Categories.SelfHarmIntent, float64(result.CategoryScores.SelfHarmIntent)},
		{"self-harm/instructions", result.Categories.SelfHarmInstructions, float64(result.CategoryScores.SelfHarmInstructions)},
		{"sexual", result.Categories.Sexual, float64(result.CategoryScores.Sexual)},
		{"sexual/minors", result.Categories.SexualMinors, float64(result.CategoryScores.SexualMinors)},
		{"violence", result.Categories.Violence, float64(result.CategoryScores.Violence)},
		{"violence/graphic", result.Categories.ViolenceGraphic, float64(result.CategoryScores.ViolenceGraphic)},
	} {
		if cat.flagged {
			cls.Categories = append(cls.Categories, cat.name)
			cls.Scores[cat.name] = cat.score
		}
	}

	return cls, nil
}
