package intent

import (
	"context"
	"fmt"
	"strings"

	"healthbridge-be/internal/apperror"
	"healthbridge-be/internal/constant"
	"healthbridge-be/pkg/llm"
)

// Classifier decides whether a query needs the knowledge base. The model
// is asked for a bare Yes/No; any output containing "yes" counts as yes.
type Classifier struct {
	llm llm.LLMProvider
}

func NewClassifier(provider llm.LLMProvider) *Classifier {
	return &Classifier{llm: provider}
}

func (c *Classifier) Classify(ctx context.Context, query string) (bool, error) {
	prompt := fmt.Sprintf(constant.IntentClassifierPromptTemplate, query)

	out, err := c.llm.Generate(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		return false, apperror.UpstreamModel("intent classification failed", err)
	}
	if strings.TrimSpace(out) == "" {
		return false, apperror.UpstreamModel("intent classifier returned empty output", nil)
	}

	return strings.Contains(strings.ToLower(out), "yes"), nil
}
