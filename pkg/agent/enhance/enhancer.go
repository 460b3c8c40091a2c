package enhance

import (
	"context"
	"fmt"
	"strings"

	"healthbridge-be/internal/apperror"
	"healthbridge-be/internal/constant"
	"healthbridge-be/pkg/llm"
)

// Enhancer rewrites the raw query into a self-contained one using the
// conversation so far and the user's profile.
type Enhancer struct {
	llm llm.LLMProvider
}

func NewEnhancer(provider llm.LLMProvider) *Enhancer {
	return &Enhancer{llm: provider}
}

func (e *Enhancer) Enhance(ctx context.Context, query, previousConversation, userData string) (string, error) {
	prompt := fmt.Sprintf(constant.QueryEnhancerPromptTemplate, previousConversation, userData, query)

	out, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return "", apperror.UpstreamModel("query enhancement failed", err)
	}

	enhanced := strings.TrimSpace(out)
	if enhanced == "" {
		// A blank rewrite is not fatal; the raw query still works.
		return query, nil
	}
	return enhanced, nil
}
