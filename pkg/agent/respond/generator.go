package respond

import (
	"context"
	"fmt"
	"strings"

	"healthbridge-be/internal/apperror"
	"healthbridge-be/internal/constant"
	"healthbridge-be/pkg/llm"
)

// Generator produces the final answer. All behavioral policy lives in the
// prompt; the completion is returned verbatim.
type Generator struct {
	llm llm.LLMProvider
}

func NewGenerator(provider llm.LLMProvider) *Generator {
	return &Generator{llm: provider}
}

// BuildPrompt assembles the generation prompt. Retrieved chunks, when
// present, are prepended as a context block above the policy.
func BuildPrompt(query, previousConversation, userData, style string, contextChunks []string) string {
	if style == "" {
		style = "normal"
	}

	base := fmt.Sprintf(constant.ResponsePolicyPrompt, previousConversation, userData, style, query)

	if len(contextChunks) == 0 {
		return base
	}

	var b strings.Builder
	b.WriteString(constant.ContextBlockHeader)
	b.WriteString("\n")
	b.WriteString(strings.Join(contextChunks, "\n\n"))
	b.WriteString("\n\n")
	b.WriteString(base)
	return b.String()
}

func (g *Generator) Respond(ctx context.Context, query, previousConversation, userData, style string, contextChunks []string) (string, error) {
	prompt := BuildPrompt(query, previousConversation, userData, style, contextChunks)

	out, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return "", apperror.UpstreamModel("response generation failed", err)
	}
	if strings.TrimSpace(out) == "" {
		return "", apperror.UpstreamModel("model returned an empty response", nil)
	}
	return out, nil
}
