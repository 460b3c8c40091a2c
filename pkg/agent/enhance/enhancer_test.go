package enhance

import (
	"context"
	"errors"
	"testing"

	"healthbridge-be/internal/apperror"
	"healthbridge-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	output string
	err    error
	prompt string
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return f.output, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	f.prompt = prompt
	return f.output, f.err
}

func TestEnhanceReturnsTrimmedRewrite(t *testing.T) {
	e := NewEnhancer(&fakeLLM{output: "  What government health schemes exist in Kerala?  \n"})

	got, err := e.Enhance(context.Background(), "schemes?", "User: hi\nAssistant: hello\n", "state_user_belongs_to is Kerala")
	require.NoError(t, err)
	assert.Equal(t, "What government health schemes exist in Kerala?", got)
}

func TestEnhancePromptCarriesAllInputs(t *testing.T) {
	f := &fakeLLM{output: "rewritten"}
	e := NewEnhancer(f)

	_, err := e.Enhance(context.Background(), "schemes?", "User: hi\n", "sex_of_user is female")
	require.NoError(t, err)

	assert.Contains(t, f.prompt, "schemes?")
	assert.Contains(t, f.prompt, "User: hi\n")
	assert.Contains(t, f.prompt, "sex_of_user is female")
}

func TestEnhanceEmptyOutputFallsBackToQuery(t *testing.T) {
	e := NewEnhancer(&fakeLLM{output: "   "})

	got, err := e.Enhance(context.Background(), "original question", "none", "none")
	require.NoError(t, err)
	assert.Equal(t, "original question", got)
}

func TestEnhanceModelError(t *testing.T) {
	e := NewEnhancer(&fakeLLM{err: errors.New("timeout")})

	_, err := e.Enhance(context.Background(), "q", "p", "u")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindUpstreamModel))
}
