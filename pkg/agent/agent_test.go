package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"healthbridge-be/internal/apperror"
	"healthbridge-be/internal/constant"
	"healthbridge-be/internal/entity"
	"healthbridge-be/internal/repository/memory"
	"healthbridge-be/internal/repository/specification"
	"healthbridge-be/pkg/agent/enhance"
	"healthbridge-be/pkg/agent/intent"
	"healthbridge-be/pkg/agent/respond"
	"healthbridge-be/pkg/agent/retrieve"
	"healthbridge-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM routes each prompt to the right canned output by matching
// the fixed phrases of the three prompt templates.
type scriptedLLM struct {
	classifierOut string
	enhancerOut   string
	generatorOut  string
	generatorErr  error

	lastGeneratorPrompt string
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if len(history) == 0 {
		return "", errors.New("empty history")
	}
	return s.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	switch {
	case strings.Contains(prompt, "Answer with only 'Yes' or 'No'"):
		return s.classifierOut, nil
	case strings.Contains(prompt, "Enhance the following query"):
		return s.enhancerOut, nil
	default:
		s.lastGeneratorPrompt = prompt
		return s.generatorOut, s.generatorErr
	}
}

type fakeEmbedder struct{}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeChunkRepo struct {
	count        int64
	results      []*entity.DocumentChunk
	searchCalled bool
	lastK        int
}

func (f *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	return nil
}

func (f *fakeChunkRepo) DeleteByCollection(ctx context.Context, collection string) error {
	return nil
}

func (f *fakeChunkRepo) CountByCollection(ctx context.Context, collection string) (int64, error) {
	return f.count, nil
}

func (f *fakeChunkRepo) SearchSimilar(ctx context.Context, collection string, embedding []float32, k int) ([]*entity.DocumentChunk, error) {
	f.searchCalled = true
	f.lastK = k
	return f.results, nil
}

func (f *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	return f.results, nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newTestAgent(model *scriptedLLM, repo *fakeChunkRepo) *Agent {
	pipeline := NewPipeline(
		enhance.NewEnhancer(model),
		intent.NewClassifier(model),
		retrieve.NewRetriever(&fakeEmbedder{}, repo, "health_documents"),
		respond.NewGenerator(model),
		nopLogger{},
	)
	return NewAgent(pipeline, memory.NewSessionRepository(), 50, nopLogger{})
}

func TestInvokeGeneralQuerySkipsRetrieval(t *testing.T) {
	model := &scriptedLLM{
		classifierOut: "No",
		enhancerOut:   "what helps with a common cold",
		generatorOut:  "Rest and drink fluids.",
	}
	repo := &fakeChunkRepo{count: 0} // empty index must not matter here
	a := newTestAgent(model, repo)

	resp, err := a.Invoke(context.Background(), &TurnRequest{
		ChatID: "chat-1",
		UserID: "user-1",
		Query:  "what helps with a cold",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rest and drink fluids.", resp.Result)
	assert.False(t, repo.searchCalled)
}

func TestInvokeSchemeQueryRetrievesContext(t *testing.T) {
	model := &scriptedLLM{
		classifierOut: "Yes",
		enhancerOut:   "government health schemes in Kerala",
		generatorOut:  "Kerala offers the Karunya scheme.",
	}
	repo := &fakeChunkRepo{
		count: 10,
		results: []*entity.DocumentChunk{
			{Document: "Karunya scheme covers treatment costs"},
		},
	}
	a := newTestAgent(model, repo)

	resp, err := a.Invoke(context.Background(), &TurnRequest{
		ChatID:   "chat-2",
		UserID:   "user-1",
		Query:    "any schemes for me",
		UserData: map[string]interface{}{"state": "Kerala"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Kerala offers the Karunya scheme.", resp.Result)

	assert.True(t, repo.searchCalled)
	assert.Equal(t, constant.RetrieveTopK, repo.lastK)
	assert.Contains(t, model.lastGeneratorPrompt, "Karunya scheme covers treatment costs")
	assert.Contains(t, model.lastGeneratorPrompt, "state_user_belongs_to is Kerala")
}

func TestInvokeHistoryAlternatesAcrossTurns(t *testing.T) {
	model := &scriptedLLM{
		classifierOut: "No",
		enhancerOut:   "enhanced",
		generatorOut:  "answer",
	}
	a := newTestAgent(model, &fakeChunkRepo{})

	queries := []string{"first", "second", "third"}
	for _, q := range queries {
		_, err := a.Invoke(context.Background(), &TurnRequest{
			ChatID: "chat-3",
			UserID: "user-1",
			Query:  q,
		})
		require.NoError(t, err)
	}

	session, found := a.sessions.Get("chat-3")
	require.True(t, found)
	assert.Equal(t, 3, session.Turns)

	expected := "User: first\nAssistant: answer\n" +
		"User: second\nAssistant: answer\n" +
		"User: third\nAssistant: answer\n"
	assert.Equal(t, expected, session.History)
}

func TestInvokeAbortedTurnLeavesNoAssistantLine(t *testing.T) {
	model := &scriptedLLM{
		classifierOut: "No",
		enhancerOut:   "enhanced",
		generatorErr:  errors.New("model unavailable"),
	}
	a := newTestAgent(model, &fakeChunkRepo{})

	_, err := a.Invoke(context.Background(), &TurnRequest{
		ChatID: "chat-4",
		UserID: "user-1",
		Query:  "hello",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindUpstreamModel))

	session, found := a.sessions.Get("chat-4")
	require.True(t, found)
	assert.Equal(t, "User: hello\n", session.History)
	assert.Equal(t, 0, session.Turns)
}

func TestInvokeSeedsSessionFromTranscript(t *testing.T) {
	model := &scriptedLLM{
		classifierOut: "No",
		enhancerOut:   "enhanced",
		generatorOut:  "nice to see you again",
	}
	a := newTestAgent(model, &fakeChunkRepo{})

	seed := "User: my name is Priya\nAssistant: Hello Priya!\n"
	_, err := a.Invoke(context.Background(), &TurnRequest{
		ChatID:               "chat-5",
		UserID:               "user-1",
		Query:                "do you remember me",
		PreviousConversation: seed,
	})
	require.NoError(t, err)

	assert.Contains(t, model.lastGeneratorPrompt, "Hello Priya!")

	session, found := a.sessions.Get("chat-5")
	require.True(t, found)
	assert.True(t, strings.HasPrefix(session.History, seed))
}

func TestInvokeHistoryIncludesCurrentQuery(t *testing.T) {
	model := &scriptedLLM{
		classifierOut: "No",
		enhancerOut:   "enhanced",
		generatorOut:  "hello there",
	}
	a := newTestAgent(model, &fakeChunkRepo{})

	_, err := a.Invoke(context.Background(), &TurnRequest{
		ChatID: "chat-6",
		UserID: "user-1",
		Query:  "do you remember my name",
	})
	require.NoError(t, err)

	// The conversation block of the generation prompt ends with the
	// query being answered, not the turn before it.
	assert.Contains(t, model.lastGeneratorPrompt, "User: do you remember my name\n")
}

func TestTrimHistory(t *testing.T) {
	history := "User: one\nAssistant: a\n" +
		"User: two\nAssistant: b\n" +
		"User: three\nAssistant: c\n"

	trimmed := trimHistory(history, 2)
	assert.Equal(t, "User: two\nAssistant: b\nUser: three\nAssistant: c\n", trimmed)

	// Under the cap nothing changes.
	assert.Equal(t, history, trimHistory(history, 3))
	assert.Equal(t, history, trimHistory(history, 10))
}

func TestFormatUserData(t *testing.T) {
	tests := []struct {
		name     string
		userData map[string]interface{}
		want     string
	}{
		{"empty", nil, "No user data available"},
		{
			"state and gender renamed",
			map[string]interface{}{"state": "Kerala", "gender": "female"},
			"sex_of_user is female, state_user_belongs_to is Kerala",
		},
		{
			"other keys pass through",
			map[string]interface{}{"age": 34},
			"age is 34",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUserData(tt.userData))
		})
	}
}
