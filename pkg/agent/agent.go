package agent

import (
	"context"
	"strings"

	"healthbridge-be/internal/constant"
	"healthbridge-be/internal/pkg/logger"
	"healthbridge-be/internal/repository/memory"
	"healthbridge-be/pkg/agent/enhance"
	"healthbridge-be/pkg/agent/intent"
	"healthbridge-be/pkg/agent/respond"
	"healthbridge-be/pkg/agent/retrieve"
	"healthbridge-be/pkg/store"
)

// TurnRequest is one user message plus the context needed to answer it.
// PreviousConversation seeds the session when memory has nothing for the
// chat yet (fresh process, expired cache).
type TurnRequest struct {
	ChatID               string
	UserID               string
	Query                string
	PreviousConversation string
	UserData             map[string]interface{}
}

type TurnResponse struct {
	Result string
}

// Invoker answers one turn. The local agent and the remote HTTP client
// both satisfy it, so the relay never knows which mode it runs in.
type Invoker interface {
	Invoke(ctx context.Context, req *TurnRequest) (*TurnResponse, error)
}

// Pipeline runs the four stages of a turn in order: enhance the query,
// classify its intent, retrieve context when the intent calls for it,
// then generate the answer.
type Pipeline struct {
	enhancer   *enhance.Enhancer
	classifier *intent.Classifier
	retriever  *retrieve.Retriever
	generator  *respond.Generator
	logger     logger.ILogger
}

func NewPipeline(
	enhancer *enhance.Enhancer,
	classifier *intent.Classifier,
	retriever *retrieve.Retriever,
	generator *respond.Generator,
	log logger.ILogger,
) *Pipeline {
	return &Pipeline{
		enhancer:   enhancer,
		classifier: classifier,
		retriever:  retriever,
		generator:  generator,
		logger:     log,
	}
}

// Run executes the pipeline against state. Any stage error aborts the
// turn; state.Response is only set on full success.
func (p *Pipeline) Run(ctx context.Context, state *TurnState, style string) error {
	enhanced, err := p.enhancer.Enhance(ctx, state.Query, state.PreviousConversation, state.UserData)
	if err != nil {
		return err
	}
	state.EnhancedQuery = enhanced

	needsContext, err := p.classifier.Classify(ctx, state.EnhancedQuery)
	if err != nil {
		return err
	}
	state.NeedsContext = needsContext

	if state.NeedsContext {
		docs, err := p.retriever.Retrieve(ctx, state.EnhancedQuery, constant.RetrieveTopK)
		if err != nil {
			return err
		}
		state.Context = docs
	}

	p.logger.Debug("agent", "pipeline stages complete", map[string]interface{}{
		"needs_context": state.NeedsContext,
		"context_docs":  len(state.Context),
	})

	response, err := p.generator.Respond(ctx, state.EnhancedQuery, state.PreviousConversation, state.UserData, style, state.Context)
	if err != nil {
		return err
	}
	state.Response = response
	return nil
}

// Agent wraps the pipeline with per-chat conversational memory.
type Agent struct {
	pipeline        *Pipeline
	sessions        *memory.SessionRepository
	maxHistoryTurns int
	logger          logger.ILogger
}

var _ Invoker = &Agent{}

func NewAgent(pipeline *Pipeline, sessions *memory.SessionRepository, maxHistoryTurns int, log logger.ILogger) *Agent {
	return &Agent{
		pipeline:        pipeline,
		sessions:        sessions,
		maxHistoryTurns: maxHistoryTurns,
		logger:          log,
	}
}

func (a *Agent) Invoke(ctx context.Context, req *TurnRequest) (*TurnResponse, error) {
	session, found := a.sessions.Get(req.ChatID)
	if !found {
		session = &store.Session{
			ID:     req.ChatID,
			UserID: req.UserID,
		}
		// Seed from the persisted transcript so a restart does not make
		// the agent forget the conversation.
		if req.PreviousConversation != "" {
			session.History = req.PreviousConversation
		}
	}

	userData := FormatUserData(req.UserData)
	style := extractStyle(req.UserData)

	// The user line is recorded before dispatch so a failed turn still
	// shows what was asked. The pipeline sees the history including it,
	// so the enhancer always finds the current query as the last line.
	session.History += "User: " + req.Query + "\n"
	a.sessions.Save(session)

	state := &TurnState{
		Query:                req.Query,
		PreviousConversation: session.History,
		UserData:             userData,
	}

	if err := a.pipeline.Run(ctx, state, style); err != nil {
		a.logger.Warn("agent", "turn aborted", map[string]interface{}{
			"chat_id": req.ChatID,
			"error":   err.Error(),
		})
		return nil, err
	}

	session.History += "Assistant: " + state.Response + "\n"
	session.Turns++
	session.History = trimHistory(session.History, a.maxHistoryTurns)
	a.sessions.Save(session)

	return &TurnResponse{Result: state.Response}, nil
}

func extractStyle(userData map[string]interface{}) string {
	if userData == nil {
		return ""
	}
	if v, ok := userData["style"].(string); ok {
		return v
	}
	return ""
}

// trimHistory drops the oldest user lines (and everything before them)
// until at most maxTurns user lines remain. The transcript grows without
// bound otherwise and eventually overflows the model context.
func trimHistory(history string, maxTurns int) string {
	if maxTurns <= 0 {
		return history
	}

	lines := strings.Split(history, "\n")
	userLines := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "User: ") {
			userLines++
		}
	}
	if userLines <= maxTurns {
		return history
	}

	toDrop := userLines - maxTurns
	start := 0
	for i, line := range lines {
		if strings.HasPrefix(line, "User: ") {
			toDrop--
			if toDrop < 0 {
				start = i
				break
			}
		}
	}
	return strings.Join(lines[start:], "\n")
}
