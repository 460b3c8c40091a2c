package service

import (
	"context"

	"healthbridge-be/internal/dto"
	"healthbridge-be/pkg/agent"
)

// IAgentService answers stateless turns over HTTP. Conversation memory is
// the caller's problem; whatever arrives in previous_state is used as-is.
type IAgentService interface {
	Retrieve(ctx context.Context, req *dto.AgentRetrieveRequest) (*dto.AgentRetrieveResponse, error)
}

type agentService struct {
	pipeline *agent.Pipeline
}

func NewAgentService(pipeline *agent.Pipeline) IAgentService {
	return &agentService{
		pipeline: pipeline,
	}
}

func (s *agentService) Retrieve(ctx context.Context, req *dto.AgentRetrieveRequest) (*dto.AgentRetrieveResponse, error) {
	previous := req.PreviousState
	if previous == "" {
		previous = agent.NoPreviousConversation
	}

	state := &agent.TurnState{
		Query:                req.Query,
		PreviousConversation: previous,
		UserData:             agent.FormatUserData(req.UserData),
	}

	style := ""
	if v, ok := req.UserData["style"].(string); ok {
		style = v
	}

	if err := s.pipeline.Run(ctx, state, style); err != nil {
		return nil, err
	}

	return &dto.AgentRetrieveResponse{Response: state.Response}, nil
}
