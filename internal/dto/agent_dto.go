package dto

// AgentRetrieveRequest answers one stateless turn over HTTP, mirroring
// what the relay sends a remotely hosted agent.
type AgentRetrieveRequest struct {
	Query         string                 `json:"query" validate:"required"`
	PreviousState string                 `json:"previous_state"`
	UserData      map[string]interface{} `json:"user_data"`
}

type AgentRetrieveResponse struct {
	Response string `json:"response"`
}
