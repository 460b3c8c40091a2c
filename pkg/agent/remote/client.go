package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"healthbridge-be/internal/apperror"
	"healthbridge-be/pkg/agent"
)

// Client forwards turns to an externally hosted agent over HTTP. Session
// memory lives on the remote side; only the turn payload crosses the wire.
type Client struct {
	url    string
	client *http.Client
}

var _ agent.Invoker = &Client{}

func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type remoteTurnRequest struct {
	Query         string                 `json:"query"`
	PreviousState string                 `json:"previous_state"`
	UserData      map[string]interface{} `json:"user_data"`
}

type remoteTurnResponse struct {
	Response string `json:"response"`
}

func (c *Client) Invoke(ctx context.Context, req *agent.TurnRequest) (*agent.TurnResponse, error) {
	payload := remoteTurnRequest{
		Query:         req.Query,
		PreviousState: req.PreviousConversation,
		UserData:      req.UserData,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperror.UpstreamModel("marshal remote turn request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(body))
	if err != nil {
		return nil, apperror.UpstreamModel("create remote turn request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperror.UpstreamModel("remote agent unreachable", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.UpstreamModel("read remote agent response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.UpstreamModel(
			fmt.Sprintf("remote agent returned status %d", resp.StatusCode), nil)
	}

	var remoteResp remoteTurnResponse
	if err := json.Unmarshal(respBytes, &remoteResp); err != nil {
		return nil, apperror.UpstreamModel("decode remote agent response", err)
	}
	if remoteResp.Response == "" {
		return nil, apperror.UpstreamModel("remote agent returned an empty response", nil)
	}

	return &agent.TurnResponse{Result: remoteResp.Response}, nil
}
