package store

// Session holds the in-memory conversational state of one chat between
// relay connections. History is the rendered transcript fed to the agent;
// Turns counts completed exchanges so the history can be capped.
type Session struct {
	ID      string `json:"id"` // ChatID
	UserID  string `json:"user_id"`
	History string `json:"history"`
	Turns   int    `json:"turns"`
}
