package agent

import (
	"fmt"
	"sort"
	"strings"
)

// TurnState carries one query through the pipeline. Each stage reads the
// fields of earlier stages and fills in its own.
type TurnState struct {
	Query                string
	PreviousConversation string
	UserData             string

	EnhancedQuery string
	NeedsContext  bool
	Context       []string
	Response      string
}

// NoPreviousConversation is substituted when a chat has no transcript yet.
const NoPreviousConversation = "No previous conversation available, first time"

// FormatUserData renders the personalization map into the phrasing the
// prompts expect. "state" and "gender" get descriptive names; anything
// else passes through as-is. Keys are sorted for stable output.
func FormatUserData(userData map[string]interface{}) string {
	if len(userData) == 0 {
		return "No user data available"
	}

	keys := make([]string, 0, len(userData))
	for k := range userData {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		name := k
		switch k {
		case "state":
			name = "state_user_belongs_to"
		case "gender":
			name = "sex_of_user"
		}
		parts = append(parts, fmt.Sprintf("%s is %v", name, userData[k]))
	}
	return strings.Join(parts, ", ")
}
