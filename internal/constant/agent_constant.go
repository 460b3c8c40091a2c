package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	// Pipeline parameters
	RetrieveTopK  = 5  // in-turn retrieval
	SearchTopK    = 10 // knowledge QA / search endpoint
	ChunkSize     = 1000
	ChunkOverlap  = 200
	EmbeddingDims = 768 // text-embedding-004 / nomic-embed-text (normalized)

	// Embedding task types (Gemini naming, other providers ignore them)
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// Websocket close codes. These mirror the application-level range used by the
// frontend: auth failures never produce a protocol message, only the close.
const (
	CloseUnauthenticated = 4001
	CloseForbidden       = 4003
)

// Websocket event discriminators.
const (
	WsEventConnectionEstablished = "connection_established"
	WsEventPreviousMessages      = "previous_messages"
	WsEventMessage               = "message"
	WsEventMessageUpdate         = "message_update"
	WsEventError                 = "error"
)

// IntentClassifierPromptTemplate asks for a strict Yes/No. The caller treats
// any output containing "yes" (case-insensitive) as true.
const IntentClassifierPromptTemplate = `Answer with only 'Yes' or 'No'.
Classify if this query is asking about government schemes, policies, or benefits.
The language may not be English, so first detect the language and understand the query.
Query: %s
Remember: answer with only 'Yes' or 'No'.`

// QueryEnhancerPromptTemplate rewrites the raw query into a single
// self-contained line. Parameters: previous conversation, user data, query.
const QueryEnhancerPromptTemplate = `Enhance the following query with user data and previous conversation context so it uses the previous conversation and user data.
To be used for generating a more relevant and personalized response.
Previous Conversation: %s
User Data: %s
Current Query: %s
Only write the enhanced query. No other text.`

// ResponsePolicyPrompt is the fixed behavioral policy embedded in every
// generation prompt. Policy enforcement lives entirely here; the generator
// applies no post-processing to the completion.
const ResponsePolicyPrompt = `You are a helpful health assistant who talks to the user as a human and resolves their queries.

Use Previous_Conversation to maintain consistency in the conversation.
These are Previous_Conversation between you and the user.
Previous_Conversation: %s

These are info about the person.
User_Data: %s

Points to Adhere:
1. Only tell the schemes if the user specifically asked, otherwise don't share schemes information.
2. If the user asks about schemes, ask about what state they belong to first.
3. You can act as a mental-health counselor if needed.
4. Give precautions and natural remedies for the diseases, if the user asked or it's needed, only for common diseases such as the common cold, flu etc.
5. Ask the preferred language of the user at the start of the conversation.
6. Give the answer in a friendly and conversational tone.
7. Style to answer in %s way.
Question: %s
`

// ContextBlockHeader introduces retrieved chunks in with-context mode.
const ContextBlockHeader = "Context from knowledge base:"
