package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"healthbridge-be/internal/apperror"
	"healthbridge-be/internal/constant"
	"healthbridge-be/internal/dto"
	"healthbridge-be/internal/entity"
	"healthbridge-be/pkg/agent"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type recordingSink struct {
	frames []interface{}
}

func (s *recordingSink) SendJSON(v interface{}) error {
	s.frames = append(s.frames, v)
	return nil
}

type fakeChatService struct {
	transcript string

	ownedChat       *entity.Chat
	ownedErr        error
	findOwnedCalled bool

	appendedContent  string
	appendedID       uuid.UUID
	appendedAt       time.Time
	attachedID       uuid.UUID
	attachedResponse string
	attachErr        error
}

func (f *fakeChatService) CreateChat(ctx context.Context, userID uuid.UUID, req *dto.CreateChatRequest) (*dto.ChatResponse, error) {
	return nil, nil
}

func (f *fakeChatService) GetChats(ctx context.Context, userID uuid.UUID) ([]*dto.ChatResponse, error) {
	return nil, nil
}

func (f *fakeChatService) DeleteChat(ctx context.Context, userID, chatID uuid.UUID) error {
	return nil
}

func (f *fakeChatService) GetMessages(ctx context.Context, userID, chatID uuid.UUID) ([]*dto.MessageResponse, error) {
	return nil, nil
}

func (f *fakeChatService) FindOwnedChat(ctx context.Context, userID, chatID uuid.UUID) (*entity.Chat, error) {
	f.findOwnedCalled = true
	if f.ownedErr != nil {
		return nil, f.ownedErr
	}
	return f.ownedChat, nil
}

func (f *fakeChatService) AppendUserMessage(ctx context.Context, chatID uuid.UUID, content string) (*entity.Message, error) {
	f.appendedContent = content
	f.appendedID = uuid.New()
	f.appendedAt = time.Now()
	return &entity.Message{Id: f.appendedID, ChatId: chatID, Content: content, CreatedAt: f.appendedAt}, nil
}

func (f *fakeChatService) AttachResponse(ctx context.Context, messageID uuid.UUID, response string) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	f.attachedID = messageID
	f.attachedResponse = response
	return nil
}

func (f *fakeChatService) RenderPreviousConversation(ctx context.Context, chatID uuid.UUID) (string, error) {
	return f.transcript, nil
}

type fakeInvoker struct {
	response string
	err      error
	lastReq  *agent.TurnRequest
}

func (f *fakeInvoker) Invoke(ctx context.Context, req *agent.TurnRequest) (*agent.TurnResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &agent.TurnResponse{Result: f.response}, nil
}

const testSecret = "test-secret"

func newTestRelay(chatSvc *fakeChatService, invoker *fakeInvoker) *Relay {
	return NewRelay(nil, chatSvc, invoker, nil, testSecret, 5*time.Second, nopLogger{})
}

func signToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func testChat() *entity.Chat {
	return &entity.Chat{
		Id:       uuid.New(),
		UserId:   uuid.New(),
		UserData: map[string]interface{}{"state": "Kerala"},
	}
}

func TestAuthorizeInvalidTokenClosesUnauthenticated(t *testing.T) {
	chatSvc := &fakeChatService{}
	relay := newTestRelay(chatSvc, &fakeInvoker{})

	_, _, err := relay.authorize(context.Background(), "not-a-token", uuid.NewString())
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthentication))
	assert.Equal(t, constant.CloseUnauthenticated, closeCodeFor(err))

	// The token is rejected before ownership is ever looked up.
	assert.False(t, chatSvc.findOwnedCalled)
}

func TestAuthorizeMalformedChatIDClosesForbidden(t *testing.T) {
	chatSvc := &fakeChatService{}
	relay := newTestRelay(chatSvc, &fakeInvoker{})
	token := signToken(t, uuid.NewString())

	_, _, err := relay.authorize(context.Background(), token, "not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, constant.CloseForbidden, closeCodeFor(err))
	assert.False(t, chatSvc.findOwnedCalled)
}

func TestAuthorizeUnownedChatClosesForbidden(t *testing.T) {
	chatSvc := &fakeChatService{ownedErr: apperror.Authorization("chat does not exist or is not yours")}
	relay := newTestRelay(chatSvc, &fakeInvoker{})
	token := signToken(t, uuid.NewString())

	_, _, err := relay.authorize(context.Background(), token, uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, constant.CloseForbidden, closeCodeFor(err))
	assert.True(t, chatSvc.findOwnedCalled)
}

func TestAuthorizeOwnedChatSucceeds(t *testing.T) {
	owned := testChat()
	chatSvc := &fakeChatService{ownedChat: owned}
	relay := newTestRelay(chatSvc, &fakeInvoker{})

	userID := uuid.New()
	token := signToken(t, userID.String())

	chat, gotUser, err := relay.authorize(context.Background(), token, owned.Id.String())
	require.NoError(t, err)
	assert.Equal(t, owned, chat)
	assert.Equal(t, userID, gotUser)
}

func TestProcessInboundEmptyContent(t *testing.T) {
	chatSvc := &fakeChatService{}
	invoker := &fakeInvoker{response: "unused"}
	relay := newTestRelay(chatSvc, invoker)
	sink := &recordingSink{}
	chat := testChat()

	relay.processInbound(context.Background(), sink, chat, chat.UserId, []byte(`{"content":"   "}`))

	require.Len(t, sink.frames, 1)
	errFrame, ok := sink.frames[0].(*dto.WsError)
	require.True(t, ok)
	assert.Equal(t, constant.WsEventError, errFrame.Type)

	// Nothing is persisted and the agent never runs.
	assert.Empty(t, chatSvc.appendedContent)
	assert.Nil(t, invoker.lastReq)
}

func TestProcessInboundParsesContentField(t *testing.T) {
	chatSvc := &fakeChatService{}
	invoker := &fakeInvoker{response: "Drink water and rest."}
	relay := newTestRelay(chatSvc, invoker)
	sink := &recordingSink{}
	chat := testChat()

	relay.processInbound(context.Background(), sink, chat, chat.UserId, []byte(`{"content":"I have a headache"}`))

	assert.Equal(t, "I have a headache", chatSvc.appendedContent)
	require.NotNil(t, invoker.lastReq)
	assert.Equal(t, "I have a headache", invoker.lastReq.Query)

	for _, frame := range sink.frames {
		_, isErr := frame.(*dto.WsError)
		assert.False(t, isErr)
	}
}

func TestProcessInboundMalformedJSON(t *testing.T) {
	chatSvc := &fakeChatService{}
	relay := newTestRelay(chatSvc, &fakeInvoker{})
	sink := &recordingSink{}
	chat := testChat()

	relay.processInbound(context.Background(), sink, chat, chat.UserId, []byte(`not json`))

	require.Len(t, sink.frames, 1)
	_, ok := sink.frames[0].(*dto.WsError)
	assert.True(t, ok)
	assert.Empty(t, chatSvc.appendedContent)
}

func TestProcessInboundSuccessfulTurn(t *testing.T) {
	chatSvc := &fakeChatService{transcript: "User: hi\nAssistant: hello\n"}
	invoker := &fakeInvoker{response: "one two three four five six"}
	relay := newTestRelay(chatSvc, invoker)
	sink := &recordingSink{}
	chat := testChat()

	relay.processInbound(context.Background(), sink, chat, chat.UserId, []byte(`{"content":"any schemes?"}`))

	// The message is persisted before the agent runs.
	assert.Equal(t, "any schemes?", chatSvc.appendedContent)

	// The turn request carries the transcript and the chat's user data.
	require.NotNil(t, invoker.lastReq)
	assert.Equal(t, "any schemes?", invoker.lastReq.Query)
	assert.Equal(t, "User: hi\nAssistant: hello\n", invoker.lastReq.PreviousConversation)
	assert.Equal(t, chat.UserData, invoker.lastReq.UserData)

	// Frames: user echo, assistant placeholder, at least one cumulative
	// update, then the final message.
	require.GreaterOrEqual(t, len(sink.frames), 4)

	echo, ok := sink.frames[0].(*dto.WsMessage)
	require.True(t, ok)
	assert.Equal(t, constant.WsEventMessage, echo.Type)
	assert.Equal(t, chatSvc.appendedID.String(), echo.Message.ID)
	assert.Equal(t, "any schemes?", echo.Message.Content)
	assert.Equal(t, constant.ChatMessageRoleUser, echo.Message.Role)
	assert.Equal(t, chatSvc.appendedAt, echo.Message.Timestamp)
	assert.Equal(t, chat.Id.String(), echo.Message.ChatID)

	placeholder, ok := sink.frames[1].(*dto.WsMessage)
	require.True(t, ok)
	assert.Equal(t, constant.ChatMessageRoleAssistant, placeholder.Message.Role)
	assert.Empty(t, placeholder.Message.Content)
	assert.NotEmpty(t, placeholder.Message.ID)

	final, ok := sink.frames[len(sink.frames)-1].(*dto.WsMessage)
	require.True(t, ok)
	assert.Equal(t, constant.WsEventMessage, final.Type)
	assert.Equal(t, "one two three four five six", final.Message.Content)
	assert.Equal(t, constant.ChatMessageRoleAssistant, final.Message.Role)

	// Chunks grow cumulatively and share the assistant message id with
	// the placeholder and the final frame.
	var lastUpdate string
	for _, frame := range sink.frames[2 : len(sink.frames)-1] {
		update, ok := frame.(*dto.WsMessageUpdate)
		require.True(t, ok)
		assert.Equal(t, constant.WsEventMessageUpdate, update.Type)
		assert.Equal(t, placeholder.Message.ID, update.MessageID)
		if lastUpdate != "" {
			assert.True(t, len(update.Content) > len(lastUpdate))
		}
		lastUpdate = update.Content
	}
	assert.Equal(t, "one two three four five six", lastUpdate)
	assert.Equal(t, placeholder.Message.ID, final.Message.ID)

	// The response is attached to the persisted message.
	assert.Equal(t, chatSvc.appendedID, chatSvc.attachedID)
	assert.Equal(t, "one two three four five six", chatSvc.attachedResponse)
}

func TestProcessInboundTurnFailure(t *testing.T) {
	chatSvc := &fakeChatService{}
	invoker := &fakeInvoker{err: errors.New("model down")}
	relay := newTestRelay(chatSvc, invoker)
	sink := &recordingSink{}
	chat := testChat()

	relay.processInbound(context.Background(), sink, chat, chat.UserId, []byte(`{"content":"hello"}`))

	// The user message is persisted but no response is attached.
	assert.Equal(t, "hello", chatSvc.appendedContent)
	assert.Equal(t, uuid.Nil, chatSvc.attachedID)

	// The echo and the placeholder were already sent; the failure
	// arrives as an error frame after them.
	require.Len(t, sink.frames, 3)
	_, ok := sink.frames[0].(*dto.WsMessage)
	assert.True(t, ok)
	_, ok = sink.frames[len(sink.frames)-1].(*dto.WsError)
	assert.True(t, ok)
}

func TestProcessInboundAttachFailureEmitsError(t *testing.T) {
	chatSvc := &fakeChatService{attachErr: errors.New("db down")}
	invoker := &fakeInvoker{response: "answer"}
	relay := newTestRelay(chatSvc, invoker)
	sink := &recordingSink{}
	chat := testChat()

	relay.processInbound(context.Background(), sink, chat, chat.UserId, []byte(`{"content":"hi"}`))

	// The final assistant frame is withheld when the response could not
	// be persisted; the client sees the error instead.
	last := sink.frames[len(sink.frames)-1]
	_, ok := last.(*dto.WsError)
	assert.True(t, ok)
	for _, frame := range sink.frames[:len(sink.frames)-1] {
		if msg, isMsg := frame.(*dto.WsMessage); isMsg {
			assert.NotEqual(t, "answer", msg.Message.Content)
		}
	}
}
