package service

import (
	"context"
	"strings"

	"healthbridge-be/internal/apperror"
	"healthbridge-be/internal/dto"
	"healthbridge-be/internal/entity"
	"healthbridge-be/internal/repository/specification"
	"healthbridge-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IChatService interface {
	CreateChat(ctx context.Context, userID uuid.UUID, req *dto.CreateChatRequest) (*dto.ChatResponse, error)
	GetChats(ctx context.Context, userID uuid.UUID) ([]*dto.ChatResponse, error)
	DeleteChat(ctx context.Context, userID, chatID uuid.UUID) error
	GetMessages(ctx context.Context, userID, chatID uuid.UUID) ([]*dto.MessageResponse, error)

	// FindOwnedChat loads a chat and verifies ownership. Used by the
	// relay before any protocol traffic is allowed.
	FindOwnedChat(ctx context.Context, userID, chatID uuid.UUID) (*entity.Chat, error)

	AppendUserMessage(ctx context.Context, chatID uuid.UUID, content string) (*entity.Message, error)
	AttachResponse(ctx context.Context, messageID uuid.UUID, response string) error

	// RenderPreviousConversation rebuilds the transcript string from the
	// persisted messages, oldest first. Turns without a response
	// contribute only their user line.
	RenderPreviousConversation(ctx context.Context, chatID uuid.UUID) (string, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewChatService(uowFactory unitofwork.RepositoryFactory) IChatService {
	return &chatService{
		uowFactory: uowFactory,
	}
}

func (s *chatService) CreateChat(ctx context.Context, userID uuid.UUID, req *dto.CreateChatRequest) (*dto.ChatResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "New Conversation"
	}

	chat := &entity.Chat{
		UserId:   userID,
		Title:    title,
		UserData: req.UserData,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatRepository().Create(ctx, chat); err != nil {
		return nil, apperror.Storage("failed to create chat", err)
	}

	return chatToResponse(chat), nil
}

func (s *chatService) GetChats(ctx context.Context, userID uuid.UUID) ([]*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chats, err := uow.ChatRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Storage("failed to list chats", err)
	}

	responses := make([]*dto.ChatResponse, len(chats))
	for i, chat := range chats {
		responses[i] = chatToResponse(chat)
	}
	return responses, nil
}

func (s *chatService) DeleteChat(ctx context.Context, userID, chatID uuid.UUID) error {
	chat, err := s.FindOwnedChat(ctx, userID, chatID)
	if err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatRepository().Delete(ctx, chat.Id); err != nil {
		return apperror.Storage("failed to delete chat", err)
	}
	return nil
}

func (s *chatService) GetMessages(ctx context.Context, userID, chatID uuid.UUID) ([]*dto.MessageResponse, error) {
	if _, err := s.FindOwnedChat(ctx, userID, chatID); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByChatID{ChatID: chatID},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, apperror.Storage("failed to list messages", err)
	}

	responses := make([]*dto.MessageResponse, len(messages))
	for i, msg := range messages {
		responses[i] = &dto.MessageResponse{
			Id:        msg.Id,
			Content:   msg.Content,
			Response:  msg.Response,
			CreatedAt: msg.CreatedAt,
		}
	}
	return responses, nil
}

func (s *chatService) FindOwnedChat(ctx context.Context, userID, chatID uuid.UUID) (*entity.Chat, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := uow.ChatRepository().FindOne(ctx, specification.ByID{ID: chatID})
	if err != nil {
		return nil, apperror.Storage("failed to load chat", err)
	}
	if chat == nil || chat.UserId != userID {
		// Not found and not owned are indistinguishable to the caller.
		return nil, apperror.Authorization("chat does not exist or is not yours")
	}
	return chat, nil
}

func (s *chatService) AppendUserMessage(ctx context.Context, chatID uuid.UUID, content string) (*entity.Message, error) {
	message := &entity.Message{
		ChatId:  chatID,
		Content: content,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.MessageRepository().Create(ctx, message); err != nil {
		return nil, apperror.Storage("failed to persist message", err)
	}
	return message, nil
}

func (s *chatService) AttachResponse(ctx context.Context, messageID uuid.UUID, response string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.MessageRepository().AttachResponse(ctx, messageID, response); err != nil {
		return apperror.Storage("failed to persist response", err)
	}
	return nil
}

func (s *chatService) RenderPreviousConversation(ctx context.Context, chatID uuid.UUID) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByChatID{ChatID: chatID},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return "", apperror.Storage("failed to load transcript", err)
	}

	var b strings.Builder
	for _, msg := range messages {
		b.WriteString("User: ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
		if msg.Response != nil {
			b.WriteString("Assistant: ")
			b.WriteString(*msg.Response)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func chatToResponse(chat *entity.Chat) *dto.ChatResponse {
	return &dto.ChatResponse{
		Id:        chat.Id,
		Title:     chat.Title,
		UserData:  chat.UserData,
		CreatedAt: chat.CreatedAt,
	}
}
