package service

import (
	"errors"

	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/repository"
	"fasalbajar-api/internal/ws"
	"fasalbajar-api/pkg/validator"

	"github.com/google/uuid"
)

var ErrSelfMessage = errors.New("you cannot message yourself")

type MessageService interface {
	Send(senderID, receiverID uuid.UUID, content string) (*model.Message, error)
	Conversation(userID, partnerID uuid.UUID, page, limit int) ([]model.Message, error)
	Conversations(userID uuid.UUID) ([]repository.ConversationSummary, error)
	MarkRead(userID, partnerID uuid.UUID) error
	UnreadCount(userID uuid.UUID) (int64, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	wsHub       *ws.Hub
}

func NewMessageService(mRepo repository.MessageRepository, uRepo repository.UserRepository, hub *ws.Hub) MessageService {
	return &messageService{messageRepo: mRepo, userRepo: uRepo, wsHub: hub}
}

// Send persists the message and relays it to the receiver's room. The
// relay is best-effort; an offline receiver just reads the row later.
func (s *messageService) Send(senderID, receiverID uuid.UUID, content string) (*model.Message, error) {
	if senderID == receiverID {
		return nil, ErrSelfMessage
	}
	if _, err := s.userRepo.FindByID(receiverID); err != nil {
		return nil, ErrUserNotFound
	}

	message := &model.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if errs := validator.ValidateStruct(message); len(errs) > 0 {
		return nil, errors.New(validator.FirstError(errs))
	}

	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	go s.wsHub.NotifyUser(receiverID.String(), "message:new", map[string]interface{}{
		"message_id": message.ID,
		"sender_id":  senderID,
		"content":    message.Content,
		"created_at": message.CreatedAt,
	})

	return message, nil
}

// Conversation returns both directions of a chat in chronological order
// and marks the partner's messages as read.
func (s *messageService) Conversation(userID, partnerID uuid.UUID, page, limit int) ([]model.Message, error) {
	messages, err := s.messageRepo.Conversation(userID, partnerID, page, limit)
	if err != nil {
		return nil, err
	}
	if err := s.messageRepo.MarkRead(userID, partnerID); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *messageService) Conversations(userID uuid.UUID) ([]repository.ConversationSummary, error) {
	return s.messageRepo.Conversations(userID)
}

func (s *messageService) MarkRead(userID, partnerID uuid.UUID) error {
	return s.messageRepo.MarkRead(userID, partnerID)
}

func (s *messageService) UnreadCount(userID uuid.UUID) (int64, error) {
	return s.messageRepo.UnreadCount(userID)
}
