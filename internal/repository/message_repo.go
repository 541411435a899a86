package repository

import (
	"time"

	"fasalbajar-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationSummary is one row of a user's inbox: the partner plus the
// number of messages they sent that are still unread.
type ConversationSummary struct {
	PartnerID   uuid.UUID `json:"partner_id"`
	UnreadCount int64     `json:"unread_count"`
}

type MessageRepository interface {
	Create(message *model.Message) error
	Conversation(a, b uuid.UUID, page, limit int) ([]model.Message, error)
	MarkRead(receiverID, senderID uuid.UUID) error
	UnreadCount(receiverID uuid.UUID) (int64, error)
	Conversations(userID uuid.UUID) ([]ConversationSummary, error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db}
}

func (r *messageRepo) Create(message *model.Message) error {
	return r.db.Create(message).Error
}

func (r *messageRepo) Conversation(a, b uuid.UUID, page, limit int) ([]model.Message, error) {
	var messages []model.Message
	q := r.db.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		a, b, b, a,
	).Order("created_at ASC")
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		q = q.Offset((page - 1) * limit).Limit(limit)
	}
	err := q.Find(&messages).Error
	return messages, err
}

func (r *messageRepo) MarkRead(receiverID, senderID uuid.UUID) error {
	now := time.Now()
	return r.db.Model(&model.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND read = ?", receiverID, senderID, false).
		Updates(map[string]interface{}{"read": true, "read_at": &now}).Error
}

func (r *messageRepo) UnreadCount(receiverID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Message{}).
		Where("receiver_id = ? AND read = ?", receiverID, false).
		Count(&count).Error
	return count, err
}

// Conversations lists every user this user has exchanged messages with,
// newest conversation first.
func (r *messageRepo) Conversations(userID uuid.UUID) ([]ConversationSummary, error) {
	var partnerIDs []uuid.UUID
	err := r.db.Model(&model.Message{}).
		Select("DISTINCT CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END", userID).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Scan(&partnerIDs).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(partnerIDs))
	for _, pid := range partnerIDs {
		var unread int64
		if err := r.db.Model(&model.Message{}).
			Where("receiver_id = ? AND sender_id = ? AND read = ?", userID, pid, false).
			Count(&unread).Error; err != nil {
			return nil, err
		}
		summaries = append(summaries, ConversationSummary{PartnerID: pid, UnreadCount: unread})
	}
	return summaries, nil
}
