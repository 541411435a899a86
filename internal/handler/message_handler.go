package handler

import (
	"errors"

	"fasalbajar-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// SendMessageRequest is the send payload.
type SendMessageRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id"`
	Content    string    `json:"content"`
}

// Send persists a direct message and relays it to the receiver
// POST /api/messages
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	senderID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.ReceiverID == uuid.Nil || req.Content == "" {
		return c.Status(400).JSON(fiber.Map{"error": "receiver_id and content are required"})
	}

	message, err := h.messageService.Send(senderID, req.ReceiverID, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Message sent", "data": message})
}

// Conversation returns the chat with one partner, marking it read
// GET /api/messages/conversation/:partnerId
func (h *MessageHandler) Conversation(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	partnerID, err := parseUUID(c.Params("partnerId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid partner ID"})
	}

	messages, err := h.messageService.Conversation(userID, partnerID, c.QueryInt("page", 1), c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(messages)
}

// Conversations lists chat partners with unread counts
// GET /api/messages/conversations
func (h *MessageHandler) Conversations(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	summaries, err := h.messageService.Conversations(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(summaries)
}

// UnreadCount returns the total unread messages for the caller
// GET /api/messages/unread-count
func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	count, err := h.messageService.UnreadCount(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"unread_count": count})
}

// MarkRead marks a partner's messages as read
// PUT /api/messages/read/:partnerId
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	partnerID, err := parseUUID(c.Params("partnerId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid partner ID"})
	}

	if err := h.messageService.MarkRead(userID, partnerID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"message": "Messages marked as read"})
}
