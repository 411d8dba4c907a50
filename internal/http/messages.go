package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"educalink-backend-go/internal/models"

	"github.com/go-chi/chi/v5"
)

type MessageRequest struct {
	Message string `json:"message"`
}

type MessageResponse struct {
	IDMessage   int64     `json:"id_message"`
	Message     string    `json:"message"`
	ChatID      int64     `json:"chat_id"`
	SenderID    int64     `json:"sender_id"`
	DateMessage time.Time `json:"date_message"`
}

type SaleMessageResponse struct {
	IDSaleMessage int64     `json:"id_sale_message"`
	Message       string    `json:"message"`
	SaleChatID    int64     `json:"sale_chat_id"`
	SenderID      int64     `json:"sender_id"`
	DateMessage   time.Time `json:"date_message"`
}

func (s *Server) CreateMessage(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	chatID, err := parseID(chi.URLParam(r, "chatId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		WriteError(w, http.StatusBadRequest, "El mensaje no puede estar vacío")
		return
	}
	var exists bool
	if err := s.DB.Get(&exists, `
SELECT EXISTS(
  SELECT 1 FROM chats WHERE id_chat = $1 AND (sender_id = $2 OR receiver_id = $2)
)
`, chatID, current.ID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !exists {
		WriteError(w, http.StatusBadRequest, "Chat no existe")
		return
	}
	message := models.Message{}
	err = s.DB.Get(&message, `
INSERT INTO messages (message, chat_id, sender_id, date_message)
VALUES ($1,$2,$3,$4)
RETURNING *
`, req.Message, chatID, current.ID, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusCreated, messageResponse(message))
}

func (s *Server) MessagesByChat(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	chatID, err := parseID(chi.URLParam(r, "chatId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var exists bool
	if err := s.DB.Get(&exists, `
SELECT EXISTS(
  SELECT 1 FROM chats WHERE id_chat = $1 AND (sender_id = $2 OR receiver_id = $2)
)
`, chatID, current.ID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !exists {
		WriteError(w, http.StatusNotFound, "Chat no encontrado")
		return
	}
	messages := []models.Message{}
	if err := s.DB.Select(&messages, `
SELECT * FROM messages WHERE chat_id = $1 ORDER BY date_message
`, chatID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		items = append(items, messageResponse(message))
	}
	WriteJSON(w, http.StatusOK, items)
}

// GetMessage is sender scoped: only the author can address a message
// by id.
func (s *Server) GetMessage(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	messageID, err := parseID(chi.URLParam(r, "messageId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	message := models.Message{}
	if err := s.DB.Get(&message, `
SELECT * FROM messages WHERE id_message = $1 AND sender_id = $2
`, messageID, current.ID); err != nil {
		WriteError(w, http.StatusNotFound, "Mensaje no encontrado")
		return
	}
	WriteJSON(w, http.StatusOK, messageResponse(message))
}

func (s *Server) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	messageID, err := parseID(chi.URLParam(r, "messageId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		WriteError(w, http.StatusBadRequest, "El mensaje no puede estar vacío")
		return
	}
	message := models.Message{}
	err = s.DB.Get(&message, `
UPDATE messages SET message = $3 WHERE id_message = $1 AND sender_id = $2 RETURNING *
`, messageID, current.ID, req.Message)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Mensaje no encontrado")
		return
	}
	WriteJSON(w, http.StatusOK, messageResponse(message))
}

func (s *Server) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	messageID, err := parseID(chi.URLParam(r, "messageId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	result, err := s.DB.Exec(`
DELETE FROM messages WHERE id_message = $1 AND sender_id = $2
`, messageID, current.ID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "Mensaje no encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) CreateSaleMessage(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	saleChatID, err := parseID(chi.URLParam(r, "saleChatId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		WriteError(w, http.StatusBadRequest, "El mensaje no puede estar vacío")
		return
	}
	var exists bool
	if err := s.DB.Get(&exists, `
SELECT EXISTS(
  SELECT 1 FROM sale_chats WHERE id_sale_chat = $1 AND (seller_id = $2 OR buyer_id = $2)
)
`, saleChatID, current.ID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !exists {
		WriteError(w, http.StatusBadRequest, "Chat no existe")
		return
	}
	saleMessage := models.SaleMessage{}
	err = s.DB.Get(&saleMessage, `
INSERT INTO sale_messages (message, sale_chat_id, sender_id, date_message)
VALUES ($1,$2,$3,$4)
RETURNING *
`, req.Message, saleChatID, current.ID, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusCreated, saleMessageResponse(saleMessage))
}

func (s *Server) SaleMessagesByChat(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	saleChatID, err := parseID(chi.URLParam(r, "saleChatId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var exists bool
	if err := s.DB.Get(&exists, `
SELECT EXISTS(
  SELECT 1 FROM sale_chats WHERE id_sale_chat = $1 AND (seller_id = $2 OR buyer_id = $2)
)
`, saleChatID, current.ID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !exists {
		WriteError(w, http.StatusNotFound, "Chat no encontrado")
		return
	}
	saleMessages := []models.SaleMessage{}
	if err := s.DB.Select(&saleMessages, `
SELECT * FROM sale_messages WHERE sale_chat_id = $1 ORDER BY date_message
`, saleChatID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]SaleMessageResponse, 0, len(saleMessages))
	for _, saleMessage := range saleMessages {
		items = append(items, saleMessageResponse(saleMessage))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) GetSaleMessage(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	saleMessageID, err := parseID(chi.URLParam(r, "saleMessageId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	saleMessage := models.SaleMessage{}
	if err := s.DB.Get(&saleMessage, `
SELECT * FROM sale_messages WHERE id_sale_message = $1 AND sender_id = $2
`, saleMessageID, current.ID); err != nil {
		WriteError(w, http.StatusNotFound, "Mensaje no encontrado")
		return
	}
	WriteJSON(w, http.StatusOK, saleMessageResponse(saleMessage))
}

func (s *Server) DeleteSaleMessage(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	saleMessageID, err := parseID(chi.URLParam(r, "saleMessageId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	result, err := s.DB.Exec(`
DELETE FROM sale_messages WHERE id_sale_message = $1 AND sender_id = $2
`, saleMessageID, current.ID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "Mensaje no encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func messageResponse(message models.Message) MessageResponse {
	return MessageResponse{
		IDMessage:   message.ID,
		Message:     message.Message,
		ChatID:      message.ChatID,
		SenderID:    message.SenderID,
		DateMessage: message.DateMessage,
	}
}

func saleMessageResponse(saleMessage models.SaleMessage) SaleMessageResponse {
	return SaleMessageResponse{
		IDSaleMessage: saleMessage.ID,
		Message:       saleMessage.Message,
		SaleChatID:    saleMessage.SaleChatID,
		SenderID:      saleMessage.SenderID,
		DateMessage:   saleMessage.DateMessage,
	}
}
