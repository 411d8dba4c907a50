package httpapi

import (
	"net/http"

	"educalink-backend-go/internal/models"
	"educalink-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type ChatResponse struct {
	IDChat     int64         `json:"id_chat"`
	SenderID   int64         `json:"sender_id"`
	ReceiverID int64         `json:"receiver_id"`
	Sender     *UserResponse `json:"sender,omitempty"`
	Receiver   *UserResponse `json:"receiver,omitempty"`
}

type SaleChatResponse struct {
	IDSaleChat int64         `json:"id_sale_chat"`
	SellerID   int64         `json:"seller_id"`
	BuyerID    int64         `json:"buyer_id"`
	Seller     *UserResponse `json:"seller,omitempty"`
	Buyer      *UserResponse `json:"buyer,omitempty"`
}

// CreateChat opens a pair chat between the caller and the receiver.
// A pair has at most one chat regardless of who opened it.
func (s *Server) CreateChat(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	receiverID, err := parseID(chi.URLParam(r, "receiverId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	chat, err := services.OpenChat(s.DB, current.ID, receiverID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, s.chatResponse(chat))
}

func (s *Server) MyChats(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	s.writeChats(w, current.ID)
}

func (s *Server) ChatsByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	s.writeChats(w, userID)
}

// GetChat is scoped to the chat's participants; anyone else gets the
// same 404 as a missing chat.
func (s *Server) GetChat(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	chatID, err := parseID(chi.URLParam(r, "chatId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	chat := models.Chat{}
	if err := s.DB.Get(&chat, `
SELECT * FROM chats WHERE id_chat = $1 AND (sender_id = $2 OR receiver_id = $2)
`, chatID, current.ID); err != nil {
		WriteError(w, http.StatusNotFound, "Chat no encontrado")
		return
	}
	WriteJSON(w, http.StatusOK, s.chatResponse(chat))
}

func (s *Server) DeleteChat(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	chatID, err := parseID(chi.URLParam(r, "chatId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	result, err := s.DB.Exec(`
DELETE FROM chats WHERE id_chat = $1 AND (sender_id = $2 OR receiver_id = $2)
`, chatID, current.ID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "Chat no encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSaleChat opens the marketplace conversation between the
// caller as buyer and the seller in the path.
func (s *Server) CreateSaleChat(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	sellerID, err := parseID(chi.URLParam(r, "sellerId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	saleChat, err := services.OpenSaleChat(s.DB, sellerID, current.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, s.saleChatResponse(saleChat))
}

func (s *Server) SaleChatsByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	saleChats := []models.SaleChat{}
	if err := s.DB.Select(&saleChats, `
SELECT * FROM sale_chats WHERE seller_id = $1 OR buyer_id = $1 ORDER BY id_sale_chat
`, userID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]SaleChatResponse, 0, len(saleChats))
	for _, saleChat := range saleChats {
		items = append(items, s.saleChatResponse(saleChat))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) GetSaleChat(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	saleChatID, err := parseID(chi.URLParam(r, "saleChatId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	saleChat := models.SaleChat{}
	if err := s.DB.Get(&saleChat, `
SELECT * FROM sale_chats WHERE id_sale_chat = $1 AND (seller_id = $2 OR buyer_id = $2)
`, saleChatID, current.ID); err != nil {
		WriteError(w, http.StatusNotFound, "Chat no encontrado")
		return
	}
	WriteJSON(w, http.StatusOK, s.saleChatResponse(saleChat))
}

func (s *Server) DeleteSaleChat(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	saleChatID, err := parseID(chi.URLParam(r, "saleChatId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	result, err := s.DB.Exec(`
DELETE FROM sale_chats WHERE id_sale_chat = $1 AND (seller_id = $2 OR buyer_id = $2)
`, saleChatID, current.ID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "Chat no encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeChats(w http.ResponseWriter, userID int64) {
	chats := []models.Chat{}
	if err := s.DB.Select(&chats, `
SELECT * FROM chats WHERE sender_id = $1 OR receiver_id = $1 ORDER BY id_chat
`, userID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]ChatResponse, 0, len(chats))
	for _, chat := range chats {
		items = append(items, s.chatResponse(chat))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) chatResponse(chat models.Chat) ChatResponse {
	resp := ChatResponse{
		IDChat:     chat.ID,
		SenderID:   chat.SenderID,
		ReceiverID: chat.ReceiverID,
	}
	if user, ok := s.lookupUser(chat.SenderID); ok {
		resp.Sender = user
	}
	if user, ok := s.lookupUser(chat.ReceiverID); ok {
		resp.Receiver = user
	}
	return resp
}

func (s *Server) saleChatResponse(saleChat models.SaleChat) SaleChatResponse {
	resp := SaleChatResponse{
		IDSaleChat: saleChat.ID,
		SellerID:   saleChat.SellerID,
		BuyerID:    saleChat.BuyerID,
	}
	if user, ok := s.lookupUser(saleChat.SellerID); ok {
		resp.Seller = user
	}
	if user, ok := s.lookupUser(saleChat.BuyerID); ok {
		resp.Buyer = user
	}
	return resp
}

func (s *Server) lookupUser(userID int64) (*UserResponse, bool) {
	user := models.User{}
	if err := s.DB.Get(&user, `SELECT * FROM users WHERE id_user = $1`, userID); err != nil {
		return nil, false
	}
	resp := userResponse(user)
	return &resp, true
}
