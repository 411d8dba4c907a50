package services

import (
	"github.com/jmoiron/sqlx"

	dbx "educalink-backend-go/internal/db"
	"educalink-backend-go/internal/models"
)

// OpenChat creates the pair chat between sender and receiver. A pair
// has at most one chat regardless of who opened it; the unordered
// unique index backs the duplicate check against races.
func OpenChat(db *sqlx.DB, senderID, receiverID int64) (models.Chat, error) {
	if senderID == receiverID {
		return models.Chat{}, ErrBadRequest("No puedes iniciar un chat contigo mismo")
	}
	exists, err := UserExists(db, receiverID)
	if err != nil {
		return models.Chat{}, err
	}
	if !exists {
		return models.Chat{}, ErrNotFound("Usuario no encontrado")
	}
	var duplicated bool
	if err := db.Get(&duplicated, `
SELECT EXISTS(
  SELECT 1 FROM chats
  WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
)
`, senderID, receiverID); err != nil {
		return models.Chat{}, err
	}
	if duplicated {
		return models.Chat{}, ErrBadRequest("Este chat ya existe")
	}
	chat := models.Chat{}
	err = db.Get(&chat, `
INSERT INTO chats (sender_id, receiver_id) VALUES ($1,$2) RETURNING *
`, senderID, receiverID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return models.Chat{}, ErrBadRequest("Este chat ya existe")
		}
		return models.Chat{}, err
	}
	return chat, nil
}

// OpenSaleChat creates the marketplace conversation between a buyer
// and a seller, rejecting a duplicate in either orientation.
func OpenSaleChat(db *sqlx.DB, sellerID, buyerID int64) (models.SaleChat, error) {
	if sellerID == buyerID {
		return models.SaleChat{}, ErrBadRequest("No puedes iniciar un chat contigo mismo")
	}
	exists, err := UserExists(db, sellerID)
	if err != nil {
		return models.SaleChat{}, err
	}
	if !exists {
		return models.SaleChat{}, ErrNotFound("Usuario no encontrado")
	}
	var duplicated bool
	if err := db.Get(&duplicated, `
SELECT EXISTS(
  SELECT 1 FROM sale_chats
  WHERE (seller_id = $1 AND buyer_id = $2) OR (seller_id = $2 AND buyer_id = $1)
)
`, sellerID, buyerID); err != nil {
		return models.SaleChat{}, err
	}
	if duplicated {
		return models.SaleChat{}, ErrBadRequest("Este chat ya existe")
	}
	saleChat := models.SaleChat{}
	err = db.Get(&saleChat, `
INSERT INTO sale_chats (seller_id, buyer_id) VALUES ($1,$2) RETURNING *
`, sellerID, buyerID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return models.SaleChat{}, ErrBadRequest("Este chat ya existe")
		}
		return models.SaleChat{}, err
	}
	return saleChat, nil
}
