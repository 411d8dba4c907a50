package services

import (
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	chatPairPattern     = `OR \(sender_id = \$2 AND receiver_id = \$1\)`
	saleChatPairPattern = `OR \(seller_id = \$2 AND buyer_id = \$1\)`
)

func TestOpenChatSelfRejected(t *testing.T) {
	db, mock := newMockDB(t)
	_, err := OpenChat(db, 5, 5)
	assertServiceError(t, err, 400, "No puedes iniciar un chat contigo mismo")
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected queries: %v", err)
	}
}

func TestOpenChatUnknownReceiverRejected(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, usersExistsPattern, false)
	_, err := OpenChat(db, 5, 9)
	assertServiceError(t, err, 404, "Usuario no encontrado")
}

// The duplicate check matches the pair in both orientations, so the
// receiver opening a second chat back at the sender is rejected too.
func TestOpenChatDuplicateEitherOrientationRejected(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, usersExistsPattern, true)
	expectExists(mock, chatPairPattern, true)
	_, err := OpenChat(db, 5, 9)
	assertServiceError(t, err, 400, "Este chat ya existe")
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestOpenChatLostRaceMapsToDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, usersExistsPattern, true)
	expectExists(mock, chatPairPattern, false)
	mock.ExpectQuery("INSERT INTO chats").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	_, err := OpenChat(db, 5, 9)
	assertServiceError(t, err, 400, "Este chat ya existe")
}

func TestOpenChatInserts(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, usersExistsPattern, true)
	expectExists(mock, chatPairPattern, false)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO chats")).
		WillReturnRows(sqlmock.NewRows([]string{"id_chat", "sender_id", "receiver_id"}).
			AddRow(int64(1), int64(5), int64(9)))
	chat, err := OpenChat(db, 5, 9)
	if err != nil {
		t.Fatalf("open chat: %v", err)
	}
	if chat.ID != 1 || chat.SenderID != 5 || chat.ReceiverID != 9 {
		t.Errorf("chat = %+v", chat)
	}
}

func TestOpenSaleChatSelfRejected(t *testing.T) {
	db, _ := newMockDB(t)
	_, err := OpenSaleChat(db, 5, 5)
	assertServiceError(t, err, 400, "No puedes iniciar un chat contigo mismo")
}

func TestOpenSaleChatDuplicateEitherOrientationRejected(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, usersExistsPattern, true)
	expectExists(mock, saleChatPairPattern, true)
	_, err := OpenSaleChat(db, 5, 9)
	assertServiceError(t, err, 400, "Este chat ya existe")
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestOpenSaleChatInserts(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, usersExistsPattern, true)
	expectExists(mock, saleChatPairPattern, false)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sale_chats")).
		WillReturnRows(sqlmock.NewRows([]string{"id_sale_chat", "seller_id", "buyer_id"}).
			AddRow(int64(2), int64(5), int64(9)))
	saleChat, err := OpenSaleChat(db, 5, 9)
	if err != nil {
		t.Fatalf("open sale chat: %v", err)
	}
	if saleChat.ID != 2 || saleChat.SellerID != 5 || saleChat.BuyerID != 9 {
		t.Errorf("sale chat = %+v", saleChat)
	}
}
