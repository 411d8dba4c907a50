package services

import (
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	forumsExistsPattern  = `SELECT EXISTS\(SELECT 1 FROM forums`
	membershipPattern    = `SELECT 1 FROM forum_members`
	membershipSumPattern = `count\(\*\) FROM forum_members WHERE id_user`
	forumGatePattern     = `SELECT privacy, password FROM forums`
)

func TestJoinUnknownForumRejected(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, forumsExistsPattern, false)
	_, err := Join(db, 5, 1)
	assertServiceError(t, err, 404, "Foro no encontrado")
}

func TestJoinDuplicateMembershipRejected(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, forumsExistsPattern, true)
	expectExists(mock, membershipPattern, true)
	_, err := Join(db, 5, 1)
	assertServiceError(t, err, 400, "Usuario ya pertenece al foro")
}

func TestJoinLostRaceMapsToDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, forumsExistsPattern, true)
	expectExists(mock, membershipPattern, false)
	mock.ExpectQuery("INSERT INTO forum_members").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	_, err := Join(db, 5, 1)
	assertServiceError(t, err, 400, "Usuario ya pertenece al foro")
}

func TestJoinAddsMember(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, forumsExistsPattern, true)
	expectExists(mock, membershipPattern, false)
	mock.ExpectQuery("INSERT INTO forum_members").
		WillReturnRows(sqlmock.NewRows([]string{"id_member"}).AddRow(int64(3)))
	memberID, err := Join(db, 5, 1)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if memberID != 3 {
		t.Errorf("member id = %d", memberID)
	}
}

func TestJoinPrivateForumWrongPasswordRejected(t *testing.T) {
	db, mock := newMockDB(t)
	tokens := TokenService{Secret: []byte("test-secret"), Issuer: "educalink", AccessTTL: time.Minute}
	hash, err := tokens.HashPassword("clave")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	mock.ExpectQuery(forumGatePattern).
		WillReturnRows(sqlmock.NewRows([]string{"privacy", "password"}).AddRow("Privado", hash))
	_, err = JoinWithPassword(db, tokens, 5, 1, "otra")
	assertServiceError(t, err, 401, "Contraseña incorrecta")
}

func TestJoinPrivateForumCorrectPassword(t *testing.T) {
	db, mock := newMockDB(t)
	tokens := TokenService{Secret: []byte("test-secret"), Issuer: "educalink", AccessTTL: time.Minute}
	hash, err := tokens.HashPassword("clave")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	mock.ExpectQuery(forumGatePattern).
		WillReturnRows(sqlmock.NewRows([]string{"privacy", "password"}).AddRow("Privado", hash))
	expectExists(mock, membershipPattern, false)
	mock.ExpectQuery("INSERT INTO forum_members").
		WillReturnRows(sqlmock.NewRows([]string{"id_member"}).AddRow(int64(4)))
	memberID, err := JoinWithPassword(db, tokens, 5, 1, "clave")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if memberID != 4 {
		t.Errorf("member id = %d", memberID)
	}
}

func TestJoinPublicForumIgnoresPassword(t *testing.T) {
	db, mock := newMockDB(t)
	tokens := TokenService{Secret: []byte("test-secret"), Issuer: "educalink", AccessTTL: time.Minute}
	mock.ExpectQuery(forumGatePattern).
		WillReturnRows(sqlmock.NewRows([]string{"privacy", "password"}).AddRow("Publico", nil))
	expectExists(mock, membershipPattern, false)
	mock.ExpectQuery("INSERT INTO forum_members").
		WillReturnRows(sqlmock.NewRows([]string{"id_member"}).AddRow(int64(6)))
	if _, err := JoinWithPassword(db, tokens, 5, 1, ""); err != nil {
		t.Fatalf("join: %v", err)
	}
}

func TestLeaveNonMemberRejected(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, membershipPattern, false)
	err := Leave(db, 5, 1)
	assertServiceError(t, err, 400, "Usuario no pertenece al foro")
}

func TestLeaveSoleMembershipRejected(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, membershipPattern, true)
	mock.ExpectQuery(membershipSumPattern).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	err := Leave(db, 5, 1)
	assertServiceError(t, err, 400, "Usuario debe pertenecer a al menos un foro")
}

func TestLeaveRemovesMembership(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, membershipPattern, true)
	mock.ExpectQuery(membershipSumPattern).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM forum_members")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := Leave(db, 5, 1); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
