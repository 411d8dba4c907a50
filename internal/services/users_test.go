package services

import (
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	usersExistsPattern     = `SELECT EXISTS\(SELECT 1 FROM users`
	followersExistsPattern = `SELECT 1 FROM followers`
)

func TestFollowSelfRejected(t *testing.T) {
	db, mock := newMockDB(t)
	_, err := Follow(db, 5, 5)
	assertServiceError(t, err, 400, "No puedes seguir a ti mismo")
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected queries: %v", err)
	}
}

func TestFollowUnknownUserRejected(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, usersExistsPattern, false)
	_, err := Follow(db, 5, 9)
	assertServiceError(t, err, 404, "Usuario no encontrado")
}

func TestFollowDuplicateRejected(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, usersExistsPattern, true)
	expectExists(mock, followersExistsPattern, true)
	_, err := Follow(db, 5, 9)
	assertServiceError(t, err, 400, "Usuario ya seguido")
}

func TestFollowLostRaceMapsToDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, usersExistsPattern, true)
	expectExists(mock, followersExistsPattern, false)
	mock.ExpectQuery("INSERT INTO followers").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	_, err := Follow(db, 5, 9)
	assertServiceError(t, err, 400, "Usuario ya seguido")
}

func TestFollowInsertsEdge(t *testing.T) {
	db, mock := newMockDB(t)
	expectExists(mock, usersExistsPattern, true)
	expectExists(mock, followersExistsPattern, false)
	mock.ExpectQuery("INSERT INTO followers").
		WillReturnRows(sqlmock.NewRows([]string{"id_follower"}).AddRow(int64(7)))
	edgeID, err := Follow(db, 5, 9)
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if edgeID != 7 {
		t.Errorf("edge id = %d", edgeID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUnfollowNotFollowingRejected(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM followers")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := Unfollow(db, 5, 9)
	assertServiceError(t, err, 400, "Usuario no seguido")
}

func TestUnfollowRemovesEdge(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM followers")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := Unfollow(db, 5, 9); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
}
