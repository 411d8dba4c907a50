package services

import (
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "pgx"), mock
}

func expectExists(mock sqlmock.Sqlmock, pattern string, value bool) {
	mock.ExpectQuery(pattern).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(value))
}

func assertServiceError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var svcErr ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("err = %v, want ServiceError", err)
	}
	if svcErr.Status != status || svcErr.Message != message {
		t.Errorf("err = %+v, want %d %q", svcErr, status, message)
	}
}
