package services

import (
	"time"

	"github.com/jmoiron/sqlx"

	dbx "educalink-backend-go/internal/db"
)

func ForumExists(db *sqlx.DB, forumID int64) (bool, error) {
	var exists bool
	err := db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM forums WHERE id_forum = $1)`, forumID)
	return exists, err
}

func IsForumMember(db *sqlx.DB, userID, forumID int64) (bool, error) {
	var exists bool
	err := db.Get(&exists, `
SELECT EXISTS(
  SELECT 1 FROM forum_members WHERE id_user = $1 AND id_forum = $2
)
`, userID, forumID)
	return exists, err
}

func MemberCount(db *sqlx.DB, forumID int64) (int, error) {
	var count int
	err := db.Get(&count, `SELECT count(*) FROM forum_members WHERE id_forum = $1`, forumID)
	return count, err
}

// MembershipTotal counts the forums a user belongs to. Leave is
// rejected when this drops to one; a user always keeps at least one
// membership.
func MembershipTotal(db *sqlx.DB, userID int64) (int, error) {
	var count int
	err := db.Get(&count, `SELECT count(*) FROM forum_members WHERE id_user = $1`, userID)
	return count, err
}

func JoinForum(db *sqlx.DB, userID, forumID int64) (int64, error) {
	var memberID int64
	err := db.Get(&memberID, `
INSERT INTO forum_members (id_user, id_forum, join_date)
VALUES ($1,$2,$3)
RETURNING id_member
`, userID, forumID, time.Now().UTC())
	return memberID, err
}

func LeaveForum(db *sqlx.DB, userID, forumID int64) error {
	_, err := db.Exec(`DELETE FROM forum_members WHERE id_user = $1 AND id_forum = $2`, userID, forumID)
	return err
}

// Join adds a user to a forum after the existence and duplicate
// checks. A racing insert caught by the unique index maps to the same
// duplicate error.
func Join(db *sqlx.DB, userID, forumID int64) (int64, error) {
	exists, err := ForumExists(db, forumID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound("Foro no encontrado")
	}
	return addMember(db, userID, forumID)
}

// JoinWithPassword is the join path for the forum-side endpoint: a
// private forum requires its password before membership checks run.
func JoinWithPassword(db *sqlx.DB, tokens TokenService, userID, forumID int64, password string) (int64, error) {
	var gate struct {
		Privacy  string  `db:"privacy"`
		Password *string `db:"password"`
	}
	if err := db.Get(&gate, `SELECT privacy, password FROM forums WHERE id_forum = $1`, forumID); err != nil {
		return 0, ErrNotFound("Foro no encontrado")
	}
	if gate.Privacy == "Privado" {
		if gate.Password == nil || !tokens.VerifyPassword(password, *gate.Password) {
			return 0, ErrUnauthorized("Contraseña incorrecta")
		}
	}
	return addMember(db, userID, forumID)
}

// Leave removes a membership unless it is the user's last one.
func Leave(db *sqlx.DB, userID, forumID int64) error {
	member, err := IsForumMember(db, userID, forumID)
	if err != nil {
		return err
	}
	if !member {
		return ErrBadRequest("Usuario no pertenece al foro")
	}
	total, err := MembershipTotal(db, userID)
	if err != nil {
		return err
	}
	if total <= 1 {
		return ErrBadRequest("Usuario debe pertenecer a al menos un foro")
	}
	return LeaveForum(db, userID, forumID)
}

func addMember(db *sqlx.DB, userID, forumID int64) (int64, error) {
	member, err := IsForumMember(db, userID, forumID)
	if err != nil {
		return 0, err
	}
	if member {
		return 0, ErrBadRequest("Usuario ya pertenece al foro")
	}
	memberID, err := JoinForum(db, userID, forumID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, ErrBadRequest("Usuario ya pertenece al foro")
		}
		return 0, err
	}
	return memberID, nil
}
