package services

import (
	"github.com/jmoiron/sqlx"

	dbx "educalink-backend-go/internal/db"
)

func UserExists(db *sqlx.DB, userID int64) (bool, error) {
	var exists bool
	err := db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id_user = $1)`, userID)
	return exists, err
}

func MailTaken(db *sqlx.DB, mail string) (bool, error) {
	var exists bool
	err := db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(mail) = lower($1))`, mail)
	return exists, err
}

func IsFollowing(db *sqlx.DB, followedID, followerID int64) (bool, error) {
	var exists bool
	err := db.Get(&exists, `
SELECT EXISTS(
  SELECT 1 FROM followers WHERE id_user = $1 AND follower_id = $2
)
`, followedID, followerID)
	return exists, err
}

// Follow records followerID following followedID and returns the new
// edge id. Self-follows and duplicates are business errors; a unique
// violation from a racing insert maps to the same duplicate error.
func Follow(db *sqlx.DB, followedID, followerID int64) (int64, error) {
	if followedID == followerID {
		return 0, ErrBadRequest("No puedes seguir a ti mismo")
	}
	exists, err := UserExists(db, followedID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound("Usuario no encontrado")
	}
	following, err := IsFollowing(db, followedID, followerID)
	if err != nil {
		return 0, err
	}
	if following {
		return 0, ErrBadRequest("Usuario ya seguido")
	}
	var edgeID int64
	err = db.Get(&edgeID, `
INSERT INTO followers (id_user, follower_id) VALUES ($1,$2) RETURNING id_follower
`, followedID, followerID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, ErrBadRequest("Usuario ya seguido")
		}
		return 0, err
	}
	return edgeID, nil
}

func Unfollow(db *sqlx.DB, followedID, followerID int64) error {
	result, err := db.Exec(`DELETE FROM followers WHERE id_user = $1 AND follower_id = $2`, followedID, followerID)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrBadRequest("Usuario no seguido")
	}
	return nil
}
