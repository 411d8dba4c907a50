package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"educalink-backend-go/internal/models"

	"github.com/go-chi/chi/v5"
)

type CreateCommentRequest struct {
	CommentText string `json:"comment_text"`
	PostID      int64  `json:"post_id"`
}

type CommentResponse struct {
	IDComment   int64         `json:"id_comment"`
	CommentText string        `json:"comment_text"`
	CommentDate time.Time     `json:"comment_date"`
	PostID      int64         `json:"post_id"`
	UserID      int64         `json:"user_id"`
	User        *UserResponse `json:"user,omitempty"`
}

func (s *Server) CreateComment(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if strings.TrimSpace(req.CommentText) == "" {
		WriteError(w, http.StatusBadRequest, "El comentario no puede estar vacío")
		return
	}
	var exists bool
	if err := s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM forum_posts WHERE id_post = $1)`, req.PostID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !exists {
		WriteError(w, http.StatusNotFound, "Publicación no encontrada")
		return
	}
	comment := models.Comment{}
	err := s.DB.Get(&comment, `
INSERT INTO comments (comment_text, comment_date, post_id, user_id)
VALUES ($1,$2,$3,$4)
RETURNING *
`, req.CommentText, time.Now().UTC(), req.PostID, current.ID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	resp := commentResponse(comment)
	author := userResponse(*current)
	resp.User = &author
	WriteJSON(w, http.StatusCreated, resp)
}

func (s *Server) CommentsByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := parseID(chi.URLParam(r, "postId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	comments := []models.Comment{}
	if err := s.DB.Select(&comments, `
SELECT * FROM comments WHERE post_id = $1 ORDER BY comment_date
`, postID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		resp := commentResponse(comment)
		author := models.User{}
		if err := s.DB.Get(&author, `SELECT * FROM users WHERE id_user = $1`, comment.UserID); err == nil {
			ur := userResponse(author)
			resp.User = &ur
		}
		items = append(items, resp)
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := parseID(chi.URLParam(r, "commentId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	result, err := s.DB.Exec(`DELETE FROM comments WHERE id_comment = $1`, commentID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "Comentario no encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func commentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		IDComment:   comment.ID,
		CommentText: comment.CommentText,
		CommentDate: comment.CommentDate,
		PostID:      comment.PostID,
		UserID:      comment.UserID,
	}
}
