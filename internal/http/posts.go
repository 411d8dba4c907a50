package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"educalink-backend-go/internal/models"
	"educalink-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type CreatePostRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tag       *string  `json:"tag"`
	ForumID   int64    `json:"forum_id"`
	ImageURLs []string `json:"image_urls"`
}

type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type PostResponse struct {
	IDPost          int64         `json:"id_post"`
	Title           string        `json:"title"`
	Content         string        `json:"content"`
	Tag             *string       `json:"tag"`
	PublicationDate time.Time     `json:"publication_date"`
	ForumID         int64         `json:"forum_id"`
	UserID          int64         `json:"user_id"`
	CommentCount    int           `json:"comment_count"`
	ImageURLs       []string      `json:"image_urls"`
	User            *UserResponse `json:"user,omitempty"`
	ForumName       string        `json:"forum_name,omitempty"`
}

type postRow struct {
	models.ForumPost
	CommentCount int    `db:"comment_count"`
	ForumName    string `db:"forum_name"`
}

const postSelect = `
SELECT p.*, f.name AS forum_name,
       (SELECT count(*) FROM comments c WHERE c.post_id = p.id_post) AS comment_count
FROM forum_posts p
JOIN forums f ON f.id_forum = p.forum_id
`

func (s *Server) CreatePost(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		WriteError(w, http.StatusBadRequest, "Título y contenido son obligatorios")
		return
	}
	exists, err := services.ForumExists(s.DB, req.ForumID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !exists {
		WriteError(w, http.StatusNotFound, "Foro no encontrado")
		return
	}
	member, err := services.IsForumMember(s.DB, current.ID, req.ForumID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !member {
		WriteError(w, http.StatusBadRequest, "El usuario no pertenece a este foro")
		return
	}
	post := models.ForumPost{}
	err = s.DB.Get(&post, `
INSERT INTO forum_posts (title, content, tag, publication_date, forum_id, user_id)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING *
`, req.Title, req.Content, req.Tag, time.Now().UTC(), req.ForumID, current.ID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	for _, url := range req.ImageURLs {
		if strings.TrimSpace(url) == "" {
			continue
		}
		if _, err := s.DB.Exec(`INSERT INTO post_files (post_id, url) VALUES ($1,$2)`, post.ID, url); err != nil {
			WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
	}
	WriteJSON(w, http.StatusCreated, s.postResponseByID(post.ID))
}

func (s *Server) ListPosts(w http.ResponseWriter, r *http.Request) {
	s.writePosts(w, ``)
}

func (s *Server) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := parseID(chi.URLParam(r, "postId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	row := postRow{}
	if err := s.DB.Get(&row, postSelect+`WHERE p.id_post = $1`, postID); err != nil {
		WriteError(w, http.StatusNotFound, "Publicación no encontrada")
		return
	}
	WriteJSON(w, http.StatusOK, s.postResponse(row))
}

func (s *Server) UpdatePost(w http.ResponseWriter, r *http.Request) {
	postID, err := parseID(chi.URLParam(r, "postId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	post := models.ForumPost{}
	err = s.DB.Get(&post, `
UPDATE forum_posts
SET title = COALESCE($2, title),
    content = COALESCE($3, content)
WHERE id_post = $1
RETURNING *
`, postID, req.Title, req.Content)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Publicación no encontrada")
		return
	}
	WriteJSON(w, http.StatusOK, s.postResponseByID(post.ID))
}

func (s *Server) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID, err := parseID(chi.URLParam(r, "postId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	result, err := s.DB.Exec(`DELETE FROM forum_posts WHERE id_post = $1`, postID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "Publicación no encontrada")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) PostsByForum(w http.ResponseWriter, r *http.Request) {
	forumID, err := parseID(chi.URLParam(r, "forumId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	exists, err := services.ForumExists(s.DB, forumID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !exists {
		WriteError(w, http.StatusNotFound, "Foro no encontrado")
		return
	}
	s.writePosts(w, `WHERE p.forum_id = $1`, forumID)
}

func (s *Server) PostsByTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	s.writePosts(w, `WHERE p.tag = $1`, tag)
}

func (s *Server) SearchPosts(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(chi.URLParam(r, "title"))
	s.writePosts(w, `WHERE p.title ILIKE $1`, "%"+title+"%")
}

// PostsByDateRange filters on publication date. Bounds arrive as
// ?from=2024-01-01&to=2024-12-31; either may be omitted.
func (s *Server) PostsByDateRange(w http.ResponseWriter, r *http.Request) {
	from, ok := parseDateParam(r.URL.Query().Get("from"), time.Time{})
	if !ok {
		WriteError(w, http.StatusBadRequest, "Fecha inválida")
		return
	}
	to, ok := parseDateParam(r.URL.Query().Get("to"), time.Now().UTC().Add(24*time.Hour))
	if !ok {
		WriteError(w, http.StatusBadRequest, "Fecha inválida")
		return
	}
	s.writePosts(w, `WHERE p.publication_date >= $1 AND p.publication_date < $2`, from, to)
}

func (s *Server) PostsExcludingUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	s.writePosts(w, `WHERE p.user_id <> $1`, userID)
}

// PostsByUser returns a user's posts in public forums; posts in
// private forums are included only when the caller holds a valid
// token and belongs to that forum.
func (s *Server) PostsByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var viewerID int64
	if viewer, ok := s.userFromHeader(r); ok {
		viewerID = viewer.ID
	}
	s.writePosts(w, `
WHERE p.user_id = $1
  AND (f.privacy = 'Publico' OR EXISTS (
    SELECT 1 FROM forum_members fm WHERE fm.id_forum = p.forum_id AND fm.id_user = $2
  ))`, userID, viewerID)
}

func (s *Server) writePosts(w http.ResponseWriter, where string, args ...interface{}) {
	rows := []postRow{}
	query := postSelect + where + `
ORDER BY p.publication_date DESC`
	if err := s.DB.Select(&rows, query, args...); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]PostResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.postResponse(row))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) postResponse(row postRow) PostResponse {
	resp := PostResponse{
		IDPost:          row.ID,
		Title:           row.Title,
		Content:         row.Content,
		Tag:             row.Tag,
		PublicationDate: row.PublicationDate,
		ForumID:         row.ForumID,
		UserID:          row.UserID,
		CommentCount:    row.CommentCount,
		ImageURLs:       []string{},
		ForumName:       row.ForumName,
	}
	urls := []string{}
	if err := s.DB.Select(&urls, `SELECT url FROM post_files WHERE post_id = $1 ORDER BY id_file`, row.ID); err == nil {
		resp.ImageURLs = urls
	}
	author := models.User{}
	if err := s.DB.Get(&author, `SELECT * FROM users WHERE id_user = $1`, row.UserID); err == nil {
		ur := userResponse(author)
		resp.User = &ur
	}
	return resp
}

func (s *Server) postResponseByID(postID int64) PostResponse {
	row := postRow{}
	if err := s.DB.Get(&row, postSelect+`WHERE p.id_post = $1`, postID); err != nil {
		return PostResponse{IDPost: postID}
	}
	return s.postResponse(row)
}

func parseDateParam(raw string, fallback time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, true
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed, true
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, true
	}
	return time.Time{}, false
}
