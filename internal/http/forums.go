package httpapi

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"educalink-backend-go/internal/db"
	"educalink-backend-go/internal/models"
	"educalink-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

// 10 MiB, same cap for every multipart endpoint.
const maxMultipartMemory = 10 << 20

type ForumResponse struct {
	IDForum            int64          `json:"id_forum"`
	Name               string         `json:"name"`
	Description        string         `json:"description"`
	Privacy            string         `json:"privacy"`
	EducationLevel     string         `json:"education_level"`
	Grade              int            `json:"grade"`
	ImageURL           *string        `json:"image_url"`
	BackgroundImageURL *string        `json:"background_image_url"`
	IDUser             int64          `json:"id_user"`
	CreationDate       time.Time      `json:"creation_date"`
	UsersCount         int            `json:"users_count"`
	Users              []UserResponse `json:"users,omitempty"`
	Creator            *UserResponse  `json:"creator,omitempty"`
}

func validPrivacy(privacy string) bool {
	return privacy == "Publico" || privacy == "Privado"
}

func validEducationLevel(level string) bool {
	return level == "Preescolar" || level == "Primaria"
}

func (s *Server) CreateForum(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		WriteError(w, http.StatusBadRequest, "Formulario inválido")
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))
	privacy := strings.TrimSpace(r.FormValue("privacy"))
	level := strings.TrimSpace(r.FormValue("education_level"))
	if name == "" || description == "" {
		WriteError(w, http.StatusBadRequest, "Nombre y descripción son obligatorios")
		return
	}
	if privacy == "" {
		privacy = "Publico"
	}
	if !validPrivacy(privacy) {
		WriteError(w, http.StatusBadRequest, "Privacidad inválida")
		return
	}
	if level == "" {
		level = "Preescolar"
	}
	if !validEducationLevel(level) {
		WriteError(w, http.StatusBadRequest, "Nivel educativo inválido")
		return
	}
	grade, err := strconv.Atoi(strings.TrimSpace(r.FormValue("grade")))
	if err != nil || grade < 1 {
		grade = 1
	}

	var taken bool
	if err := s.DB.Get(&taken, `SELECT EXISTS(SELECT 1 FROM forums WHERE lower(name) = lower($1))`, name); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if taken {
		WriteError(w, http.StatusBadRequest, "El nombre del foro ya existe")
		return
	}

	var passwordHash *string
	if privacy == "Privado" {
		password := r.FormValue("password")
		if strings.TrimSpace(password) == "" {
			WriteError(w, http.StatusBadRequest, "La contraseña es obligatoria para foros privados")
			return
		}
		hash, err := s.Tokens.HashPassword(password)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		passwordHash = &hash
	}

	imageURL := services.DefaultGroupImageURL
	url, ok, err := s.uploadFormFile(r, "image")
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Error al subir la imagen")
		return
	}
	if ok {
		imageURL = url
	}
	backgroundURL := services.DefaultBackgroundImageURL
	url, ok, err = s.uploadFormFile(r, "background_image")
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Error al subir la imagen")
		return
	}
	if ok {
		backgroundURL = url
	}

	forum := models.Forum{}
	err = s.DB.Get(&forum, `
INSERT INTO forums (name, description, privacy, password, education_level, grade, image_url, background_image_url, id_user, creation_date)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING *
`, name, description, privacy, passwordHash, level, grade, imageURL, backgroundURL, current.ID, time.Now().UTC())
	if err != nil {
		if db.IsUniqueViolation(err) {
			WriteError(w, http.StatusBadRequest, "El nombre del foro ya existe")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if _, err := services.JoinForum(s.DB, current.ID, forum.ID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusCreated, s.forumResponse(forum, true))
}

func (s *Server) ListForums(w http.ResponseWriter, r *http.Request) {
	forums := []models.Forum{}
	if err := s.DB.Select(&forums, `SELECT * FROM forums ORDER BY id_forum`); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, s.forumResponses(forums, false))
}

func (s *Server) GetForum(w http.ResponseWriter, r *http.Request) {
	forumID, err := parseID(chi.URLParam(r, "forumId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	forum := models.Forum{}
	if err := s.DB.Get(&forum, `SELECT * FROM forums WHERE id_forum = $1`, forumID); err != nil {
		WriteError(w, http.StatusNotFound, "Foro no encontrado")
		return
	}
	WriteJSON(w, http.StatusOK, s.forumResponse(forum, true))
}

func (s *Server) GetForumByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	forum := models.Forum{}
	if err := s.DB.Get(&forum, `SELECT * FROM forums WHERE lower(name) = lower($1)`, name); err != nil {
		WriteError(w, http.StatusNotFound, "Foro no encontrado")
		return
	}
	WriteJSON(w, http.StatusOK, s.forumResponse(forum, true))
}

func (s *Server) UpdateForum(w http.ResponseWriter, r *http.Request) {
	forumID, err := parseID(chi.URLParam(r, "forumId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	forum := models.Forum{}
	if err := s.DB.Get(&forum, `SELECT * FROM forums WHERE id_forum = $1`, forumID); err != nil {
		WriteError(w, http.StatusNotFound, "Foro no encontrado")
		return
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		WriteError(w, http.StatusBadRequest, "Formulario inválido")
		return
	}
	var name, description, level *string
	var grade *int
	if value := strings.TrimSpace(r.FormValue("name")); value != "" {
		name = &value
	}
	if value := strings.TrimSpace(r.FormValue("description")); value != "" {
		description = &value
	}
	if value := strings.TrimSpace(r.FormValue("education_level")); value != "" {
		if !validEducationLevel(value) {
			WriteError(w, http.StatusBadRequest, "Nivel educativo inválido")
			return
		}
		level = &value
	}
	if value, err := strconv.Atoi(strings.TrimSpace(r.FormValue("grade"))); err == nil && value >= 1 {
		grade = &value
	}
	var imageURL, backgroundURL *string
	if url, ok, err := s.uploadFormFile(r, "image"); err != nil {
		WriteError(w, http.StatusInternalServerError, "Error al subir la imagen")
		return
	} else if ok {
		imageURL = &url
	}
	if url, ok, err := s.uploadFormFile(r, "background_image"); err != nil {
		WriteError(w, http.StatusInternalServerError, "Error al subir la imagen")
		return
	} else if ok {
		backgroundURL = &url
	}
	err = s.DB.Get(&forum, `
UPDATE forums
SET name = COALESCE($2, name),
    description = COALESCE($3, description),
    education_level = COALESCE($4, education_level),
    grade = COALESCE($5, grade),
    image_url = COALESCE($6, image_url),
    background_image_url = COALESCE($7, background_image_url)
WHERE id_forum = $1
RETURNING *
`, forumID, name, description, level, grade, imageURL, backgroundURL)
	if err != nil {
		if db.IsUniqueViolation(err) {
			WriteError(w, http.StatusBadRequest, "El nombre del foro ya existe")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, s.forumResponse(forum, true))
}

func (s *Server) DeleteForum(w http.ResponseWriter, r *http.Request) {
	forumID, err := parseID(chi.URLParam(r, "forumId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	result, err := s.DB.Exec(`DELETE FROM forums WHERE id_forum = $1`, forumID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "Foro no encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ForumUsers(w http.ResponseWriter, r *http.Request) {
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
	users := []models.User{}
	if err := s.DB.Select(&users, `
SELECT u.* FROM users u
JOIN forum_members fm ON fm.id_user = u.id_user
WHERE fm.id_forum = $1
ORDER BY fm.join_date
`, forumID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, userResponses(users))
}

func (s *Server) JoinForum(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	forumID, err := parseID(chi.URLParam(r, "forumId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	memberID, err := services.JoinWithPassword(s.DB, s.Tokens, current.ID, forumID, r.URL.Query().Get("password"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, MembershipResponse{
		IDMember: memberID,
		IDUser:   current.ID,
		IDForum:  forumID,
		JoinDate: time.Now().UTC(),
	})
}

func (s *Server) LeaveForum(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	forumID, err := parseID(chi.URLParam(r, "forumId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	if err := services.Leave(s.DB, current.ID, forumID); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Usuario ha salido del foro"})
}

func (s *Server) SearchForums(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	forums := []models.Forum{}
	if err := s.DB.Select(&forums, `
SELECT * FROM forums WHERE name ILIKE $1 ORDER BY name
`, "%"+name+"%"); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, s.forumResponses(forums, false))
}

func (s *Server) ForumsByEducationLevel(w http.ResponseWriter, r *http.Request) {
	level := chi.URLParam(r, "level")
	if !validEducationLevel(level) {
		WriteError(w, http.StatusBadRequest, "Nivel educativo inválido")
		return
	}
	forums := []models.Forum{}
	if err := s.DB.Select(&forums, `
SELECT * FROM forums WHERE education_level = $1 ORDER BY id_forum
`, level); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, s.forumResponses(forums, false))
}

func (s *Server) ForumsByGrade(w http.ResponseWriter, r *http.Request) {
	grade, err := parseID(chi.URLParam(r, "grade"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	forums := []models.Forum{}
	if err := s.DB.Select(&forums, `
SELECT * FROM forums WHERE grade = $1 ORDER BY id_forum
`, grade); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, s.forumResponses(forums, false))
}

func (s *Server) ForumsByGradeAndLevel(w http.ResponseWriter, r *http.Request) {
	grade, err := parseID(chi.URLParam(r, "grade"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	level := chi.URLParam(r, "level")
	if !validEducationLevel(level) {
		WriteError(w, http.StatusBadRequest, "Nivel educativo inválido")
		return
	}
	forums := []models.Forum{}
	if err := s.DB.Select(&forums, `
SELECT * FROM forums WHERE grade = $1 AND education_level = $2 ORDER BY id_forum
`, grade, level); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, s.forumResponses(forums, false))
}

// ForumsByUser lists the forums a user belongs to, most populated
// first.
func (s *Server) ForumsByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	forums := []models.Forum{}
	if err := s.DB.Select(&forums, `
SELECT f.* FROM forums f
JOIN forum_members fm ON fm.id_forum = f.id_forum
WHERE fm.id_user = $1
ORDER BY (SELECT count(*) FROM forum_members m WHERE m.id_forum = f.id_forum) DESC, f.id_forum
`, userID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, s.forumResponses(forums, false))
}

func (s *Server) ForumsUserNotIn(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	forums := []models.Forum{}
	if err := s.DB.Select(&forums, `
SELECT f.* FROM forums f
WHERE NOT EXISTS (
  SELECT 1 FROM forum_members fm WHERE fm.id_forum = f.id_forum AND fm.id_user = $1
)
ORDER BY f.id_forum
`, userID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, s.forumResponses(forums, false))
}

func (s *Server) ForumsUserNotInByLevel(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	level := chi.URLParam(r, "level")
	if !validEducationLevel(level) {
		WriteError(w, http.StatusBadRequest, "Nivel educativo inválido")
		return
	}
	forums := []models.Forum{}
	if err := s.DB.Select(&forums, `
SELECT f.* FROM forums f
WHERE f.education_level = $2
  AND NOT EXISTS (
    SELECT 1 FROM forum_members fm WHERE fm.id_forum = f.id_forum AND fm.id_user = $1
  )
ORDER BY f.id_forum
`, userID, level); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, s.forumResponses(forums, false))
}

func (s *Server) ForumsUserNotInByGradeAndLevel(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	grade, err := parseID(chi.URLParam(r, "grade"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	level := chi.URLParam(r, "level")
	if !validEducationLevel(level) {
		WriteError(w, http.StatusBadRequest, "Nivel educativo inválido")
		return
	}
	forums := []models.Forum{}
	if err := s.DB.Select(&forums, `
SELECT f.* FROM forums f
WHERE f.grade = $2 AND f.education_level = $3
  AND NOT EXISTS (
    SELECT 1 FROM forum_members fm WHERE fm.id_forum = f.id_forum AND fm.id_user = $1
  )
ORDER BY f.id_forum
`, userID, grade, level); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, s.forumResponses(forums, false))
}

func (s *Server) forumResponse(forum models.Forum, withUsers bool) ForumResponse {
	resp := ForumResponse{
		IDForum:            forum.ID,
		Name:               forum.Name,
		Description:        forum.Description,
		Privacy:            forum.Privacy,
		EducationLevel:     forum.EducationLevel,
		Grade:              forum.Grade,
		ImageURL:           forum.ImageURL,
		BackgroundImageURL: forum.BackgroundImageURL,
		IDUser:             forum.UserID,
		CreationDate:       forum.CreationDate,
	}
	if count, err := services.MemberCount(s.DB, forum.ID); err == nil {
		resp.UsersCount = count
	}
	if !withUsers {
		return resp
	}
	members := []models.User{}
	if err := s.DB.Select(&members, `
SELECT u.* FROM users u
JOIN forum_members fm ON fm.id_user = u.id_user
WHERE fm.id_forum = $1
ORDER BY fm.join_date
`, forum.ID); err == nil {
		resp.Users = userResponses(members)
	}
	creator := models.User{}
	if err := s.DB.Get(&creator, `SELECT * FROM users WHERE id_user = $1`, forum.UserID); err == nil {
		cr := userResponse(creator)
		resp.Creator = &cr
	}
	return resp
}

func (s *Server) forumResponses(forums []models.Forum, withUsers bool) []ForumResponse {
	items := make([]ForumResponse, 0, len(forums))
	for _, forum := range forums {
		items = append(items, s.forumResponse(forum, withUsers))
	}
	return items
}

// uploadFormFile pushes an optional multipart file to the object
// store and returns its public URL. A missing part is not an error; a
// failed upload is.
func (s *Server) uploadFormFile(r *http.Request, field string) (string, bool, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", false, nil
	}
	defer file.Close()
	url, err := s.storeUpload(r, header, file)
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

func (s *Server) storeUpload(r *http.Request, header *multipart.FileHeader, file multipart.File) (string, error) {
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return s.Storage.Upload(r.Context(), header.Filename, contentType, file)
}
