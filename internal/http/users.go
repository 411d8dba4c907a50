package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"educalink-backend-go/internal/db"
	"educalink-backend-go/internal/models"
	"educalink-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type RegisterRequest struct {
	Name               string  `json:"name"`
	Lastname           string  `json:"lastname"`
	Mail               string  `json:"mail"`
	Password           string  `json:"password"`
	UserType           *string `json:"user_type"`
	EducationLevel     *string `json:"education_level"`
	Grade              *int    `json:"grade"`
	State              *string `json:"state"`
	ProfileImageURL    *string `json:"profile_image_url"`
	BackgroundImageURL *string `json:"background_image_url"`
}

type LoginRequest struct {
	Mail     string `json:"mail"`
	Password string `json:"password"`
}

type TokenData struct {
	IDUser             int64   `json:"id_user"`
	Mail               string  `json:"mail"`
	Name               string  `json:"name"`
	Lastname           string  `json:"lastname"`
	EducationLevel     string  `json:"education_level"`
	UserType           string  `json:"user_type"`
	State              string  `json:"state"`
	ProfileImageURL    *string `json:"profile_image_url"`
	BackgroundImageURL *string `json:"background_image_url"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   int64     `json:"expires_at"`
	TokenData   TokenData `json:"token_data"`
}

type UserResponse struct {
	IDUser             int64     `json:"id_user"`
	Name               string    `json:"name"`
	Lastname           string    `json:"lastname"`
	Mail               string    `json:"mail"`
	UserType           string    `json:"user_type"`
	EducationLevel     string    `json:"education_level"`
	Grade              *int      `json:"grade,omitempty"`
	State              string    `json:"state"`
	ProfileImageURL    *string   `json:"profile_image_url"`
	BackgroundImageURL *string   `json:"background_image_url"`
	CreationDate       time.Time `json:"creation_date"`
}

type UpdateUserRequest struct {
	Name               *string `json:"name"`
	Lastname           *string `json:"lastname"`
	Mail               *string `json:"mail"`
	Password           *string `json:"password"`
	UserType           *string `json:"user_type"`
	EducationLevel     *string `json:"education_level"`
	Grade              *int    `json:"grade"`
	State              *string `json:"state"`
	ProfileImageURL    *string `json:"profile_image_url"`
	BackgroundImageURL *string `json:"background_image_url"`
}

type FollowerResponse struct {
	IDFollower int64 `json:"id_follower"`
	IDUser     int64 `json:"id_user"`
	FollowerID int64 `json:"follower_id"`
}

type MembershipResponse struct {
	IDMember int64     `json:"id_member"`
	IDUser   int64     `json:"id_user"`
	IDForum  int64     `json:"id_forum"`
	JoinDate time.Time `json:"join_date"`
}

func userResponse(user models.User) UserResponse {
	return UserResponse{
		IDUser:             user.ID,
		Name:               user.Name,
		Lastname:           user.Lastname,
		Mail:               user.Mail,
		UserType:           user.UserType,
		EducationLevel:     user.EducationLevel,
		Grade:              user.Grade,
		State:              user.State,
		ProfileImageURL:    user.ProfileImageURL,
		BackgroundImageURL: user.BackgroundImageURL,
		CreationDate:       user.CreationDate,
	}
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	mail := strings.ToLower(strings.TrimSpace(req.Mail))
	if req.Name == "" || req.Lastname == "" || mail == "" || strings.TrimSpace(req.Password) == "" {
		WriteError(w, http.StatusBadRequest, "Nombre, apellido, correo y contraseña son obligatorios")
		return
	}
	taken, err := services.MailTaken(s.DB, mail)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if taken {
		WriteError(w, http.StatusBadRequest, "El correo ya está registrado")
		return
	}
	hash, err := s.Tokens.HashPassword(req.Password)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	userType := stringOr(req.UserType, "User")
	level := stringOr(req.EducationLevel, "Preescolar")
	if !validEducationLevel(level) {
		WriteError(w, http.StatusBadRequest, "Nivel educativo inválido")
		return
	}
	state := stringOr(req.State, "Activo")
	if !validUserState(state) {
		WriteError(w, http.StatusBadRequest, "Estado inválido")
		return
	}
	profileURL := req.ProfileImageURL
	if profileURL == nil {
		url := services.DefaultUserImageURL
		profileURL = &url
	}
	backgroundURL := req.BackgroundImageURL
	if backgroundURL == nil {
		url := services.DefaultBackgroundImageURL
		backgroundURL = &url
	}
	user := models.User{}
	err = s.DB.Get(&user, `
INSERT INTO users (name, lastname, mail, password, user_type, education_level, grade, state, profile_image_url, background_image_url, creation_date)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING *
`, req.Name, req.Lastname, mail, hash, userType, level, req.Grade, state, profileURL, backgroundURL, time.Now().UTC())
	if err != nil {
		if db.IsUniqueViolation(err) {
			WriteError(w, http.StatusBadRequest, "El correo ya está registrado")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusCreated, userResponse(user))
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	mail := strings.ToLower(strings.TrimSpace(req.Mail))
	user := models.User{}
	if err := s.DB.Get(&user, `SELECT * FROM users WHERE lower(mail) = $1`, mail); err != nil {
		WriteError(w, http.StatusUnauthorized, "Correo o contraseña incorrectos")
		return
	}
	if !s.Tokens.VerifyPassword(req.Password, user.Password) {
		WriteError(w, http.StatusUnauthorized, "Correo o contraseña incorrectos")
		return
	}
	access, exp, err := s.Tokens.CreateAccessToken(user.Mail)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Authorization", "Bearer "+access)
	WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresAt:   exp,
		TokenData: TokenData{
			IDUser:             user.ID,
			Mail:               user.Mail,
			Name:               user.Name,
			Lastname:           user.Lastname,
			EducationLevel:     user.EducationLevel,
			UserType:           user.UserType,
			State:              user.State,
			ProfileImageURL:    user.ProfileImageURL,
			BackgroundImageURL: user.BackgroundImageURL,
		},
	})
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	WriteJSON(w, http.StatusOK, userResponse(*user))
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := []models.User{}
	if err := s.DB.Select(&users, `SELECT * FROM users ORDER BY id_user`); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, userResponses(users))
}

func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	user := models.User{}
	if err := s.DB.Get(&user, `SELECT * FROM users WHERE id_user = $1`, userID); err != nil {
		WriteError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	WriteJSON(w, http.StatusOK, userResponse(user))
}

func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if req.EducationLevel != nil && !validEducationLevel(*req.EducationLevel) {
		WriteError(w, http.StatusBadRequest, "Nivel educativo inválido")
		return
	}
	if req.State != nil && !validUserState(*req.State) {
		WriteError(w, http.StatusBadRequest, "Estado inválido")
		return
	}
	user := models.User{}
	if err := s.DB.Get(&user, `SELECT * FROM users WHERE id_user = $1`, userID); err != nil {
		WriteError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	var passwordHash *string
	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		hash, err := s.Tokens.HashPassword(*req.Password)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		passwordHash = &hash
	}
	err = s.DB.Get(&user, `
UPDATE users
SET name = COALESCE($2, name),
    lastname = COALESCE($3, lastname),
    mail = COALESCE($4, mail),
    password = COALESCE($5, password),
    user_type = COALESCE($6, user_type),
    education_level = COALESCE($7, education_level),
    grade = COALESCE($8, grade),
    state = COALESCE($9, state),
    profile_image_url = COALESCE($10, profile_image_url),
    background_image_url = COALESCE($11, background_image_url)
WHERE id_user = $1
RETURNING *
`, userID, req.Name, req.Lastname, req.Mail, passwordHash, req.UserType,
		req.EducationLevel, req.Grade, req.State, req.ProfileImageURL, req.BackgroundImageURL)
	if err != nil {
		if db.IsUniqueViolation(err) {
			WriteError(w, http.StatusBadRequest, "El correo ya está registrado")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, userResponse(user))
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	result, err := s.DB.Exec(`DELETE FROM users WHERE id_user = $1`, userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) SearchUsers(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	users := []models.User{}
	like := "%" + name + "%"
	if err := s.DB.Select(&users, `
SELECT * FROM users
WHERE name ILIKE $1 OR lastname ILIKE $1 OR (name || ' ' || lastname) ILIKE $1
ORDER BY name, lastname
`, like); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, userResponses(users))
}

func (s *Server) FollowUser(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	followerID, err := services.Follow(s.DB, userID, current.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, FollowerResponse{IDFollower: followerID, IDUser: userID, FollowerID: current.ID})
}

func (s *Server) UnfollowUser(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	if err := services.Unfollow(s.DB, userID, current.ID); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Usuario dejado de seguir"})
}

func (s *Server) Followers(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	users := []models.User{}
	if err := s.DB.Select(&users, `
SELECT u.* FROM users u
JOIN followers f ON f.follower_id = u.id_user
WHERE f.id_user = $1
ORDER BY u.id_user
`, userID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, userResponses(users))
}

func (s *Server) Following(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	users := []models.User{}
	if err := s.DB.Select(&users, `
SELECT u.* FROM users u
JOIN followers f ON f.id_user = u.id_user
WHERE f.follower_id = $1
ORDER BY u.id_user
`, userID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, userResponses(users))
}

func (s *Server) UserJoinForum(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	forumID, err := parseID(chi.URLParam(r, "forumId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	memberID, err := services.Join(s.DB, current.ID, forumID)
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

func (s *Server) UserForums(w http.ResponseWriter, r *http.Request) {
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
ORDER BY f.id_forum
`, userID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, s.forumResponses(forums, false))
}

func (s *Server) UserPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	s.writePosts(w, `WHERE p.user_id = $1`, userID)
}

func userResponses(users []models.User) []UserResponse {
	items := make([]UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, userResponse(user))
	}
	return items
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}

func validUserState(state string) bool {
	return state == "Activo" || state == "Bloqueado"
}

func stringOr(value *string, fallback string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return fallback
	}
	return strings.TrimSpace(*value)
}
