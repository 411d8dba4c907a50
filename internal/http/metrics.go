package httpapi

import (
	"net/http"
	"strconv"

	"educalink-backend-go/internal/models"
	"educalink-backend-go/internal/services"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (s *Server) MetricsHistory(w http.ResponseWriter, r *http.Request) {
	limit := 60
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	samples, err := services.LatestMetrics(s.DB, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, samples)
}

// MetricsSocket streams live samples to admin dashboards. Browsers
// cannot set headers on a websocket handshake, so the token rides the
// query string.
func (s *Server) MetricsSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		WriteError(w, http.StatusUnauthorized, "No se pudieron validar las credenciales")
		return
	}
	mail, err := s.Tokens.ParseToken(tokenStr)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "No se pudieron validar las credenciales")
		return
	}
	user := models.User{}
	if err := s.DB.Get(&user, `SELECT * FROM users WHERE lower(mail) = lower($1)`, mail); err != nil {
		WriteError(w, http.StatusUnauthorized, "No se pudieron validar las credenciales")
		return
	}
	if user.UserType != "Admin" {
		WriteError(w, http.StatusForbidden, "No tienes permisos para realizar esta acción")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.MetricsHub.Add(conn)
	defer func() {
		s.MetricsHub.Remove(conn)
		conn.Close()
	}()
	// Drain control frames until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
