package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"educalink-backend-go/internal/config"
	"educalink-backend-go/internal/services"
)

func testServer() *Server {
	return NewServer(nil, config.Config{
		JWTSecret:        "test-secret",
		JWTIssuer:        "educalink",
		AccessTTLSeconds: 1800,
	}, nil, services.NewMetricsHub())
}

func TestWriteJSON(t *testing.T) {
	recorder := httptest.NewRecorder()
	WriteJSON(recorder, http.StatusCreated, map[string]string{"ok": "si"})

	if recorder.Code != http.StatusCreated {
		t.Errorf("status = %d", recorder.Code)
	}
	if got := recorder.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("content type = %q", got)
	}
	body := map[string]string{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body["ok"] != "si" {
		t.Errorf("body = %v", body)
	}
}

func TestWriteError(t *testing.T) {
	recorder := httptest.NewRecorder()
	WriteError(recorder, http.StatusBadRequest, "Usuario ya seguido")

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("status = %d", recorder.Code)
	}
	body := ErrorResponse{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body.Message != "Usuario ya seguido" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestRouterBuilds(t *testing.T) {
	server := testServer()
	if server.Router(context.Background()) == nil {
		t.Fatal("nil router")
	}
}

func TestWithAuthRejectsMissingHeader(t *testing.T) {
	server := testServer()
	handler := server.WithAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without credentials")
	}))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users/me/", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", recorder.Code)
	}
	body := ErrorResponse{}
	_ = json.Unmarshal(recorder.Body.Bytes(), &body)
	if body.Message != "No se pudieron validar las credenciales" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestWithAuthRejectsGarbageToken(t *testing.T) {
	server := testServer()
	handler := server.WithAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with a bad token")
	}))
	request := httptest.NewRequest(http.MethodGet, "/users/me/", nil)
	request.Header.Set("Authorization", "Bearer not-a-token")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", recorder.Code)
	}
}

func TestRequireAdminRejectsMissingUser(t *testing.T) {
	server := testServer()
	handler := server.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without an admin")
	}))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin/metrics/history", nil))

	if recorder.Code != http.StatusForbidden {
		t.Errorf("status = %d", recorder.Code)
	}
}

func TestMetricsSocketRejectsMissingToken(t *testing.T) {
	server := testServer()
	recorder := httptest.NewRecorder()
	server.MetricsSocket(recorder, httptest.NewRequest(http.MethodGet, "/ws/metrics", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", recorder.Code)
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID(" 42 "); err != nil || id != 42 {
		t.Errorf("parseID(42) = (%d, %v)", id, err)
	}
	if _, err := parseID("abc"); err == nil {
		t.Error("parseID(abc) accepted")
	}
	if _, err := parseID(""); err == nil {
		t.Error("parseID(empty) accepted")
	}
}

func TestEnumValidators(t *testing.T) {
	if !validPrivacy("Publico") || !validPrivacy("Privado") || validPrivacy("Secreto") {
		t.Error("privacy validation broken")
	}
	if !validSaleStatus("Disponible") || !validSaleStatus("Vendido") || validSaleStatus("Reservado") {
		t.Error("sale status validation broken")
	}
	if !validEducationLevel("Preescolar") || !validEducationLevel("Primaria") || validEducationLevel("Universidad") {
		t.Error("education level validation broken")
	}
}

func TestParseDateParam(t *testing.T) {
	fallback := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if got, ok := parseDateParam("", fallback); !ok || !got.Equal(fallback) {
		t.Errorf("empty = (%v, %v)", got, ok)
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if got, ok := parseDateParam("2024-01-15", fallback); !ok || !got.Equal(want) {
		t.Errorf("date = (%v, %v)", got, ok)
	}
	if _, ok := parseDateParam("ayer", fallback); ok {
		t.Error("garbage date accepted")
	}
}

func TestStringOr(t *testing.T) {
	if got := stringOr(nil, "User"); got != "User" {
		t.Errorf("nil = %q", got)
	}
	empty := "  "
	if got := stringOr(&empty, "User"); got != "User" {
		t.Errorf("blank = %q", got)
	}
	value := " Admin "
	if got := stringOr(&value, "User"); got != "Admin" {
		t.Errorf("value = %q", got)
	}
}
