package httpapi

import (
	"net/http"
	"strings"
	"time"

	"educalink-backend-go/internal/db"
	"educalink-backend-go/internal/models"

	"github.com/go-chi/chi/v5"
)

type AdResponse struct {
	IDAd        int64     `json:"id_ad"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Link        string    `json:"link"`
	CompanyID   *int64    `json:"company_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type CompanyResponse struct {
	IDCompany int64  `json:"id_company"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	Link      string `json:"link"`
}

// CreateAd is admin only. The creative arrives as a multipart file
// and the company link is optional.
func (s *Server) CreateAd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		WriteError(w, http.StatusBadRequest, "Formulario inválido")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	link := strings.TrimSpace(r.FormValue("link"))
	if title == "" || link == "" {
		WriteError(w, http.StatusBadRequest, "Título y enlace son obligatorios")
		return
	}
	var companyID *int64
	if raw := strings.TrimSpace(r.FormValue("company_id")); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Identificador inválido")
			return
		}
		var exists bool
		if err := s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM companies WHERE id_company = $1)`, id); err != nil {
			WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !exists {
			WriteError(w, http.StatusNotFound, "Empresa no encontrada")
			return
		}
		companyID = &id
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "La imagen es obligatoria")
		return
	}
	defer file.Close()
	imageURL, err := s.storeUpload(r, header, file)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Error al subir la imagen")
		return
	}
	ad := models.Ad{}
	err = s.DB.Get(&ad, `
INSERT INTO ads (title, description, image_url, link, company_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING *
`, title, description, imageURL, link, companyID, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusCreated, adResponse(ad))
}

func (s *Server) ListAds(w http.ResponseWriter, r *http.Request) {
	ads := []models.Ad{}
	if err := s.DB.Select(&ads, `SELECT * FROM ads ORDER BY created_at DESC`); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]AdResponse, 0, len(ads))
	for _, ad := range ads {
		items = append(items, adResponse(ad))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) DeleteAd(w http.ResponseWriter, r *http.Request) {
	adID, err := parseID(chi.URLParam(r, "adId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	result, err := s.DB.Exec(`DELETE FROM ads WHERE id_ad = $1`, adID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "Anuncio no encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) CreateCompany(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		WriteError(w, http.StatusBadRequest, "Formulario inválido")
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	link := strings.TrimSpace(r.FormValue("link"))
	if name == "" || link == "" {
		WriteError(w, http.StatusBadRequest, "Nombre y enlace son obligatorios")
		return
	}
	var taken bool
	if err := s.DB.Get(&taken, `SELECT EXISTS(SELECT 1 FROM companies WHERE lower(name) = lower($1))`, name); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if taken {
		WriteError(w, http.StatusBadRequest, "La empresa ya existe")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "La imagen es obligatoria")
		return
	}
	defer file.Close()
	imageURL, err := s.storeUpload(r, header, file)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Error al subir la imagen")
		return
	}
	company := models.Company{}
	err = s.DB.Get(&company, `
INSERT INTO companies (name, image_url, link) VALUES ($1,$2,$3) RETURNING *
`, name, imageURL, link)
	if err != nil {
		if db.IsUniqueViolation(err) {
			WriteError(w, http.StatusBadRequest, "La empresa ya existe")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusCreated, companyResponse(company))
}

func (s *Server) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies := []models.Company{}
	if err := s.DB.Select(&companies, `SELECT * FROM companies ORDER BY name`); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]CompanyResponse, 0, len(companies))
	for _, company := range companies {
		items = append(items, companyResponse(company))
	}
	WriteJSON(w, http.StatusOK, items)
}

func adResponse(ad models.Ad) AdResponse {
	return AdResponse{
		IDAd:        ad.ID,
		Title:       ad.Title,
		Description: ad.Description,
		ImageURL:    ad.ImageURL,
		Link:        ad.Link,
		CompanyID:   ad.CompanyID,
		CreatedAt:   ad.CreatedAt,
	}
}

func companyResponse(company models.Company) CompanyResponse {
	return CompanyResponse{
		IDCompany: company.ID,
		Name:      company.Name,
		ImageURL:  company.ImageURL,
		Link:      company.Link,
	}
}
