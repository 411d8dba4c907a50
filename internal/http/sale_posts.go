package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"educalink-backend-go/internal/models"

	"github.com/go-chi/chi/v5"
)

type SalePostResponse struct {
	IDSalePost      int64         `json:"id_sale_post"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Price           float64       `json:"price"`
	SaleType        string        `json:"sale_type"`
	ImageURL        string        `json:"image_url"`
	Status          string        `json:"status"`
	SellerID        int64         `json:"seller_id"`
	PublicationDate time.Time     `json:"publication_date"`
	Seller          *UserResponse `json:"seller,omitempty"`
}

type UpdateSalePostRequest struct {
	Title string `json:"title"`
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

func validSaleStatus(status string) bool {
	return status == "Disponible" || status == "Vendido"
}

// CreateSalePost accepts a multipart form; the listing image is
// required and is pushed to the object store before the row exists.
func (s *Server) CreateSalePost(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		WriteError(w, http.StatusBadRequest, "Formulario inválido")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	saleType := strings.TrimSpace(r.FormValue("sale_type"))
	price, priceErr := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	if title == "" || description == "" || saleType == "" || priceErr != nil || price < 0 {
		WriteError(w, http.StatusBadRequest, "Título, descripción, tipo y precio son obligatorios")
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
	salePost := models.SalePost{}
	err = s.DB.Get(&salePost, `
INSERT INTO sale_posts (title, description, price, sale_type, image_url, status, seller_id, publication_date)
VALUES ($1,$2,$3,$4,$5,'Disponible',$6,$7)
RETURNING *
`, title, description, price, saleType, imageURL, current.ID, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusCreated, s.salePostResponse(salePost))
}

func (s *Server) ListSalePosts(w http.ResponseWriter, r *http.Request) {
	s.writeSalePosts(w, ``)
}

func (s *Server) GetSalePost(w http.ResponseWriter, r *http.Request) {
	salePostID, err := parseID(chi.URLParam(r, "salePostId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	salePost := models.SalePost{}
	if err := s.DB.Get(&salePost, `SELECT * FROM sale_posts WHERE id_sale_post = $1`, salePostID); err != nil {
		WriteError(w, http.StatusNotFound, "Publicación de venta no encontrada")
		return
	}
	WriteJSON(w, http.StatusOK, s.salePostResponse(salePost))
}

func (s *Server) UpdateSalePost(w http.ResponseWriter, r *http.Request) {
	salePostID, err := parseID(chi.URLParam(r, "salePostId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var req UpdateSalePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		WriteError(w, http.StatusBadRequest, "El título no puede estar vacío")
		return
	}
	salePost := models.SalePost{}
	err = s.DB.Get(&salePost, `
UPDATE sale_posts SET title = $2 WHERE id_sale_post = $1 RETURNING *
`, salePostID, req.Title)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Publicación de venta no encontrada")
		return
	}
	WriteJSON(w, http.StatusOK, s.salePostResponse(salePost))
}

func (s *Server) ChangeSalePostStatus(w http.ResponseWriter, r *http.Request) {
	salePostID, err := parseID(chi.URLParam(r, "salePostId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if !validSaleStatus(req.Status) {
		WriteError(w, http.StatusBadRequest, "Estado inválido")
		return
	}
	salePost := models.SalePost{}
	err = s.DB.Get(&salePost, `
UPDATE sale_posts SET status = $2 WHERE id_sale_post = $1 RETURNING *
`, salePostID, req.Status)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Publicación de venta no encontrada")
		return
	}
	WriteJSON(w, http.StatusOK, s.salePostResponse(salePost))
}

func (s *Server) DeleteSalePost(w http.ResponseWriter, r *http.Request) {
	salePostID, err := parseID(chi.URLParam(r, "salePostId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	result, err := s.DB.Exec(`DELETE FROM sale_posts WHERE id_sale_post = $1`, salePostID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "Publicación de venta no encontrada")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) SalePostsByType(w http.ResponseWriter, r *http.Request) {
	saleType := chi.URLParam(r, "saleType")
	s.writeSalePosts(w, `WHERE sale_type = $1`, saleType)
}

// SalePostsByUser lists a seller's listings still on sale.
func (s *Server) SalePostsByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	s.writeSalePosts(w, `WHERE seller_id = $1 AND status = 'Disponible'`, userID)
}

func (s *Server) writeSalePosts(w http.ResponseWriter, where string, args ...interface{}) {
	salePosts := []models.SalePost{}
	query := `SELECT * FROM sale_posts ` + where + ` ORDER BY publication_date DESC`
	if err := s.DB.Select(&salePosts, query, args...); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]SalePostResponse, 0, len(salePosts))
	for _, salePost := range salePosts {
		items = append(items, s.salePostResponse(salePost))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) salePostResponse(salePost models.SalePost) SalePostResponse {
	resp := SalePostResponse{
		IDSalePost:      salePost.ID,
		Title:           salePost.Title,
		Description:     salePost.Description,
		Price:           salePost.Price,
		SaleType:        salePost.SaleType,
		ImageURL:        salePost.ImageURL,
		Status:          salePost.Status,
		SellerID:        salePost.SellerID,
		PublicationDate: salePost.PublicationDate,
	}
	seller := models.User{}
	if err := s.DB.Get(&seller, `SELECT * FROM users WHERE id_user = $1`, salePost.SellerID); err == nil {
		ur := userResponse(seller)
		resp.Seller = &ur
	}
	return resp
}
