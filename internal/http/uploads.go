package httpapi

import (
	"net/http"
)

type UploadResponse struct {
	Message  string   `json:"message"`
	FileURLs []string `json:"fileUrls"`
}

// UploadFiles pushes every part named "files" to the object store and
// returns the public URLs in upload order.
func (s *Server) UploadFiles(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		WriteError(w, http.StatusBadRequest, "Formulario inválido")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		WriteError(w, http.StatusBadRequest, "No se enviaron archivos")
		return
	}
	urls := make([]string, 0, len(r.MultipartForm.File["files"]))
	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "Error al subir los archivos")
			return
		}
		url, err := s.storeUpload(r, header, file)
		file.Close()
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "Error al subir los archivos")
			return
		}
		urls = append(urls, url)
	}
	WriteJSON(w, http.StatusOK, UploadResponse{
		Message:  "Archivos subidos con éxito",
		FileURLs: urls,
	})
}
