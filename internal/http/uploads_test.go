package httpapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubStorage struct {
	url string
	err error
}

func (s stubStorage) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func multipartRequest(t *testing.T, fileField string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, "foto.png")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		if _, err := part.Write([]byte("imagen")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	request := httptest.NewRequest(http.MethodPost, "/forum/", &buf)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	return request
}

func TestUploadFormFileMissingPart(t *testing.T) {
	server := testServer()
	server.Storage = stubStorage{url: "https://example.test/foto.png"}
	url, ok, err := server.uploadFormFile(multipartRequest(t, ""), "image")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if ok || url != "" {
		t.Errorf("missing part = (%q, %v)", url, ok)
	}
}

func TestUploadFormFileReturnsURL(t *testing.T) {
	server := testServer()
	server.Storage = stubStorage{url: "https://example.test/foto.png"}
	url, ok, err := server.uploadFormFile(multipartRequest(t, "image"), "image")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if !ok || url != "https://example.test/foto.png" {
		t.Errorf("upload = (%q, %v)", url, ok)
	}
}

// A present file whose upload fails must surface the error instead of
// falling back to the default image.
func TestUploadFormFileFailureSurfaces(t *testing.T) {
	server := testServer()
	server.Storage = stubStorage{err: errors.New("bucket unreachable")}
	url, ok, err := server.uploadFormFile(multipartRequest(t, "image"), "image")
	if err == nil {
		t.Fatal("upload failure swallowed")
	}
	if ok || url != "" {
		t.Errorf("failed upload = (%q, %v)", url, ok)
	}
}
