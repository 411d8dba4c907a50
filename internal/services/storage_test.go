package services

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestObjectKeyFormat(t *testing.T) {
	before := time.Now().Unix()
	key := ObjectKey("foto.png")
	after := time.Now().Unix()

	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 {
		t.Fatalf("key %q missing timestamp prefix", key)
	}
	stamp, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		t.Fatalf("prefix %q not a unix timestamp", parts[0])
	}
	if stamp < before || stamp > after {
		t.Errorf("timestamp %d outside [%d, %d]", stamp, before, after)
	}
	if parts[1] != "foto.png" {
		t.Errorf("filename = %q, want foto.png", parts[1])
	}
}

func TestPublicURL(t *testing.T) {
	url := PublicURL("educalinkbucket", "us-east-1", "123_foto.png")
	want := "https://educalinkbucket.s3.us-east-1.amazonaws.com/123_foto.png"
	if url != want {
		t.Errorf("url = %q, want %q", url, want)
	}
}
