package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/educalink")
	t.Setenv("JWT_SECRET", "secret")

	cfg := Load()
	if cfg.JWTIssuer != "educalink" {
		t.Errorf("issuer = %q", cfg.JWTIssuer)
	}
	if cfg.AccessTTLSeconds != 1800 {
		t.Errorf("ttl = %d", cfg.AccessTTLSeconds)
	}
	if cfg.MediaBucket != "educalinkbucket" {
		t.Errorf("bucket = %q", cfg.MediaBucket)
	}
	if cfg.AWSRegion != "us-east-1" {
		t.Errorf("region = %q", cfg.AWSRegion)
	}
	if cfg.CorsOrigins != nil {
		t.Errorf("origins = %v", cfg.CorsOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/educalink")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TTL_SECONDS", "60")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()
	if cfg.AccessTTLSeconds != 60 {
		t.Errorf("ttl = %d", cfg.AccessTTLSeconds)
	}
	if len(cfg.CorsOrigins) != 2 || cfg.CorsOrigins[0] != "https://a.example" || cfg.CorsOrigins[1] != "https://b.example" {
		t.Errorf("origins = %v", cfg.CorsOrigins)
	}
}

func TestLoadMissingRequiredPanics(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	defer func() {
		if recover() == nil {
			t.Error("missing DATABASE_URL did not panic")
		}
	}()
	Load()
}
