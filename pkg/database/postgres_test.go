package database

import (
	"testing"
	"testing/fstest"
)

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := DefaultPostgresConfig()
	cfg.Password = "secret"

	want := "host=localhost port=5432 user=postgres password=secret dbname=postboard sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestMigrate_InvalidURL(t *testing.T) {
	if _, err := Migrate(fstest.MapFS{}, "::not-a-url"); err == nil {
		t.Error("Migrate() with an unusable URL should fail")
	}
}
