package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	c, err := LoadConfig(t.TempDir(), false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Port != 1111 || c.Env != "dev" || c.IsProd() {
		t.Errorf("got port %d env %q, want the dev setup", c.Port, c.Env)
	}
	if c.JWT.AccessTTL != 5*time.Minute || c.JWT.RefreshTTL != 24*time.Hour {
		t.Errorf("got token ttls %v/%v", c.JWT.AccessTTL, c.JWT.RefreshTTL)
	}
	if c.Database.Driver != "postgres" || c.Database.ConnMaxLifetime != time.Hour {
		t.Errorf("got database %+v", c.Database)
	}
	if c.Pagination.PageSize != 5 || c.Pagination.MaxPageSize != 50 {
		t.Errorf("got pagination %+v", c.Pagination)
	}
	if c.Storage.Driver != "local" || c.Storage.Local.PublicURL != "/media" {
		t.Errorf("got storage %+v", c.Storage)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := `{
		"port": 8080,
		"jwt": {"secret": "from-file", "access_ttl": "10m"},
		"database": {"driver": "sqlite", "file_path": "test.db"},
		"pagination": {"page_size": 10}
	}`
	if err := os.WriteFile(filepath.Join(dir, ".config.json"), []byte(file), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SOCIAL_JWT_SECRET", "from-env")
	t.Setenv("SOCIAL_REDIS_ADDRESS", "localhost:6379")

	c, err := LoadConfig(dir, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !c.IsProd() {
		t.Error("-prod should switch to the prod environment")
	}
	if c.Port != 8080 || c.Pagination.PageSize != 10 || c.Pagination.MaxPageSize != 50 {
		t.Errorf("file values not merged with defaults: %+v", c)
	}
	if c.JWT.Secret != "from-env" {
		t.Errorf("got secret %q, want the environment to win", c.JWT.Secret)
	}
	if c.JWT.AccessTTL != 10*time.Minute {
		t.Errorf("got access ttl %v", c.JWT.AccessTTL)
	}
	if c.Redis.Address != "localhost:6379" {
		t.Errorf("got redis address %q", c.Redis.Address)
	}
	if got := c.Database.ConnectionInfo(); got != "test.db" {
		t.Errorf("got sqlite dsn %q", got)
	}
}

func TestLoadConfigProdRequiresFile(t *testing.T) {
	if _, err := LoadConfig(t.TempDir(), true); err == nil {
		t.Fatal("expected an error without a config file in production")
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".config.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(dir, false); err == nil {
		t.Fatal("expected an error for a malformed config file")
	}
}

func TestConnectionInfo(t *testing.T) {
	dc := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "app", Name: "social", SSLMode: "disable"}
	if got, want := dc.ConnectionInfo(), "host=db port=5432 user=app dbname=social sslmode=disable"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	dc.Password = "pw"
	if got, want := dc.ConnectionInfo(), "host=db port=5432 user=app password=pw dbname=social sslmode=disable"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	dc.Driver, dc.Port = "mysql", 3306
	if got, want := dc.ConnectionInfo(), "app:pw@tcp(db:3306)/social?charset=utf8mb4&parseTime=True&loc=UTC"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOpenDBSqlite(t *testing.T) {
	db, err := OpenDB(DatabaseConfig{Driver: "sqlite", FilePath: filepath.Join(t.TempDir(), "app.db")}, true)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer CloseDB(db)
	var fk int
	if err := db.Raw("PRAGMA foreign_keys").Scan(&fk).Error; err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Error("foreign keys should be enforced")
	}
	if _, err := OpenDB(DatabaseConfig{Driver: "oracle"}, true); err == nil {
		t.Error("expected an error for an unsupported driver")
	}
}
