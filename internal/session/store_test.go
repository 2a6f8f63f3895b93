package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func sampleEntries() map[string]string {
	return map[string]string{
		KeyAccessToken:  "access-1",
		KeyRefreshToken: "refresh-1",
		KeyUser:         `{"id":1,"email":"admin@example.com","role":"superadmin"}`,
	}
}

func TestFileStoreRoundtripPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewFileStore(path, "")
	ctx := context.Background()

	if err := s.Save(ctx, sampleEntries()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got[KeyAccessToken] != "access-1" || got[KeyRefreshToken] != "refresh-1" {
		t.Errorf("unexpected entries %v", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestFileStoreEncrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()

	if err := NewFileStore(path, "hunter22").Save(ctx, sampleEntries()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, _ := os.ReadFile(path)
	var onDisk map[string]string
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatal(err)
	}
	if onDisk[KeyAccessToken] == "access-1" {
		t.Fatal("token should not be stored in the clear")
	}
	if onDisk[saltKey] == "" {
		t.Fatal("expected salt entry")
	}

	got, err := NewFileStore(path, "hunter22").Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got[KeyAccessToken] != "access-1" {
		t.Errorf("unexpected token %q", got[KeyAccessToken])
	}
	if _, ok := got[saltKey]; ok {
		t.Error("salt should not leak into entries")
	}

	if _, err := NewFileStore(path, "").Load(ctx); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}
	if _, err := NewFileStore(path, "wrong").Load(ctx); !errors.Is(err, ErrBadKey) {
		t.Errorf("expected ErrBadKey, got %v", err)
	}
}

func TestFileStoreMissingAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewFileStore(path, "")
	ctx := context.Background()

	got, err := s.Load(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("missing file should load empty, got %v %v", got, err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clearing a missing file: %v", err)
	}

	s.Save(ctx, sampleEntries())
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be gone after Clear")
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	os.WriteFile(path, []byte("{not json"), 0o600)
	if _, err := NewFileStore(path, "").Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDecode(t *testing.T) {
	s, err := decode(map[string]string{})
	if err != nil || s != nil {
		t.Fatalf("empty entries should decode to no session, got %v %v", s, err)
	}

	if _, err := decode(map[string]string{KeyAccessToken: "x"}); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}

	s, err = decode(sampleEntries())
	if err != nil {
		t.Fatal(err)
	}
	if s.Profile.Email != "admin@example.com" || s.Profile.Role != "superadmin" || s.RefreshToken != "refresh-1" {
		t.Errorf("unexpected session %+v", s)
	}
}

func TestPGStoreIntegration(t *testing.T) {
	url := os.Getenv("ENCLAVE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("ENCLAVE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	s := NewPGStore(pool, "test-"+t.Name(), "pg-pass")
	if err := s.Save(ctx, sampleEntries()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got[KeyRefreshToken] != "refresh-1" {
		t.Errorf("unexpected entries %v", got)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Load(ctx)
	if len(got) != 0 {
		t.Errorf("expected empty after clear, got %v", got)
	}
}
