package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const rosterCSV = "Data,Inizio,Fine,Categoria\n2024-01-01,08:00,14:00,[TS] Mattina\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStoreLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "shifts.csv", rosterCSV)
	store := NewStore(t.TempDir(), 0)

	ds, err := store.Load(context.Background(), "shifts", src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Len() != 1 {
		t.Fatalf("Len = %d, want 1", ds.Len())
	}
	if store.FetchedAt("shifts").IsZero() {
		t.Error("FetchedAt must be set after a load")
	}

	// A second Load is answered from memory even if the file vanished.
	if err := os.Remove(src); err != nil {
		t.Fatal(err)
	}
	again, err := store.Load(context.Background(), "shifts", src)
	if err != nil {
		t.Fatalf("cached Load: %v", err)
	}
	if again != ds {
		t.Error("cached Load must return the in-memory dataset")
	}
}

func TestStoreReloadFallsBackToCache(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "shifts.csv", rosterCSV)
	store := NewStore(t.TempDir(), 0)

	ds, err := store.Load(context.Background(), "shifts", src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Origin gone: Reload must serve what it has rather than fail.
	if err := os.Remove(src); err != nil {
		t.Fatal(err)
	}
	got, err := store.Reload(context.Background(), "shifts", src)
	if err != nil {
		t.Fatalf("Reload after origin loss: %v", err)
	}
	if got != ds {
		t.Error("Reload must fall back to the cached dataset")
	}
}

func TestStoreReloadPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "shifts.csv", rosterCSV)
	store := NewStore(t.TempDir(), 0)

	if _, err := store.Load(context.Background(), "shifts", src); err != nil {
		t.Fatalf("Load: %v", err)
	}

	writeFile(t, dir, "shifts.csv", rosterCSV+"2024-01-02,14:00,20:00,[TS] Sera\n")
	ds, err := store.Reload(context.Background(), "shifts", src)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if ds.Len() != 2 {
		t.Errorf("Len after reload = %d, want 2", ds.Len())
	}
}

func TestStoreSnapshotFallback(t *testing.T) {
	cacheDir := t.TempDir()
	// A previous run left a snapshot; the origin is unreachable now.
	writeFile(t, cacheDir, "shifts.csv", rosterCSV)
	store := NewStore(cacheDir, 0)

	ds, err := store.Load(context.Background(), "shifts", filepath.Join(t.TempDir(), "missing.csv"))
	if err != nil {
		t.Fatalf("Load with snapshot present: %v", err)
	}
	if ds.Len() != 1 {
		t.Errorf("snapshot Len = %d, want 1", ds.Len())
	}
}

func TestStoreLoadWritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "services.csv", rosterCSV)
	cacheDir := t.TempDir()
	store := NewStore(cacheDir, 0)

	if _, err := store.Load(context.Background(), "services", src); err != nil {
		t.Fatalf("Load: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(cacheDir, "services.csv"))
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	if string(data) != rosterCSV {
		t.Error("snapshot must hold the fetched bytes")
	}
}

func TestStoreConditionalGet(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(rosterCSV))
	}))
	defer srv.Close()

	store := NewStore(t.TempDir(), 5*time.Second)

	first, err := store.Load(context.Background(), "shifts", srv.URL)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	second, err := store.Reload(context.Background(), "shifts", srv.URL)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if second != first {
		t.Error("a 304 answer must keep the cached dataset")
	}
	if hits != 2 {
		t.Errorf("origin hit %d times, want 2", hits)
	}
}

func TestStoreLoadBoth(t *testing.T) {
	dir := t.TempDir()
	shiftsSrc := writeFile(t, dir, "shifts.csv", rosterCSV)
	servicesSrc := writeFile(t, dir, "services.csv",
		"GG,[P]Ore,[A]Ore,Km effet.,Mezzo,Intervento\n2024-01-01,09:00,09:45,15,ECHO-1,[TS] Soccorso\n")
	store := NewStore(t.TempDir(), 0)

	shifts, services, err := store.LoadBoth(context.Background(), shiftsSrc, servicesSrc)
	if err != nil {
		t.Fatalf("LoadBoth: %v", err)
	}
	if shifts.SourceID != "shifts" || services.SourceID != "services" {
		t.Errorf("source IDs = %q/%q", shifts.SourceID, services.SourceID)
	}
	if shifts.Len() != 1 || services.Len() != 1 {
		t.Errorf("row counts = %d/%d, want 1/1", shifts.Len(), services.Len())
	}
}

func TestStoreLoadMissingEverything(t *testing.T) {
	store := NewStore(t.TempDir(), 0)
	if _, err := store.Load(context.Background(), "shifts", filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error with no origin, cache, or snapshot")
	}
}
