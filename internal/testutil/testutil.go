// Package testutil provides shared test helpers: page layout fixtures, a
// stub backend, and config file setup.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"hifztrack/internal/quran"
)

func intPtr(v int) *int { return &v }

// TestPage builds the canonical fixture page: a surah header, the
// basmallah, and two ayah lines covering word ids 1-7.
func TestPage(t *testing.T, pageNumber int) *quran.Page {
	t.Helper()

	page, err := quran.NewPage(pageNumber, TestPageLines(), TestPageWords())
	require.NoError(t, err)
	return page
}

// TestPageLines returns the fixture layout lines in shuffled order so the
// sort-on-construction path is exercised.
func TestPageLines() []quran.PageLayoutLine {
	return []quran.PageLayoutLine{
		{
			LineNumber:  3,
			LineType:    quran.LineTypeAyah,
			IsCentered:  false,
			FirstWordID: intPtr(1),
			LastWordID:  intPtr(4),
			SurahNumber: intPtr(1),
			AyahNumber:  intPtr(1),
		},
		{
			LineNumber:  1,
			LineType:    quran.LineTypeSurahName,
			IsCentered:  true,
			SurahNumber: intPtr(1),
		},
		{
			LineNumber: 2,
			LineType:   quran.LineTypeBasmallah,
			IsCentered: true,
		},
		{
			LineNumber:  4,
			LineType:    quran.LineTypeAyah,
			IsCentered:  false,
			FirstWordID: intPtr(5),
			LastWordID:  intPtr(7),
			SurahNumber: intPtr(1),
			AyahNumber:  intPtr(2),
		},
	}
}

// TestPageWords returns word texts for ids 1-7.
func TestPageWords() map[int]string {
	words := make(map[int]string, 7)
	for id := 1; id <= 7; id++ {
		words[id] = fmt.Sprintf("word%d", id)
	}
	return words
}

// StubBackend is a minimal in-memory backend for client and session tests.
type StubBackend struct {
	Server *httptest.Server

	// FailTransport drops every request at the transport level while set.
	FailTransport atomic.Bool
	// RejectCreate makes POST /api/recitations return 400 while set.
	RejectCreate atomic.Bool

	CreateCalls atomic.Int64
	nextID      atomic.Int64
}

// NewStubBackend starts the stub; it is closed with the test.
func NewStubBackend(t *testing.T) *StubBackend {
	t.Helper()

	backend := &StubBackend{}
	backend.Server = httptest.NewServer(http.HandlerFunc(backend.handle))
	t.Cleanup(backend.Server.Close)
	return backend
}

func (b *StubBackend) URL() string { return b.Server.URL }

func (b *StubBackend) handle(w http.ResponseWriter, r *http.Request) {
	if b.FailTransport.Load() {
		// Drop the connection so the client sees a transport error.
		hj, ok := w.(http.Hijacker)
		if !ok {
			panic("stub backend: response writer does not support hijacking")
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			_ = conn.Close()
		}
		return
	}

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/quran/page-layout/"):
		b.handlePageLayout(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/api/quran/surah-names":
		writeJSON(w, http.StatusOK, map[string]string{"1": "Al-Fatiha", "2": "Al-Baqarah"})
	case r.Method == http.MethodGet && r.URL.Path == "/api/quran/test":
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case r.Method == http.MethodPost && r.URL.Path == "/api/recitations":
		b.handleCreate(w, r)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (b *StubBackend) handlePageLayout(w http.ResponseWriter, r *http.Request) {
	pageNumber, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/api/quran/page-layout/"))
	if err != nil || pageNumber < quran.MinPage || pageNumber > quran.MaxPage {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "page not found"})
		return
	}

	wordData := make(map[string]string)
	for id, text := range TestPageWords() {
		wordData[strconv.Itoa(id)] = text
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pageLayout": TestPageLines(),
		"wordData":   wordData,
	})
}

func (b *StubBackend) handleCreate(w http.ResponseWriter, r *http.Request) {
	b.CreateCalls.Add(1)
	if b.RejectCreate.Load() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid recitation"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Recitation recorded successfully",
		"id":      b.nextID.Add(1),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// SetupTestConfig writes a config file pointing at the given backend URL
// with a storage directory under tmpDir. Returns the config file path.
func SetupTestConfig(t *testing.T, tmpDir, baseURL string) string {
	t.Helper()

	storageDir := filepath.Join(tmpDir, "data")
	require.NoError(t, os.MkdirAll(storageDir, 0755))

	configContent := fmt.Sprintf(`api:
  base_url: %s
storage:
  directory: %s
submission:
  retry_unit_ms: 1
  probe_interval_seconds: 1
dashboard:
  page_size: 10
  debounce_ms: 1
`, baseURL, storageDir)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}
