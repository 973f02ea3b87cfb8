package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hifztrack/internal/api"
	"hifztrack/internal/testutil"
)

func TestClientGetPageLayout(t *testing.T) {
	backend := testutil.NewStubBackend(t)
	client := api.NewClient(backend.URL())
	defer func() {
		_ = client.Close()
	}()

	t.Run("valid page", func(t *testing.T) {
		page, err := client.GetPageLayout(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, 2, page.Number)
		require.Len(t, page.Lines, 4)
		// Lines come back sorted regardless of response order.
		assert.Equal(t, 1, page.Lines[0].LineNumber)
		assert.Equal(t, "word1", page.Words[1])
	})

	t.Run("unknown page is an application error", func(t *testing.T) {
		_, err := client.GetPageLayout(context.Background(), 9999)
		require.Error(t, err)
		assert.True(t, api.IsApplicationError(err))
	})

	t.Run("transport failure is not an application error", func(t *testing.T) {
		backend.FailTransport.Store(true)
		defer backend.FailTransport.Store(false)

		_, err := client.GetPageLayout(context.Background(), 2)
		require.Error(t, err)
		assert.False(t, api.IsApplicationError(err))
	})
}

func TestClientGetSurahNames(t *testing.T) {
	backend := testutil.NewStubBackend(t)
	client := api.NewClient(backend.URL())
	defer func() {
		_ = client.Close()
	}()

	names, err := client.GetSurahNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Al-Fatiha", names[1])
	assert.Equal(t, "Al-Baqarah", names[2])
}

func TestClientTestConnection(t *testing.T) {
	backend := testutil.NewStubBackend(t)
	client := api.NewClient(backend.URL())
	defer func() {
		_ = client.Close()
	}()

	require.NoError(t, client.TestConnection(context.Background()))

	backend.FailTransport.Store(true)
	err := client.TestConnection(context.Background())
	require.Error(t, err)
	assert.False(t, api.IsApplicationError(err))
}

func TestClientCreateRecitation(t *testing.T) {
	backend := testutil.NewStubBackend(t)
	client := api.NewClient(backend.URL())
	defer func() {
		_ = client.Close()
	}()

	submission := api.Submission{
		PageNumber:     2,
		SurahName:      "Al-Baqarah",
		Juz:            1,
		Rating:         "Good",
		ManualMistakes: []int{3, 5},
		RecitationDate: "2026-08-31T10:00:00Z",
	}

	t.Run("created", func(t *testing.T) {
		created, err := client.CreateRecitation(context.Background(), submission)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
	})

	t.Run("server rejection", func(t *testing.T) {
		backend.RejectCreate.Store(true)
		defer backend.RejectCreate.Store(false)

		_, err := client.CreateRecitation(context.Background(), submission)
		require.Error(t, err)
		assert.True(t, api.IsApplicationError(err))

		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "invalid recitation", apiErr.Message)
	})
}

func TestClientListRecitations(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"recitations": []map[string]any{
				{"id": 1, "page_number": 2, "surah_name": "Al-Baqarah", "juz": 1, "rating": "Good"},
			},
			"total": 1,
		})
	}))
	defer server.Close()

	client := api.NewClient(server.URL)
	defer func() {
		_ = client.Close()
	}()

	records, err := client.ListRecitations(context.Background(), map[string]string{
		"rating":   "Good",
		"order_by": "recitation_date DESC",
		// Empty filters are left off the query entirely.
		"surah_name": "",
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].ID)

	assert.Equal(t, []string{"Good"}, gotQuery["rating"])
	assert.Equal(t, []string{"recitation_date DESC"}, gotQuery["order_by"])
	assert.NotContains(t, gotQuery, "surah_name")
}

func TestClientUpdateAndDeleteRecitation(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		if r.Method == http.MethodPut {
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "notes": "fixed tajweed"})
	}))
	defer server.Close()

	client := api.NewClient(server.URL)
	defer func() {
		_ = client.Close()
	}()

	notes := "fixed tajweed"
	updated, err := client.UpdateRecitation(context.Background(), 7, api.RecitationUpdate{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/recitations/7", gotPath)
	assert.Equal(t, "fixed tajweed", gotBody["notes"])
	// Unset fields stay out of the request body.
	assert.NotContains(t, gotBody, "fixed_it_date")
	assert.Equal(t, "fixed tajweed", updated.Notes)

	require.NoError(t, client.DeleteRecitation(context.Background(), 7))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/recitations/7", gotPath)
}

func TestClientGetStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/recitations/stats", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total_recitations":      12,
			"rating_distribution":    map[string]int{"Good": 8, "Perfect": 4},
			"pages_covered":          9,
			"surahs_covered":         3,
			"recent_activity_7_days": 5,
		})
	}))
	defer server.Close()

	client := api.NewClient(server.URL)
	defer func() {
		_ = client.Close()
	}()

	stats, err := client.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalRecitations)
	assert.Equal(t, 8, stats.RatingDistribution["Good"])
	assert.Equal(t, 5, stats.RecentActivity7Days)
}
