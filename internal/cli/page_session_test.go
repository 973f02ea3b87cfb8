package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hifztrack/internal/api"
	"hifztrack/internal/mushaf"
	"hifztrack/internal/quran"
	"hifztrack/internal/session"
	"hifztrack/internal/store"
	"hifztrack/internal/testutil"
)

type stubSubmitClient struct {
	createErr error
	created   int
}

func (c *stubSubmitClient) CreateRecitation(ctx context.Context, submission api.Submission) (*api.CreatedRecitation, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.created++
	return &api.CreatedRecitation{ID: int64(c.created), Message: "Recitation recorded successfully"}, nil
}

func (c *stubSubmitClient) TestConnection(ctx context.Context) error { return nil }

type stubQueue struct {
	items []store.QueueItem
}

func (q *stubQueue) AppendQueueItem(item store.QueueItem) error {
	q.items = append(q.items, item)
	return nil
}
func (q *stubQueue) QueueItems() ([]store.QueueItem, error)       { return q.items, nil }
func (q *stubQueue) SetQueueRetryCount(id string, n int) error    { return nil }
func (q *stubQueue) DeleteQueueItem(id string) error              { return nil }

type stubPageClient struct{}

func (stubPageClient) GetPageLayout(ctx context.Context, pageNumber int) (*quran.Page, error) {
	return quran.NewPage(pageNumber, testutil.TestPageLines(), testutil.TestPageWords())
}

type stubMistakeStore struct {
	sets map[int][]int
}

func (s *stubMistakeStore) Mistakes(pageNumber int) ([]int, error) {
	return s.sets[pageNumber], nil
}

func (s *stubMistakeStore) SaveMistakes(pageNumber int, wordIDs []int) error {
	s.sets[pageNumber] = wordIDs
	return nil
}

func newTestPageSession(t *testing.T, client *stubSubmitClient, input string) (*PageSessionCLI, *bytes.Buffer) {
	t.Helper()

	service, err := session.NewService(client, &stubQueue{}, session.Config{RetryUnit: time.Millisecond})
	require.NoError(t, err)

	loader := mushaf.NewLoader(stubPageClient{}, mushaf.LoaderConfig{DelayUnit: time.Millisecond})
	view := mushaf.NewView(loader, &stubMistakeStore{sets: map[int][]int{}}, nil)
	t.Cleanup(view.Close)

	names := quran.SurahNames{1: "Al-Fatiha"}
	pageCLI, err := NewPageSessionCLI(context.Background(), view, service, names, 2)
	require.NoError(t, err)

	output := &bytes.Buffer{}
	pageCLI.stdinReader = bufio.NewReader(strings.NewReader(input))
	pageCLI.stdoutWriter = output
	return pageCLI, output
}

func TestPageSessionCommands(t *testing.T) {
	t.Run("quit ends the session", func(t *testing.T) {
		pageCLI, _ := newTestPageSession(t, &stubSubmitClient{}, "q\n")
		assert.ErrorIs(t, pageCLI.Session(context.Background()), errEnd)
	})

	t.Run("reveal toggle", func(t *testing.T) {
		pageCLI, output := newTestPageSession(t, &stubSubmitClient{}, "r\n")
		require.NoError(t, pageCLI.Session(context.Background()))
		assert.True(t, pageCLI.view.Revealed())
		assert.Contains(t, output.String(), "Al-Fatiha")
		assert.Contains(t, output.String(), "Page 2")
	})

	t.Run("mistake toggle updates the header count", func(t *testing.T) {
		pageCLI, _ := newTestPageSession(t, &stubSubmitClient{}, "m 3\nq\n")
		require.NoError(t, pageCLI.Session(context.Background()))
		assert.Equal(t, []int{3}, pageCLI.view.Mistakes())

		output := &bytes.Buffer{}
		pageCLI.stdoutWriter = output
		require.ErrorIs(t, pageCLI.Session(context.Background()), errEnd)
		assert.Contains(t, output.String(), "mistakes: 1")
	})

	t.Run("goto clamps out-of-range pages", func(t *testing.T) {
		pageCLI, _ := newTestPageSession(t, &stubSubmitClient{}, "g 9999\n")
		require.NoError(t, pageCLI.Session(context.Background()))
		assert.Equal(t, 604, pageCLI.view.PageNumber())
	})

	t.Run("unknown command prints help", func(t *testing.T) {
		pageCLI, output := newTestPageSession(t, &stubSubmitClient{}, "wat\n")
		require.NoError(t, pageCLI.Session(context.Background()))
		assert.Contains(t, output.String(), "Commands:")
	})
}

func TestPageSessionSubmit(t *testing.T) {
	t.Run("delivered submission resets mistakes", func(t *testing.T) {
		client := &stubSubmitClient{}
		pageCLI, output := newTestPageSession(t, client, "m 3\ns\nGood\nsolid recall\ny\n")

		require.NoError(t, pageCLI.Session(context.Background())) // m 3
		require.NoError(t, pageCLI.Session(context.Background())) // s + prompts

		assert.Equal(t, 1, client.created)
		assert.Contains(t, output.String(), "Recitation saved")
		assert.Equal(t, []int{}, pageCLI.view.Mistakes())
	})

	t.Run("cancelled confirmation submits nothing", func(t *testing.T) {
		client := &stubSubmitClient{}
		pageCLI, output := newTestPageSession(t, client, "s\nGood\n\nn\n")

		require.NoError(t, pageCLI.Session(context.Background()))
		assert.Equal(t, 0, client.created)
		assert.Contains(t, output.String(), "Submission cancelled")
	})

	t.Run("invalid rating is reported and keeps the session alive", func(t *testing.T) {
		client := &stubSubmitClient{}
		pageCLI, output := newTestPageSession(t, client, "s\nExcellent\n\ny\n")

		require.NoError(t, pageCLI.Session(context.Background()))
		assert.Equal(t, 0, client.created)
		assert.Contains(t, output.String(), "rating")
	})

	t.Run("server rejection is shown without crashing", func(t *testing.T) {
		client := &stubSubmitClient{createErr: &api.Error{StatusCode: 400, Message: "invalid recitation"}}
		pageCLI, output := newTestPageSession(t, client, "s\nGood\n\ny\n")

		require.NoError(t, pageCLI.Session(context.Background()))
		assert.Contains(t, output.String(), "Server rejected")
	})
}
