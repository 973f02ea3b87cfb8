package mushaf_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hifztrack/internal/api"
	"hifztrack/internal/mushaf"
	"hifztrack/internal/quran"
	"hifztrack/internal/testutil"
)

var errTransport = errors.New("connection refused")

// fakePageClient scripts GetPageLayout outcomes per call and can run a
// hook inside the load.
type fakePageClient struct {
	mu     sync.Mutex
	errs   []error
	calls  int
	onLoad func(pageNumber int)
	page   *quran.Page
}

func (c *fakePageClient) GetPageLayout(ctx context.Context, pageNumber int) (*quran.Page, error) {
	c.mu.Lock()
	call := c.calls
	c.calls++
	onLoad := c.onLoad
	c.mu.Unlock()

	if onLoad != nil {
		onLoad(pageNumber)
	}
	if call < len(c.errs) && c.errs[call] != nil {
		return nil, c.errs[call]
	}
	if c.page != nil {
		return c.page, nil
	}
	page, err := quran.NewPage(pageNumber, testutil.TestPageLines(), testutil.TestPageWords())
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (c *fakePageClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestLoaderLoad(t *testing.T) {
	t.Run("success on first attempt", func(t *testing.T) {
		client := &fakePageClient{}
		loader := mushaf.NewLoader(client, mushaf.LoaderConfig{DelayUnit: time.Millisecond})

		page, err := loader.Load(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, 2, page.Number)
		assert.Equal(t, 1, client.callCount())
	})

	t.Run("retries transport failures and surfaces interim status", func(t *testing.T) {
		client := &fakePageClient{errs: []error{errTransport, errTransport, nil}}

		var statuses []mushaf.LoadStatus
		loader := mushaf.NewLoader(client, mushaf.LoaderConfig{
			DelayUnit: time.Millisecond,
			OnRetry: func(status mushaf.LoadStatus) {
				statuses = append(statuses, status)
			},
		})

		page, err := loader.Load(context.Background(), 2)
		require.NoError(t, err)
		assert.NotNil(t, page)
		assert.Equal(t, 3, client.callCount())
		require.Len(t, statuses, 2)
		assert.Equal(t, 2, statuses[0].PageNumber)
		assert.Equal(t, 1, statuses[0].Attempt)
		assert.Equal(t, 2, statuses[1].Attempt)
	})

	t.Run("fails after three transport attempts", func(t *testing.T) {
		client := &fakePageClient{errs: []error{errTransport, errTransport, errTransport}}
		loader := mushaf.NewLoader(client, mushaf.LoaderConfig{DelayUnit: time.Millisecond})

		_, err := loader.Load(context.Background(), 2)
		require.Error(t, err)
		assert.Equal(t, 3, client.callCount())
	})

	t.Run("application error fails immediately", func(t *testing.T) {
		rejection := &api.Error{StatusCode: 404, Message: "page not found"}
		client := &fakePageClient{errs: []error{rejection, rejection, rejection}}
		loader := mushaf.NewLoader(client, mushaf.LoaderConfig{DelayUnit: time.Millisecond})

		_, err := loader.Load(context.Background(), 2)
		require.Error(t, err)
		assert.True(t, api.IsApplicationError(err))
		assert.Equal(t, 1, client.callCount())
	})

	t.Run("cancelled context abandons the load", func(t *testing.T) {
		client := &fakePageClient{errs: []error{errTransport, errTransport, errTransport}}
		loader := mushaf.NewLoader(client, mushaf.LoaderConfig{DelayUnit: time.Hour})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			_, err := loader.Load(ctx, 2)
			done <- err
		}()

		cancel()
		select {
		case err := <-done:
			require.Error(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("load did not stop after cancellation")
		}
	})
}
