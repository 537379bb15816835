package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	json "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"

	"gridsheet/contracts"
)

func TestWebhookDispatcher_Registry(t *testing.T) {
	dispatcher := NewWebhookDispatcher()

	t.Run("unknown_is_empty", func(t *testing.T) {
		assert.Equal(t, "", dispatcher.GetWebhookUrl("sheet1", "A1"))
	})

	t.Run("set_and_get", func(t *testing.T) {
		dispatcher.SetWebhookUrl("sheet1", "A1", "http://example.com/hook")
		assert.Equal(t, "http://example.com/hook", dispatcher.GetWebhookUrl("sheet1", "A1"))
		assert.Equal(t, "", dispatcher.GetWebhookUrl("sheet1", "B1"))
		assert.Equal(t, "", dispatcher.GetWebhookUrl("sheet2", "A1"))
	})

	t.Run("empty_url_unsubscribes", func(t *testing.T) {
		dispatcher.SetWebhookUrl("sheet1", "A1", "http://example.com/hook")
		dispatcher.SetWebhookUrl("sheet1", "A1", "")
		assert.Equal(t, "", dispatcher.GetWebhookUrl("sheet1", "A1"))
	})
}

func TestWebhookDispatcher_Notify(t *testing.T) {
	t.Run("delivers_to_subscribed_cells", func(t *testing.T) {
		var mu sync.Mutex
		received := make([]map[string]string, 0)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			payload := map[string]string{}
			_ = json.Unmarshal(body, &payload)

			mu.Lock()
			received = append(received, payload)
			mu.Unlock()
		}))
		defer server.Close()

		dispatcher := NewWebhookDispatcher()
		dispatcher.Start()
		defer dispatcher.Close()

		dispatcher.SetWebhookUrl("sheet1", "A1", server.URL)

		dispatcher.Notify("sheet1", []*contracts.Cell{
			{Value: "=1+2", Result: "3", CanonicalKey: "A1"},
			{Value: "7", Result: "7", CanonicalKey: "B1"}, // not subscribed
		})

		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(received) == 1
		}, time.Second, 10*time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "=1+2", received[0]["value"])
		assert.Equal(t, "3", received[0]["result"])
	})

	t.Run("no_subscriptions_is_noop", func(t *testing.T) {
		dispatcher := NewWebhookDispatcher()
		dispatcher.Start()
		defer dispatcher.Close()

		dispatcher.Notify("sheet1", []*contracts.Cell{
			{Value: "1", Result: "1", CanonicalKey: "A1"},
		})
	})
}
