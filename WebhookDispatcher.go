package main

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"time"

	json "github.com/bytedance/sonic"

	"gridsheet/contracts"
)

const WebhookWorkersCount = 5

const webhookQueueSize = 20

type webhookDelivery struct {
	WebhookUrl string
	Cell       *contracts.Cell
}

// WebhookDispatcher fans cell-change notifications out to subscribed
// webhook URLs from a bounded worker pool.
type WebhookDispatcher struct {
	mu       sync.RWMutex
	queue    chan webhookDelivery
	webhooks map[string]map[string]string // sheet id -> canonical cell id -> url
}

func NewWebhookDispatcher() *WebhookDispatcher {
	return &WebhookDispatcher{
		queue:    make(chan webhookDelivery, webhookQueueSize),
		webhooks: map[string]map[string]string{},
	}
}

func (d *WebhookDispatcher) SetWebhookUrl(canonicalSheetId string, canonicalCellId string, webhookUrl string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.webhooks[canonicalSheetId] == nil {
		d.webhooks[canonicalSheetId] = map[string]string{}
	}

	if webhookUrl == "" {
		delete(d.webhooks[canonicalSheetId], canonicalCellId)
	} else {
		d.webhooks[canonicalSheetId][canonicalCellId] = webhookUrl
	}
}

func (d *WebhookDispatcher) GetWebhookUrl(canonicalSheetId string, canonicalCellId string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.webhooks[canonicalSheetId][canonicalCellId]
}

func (d *WebhookDispatcher) Notify(canonicalSheetId string, cells []*contracts.Cell) {
	d.mu.RLock()
	sheetWebhooks := d.webhooks[canonicalSheetId]
	deliveries := make([]webhookDelivery, 0, len(cells))
	for _, cell := range cells {
		if webhookUrl, ok := sheetWebhooks[cell.CanonicalKey]; ok {
			deliveries = append(deliveries, webhookDelivery{WebhookUrl: webhookUrl, Cell: cell})
		}
	}
	d.mu.RUnlock()

	if len(deliveries) == 0 {
		return
	}

	go func() {
		for _, delivery := range deliveries {
			d.queue <- delivery
		}
	}()
}

func (d *WebhookDispatcher) Start() {
	for i := 0; i < WebhookWorkersCount; i++ {
		go d.runWebhookSenderWorker()
	}
}

func (d *WebhookDispatcher) Close() {
	close(d.queue)
}

func (d *WebhookDispatcher) runWebhookSenderWorker() {
	client := &http.Client{
		Timeout: time.Second * 5,
	}

	for delivery := range d.queue {
		payload, _ := json.Marshal(delivery.Cell)
		response, err := client.Post(delivery.WebhookUrl, "application/json", bytes.NewBuffer(payload))

		if err != nil {
			fmt.Printf("Webhook send error: %s\n", err)
		} else if response.StatusCode >= 300 {
			fmt.Printf("Unexpected webhook response HTTP status: %s\n", response.Status)
		}
	}
}
