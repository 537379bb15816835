package contracts

type WebhookDispatcher interface {
	SetWebhookUrl(canonicalSheetId string, canonicalCellId string, webhookUrl string)
	GetWebhookUrl(canonicalSheetId string, canonicalCellId string) string
	// Notify queues a webhook delivery for every subscribed cell in the
	// list. Non-blocking; deliveries happen on the worker pool.
	Notify(canonicalSheetId string, cells []*Cell)
	Start()
	Close()
}
