package queue

// NotificationEvent is published whenever the platform wants to reach a
// user out of band: booking confirmations, expiry notices and pickup
// reminders all flow through the same queue. It carries enough to render
// the message without querying the primary database.
type NotificationEvent struct {
	UserID    uint64 `json:"user_id"`
	Domain    string `json:"domain"` // BOOKING, EVENT, ...
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}
