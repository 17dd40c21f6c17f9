// Package logkey holds the structured logging attribute keys used across the service.
package logkey

const (
	TraceID   = "trace_id"
	ERROR     = "error"
	URL       = "url"
	Method    = "method"
	Status    = "status"
	Latency   = "latency"
	SessionID = "session_id"
	UserID    = "user_id"
	ProductID = "product_id"
	OrderID   = "order_id"
)
