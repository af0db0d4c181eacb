// Package storage defines persistence for webhook deliveries.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a delivery does not exist.
var ErrNotFound = errors.New("delivery not found")

// DeliveryStatus is the outcome of a dispatched delivery.
type DeliveryStatus string

const (
	StatusSucceeded DeliveryStatus = "succeeded"
	StatusFailed    DeliveryStatus = "failed"
)

// Delivery records one dispatch of a webhook event to the bot.
type Delivery struct {
	ID         string         `json:"id"`
	Event      string         `json:"event"`
	DeliveryID string         `json:"delivery_id,omitempty"` // X-GitHub-Delivery
	RequestID  string         `json:"request_id,omitempty"`
	Status     DeliveryStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	Duration   time.Duration  `json:"duration_ns"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ListOptions filters ListDeliveries. Results are newest first.
type ListOptions struct {
	Event string
	Limit int
}

// DefaultListLimit applies when ListOptions.Limit is zero or negative.
const DefaultListLimit = 50

// DeliveryStore persists deliveries.
type DeliveryStore interface {
	SaveDelivery(ctx context.Context, d *Delivery) error
	GetDelivery(ctx context.Context, id string) (*Delivery, error)
	ListDeliveries(ctx context.Context, opts ListOptions) ([]*Delivery, error)
	Close() error
}
