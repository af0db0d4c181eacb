package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tjfontaine/githubbot-connect/internal/storage"
)

func TestMemoryStore_SaveAndGetDelivery(t *testing.T) {
	store := New()

	d := &storage.Delivery{
		Event:      "push",
		DeliveryID: "72d3162e-cc78-11e3-81ab-4c9367dc0958",
		Status:     storage.StatusSucceeded,
		Duration:   3 * time.Millisecond,
	}

	if err := store.SaveDelivery(context.Background(), d); err != nil {
		t.Fatalf("SaveDelivery() error = %v", err)
	}
	if d.ID == "" {
		t.Fatal("SaveDelivery() did not assign an ID")
	}
	if d.CreatedAt.IsZero() {
		t.Fatal("SaveDelivery() did not set CreatedAt")
	}

	retrieved, err := store.GetDelivery(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("GetDelivery() error = %v", err)
	}
	if retrieved.Event != "push" {
		t.Errorf("Event = %v, want push", retrieved.Event)
	}
	if retrieved.DeliveryID != d.DeliveryID {
		t.Errorf("DeliveryID = %v, want %v", retrieved.DeliveryID, d.DeliveryID)
	}
	if retrieved.Duration != d.Duration {
		t.Errorf("Duration = %v, want %v", retrieved.Duration, d.Duration)
	}
}

func TestMemoryStore_SaveDuplicate(t *testing.T) {
	store := New()

	d := &storage.Delivery{ID: "dup", Event: "push", Status: storage.StatusSucceeded}
	if err := store.SaveDelivery(context.Background(), d); err != nil {
		t.Fatalf("SaveDelivery() error = %v", err)
	}
	if err := store.SaveDelivery(context.Background(), d); err == nil {
		t.Error("expected error saving duplicate delivery")
	}
}

func TestMemoryStore_GetNotFound(t *testing.T) {
	store := New()

	_, err := store.GetDelivery(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetDelivery() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_ListDeliveries(t *testing.T) {
	store := New()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, event := range []string{"push", "issues", "push", "ping"} {
		d := &storage.Delivery{
			Event:     event,
			Status:    storage.StatusSucceeded,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.SaveDelivery(ctx, d); err != nil {
			t.Fatalf("SaveDelivery() error = %v", err)
		}
	}

	tests := []struct {
		name       string
		opts       storage.ListOptions
		wantEvents []string
	}{
		{"all newest first", storage.ListOptions{}, []string{"ping", "push", "issues", "push"}},
		{"filter by event", storage.ListOptions{Event: "push"}, []string{"push", "push"}},
		{"limit", storage.ListOptions{Limit: 2}, []string{"ping", "push"}},
		{"no match", storage.ListOptions{Event: "release"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListDeliveries(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListDeliveries() error = %v", err)
			}
			if len(got) != len(tt.wantEvents) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.wantEvents))
			}
			for i, d := range got {
				if d.Event != tt.wantEvents[i] {
					t.Errorf("[%d] Event = %v, want %v", i, d.Event, tt.wantEvents[i])
				}
			}
		})
	}
}
