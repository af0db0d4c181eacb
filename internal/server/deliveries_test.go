package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tjfontaine/githubbot-connect/internal/storage"
	"github.com/tjfontaine/githubbot-connect/internal/storage/memory"
)

func newDeliveryServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()

	store := memory.New()
	srv := New(Options{})
	srv.Router.Mount("/deliveries", NewDeliveryHandler(store).Routes())

	ts := httptest.NewServer(srv.Router)
	t.Cleanup(ts.Close)
	return ts, store
}

func TestDeliveryHandler_List(t *testing.T) {
	ts, store := newDeliveryServer(t)

	for _, event := range []string{"push", "issues", "push"} {
		if err := store.SaveDelivery(context.Background(), &storage.Delivery{Event: event, Status: storage.StatusSucceeded}); err != nil {
			t.Fatalf("SaveDelivery() error = %v", err)
		}
	}

	resp, err := http.Get(ts.URL + "/deliveries?event=push")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Deliveries []storage.Delivery `json:"deliveries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Deliveries) != 2 {
		t.Fatalf("len = %d, want 2", len(body.Deliveries))
	}
	for _, d := range body.Deliveries {
		if d.Event != "push" {
			t.Errorf("Event = %v, want push", d.Event)
		}
	}
}

func TestDeliveryHandler_ListInvalidLimit(t *testing.T) {
	ts, _ := newDeliveryServer(t)

	resp, err := http.Get(ts.URL + "/deliveries?limit=abc")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDeliveryHandler_Get(t *testing.T) {
	ts, store := newDeliveryServer(t)

	d := &storage.Delivery{Event: "ping", Status: storage.StatusSucceeded}
	if err := store.SaveDelivery(context.Background(), d); err != nil {
		t.Fatalf("SaveDelivery() error = %v", err)
	}

	resp, err := http.Get(ts.URL + "/deliveries/" + d.ID)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got storage.Delivery
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != d.ID || got.Event != "ping" {
		t.Errorf("got %+v, want id %s event ping", got, d.ID)
	}
}

func TestDeliveryHandler_GetNotFound(t *testing.T) {
	ts, _ := newDeliveryServer(t)

	resp, err := http.Get(ts.URL + "/deliveries/missing")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_Healthz(t *testing.T) {
	ts, _ := newDeliveryServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
