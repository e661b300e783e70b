package eventpublisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tillbooks/ledger/internal/domain"
)

func testEvent() *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateID:   "op-1",
		AggregateType: domain.AggregateTypeOperation,
		EventType:     domain.EventTypeOperationCommitted,
		Payload:       map[string]any{"amount": "60.00"},
		CreatedAt:     time.Now().UTC(),
	}
}

func TestWebhookPublisherDelivers(t *testing.T) {
	var got webhookEnvelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Event-ID") != "evt-1" {
			t.Errorf("expected event id header, got %q", r.Header.Get("X-Event-ID"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("invalid body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(srv.URL, 2*time.Second, zerolog.Nop())

	if err := p.Publish(context.Background(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.EventType != domain.EventTypeOperationCommitted {
		t.Fatalf("unexpected envelope %+v", got)
	}
}

func TestWebhookPublisherRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(srv.URL, 2*time.Second, zerolog.Nop())

	if err := p.Publish(context.Background(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestWebhookPublisherStopsOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(srv.URL, 2*time.Second, zerolog.Nop())

	if err := p.Publish(context.Background(), testEvent()); err == nil {
		t.Fatal("expected error for rejected event")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(zerolog.Nop())

	if err := p.Publish(context.Background(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
