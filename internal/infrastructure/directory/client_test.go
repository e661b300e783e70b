package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tillbooks/ledger/internal/domain"
)

func TestClientExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/parties/branch/branch-7":
			w.WriteHeader(http.StatusOK)
		case "/api/v1/parties/customer/ghost":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second)
	ctx := context.Background()

	ok, err := client.Exists(ctx, domain.PartyBranch, "branch-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected branch-7 to exist")
	}

	ok, err = client.Exists(ctx, domain.PartyCustomer, "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ghost to be unknown")
	}

	if _, err := client.Exists(ctx, domain.PartyCompany, "boom"); err == nil {
		t.Fatal("expected error for directory failure")
	}
}

func TestAllowAll(t *testing.T) {
	d := NewAllowAll()

	ok, err := d.Exists(context.Background(), domain.PartyCompany, "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected allow-all to accept any reference")
	}
}
