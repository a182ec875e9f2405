package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/OSejal/Packloop/internal/models"
)

func TestHTTPClient_GetLocation(t *testing.T) {
	t.Run("present location", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("method = %s, want GET", r.Method)
			}
			if r.URL.Path != "/api/orders/o-1/location" {
				t.Errorf("path = %s", r.URL.Path)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
				t.Errorf("authorization = %q", auth)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"success":true,"data":{"location":{"latitude":23.3441,"longitude":85.3096,"updatedAt":"2026-08-31T10:00:00Z"}}}`))
		}))
		defer ts.Close()

		client := NewHTTPClient(ts.URL, "test-token", time.Second)
		loc, err := client.GetLocation(context.Background(), "o-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loc == nil {
			t.Fatal("expected location")
		}
		if loc.Latitude != 23.3441 || loc.Longitude != 85.3096 {
			t.Errorf("unexpected coordinates: %v, %v", loc.Latitude, loc.Longitude)
		}
	})

	t.Run("absent location is nil without error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"success":true,"data":{"location":null}}`))
		}))
		defer ts.Close()

		client := NewHTTPClient(ts.URL, "test-token", time.Second)
		loc, err := client.GetLocation(context.Background(), "o-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loc != nil {
			t.Fatalf("expected nil location, got %+v", loc)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer ts.Close()

		client := NewHTTPClient(ts.URL, "test-token", time.Second)
		if _, err := client.GetLocation(context.Background(), "missing"); !errors.Is(err, ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer ts.Close()

		client := NewHTTPClient(ts.URL, "stale-token", time.Second)
		if _, err := client.GetLocation(context.Background(), "o-1"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestHTTPClient_UpdateLocation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}

		var req models.UpdateLocationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if req.Latitude == nil || *req.Latitude != 23.3490 {
			t.Errorf("unexpected latitude: %v", req.Latitude)
		}
		if req.Longitude == nil || *req.Longitude != 85.3150 {
			t.Errorf("unexpected longitude: %v", req.Longitude)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"location":{"latitude":23.3490,"longitude":85.3150,"updatedAt":"2026-08-31T10:00:05Z"}}}`))
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "test-token", time.Second)
	loc, err := client.UpdateLocation(context.Background(), "o-1", 23.3490, 85.3150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Latitude != 23.3490 || loc.Longitude != 85.3150 {
		t.Errorf("round-trip mismatch: %v, %v", loc.Latitude, loc.Longitude)
	}
}

func TestHTTPClient_UpdateLocationForbidden(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "viewer-token", time.Second)
	if _, err := client.UpdateLocation(context.Background(), "o-1", 23.3490, 85.3150); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
