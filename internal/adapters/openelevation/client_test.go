package openelevation_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samirrijal/routeslope/internal/adapters/openelevation"
	"github.com/samirrijal/routeslope/internal/core/domain"
	"github.com/samirrijal/routeslope/internal/pkg/httpclient"
)

func testOptions() httpclient.Options {
	return httpclient.Options{Timeout: 2 * time.Second, InitialBackoff: time.Millisecond}
}

type lookupBody struct {
	Locations []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"locations"`
}

// echoServer answers every lookup with elevation = latitude * 100.
func echoServer(t *testing.T, batches *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/lookup" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body lookupBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		atomic.AddInt32(batches, 1)

		type result struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Elevation float64 `json:"elevation"`
		}
		results := make([]result, len(body.Locations))
		for i, l := range body.Locations {
			results[i] = result{l.Latitude, l.Longitude, l.Latitude * 100}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestElevations_PreservesOrderAcrossBatches(t *testing.T) {
	var batches int32
	srv := echoServer(t, &batches)

	points := make([]domain.GeoPoint, 7)
	for i := range points {
		points[i] = domain.GeoPoint{Lat: float64(i), Lon: -2.9}
	}

	got, err := openelevation.New(srv.URL, 3, testOptions()).Elevations(context.Background(), points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(&batches) != 3 {
		t.Errorf("expected 3 batches, got %d", batches)
	}
	if len(got) != len(points) {
		t.Fatalf("expected %d elevations, got %d", len(points), len(got))
	}
	for i := range got {
		if got[i] != float64(i)*100 {
			t.Errorf("elevation[%d] = %v, want %v", i, got[i], float64(i)*100)
		}
	}
}

func TestElevations_ResultCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results": [{"latitude": 1, "longitude": 1, "elevation": 10}]}`)
	}))
	defer srv.Close()

	_, err := openelevation.New(srv.URL, 0, testOptions()).Elevations(context.Background(),
		[]domain.GeoPoint{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}})
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure, got %v", err)
	}
}

func TestElevations_MissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results": [{"latitude": 1, "longitude": 1}]}`)
	}))
	defer srv.Close()

	_, err := openelevation.New(srv.URL, 0, testOptions()).Elevations(context.Background(),
		[]domain.GeoPoint{{Lat: 1, Lon: 1}})
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure, got %v", err)
	}
}

func TestElevations_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := openelevation.New(srv.URL, 0, testOptions()).Elevations(context.Background(),
		[]domain.GeoPoint{{Lat: 1, Lon: 1}})
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure, got %v", err)
	}
}

func TestElevations_Empty(t *testing.T) {
	got, err := openelevation.New("http://127.0.0.1:1", 0, testOptions()).Elevations(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no elevations, got %v", got)
	}
}
