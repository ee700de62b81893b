package tracking

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"hvdcmap/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestGetCargoRecordsAllWithRetry(t *testing.T) {
	attempt := 0

	cfg, _ := config.Load()
	cfg.TrackingAPIToken = "test"
	cfg.TrackingAPIBaseURL = "https://example.test/api/v1"
	cfg.TrackingRateLimitRPS = 1000

	client := NewClient(cfg)
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/api/v1/cargo/scroll" {
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
			attempt++
			if attempt == 1 {
				return &http.Response{
					StatusCode: http.StatusInternalServerError,
					Body:       io.NopCloser(strings.NewReader(`{"error":"boom"}`)),
					Header:     make(http.Header),
				}, nil
			}

			payload := map[string]any{"success": true, "data": map[string]any{"records": []map[string]any{}, "scrollId": nil}}
			if attempt == 2 {
				payload = map[string]any{"success": true, "data": map[string]any{"records": []map[string]any{{"id": 1, "case": "HVDC-ADOPT-HE-0476", "status": "in_transit"}}, "scrollId": "abc"}}
			}
			if attempt == 3 {
				payload = map[string]any{"success": true, "data": map[string]any{"records": []map[string]any{{"id": 2, "case": "HVDC-ADOPT-SCT-0136", "status": "CUSTOMS"}}, "scrollId": nil}}
			}
			blob, _ := json.Marshal(payload)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(string(blob))),
				Header:     make(http.Header),
			}, nil
		}),
	}

	records, err := client.GetCargoRecordsAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("len=%d", len(records))
	}
	if records[0].Status != StatusInTransit {
		t.Fatalf("status=%s", records[0].Status)
	}
}

func TestGetCargoRecordsMissingToken(t *testing.T) {
	cfg, _ := config.Load()
	cfg.TrackingAPIToken = ""
	client := NewClient(cfg)
	if _, err := client.GetCargoRecordsAll(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestToCargoRecordStatusValidation(t *testing.T) {
	rec, err := toCargoRecord(map[string]any{"id": 1, "case": "HVDC-ADOPT-HE-0476", "status": "teleported"})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusUnknown {
		t.Fatalf("unrecognized status should map to %s, got %s", StatusUnknown, rec.Status)
	}
	if !strings.Contains(rec.RawJSON, "teleported") {
		t.Fatal("raw payload should keep the server's status verbatim")
	}

	rec, err = toCargoRecord(map[string]any{"id": 2, "case": "HVDC-ADOPT-HE-0504", "status": "site_delivered"})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusSiteDelivered {
		t.Fatalf("status=%s", rec.Status)
	}
}
