package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func plantJSON(id int64) string {
	return fmt.Sprintf(`{
		"plant_id": %d,
		"name": "Bird of paradise",
		"scientific_name": ["Heliconia schiedeana"],
		"soil_moisture": 21.48,
		"temperature": 11.54,
		"last_watered": "Mon, 10 Jun 2024 13:23:01 GMT",
		"recording_taken": "2024-06-12 13:00:09",
		"botanist": {"name": "Carl Linnaeus", "email": "carl@lnhm.co.uk", "phone": "(146)994-1635"},
		"origin_location": {"city": "Resplendor", "country": "Brazil", "latitude": -19.32, "longitude": -41.25}
	}`, id)
}

func TestFetchPlantParsesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/plants/8" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, plantJSON(8))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	record, found, err := client.FetchPlant(context.Background(), 8)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !found {
		t.Fatal("expected plant found")
	}
	if record.PlantID != 8 || record.CommonName != "Bird of paradise" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.RecordingTaken.IsZero() || record.LastWatered.IsZero() {
		t.Fatalf("timestamps not parsed: %+v", record)
	}
	if record.City != "Resplendor" || record.Country != "Brazil" {
		t.Fatalf("origin not parsed: %+v", record)
	}
}

func TestFetchPlantInBandError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": "plant not found", "plant_id": 7}`)
	}))
	defer server.Close()

	client, _ := NewClient(server.URL)
	_, found, err := client.FetchPlant(context.Background(), 7)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if found {
		t.Fatal("expected miss for error payload")
	}
}

func TestFetchAllStopsAfterConsecutiveMisses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id int64
		fmt.Sscanf(r.URL.Path, "/api/plants/%d", &id)
		// Plants 1-3 exist, everything beyond is a miss.
		if id <= 3 {
			fmt.Fprint(w, plantJSON(id))
			return
		}
		fmt.Fprint(w, `{"error": "plant not found"}`)
	}))
	defer server.Close()

	client, _ := NewClient(server.URL)
	records, err := client.FetchAll(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
}
