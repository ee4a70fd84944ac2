// Package source is a minimal REST client for the upstream plant sensor API.
// The API serves one flattened record per plant id; ids are scanned from a
// starting point until a run of consecutive misses ends the sweep.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ingest "plantwatch-cloud/internal/ingest/domain"
)

// Client is a minimal plant API client.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient constructs a source client.
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("source: empty base url")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type payload struct {
	PlantID        int64           `json:"plant_id"`
	Name           string          `json:"name"`
	ScientificName []string        `json:"scientific_name"`
	SoilMoisture   float64         `json:"soil_moisture"`
	Temperature    float64         `json:"temperature"`
	LastWatered    string          `json:"last_watered"`
	RecordingTaken string          `json:"recording_taken"`
	Botanist       payloadBotanist `json:"botanist"`
	Origin         payloadOrigin   `json:"origin_location"`
	Error          string          `json:"error"`
}

type payloadBotanist struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type payloadOrigin struct {
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Timestamp layouts observed from the upstream API.
var (
	recordingLayouts = []string{"2006-01-02 15:04:05", time.RFC3339}
	wateredLayouts   = []string{time.RFC1123, "2006-01-02 15:04:05", time.RFC3339}
)

func parseTime(value string, layouts []string) time.Time {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// FetchPlant fetches one flattened record. found=false means the id has no
// plant behind it (the API reports this in-band as an error payload).
func (c *Client) FetchPlant(ctx context.Context, plantID int64) (ingest.RawRecord, bool, error) {
	url := fmt.Sprintf("%s/api/plants/%d", c.baseURL, plantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ingest.RawRecord{}, false, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return ingest.RawRecord{}, false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ingest.RawRecord{}, false, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return ingest.RawRecord{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return ingest.RawRecord{}, false, fmt.Errorf("source: plant %d: status %d", plantID, resp.StatusCode)
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return ingest.RawRecord{}, false, fmt.Errorf("source: plant %d: %w", plantID, err)
	}
	if p.Error != "" {
		return ingest.RawRecord{}, false, nil
	}

	return ingest.RawRecord{
		PlantID:        p.PlantID,
		CommonName:     p.Name,
		ScientificName: p.ScientificName,
		Moisture:       p.SoilMoisture,
		Temperature:    p.Temperature,
		LastWatered:    parseTime(p.LastWatered, wateredLayouts),
		RecordingTaken: parseTime(p.RecordingTaken, recordingLayouts),
		BotanistName:   p.Botanist.Name,
		BotanistEmail:  p.Botanist.Email,
		BotanistPhone:  p.Botanist.Phone,
		City:           p.Origin.City,
		Country:        p.Origin.Country,
		Latitude:       p.Origin.Latitude,
		Longitude:      p.Origin.Longitude,
	}, true, nil
}

// FetchAll sweeps plant ids from startID until maxMisses consecutive misses.
// Transport errors end the sweep; in-band misses only advance it.
func (c *Client) FetchAll(ctx context.Context, startID int64, maxMisses int) ([]ingest.RawRecord, error) {
	if maxMisses <= 0 {
		maxMisses = 5
	}

	var records []ingest.RawRecord
	misses := 0
	for plantID := startID; misses < maxMisses; plantID++ {
		record, found, err := c.FetchPlant(ctx, plantID)
		if err != nil {
			return records, err
		}
		if !found {
			misses++
			continue
		}
		misses = 0
		records = append(records, record)
	}
	return records, nil
}
