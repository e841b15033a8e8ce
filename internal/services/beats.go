package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/beatwatch/complaint-server/internal/models"
	"go.uber.org/zap"
)

// BeatResolver asks the city geocoder which police beat an address or
// intersection falls in. The geocoding itself is the city's service; this is
// the thin client side.
type BeatResolver struct {
	client      *http.Client
	geocoderURL string
	city        string
	logger      *zap.SugaredLogger
}

// NewBeatResolver creates a new beat resolver
func NewBeatResolver(geocoderURL, city string, logger *zap.SugaredLogger) *BeatResolver {
	return &BeatResolver{
		client:      &http.Client{Timeout: 10 * time.Second},
		geocoderURL: geocoderURL,
		city:        city,
		logger:      logger,
	}
}

type geocodeResponse struct {
	Candidates []struct {
		Attributes struct {
			PoliceBeat string `json:"PoliceBeat"`
		} `json:"attributes"`
		Location struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"location"`
		Score float64 `json:"score"`
	} `json:"candidates"`
}

// Resolve returns the beat number and [longitude, latitude] for the location
// on a complaint. An empty result is not an error: intake proceeds without a
// beat rather than blocking on the geocoder.
func (r *BeatResolver) Resolve(ctx context.Context, c *models.Complaint) (string, []float64, error) {
	address := locationText(c)
	if address == "" {
		return "", nil, nil
	}

	form := url.Values{
		"Address":   {address},
		"City":      {r.city},
		"outFields": {"Shape, Match_addr, Score, Loc_name, City, PoliceBeat"},
		"outSR":     {"4326"},
		"f":         {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.geocoderURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", nil, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("invoke geocoder: %w", err)
	}
	defer resp.Body.Close()

	var parsed geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", nil, fmt.Errorf("decode geocoder response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		r.logger.Infow("No geocode candidates found", "address", address)
		return "", nil, nil
	}

	best := parsed.Candidates[0]
	return best.Attributes.PoliceBeat, []float64{best.Location.X, best.Location.Y}, nil
}

// locationText assembles the geocoder query from the complaint's address or
// intersection fields, matching the intake form's location modes.
func locationText(c *models.Complaint) string {
	switch strings.ToLower(c.Location) {
	case "address":
		return joinFields(c.AddressDirection, c.AddressStreet, c.AddressZipcode)
	case "intersection":
		first := joinFields(c.Intersection1Direction, c.Intersection1Street)
		second := joinFields(c.Intersection2Direction, c.Intersection2Street)
		if first == "" && second == "" {
			return ""
		}
		return first + " & " + second
	default:
		return ""
	}
}

func joinFields(fields ...string) string {
	var parts []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}
