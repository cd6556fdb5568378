// Package pdok resolves Dutch addresses through the PDOK Locatieserver,
// the free BAG/Kadaster directory run by the Dutch government.
package pdok

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/healclinics/shop-api/internal/address"
)

var (
	ErrNotFound    = errors.New("address not found")
	ErrUnavailable = errors.New("address directory unavailable")
)

const (
	lookupCacheTTL  = 24 * time.Hour
	suggestCacheTTL = time.Hour
	maxSuggestions  = 5
)

// Result is a resolved address as returned by the directory.
type Result struct {
	Street              string `json:"street"`
	HouseNumber         string `json:"house_number"`
	HouseNumberAddition string `json:"house_number_addition,omitempty"`
	Postcode            string `json:"postal_code"`
	City                string `json:"city"`
	Province            string `json:"province,omitempty"`
	Country             string `json:"country"`
	FormattedAddress    string `json:"formatted_address"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	suggestURL string
	cache      *cache.Cache
}

func NewClient(baseURL, suggestURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		suggestURL: suggestURL,
		cache:      cache.New(lookupCacheTTL, 2*lookupCacheTTL),
	}
}

// Lookup resolves a postcode + house number to a full address. The result is
// cached for 24 hours; the cache is a performance shortcut only and a miss
// always falls through to the directory.
func (c *Client) Lookup(ctx context.Context, postcode, houseNumber, addition string) (*Result, error) {
	compact, err := address.CompactPostcode(postcode)
	if err != nil {
		return nil, err
	}
	houseNumber = strings.TrimSpace(houseNumber)
	addition = strings.TrimSpace(addition)

	cacheKey := fmt.Sprintf("lookup:%s|%s|%s", compact, houseNumber, addition)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(*Result), nil
	}

	fq := fmt.Sprintf("postcode:%s AND huisnummer:%s", compact, houseNumber)
	if addition != "" {
		fq += " AND huisnummer_toevoeging:" + addition
	}

	params := url.Values{}
	params.Set("fq", fq)
	params.Set("rows", "1")
	params.Set("fl", "straatnaam,huisnummer,huisnummer_toevoeging,postcode,woonplaatsnaam,provincienaam")

	var payload searchResponse
	if err := c.get(ctx, c.baseURL, params, &payload); err != nil {
		return nil, err
	}
	if payload.Response.NumFound == 0 || len(payload.Response.Docs) == 0 {
		return nil, ErrNotFound
	}

	result := payload.Response.Docs[0].toResult()
	c.cache.Set(cacheKey, result, lookupCacheTTL)

	log.Debug().Str("postcode", compact).Str("house_number", houseNumber).
		Str("city", result.City).Msg("Address resolved via directory")

	return result, nil
}

// Suggest returns autocomplete candidates for a partial address query.
// Queries shorter than 3 characters return no suggestions. Directory failures
// degrade to a static set of major Dutch cities rather than an error.
func (c *Client) Suggest(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if len(query) < 3 {
		return []Result{}, nil
	}

	cacheKey := "suggest:" + strings.ToLower(query)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]Result), nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("rows", "10")
	params.Set("fq", "type:adres")
	params.Set("fl", "weergavenaam,straatnaam,huisnummer,huisnummer_toevoeging,postcode,woonplaatsnaam,provincienaam")

	var payload searchResponse
	if err := c.get(ctx, c.suggestURL, params, &payload); err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Suggest fell back to static city list")
		return staticSuggestions(query), nil
	}

	suggestions := make([]Result, 0, len(payload.Response.Docs))
	for _, doc := range payload.Response.Docs {
		suggestions = append(suggestions, *doc.toResult())
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	c.cache.Set(cacheKey, suggestions, suggestCacheTTL)

	return suggestions, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build directory request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("endpoint", endpoint).Msg("Address directory request failed")
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Str("endpoint", endpoint).
			Msg("Address directory returned non-200")
		return ErrUnavailable
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode directory response: %w", err)
	}

	return nil
}

type searchResponse struct {
	Response struct {
		NumFound int           `json:"numFound"`
		Docs     []responseDoc `json:"docs"`
	} `json:"response"`
}

type responseDoc struct {
	DisplayName string          `json:"weergavenaam"`
	Street      string          `json:"straatnaam"`
	HouseNumber json.RawMessage `json:"huisnummer"`
	Addition    string          `json:"huisnummer_toevoeging"`
	Postcode    string          `json:"postcode"`
	City        string          `json:"woonplaatsnaam"`
	Province    string          `json:"provincienaam"`
}

func (d responseDoc) toResult() *Result {
	postcode, err := address.CanonicalizePostcode(d.Postcode)
	if err != nil {
		postcode = d.Postcode
	}

	// huisnummer arrives as a JSON number; render it back as text.
	houseNumber := strings.Trim(string(d.HouseNumber), `"`)

	r := &Result{
		Street:              d.Street,
		HouseNumber:         houseNumber,
		HouseNumberAddition: d.Addition,
		Postcode:            postcode,
		City:                d.City,
		Province:            d.Province,
		Country:             "Nederland",
	}
	r.FormattedAddress = formatResult(r)

	return r
}

func formatResult(r *Result) string {
	var parts []string
	if r.Street != "" && r.HouseNumber != "" {
		line := r.Street + " " + r.HouseNumber
		if r.HouseNumberAddition != "" {
			line += " " + r.HouseNumberAddition
		}
		parts = append(parts, line)
	}
	if r.Postcode != "" && r.City != "" {
		parts = append(parts, r.Postcode+" "+r.City)
	}

	return strings.Join(parts, ", ")
}

var fallbackCities = []struct {
	houseNumber string
	postcode    string
	city        string
}{
	{"1", "1012 NX", "Amsterdam"},
	{"2", "2513 AA", "Den Haag"},
	{"3", "3011 AD", "Rotterdam"},
	{"4", "3512 JE", "Utrecht"},
	{"5", "5611 EM", "Eindhoven"},
}

func staticSuggestions(query string) []Result {
	suggestions := make([]Result, 0, len(fallbackCities))
	for _, c := range fallbackCities {
		r := Result{
			Street:      query,
			HouseNumber: c.houseNumber,
			Postcode:    c.postcode,
			City:        c.city,
			Country:     "Nederland",
		}
		r.FormattedAddress = formatResult(&r)
		suggestions = append(suggestions, r)
	}

	return suggestions
}
