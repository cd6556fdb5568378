package pdok_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/healclinics/shop-api/internal/address"
	"github.com/healclinics/shop-api/internal/pdok"
)

const lookupResponse = `{
	"response": {
		"numFound": 1,
		"docs": [{
			"weergavenaam": "Damstraat 12A, 1012NX Amsterdam",
			"straatnaam": "Damstraat",
			"huisnummer": 12,
			"huisnummer_toevoeging": "A",
			"postcode": "1012NX",
			"woonplaatsnaam": "Amsterdam",
			"provincienaam": "Noord-Holland"
		}]
	}
}`

func TestLookup(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		require.Equal(t, "postcode:1012NX AND huisnummer:12 AND huisnummer_toevoeging:A", r.URL.Query().Get("fq"))
		w.Write([]byte(lookupResponse))
	}))
	defer server.Close()

	client := pdok.NewClient(server.URL, server.URL, 2*time.Second)

	got, err := client.Lookup(context.Background(), "1012 nx", "12", "A")
	require.NoError(t, err)

	want := &pdok.Result{
		Street:              "Damstraat",
		HouseNumber:         "12",
		HouseNumberAddition: "A",
		Postcode:            "1012 NX",
		City:                "Amsterdam",
		Province:            "Noord-Holland",
		Country:             "Nederland",
		FormattedAddress:    "Damstraat 12 A, 1012 NX Amsterdam",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lookup() mismatch (-want +got):\n%s", diff)
	}

	// A repeat lookup is served from the cache.
	_, err = client.Lookup(context.Background(), "1012NX", "12", "A")
	require.NoError(t, err)
	require.Equal(t, int32(1), hits.Load())
}

func TestLookupNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"response": {"numFound": 0, "docs": []}}`))
	}))
	defer server.Close()

	client := pdok.NewClient(server.URL, server.URL, 2*time.Second)

	_, err := client.Lookup(context.Background(), "9999 ZZ", "1", "")
	require.ErrorIs(t, err, pdok.ErrNotFound)
}

func TestLookupInvalidPostcode(t *testing.T) {
	client := pdok.NewClient("http://unused.invalid", "http://unused.invalid", time.Second)

	_, err := client.Lookup(context.Background(), "notapostcode", "1", "")
	require.ErrorIs(t, err, address.ErrInvalidPostcode)
}

func TestLookupDirectoryDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := pdok.NewClient(server.URL, server.URL, 2*time.Second)

	_, err := client.Lookup(context.Background(), "1012 NX", "12", "")
	require.ErrorIs(t, err, pdok.ErrUnavailable)
}

func TestSuggestShortQuery(t *testing.T) {
	client := pdok.NewClient("http://unused.invalid", "http://unused.invalid", time.Second)

	got, err := client.Suggest(context.Background(), "ab")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSuggestFallsBackWhenDirectoryDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := pdok.NewClient(server.URL, server.URL, 2*time.Second)

	got, err := client.Suggest(context.Background(), "Damstraat")
	require.NoError(t, err)
	require.Len(t, got, 5)
	require.Equal(t, "Amsterdam", got[0].City)
	require.Equal(t, "Nederland", got[0].Country)
}
