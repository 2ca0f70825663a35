package pugh

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/sources"
)

const resultsPage = `<html><body>
	<div class="result">
		<div class="card-body">
			<a href="/property/37635">View Property</a>
			<p>Flat 408, The Colonnades, Albert Dock, Liverpool, L3 4AA</p>
			<span>Guide Price: £25,000 plus</span>
		</div>
	</div>
	<div class="result">
		<div class="card-body">
			<a href="/property/37700">View Property</a>
			<a href="/property/37700">Details</a>
			<p>Former Chapel, Chapel Lane, Wigan, WN1 1AA</p>
		</div>
	</div>
</body></html>`

func newTestAdapter(server *httptest.Server) *Adapter {
	return New(Config{
		BaseURL: server.URL,
		Client:  sources.NewClientWithHTTP(server.Client()),
	})
}

func TestAdapter_Fetch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, resultsPage)
	}))
	defer server.Close()

	adapter := newTestAdapter(server)
	listings, err := adapter.Fetch(context.Background(), "Liverpool", driven.FetchFilters{Radius: 3})
	require.NoError(t, err)

	// Duplicate links to the same property collapse to one listing
	require.Len(t, listings, 2)

	assert.Contains(t, gotQuery, "location=Liverpool")
	assert.Contains(t, gotQuery, "radius=3")
	assert.Contains(t, gotQuery, "include-sold=off")

	first := listings[0]
	assert.Equal(t, SourceID, first.SourceID)
	assert.Equal(t, server.URL+"/property/37635", first.URL)
	assert.Equal(t, "Guide Price: £25,000 plus", first.PriceText)
	assert.Equal(t, "Flat 408, The Colonnades, Albert Dock, Liverpool, L3 4AA", first.Address)
	assert.Equal(t, "Pugh Auctions", first.Agent)

	second := listings[1]
	assert.Equal(t, server.URL+"/property/37700", second.URL)
	assert.Equal(t, "POA", second.PriceText)
	assert.Equal(t, "Former Chapel, Chapel Lane, Wigan, WN1 1AA", second.Address)
}

func TestAdapter_Fetch_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>No properties found.</p></body></html>`)
	}))
	defer server.Close()

	adapter := newTestAdapter(server)
	listings, err := adapter.Fetch(context.Background(), "Liverpool", driven.FetchFilters{})
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestAdapter_Capabilities(t *testing.T) {
	adapter := New(Config{})
	caps := adapter.Capabilities()
	assert.True(t, caps.Auction)
	assert.False(t, caps.RadiusScoped)
	assert.False(t, caps.SupportsPriceFilter)
	assert.Equal(t, SourceID, adapter.ID())
}
