package auctionhouse

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
	<div class="lot-search-result">
		<a class="home-lot-wrapper-link" href="/auction/lot/12345">
			<span>Lot 14</span>
			<h3>3 Bed Terraced Property</h3>
			<p>56 Breck Road, Everton, Liverpool</p>
			<span>Guide Price: £29,000+</span>
		</a>
	</div>
	<div class="lot-search-result">
		<a class="home-lot-wrapper-link" href="https://www.auctionhouse.co.uk/auction/lot/67890">
			<span>Lot 15</span>
			<h3>Land at Mill Street</h3>
			<p>Mill Street, Toxteth, Liverpool</p>
		</a>
	</div>
</body></html>`

func newTestAdapter(server *httptest.Server) *Adapter {
	return New(Config{
		BaseURL: server.URL,
		Client:  sources.NewClientWithHTTP(server.Client()),
	})
}

func TestAdapter_Fetch(t *testing.T) {
	var gotKeyword string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKeyword = r.URL.Query().Get("keyword")
		fmt.Fprint(w, resultsPage)
	}))
	defer server.Close()

	adapter := newTestAdapter(server)
	listings, err := adapter.Fetch(context.Background(), "Liverpool", driven.FetchFilters{})
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Liverpool", gotKeyword)

	first := listings[0]
	assert.Equal(t, SourceID, first.SourceID)
	assert.Equal(t, server.URL+"/auction/lot/12345", first.URL)
	assert.Equal(t, "3 Bed Terraced Property", first.Title)
	assert.Equal(t, "Guide Price: £29,000+", first.PriceText)
	assert.Equal(t, "56 Breck Road, Everton, Liverpool", first.Address)
	assert.Equal(t, "Auction House UK", first.Agent)

	// No guide price on the card leaves the POA marker
	second := listings[1]
	assert.Equal(t, "https://www.auctionhouse.co.uk/auction/lot/67890", second.URL)
	assert.Equal(t, "Land at Mill Street", second.Title)
	assert.Equal(t, "POA", second.PriceText)
}

func TestAdapter_Fetch_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>No lots matched your search.</p></body></html>`)
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
