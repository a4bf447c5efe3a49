package worldbank

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves canned two-element World Bank responses. Population
// rows are padded with aggregate entries so the real-country data sits
// past the rows the client skips.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	var pops strings.Builder
	pops.WriteString(`[{"page":1},[`)
	for i := 0; i < aggregateRows; i++ {
		pops.WriteString(`{"country":{"value":"Aggregate"},"value":"999"},`)
	}
	pops.WriteString(`{"country":{"value":"Finland"},"value":"5461512"},`)
	pops.WriteString(`{"country":{"value":"Sweden"},"value":9696110},`)
	pops.WriteString(`{"country":{"value":"Japan"},"value":"127131800"},`)
	pops.WriteString(`{"country":{"value":"Nowhere"},"value":null},`)
	pops.WriteString(`{"country":{"value":"Ghostland"},"value":"0"}`)
	pops.WriteString(`]]`)

	regions := `[{"page":1},[
		{"name":"Finland","region":{"value":"Europe & Central Asia"}},
		{"name":"Sweden","region":{"value":"Europe & Central Asia"}},
		{"name":"Japan","region":{"value":"East Asia & Pacific"}},
		{"name":"Nowhere","region":{"value":"East Asia & Pacific"}},
		{"name":"Ghostland","region":{"value":"Limbo"}},
		{"name":"Everything","region":{"value":"Aggregates"}}
	]]`

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "SP.POP.TOTL") {
			_, _ = w.Write([]byte(pops.String()))
			return
		}
		_, _ = w.Write([]byte(regions))
	}))
}

func testClient(baseURL string) *Client {
	c := NewClient(rand.New(rand.NewSource(1)))
	c.BaseURL = baseURL
	c.HTTPClient = http.DefaultClient
	return c
}

func TestLoad(t *testing.T) {
	srv := fakeAPI(t)
	defer srv.Close()

	c := testClient(srv.URL)
	world, err := c.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "World", world.Label())
	assert.EqualValues(t, 5461512+9696110+127131800, world.Weight())

	// Regions in name order; Limbo dropped (its only country has no
	// population), Aggregates dropped outright.
	require.Len(t, world.Children(), 2)
	east, europe := world.Children()[0], world.Children()[1]
	assert.Equal(t, "East Asia & Pacific", east.Label())
	assert.Equal(t, "Europe & Central Asia", europe.Label())

	// Nowhere had a null population and is not a leaf.
	require.Len(t, east.Children(), 1)
	japan := east.Children()[0]
	assert.Equal(t, "Japan", japan.Label())
	assert.EqualValues(t, 127131800, japan.Weight())

	require.Len(t, europe.Children(), 2)
	assert.EqualValues(t, 5461512, europe.Children()[0].Weight())
	assert.EqualValues(t, 9696110, europe.Children()[1].Weight())
}

func TestLoadPathLabels(t *testing.T) {
	srv := fakeAPI(t)
	defer srv.Close()

	world, err := testClient(srv.URL).Load(context.Background())
	require.NoError(t, err)

	japan := world.Children()[0].Children()[0]
	assert.Equal(t, "World -- East Asia & Pacific -- Japan", japan.PathLabel())
}

func TestLoadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestLoadTruncatedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"page":1}]`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload")
}

func TestLoadContextCancelled(t *testing.T) {
	srv := fakeAPI(t)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).Load(ctx)
	require.Error(t, err)
}
