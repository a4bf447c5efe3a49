// Package worldbank loads country population data from the World Bank
// API and shapes it into a three-level weighted tree: World at the
// root, regions below it, countries as leaves weighted by population.
package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"strconv"

	"github.com/lumipallolabs/sizemap/internal/model"
)

// DefaultBaseURL is the production World Bank countries endpoint.
const DefaultBaseURL = "http://api.worldbank.org/countries"

const (
	populationsQuery = "/all/indicators/SP.POP.TOTL?format=json&date=2014:2014&per_page=270"
	regionsQuery     = "?format=json&date=2014:2014&per_page=310"

	// The population response opens with aggregate rows (world, income
	// groups, regions) before the first real country.
	aggregateRows = 47
)

// PathSep joins the ancestor labels of a population tree.
const PathSep = " -- "

// Client fetches and assembles the population tree. BaseURL and
// HTTPClient are overridable for tests.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	builder *model.Builder
}

// NewClient creates a client against the production API. The rng seeds
// node colors; nil means time-seeded.
func NewClient(rng *rand.Rand) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: http.DefaultClient,
		builder:    model.NewBuilder(model.SeparatorFormatter{Sep: PathSep}, rng),
	}
}

// Load fetches populations and regions and builds the World tree.
// Regions appear in name order; countries keep the API's region
// ordering. Countries without population data and regions left without
// countries are dropped, as is the "Aggregates" pseudo-region.
func (c *Client) Load(ctx context.Context) (*model.Tree, error) {
	populations, err := c.fetchPopulations(ctx)
	if err != nil {
		return nil, fmt.Errorf("worldbank: populations: %w", err)
	}
	regions, err := c.fetchRegions(ctx)
	if err != nil {
		return nil, fmt.Errorf("worldbank: regions: %w", err)
	}

	names := make([]string, 0, len(regions))
	for name := range regions {
		names = append(names, name)
	}
	sort.Strings(names)

	var regionTrees []*model.Tree
	for _, name := range names {
		var countries []*model.Tree
		for _, country := range regions[name] {
			pop, ok := populations[country]
			if !ok {
				continue
			}
			leaf, err := c.builder.Leaf(country, pop)
			if err != nil {
				return nil, err
			}
			countries = append(countries, leaf)
		}
		if len(countries) == 0 {
			continue
		}
		region, err := c.builder.Branch(name, countries)
		if err != nil {
			return nil, err
		}
		regionTrees = append(regionTrees, region)
	}

	return c.builder.Branch("World", regionTrees)
}

// popRow is one row of the population indicator response.
type popRow struct {
	Country struct {
		Value string `json:"value"`
	} `json:"country"`
	Value flexInt64 `json:"value"`
}

// fetchPopulations returns country name -> population, skipping
// aggregate rows and countries with missing or zero data.
func (c *Client) fetchPopulations(ctx context.Context) (map[string]int64, error) {
	var rows []popRow
	if err := c.getJSON(ctx, c.BaseURL+populationsQuery, &rows); err != nil {
		return nil, err
	}
	if len(rows) > aggregateRows {
		rows = rows[aggregateRows:]
	}

	populations := make(map[string]int64, len(rows))
	for _, row := range rows {
		if row.Value.Valid && row.Value.Int != 0 {
			populations[row.Country.Value] = row.Value.Int
		}
	}
	return populations, nil
}

// regionRow is one row of the countries response.
type regionRow struct {
	Name   string `json:"name"`
	Region struct {
		Value string `json:"value"`
	} `json:"region"`
}

// fetchRegions returns region name -> country names, in response order.
func (c *Client) fetchRegions(ctx context.Context) (map[string][]string, error) {
	var rows []regionRow
	if err := c.getJSON(ctx, c.BaseURL+regionsQuery, &rows); err != nil {
		return nil, err
	}

	regions := make(map[string][]string)
	for _, row := range rows {
		regions[row.Region.Value] = append(regions[row.Region.Value], row.Name)
	}
	delete(regions, "Aggregates")
	return regions, nil
}

// getJSON fetches a World Bank response and decodes its payload. The
// API wraps every response in a two-element array whose first element
// is paging metadata.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	var envelope []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	if len(envelope) < 2 {
		return fmt.Errorf("response missing payload element")
	}
	return json.Unmarshal(envelope[1], out)
}

// flexInt64 decodes an integer that the API may serialize as a number,
// a quoted number, or null.
type flexInt64 struct {
	Int   int64
	Valid bool
}

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		f.Valid = false
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	// Some rows carry fractional estimates; truncate to whole people.
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	f.Int = int64(v)
	f.Valid = true
	return nil
}
