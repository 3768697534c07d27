package core

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePaginationDefaults(t *testing.T) {
	assert := assert.New(t)

	p, err := ParsePagination(url.Values{})
	assert.NoError(err)
	assert.Equal(DefaultPage, p.Page)
	assert.Equal(DefaultLimit, p.Limit)
	assert.Equal(DefaultSort, p.Sort)
	assert.Empty(p.Populate)
	assert.Equal(0, p.Offset())
}

func TestParsePaginationClamping(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		name      string
		query     url.Values
		wantPage  int
		wantLimit int
	}{
		{"negative page falls back", url.Values{"page": {"-3"}}, DefaultPage, DefaultLimit},
		{"zero page falls back", url.Values{"page": {"0"}}, DefaultPage, DefaultLimit},
		{"garbage page falls back", url.Values{"page": {"abc"}}, DefaultPage, DefaultLimit},
		{"limit above max clamps", url.Values{"limit": {"500"}}, DefaultPage, MaxLimit},
		{"limit below one falls back", url.Values{"limit": {"0"}}, DefaultPage, DefaultLimit},
		{"valid values pass through", url.Values{"page": {"3"}, "limit": {"50"}}, 3, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParsePagination(tc.query)
			assert.NoError(err)
			assert.Equal(tc.wantPage, p.Page)
			assert.Equal(tc.wantLimit, p.Limit)
		})
	}
}

func TestParsePaginationSort(t *testing.T) {
	assert := assert.New(t)

	p, err := ParsePagination(url.Values{"sort": {"-totalKm"}})
	assert.NoError(err)
	assert.Equal("-totalKm", p.Sort)
	assert.Equal("totalKm DESC", p.OrderClause())

	p, err = ParsePagination(url.Values{"sort": {"name"}})
	assert.NoError(err)
	assert.Equal("name ASC", p.OrderClause())

	// A sort value that is not a plain identifier must be rejected, it is
	// interpolated into an ORDER BY clause.
	_, err = ParsePagination(url.Values{"sort": {"name; DROP TABLE users"}})
	assert.Error(err)
}

func TestParsePaginationPopulate(t *testing.T) {
	assert := assert.New(t)

	p, err := ParsePagination(url.Values{"populate": {"unitId, currentDriverId ,"}})
	assert.NoError(err)
	assert.Equal([]string{"unitId", "currentDriverId"}, p.Populate)
}

func TestOffset(t *testing.T) {
	p := Pagination{Page: 3, Limit: 20}
	assert.Equal(t, 40, p.Offset())
}
