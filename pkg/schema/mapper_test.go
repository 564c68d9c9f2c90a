package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlrewrite/internal/testutil"
)

func TestMapper_Map(t *testing.T) {
	failing := ScannerFunc(func(context.Context, string) ([]Candidate, error) {
		return nil, errors.New("dictionary unavailable")
	})
	first := StaticScanner{
		{DataSetID: 1, Match: match(1, TypeMetric, "pv", 0.6)},
		{DataSetID: 1, Match: match(2, TypeDimension, "city", 0.9)},
	}
	second := ScannerFunc(func(_ context.Context, query string) ([]Candidate, error) {
		assert.Equal(t, "pv by city", query)
		return []Candidate{{DataSetID: 1, Match: match(1, TypeMetric, "page views", 0.8)}}, nil
	})

	logger, buf := testutil.NewCaptureLogger()
	mapper := NewMapper(logger, Named("keyword", first), failing, second)
	info := NewMapInfo()
	require.NoError(t, mapper.Map(context.Background(), "pv by city", QueryMetric, info))

	got := info.Matches(1)
	require.Len(t, got, 1)
	assert.Equal(t, "city", got[0].Word)
	assert.Contains(t, buf.String(), "dictionary unavailable")
	assert.Contains(t, buf.String(), "after scan")
	assert.Contains(t, buf.String(), `"scanner":"keyword"`)
	assert.Contains(t, buf.String(), `"scanner":"schema.ScannerFunc"`)
}

func TestMapper_NarrowsValueAliases(t *testing.T) {
	city := Element{ID: 7, DataSetID: 1, Type: TypeValue, Name: "北京", Aliases: []string{"北京市", "bj", "peking"}}
	metric := Element{ID: 8, DataSetID: 1, Type: TypeMetric, Name: "pv", Aliases: []string{"page views", "visits"}}
	scanner := StaticScanner{
		{DataSetID: 1, Match: Match{Element: city, Word: "北京", Similarity: 1}},
		{DataSetID: 1, Match: Match{Element: metric, Word: "pv", Similarity: 1}},
	}

	info := NewMapInfo()
	require.NoError(t, NewMapper(nil, scanner).Map(context.Background(), "北京 pv", QueryAll, info))

	got := info.Matches(1)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"北京市"}, got[0].Element.Aliases)
	assert.Equal(t, []string{"page views", "visits"}, got[1].Element.Aliases)
	assert.Equal(t, []string{"北京市", "bj", "peking"}, scanner[0].Match.Element.Aliases)
}

func TestMapper_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mapper := NewMapper(nil, StaticScanner{{DataSetID: 1, Match: match(1, TypeMetric, "pv", 1)}})
	info := NewMapInfo()
	err := mapper.Map(ctx, "pv", QueryAll, info)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, info.Len())
}
