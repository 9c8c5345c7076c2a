package popdist

import (
	"encoding/json"
	"testing"

	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/ingest"
	"github.com/lintang-b-s/synthmap/pkg/synthetic"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{orb.Ring{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}

func town(t *testing.T) *synthetic.Model {
	t.Helper()
	m := synthetic.NewModel()
	m.CreateBuilding(datastructure.NewPt2D(10, 10))
	m.CreateBuilding(datastructure.NewPt2D(50, 50))
	m.CreateBuilding(datastructure.NewPt2D(90, 90))
	m.CreateBuilding(datastructure.NewPt2D(500, 500))
	return m
}

func TestDistribute(t *testing.T) {
	m := town(t)
	regions := []ingest.Region{
		{Index: 0, ID: "west", Polygon: square(0, 0, 100, 100), Properties: map[string]any{"population": 90.0}},
		{Index: 1, ID: "empty", Polygon: square(200, 200, 300, 300), Properties: map[string]any{"population": 10.0}},
		{Index: 2, ID: "unknown", Polygon: square(400, 400, 600, 600), Properties: map[string]any{"name": "x"}},
	}

	summary, warnings, err := Distribute(regions, m, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	assert.ErrorIs(t, warnings[0], ErrNoHomes)
	assert.ErrorIs(t, warnings[1], ErrNoPopulation)

	assert.Equal(t, 90, summary.Total)
	assert.Equal(t, 1, summary.Regions)
	assert.Len(t, summary.Residents, 3)

	total := 0
	for id := synthetic.BuildingID(0); id < 3; id++ {
		b, err := m.Building(id)
		require.NoError(t, err)
		assert.Equal(t, summary.Residents[id], b.Residents)
		total += b.Residents
	}
	assert.Equal(t, 90, total)

	outside, err := m.Building(3)
	require.NoError(t, err)
	assert.Equal(t, 0, outside.Residents)
}

func TestDistributeSkipsOversizedRegions(t *testing.T) {
	m := town(t)
	regions := []ingest.Region{
		{Index: 0, ID: "huge", Polygon: square(0, 0, 100, 100), Properties: map[string]any{"population": 1e19}},
		{Index: 1, ID: "big", Polygon: square(0, 0, 100, 100), Properties: map[string]any{"population": "1e15"}},
		{Index: 2, ID: "small", Polygon: square(0, 0, 100, 100), Properties: map[string]any{"population": 6.0}},
	}

	summary, warnings, err := Distribute(regions, m, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		assert.ErrorIs(t, w, ErrNoPopulation)
	}
	assert.Equal(t, 6, summary.Total)
	assert.Equal(t, 1, summary.Regions)
}

func TestDistributeIsDeterministic(t *testing.T) {
	regions := []ingest.Region{
		{Polygon: square(0, 0, 100, 100), Properties: map[string]any{"population": 500.0}},
	}

	first, _, err := Distribute(regions, town(t), DefaultOptions())
	require.NoError(t, err)
	second, _, err := Distribute(regions, town(t), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, first.Residents, second.Residents)
}

func TestOverlappingRegionsAddUp(t *testing.T) {
	m := town(t)
	regions := []ingest.Region{
		{Polygon: square(0, 0, 20, 20), Properties: map[string]any{"people": 3.0}},
		{Polygon: square(0, 0, 30, 30), Properties: map[string]any{"people": "4"}},
	}
	summary, warnings, err := Distribute(regions, m, Options{Property: "people", Seed: 7})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 7, summary.Residents[0])

	b, _ := m.Building(0)
	assert.Equal(t, 7, b.Residents)
}

func TestPopulation(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		wantErr bool
	}{
		{"float", 12.9, 12, false},
		{"int", 5, 5, false},
		{"json number", json.Number("42"), 42, false},
		{"string", " 17 ", 17, false},
		{"zero", 0.0, 0, false},
		{"negative", -1.0, 0, true},
		{"at limit", float64(MaxPopulation), MaxPopulation, false},
		{"above limit", float64(MaxPopulation + 1), 0, true},
		{"overflows int", 1e19, 0, true},
		{"huge string", "1e15", 0, true},
		{"huge int64", int64(1) << 40, 0, true},
		{"garbage string", "many", 0, true},
		{"bool", true, 0, true},
		{"nil", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Population(map[string]any{"population": tt.value}, "population")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoPopulation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Population(map[string]any{}, "population")
	assert.ErrorIs(t, err, ErrNoPopulation)
}
