package snap

import (
	"testing"

	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/synthetic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

var lanes = []string{"dps/dps", "d/", "/ss", "dpsbu/d", "b/b"}

func randomModel(t *testing.T, rd *rand.Rand, n int) *synthetic.Model {
	t.Helper()
	m := synthetic.NewModel()
	for k := 0; k < n; k++ {
		m.CreateIntersection(datastructure.NewPt2D(rd.Float64()*500, rd.Float64()*500))
		m.CreateBuilding(datastructure.NewPt2D(rd.Float64()*500, rd.Float64()*500))
	}
	for k := 0; k < n*2; k++ {
		a := synthetic.IntersectionID(rd.Intn(n))
		b := synthetic.IntersectionID(rd.Intn(n))
		id, err := m.CreateRoad(a, b)
		if err != nil {
			continue
		}
		require.NoError(t, m.EditLanes(id, lanes[rd.Intn(len(lanes))]))
	}
	// a few holes in the id space
	for k := 0; k < n/5; k++ {
		m.RemoveBuilding(synthetic.BuildingID(rd.Intn(n)))
	}
	return m
}

func TestIndexMatchesFullScan(t *testing.T) {
	rd := rand.New(rand.NewSource(uint64(42)))
	m := randomModel(t, rd, 120)

	ix, err := Build(m)
	require.NoError(t, err)
	assert.Greater(t, ix.Size(), 0)

	var scan, indexed HitTester = m, ix
	hits := 0
	for k := 0; k < 3000; k++ {
		p := datastructure.NewPt2D(rd.Float64()*520-10, rd.Float64()*520-10)

		wantI, okI := scan.HitTestIntersection(p)
		gotI, gotOkI := indexed.HitTestIntersection(p)
		assert.Equal(t, okI, gotOkI)
		assert.Equal(t, wantI, gotI)

		wantB, okB := scan.HitTestBuilding(p)
		gotB, gotOkB := indexed.HitTestBuilding(p)
		assert.Equal(t, okB, gotOkB)
		assert.Equal(t, wantB, gotB)

		wantR, wantDir, okR := scan.HitTestRoad(p)
		gotR, gotDir, gotOkR := indexed.HitTestRoad(p)
		assert.Equal(t, okR, gotOkR)
		if okR {
			assert.Equal(t, wantR, gotR)
			assert.Equal(t, wantDir, gotDir)
			hits++
		}
	}
	assert.Greater(t, hits, 0)
}

func TestIndexPrefersLowerIDs(t *testing.T) {
	m := synthetic.NewModel()
	a := m.CreateIntersection(datastructure.NewPt2D(0, 0))
	b := m.CreateIntersection(datastructure.NewPt2D(100, 0))
	c := m.CreateIntersection(datastructure.NewPt2D(5, 0))
	_, err := m.CreateRoad(b, a)
	require.NoError(t, err)
	_, err = m.CreateRoad(c, b)
	require.NoError(t, err)

	ix, err := Build(m)
	require.NoError(t, err)

	id, ok := ix.HitTestIntersection(datastructure.NewPt2D(3, 0))
	require.True(t, ok)
	assert.Equal(t, a, id)

	road, dir, ok := ix.HitTestRoad(datastructure.NewPt2D(50, 0))
	require.True(t, ok)
	assert.Equal(t, synthetic.NewRoadID(a, b), road)
	assert.Equal(t, synthetic.Forwards, dir)

	_, _, ok = ix.HitTestRoad(datastructure.NewPt2D(50, 40))
	assert.False(t, ok)
}

func TestEmptyIndex(t *testing.T) {
	ix, err := Build(synthetic.NewModel())
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Size())
	_, ok := ix.HitTestBuilding(datastructure.NewPt2D(0, 0))
	assert.False(t, ok)
}
