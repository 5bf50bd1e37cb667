package generator_test

import (
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iot-telemetry-service/internal/domain"
	"github.com/iot-telemetry-service/internal/generator"
	"github.com/iot-telemetry-service/internal/pkg/errors"
)

// twoSquareCatalog is the reference scenario: region A (weight 9, 1 degree
// square) and region B (weight 1, 0.1 degree square), far apart so samples
// are unambiguous.
func twoSquareCatalog(t *testing.T) *generator.Catalog {
	t.Helper()

	fc := featureCollection(
		[]string{"A", "B"},
		[]orb.Polygon{square(0, 0, 1), square(50, 50, 0.1)},
	)
	catalog, err := generator.NewCatalog(fc, map[string]float64{"A": 9, "B": 1}, zap.NewNop())
	require.NoError(t, err)
	return catalog
}

func regionByName(t *testing.T, catalog *generator.Catalog, name string) domain.Region {
	t.Helper()
	for _, r := range catalog.Regions() {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("region %q not in catalog", name)
	return domain.Region{}
}

func TestSampler_Containment(t *testing.T) {
	catalog := twoSquareCatalog(t)
	sampler := generator.NewSampler(catalog, rand.New(rand.NewSource(1)), 0, 0)

	// Every non-exhausted sample must lie inside the polygon of its
	// assigned region.
	for i := 0; i < 1000; i++ {
		loc, err := sampler.Sample()
		require.NoError(t, err)

		region := regionByName(t, catalog, loc.Region)
		assert.True(t,
			planar.MultiPolygonContains(region.Boundary, orb.Point{loc.Lon, loc.Lat}),
			"sample %d at (%f, %f) escaped region %s", i, loc.Lon, loc.Lat, loc.Region,
		)

		assert.GreaterOrEqual(t, loc.Altitude, 0.0)
		assert.LessOrEqual(t, loc.Altitude, 2000.0)
	}
}

func TestSampler_WeightedDistribution(t *testing.T) {
	catalog := twoSquareCatalog(t)
	sampler := generator.NewSampler(catalog, rand.New(rand.NewSource(42)), 0, 0)

	counts := map[string]int{}
	const n = 1000
	for i := 0; i < n; i++ {
		loc, err := sampler.Sample()
		require.NoError(t, err)
		counts[loc.Region]++
	}

	// Expect ~900/100 for weights 9:1; a square region accepts bbox draws
	// on the first attempt, so acceptance does not skew the ratio.
	assert.InDelta(t, 900, counts["A"], 60)
	assert.InDelta(t, 100, counts["B"], 60)
	assert.Equal(t, n, counts["A"]+counts["B"])
}

func TestSampler_Deterministic(t *testing.T) {
	catalog := twoSquareCatalog(t)

	s1 := generator.NewSampler(catalog, rand.New(rand.NewSource(7)), 0, 0)
	s2 := generator.NewSampler(catalog, rand.New(rand.NewSource(7)), 0, 0)

	for i := 0; i < 100; i++ {
		l1, err1 := s1.Sample()
		l2, err2 := s2.Sample()
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, l1, l2)
	}
}

func TestSampler_Exhaustion(t *testing.T) {
	// A collinear ring has zero area: every bounding-box draw misses the
	// polygon and the retry budget runs out instead of hanging.
	sliver := orb.Polygon{orb.Ring{{0, 0}, {1, 1}, {2, 2}, {0, 0}}}
	fc := featureCollection([]string{"sliver"}, []orb.Polygon{sliver})
	catalog, err := generator.NewCatalog(fc, map[string]float64{"sliver": 1}, zap.NewNop())
	require.NoError(t, err)

	sampler := generator.NewSampler(catalog, rand.New(rand.NewSource(3)), 5, 10)

	_, err = sampler.Sample()
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, "SAMPLING_EXHAUSTED", appErr.Code)
}
