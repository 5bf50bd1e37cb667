package generator

import (
	"math"
	"math/rand"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/iot-telemetry-service/internal/domain"
	"github.com/iot-telemetry-service/internal/pkg/errors"
)

const (
	// DefaultPointAttempts is the number of bounding-box candidates tried
	// per region draw before the region is re-drawn.
	DefaultPointAttempts = 10

	// DefaultMaxRegionDraws bounds the outer retry loop. Drawing inside a
	// region's bounding box misses the polygon with probability
	// 1 - area(polygon)/area(bbox), so sliver-shaped regions need retries,
	// but the budget must be finite or a degenerate polygon hangs the run.
	DefaultMaxRegionDraws = 100

	maxAltitudeMeters = 2000.0
)

// Sampler draws population-weighted, polygon-constrained locations from a
// catalog via bounded rejection sampling. Not safe for concurrent use: the
// random source is owned by the caller.
type Sampler struct {
	catalog        *Catalog
	rng            *rand.Rand
	pointAttempts  int
	maxRegionDraws int
}

func NewSampler(catalog *Catalog, rng *rand.Rand, pointAttempts, maxRegionDraws int) *Sampler {
	if pointAttempts <= 0 {
		pointAttempts = DefaultPointAttempts
	}
	if maxRegionDraws <= 0 {
		maxRegionDraws = DefaultMaxRegionDraws
	}
	return &Sampler{
		catalog:        catalog,
		rng:            rng,
		pointAttempts:  pointAttempts,
		maxRegionDraws: maxRegionDraws,
	}
}

// Sample returns a location whose point lies inside the polygon of the
// returned region. Returns SAMPLING_EXHAUSTED once the retry budget is
// spent instead of looping forever.
func (s *Sampler) Sample() (domain.Location, error) {
	for draw := 0; draw < s.maxRegionDraws; draw++ {
		region := s.pickRegion()

		for attempt := 0; attempt < s.pointAttempts; attempt++ {
			lon := round6(uniform(s.rng, region.BBox.Min[0], region.BBox.Max[0]))
			lat := round6(uniform(s.rng, region.BBox.Min[1], region.BBox.Max[1]))

			if planar.MultiPolygonContains(region.Boundary, orb.Point{lon, lat}) {
				return domain.Location{
					Lat:      lat,
					Lon:      lon,
					Altitude: round2(uniform(s.rng, 0, maxAltitudeMeters)),
					Region:   region.Name,
				}, nil
			}
		}
	}

	return domain.Location{}, errors.ErrSamplingExhausted.WithDetails(map[string]interface{}{
		"region_draws":   s.maxRegionDraws,
		"point_attempts": s.pointAttempts,
	})
}

// pickRegion runs a cumulative-weight selection over the catalog.
func (s *Sampler) pickRegion() *domain.Region {
	target := s.rng.Float64() * s.catalog.totalWeight
	idx := sort.SearchFloat64s(s.catalog.cumulative, target)
	if idx >= len(s.catalog.regions) {
		idx = len(s.catalog.regions) - 1
	}
	return &s.catalog.regions[idx]
}

func uniform(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func round2(v float64) float64 {
	return math.Round(v*1e2) / 1e2
}
