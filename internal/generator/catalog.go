package generator

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/iot-telemetry-service/internal/domain"
	"github.com/iot-telemetry-service/internal/pkg/errors"
)

// Catalog is the immutable set of weighted region boundaries used for
// sampling. Built once at startup, safe for concurrent readers.
type Catalog struct {
	regions     []domain.Region
	cumulative  []float64
	totalWeight float64
}

// LoadWeights reads the population-density weight table: a JSON object
// mapping region name to a positive weight.
func LoadWeights(path string) (map[string]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ErrCatalogLoad.WithDetails(map[string]interface{}{
			"path":  path,
			"cause": err.Error(),
		})
	}

	weights := make(map[string]float64)
	if err := json.Unmarshal(raw, &weights); err != nil {
		return nil, errors.ErrCatalogLoad.WithDetails(map[string]interface{}{
			"path":  path,
			"cause": fmt.Sprintf("invalid weights JSON: %v", err),
		})
	}

	return weights, nil
}

// LoadCatalog parses a GeoJSON FeatureCollection of named boundaries and
// keeps only the features with a defined positive weight and a
// non-degenerate geometry. Fails when the source is unreadable or no usable
// region remains; generation cannot proceed without a catalog.
func LoadCatalog(boundaryPath string, weights map[string]float64, logger *zap.Logger) (*Catalog, error) {
	raw, err := os.ReadFile(boundaryPath)
	if err != nil {
		return nil, errors.ErrCatalogLoad.WithDetails(map[string]interface{}{
			"path":  boundaryPath,
			"cause": err.Error(),
		})
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, errors.ErrCatalogLoad.WithDetails(map[string]interface{}{
			"path":  boundaryPath,
			"cause": fmt.Sprintf("invalid GeoJSON: %v", err),
		})
	}

	return NewCatalog(fc, weights, logger)
}

// NewCatalog builds a catalog from an already-decoded feature collection.
func NewCatalog(fc *geojson.FeatureCollection, weights map[string]float64, logger *zap.Logger) (*Catalog, error) {
	c := &Catalog{}

	dropped := 0
	for _, feature := range fc.Features {
		name := feature.Properties.MustString("name", "")
		if name == "" {
			dropped++
			continue
		}

		weight, ok := weights[name]
		if !ok || weight <= 0 {
			dropped++
			continue
		}

		boundary := asMultiPolygon(feature.Geometry)
		if len(boundary) == 0 {
			logger.Warn("Dropping region with degenerate boundary", zap.String("region", name))
			dropped++
			continue
		}

		c.regions = append(c.regions, domain.Region{
			Name:     name,
			Boundary: boundary,
			Weight:   weight,
			BBox:     boundary.Bound(),
		})
		c.totalWeight += weight
		c.cumulative = append(c.cumulative, c.totalWeight)
	}

	if len(c.regions) == 0 || c.totalWeight <= 0 {
		return nil, errors.ErrNoUsableRegions
	}

	logger.Info("Region catalog loaded",
		zap.Int("regions", len(c.regions)),
		zap.Int("dropped", dropped),
		zap.Float64("total_weight", c.totalWeight),
	)

	return c, nil
}

// Regions returns the usable regions in load order.
func (c *Catalog) Regions() []domain.Region {
	return c.regions
}

func (c *Catalog) TotalWeight() float64 {
	return c.totalWeight
}

func (c *Catalog) Len() int {
	return len(c.regions)
}

// asMultiPolygon normalizes the supported geometry types, dropping rings
// with fewer than four points (closed ring minimum).
func asMultiPolygon(geom orb.Geometry) orb.MultiPolygon {
	var mp orb.MultiPolygon

	switch g := geom.(type) {
	case orb.Polygon:
		mp = orb.MultiPolygon{g}
	case orb.MultiPolygon:
		mp = g
	default:
		return nil
	}

	var out orb.MultiPolygon
	for _, poly := range mp {
		if len(poly) == 0 || len(poly[0]) < 4 {
			continue
		}
		out = append(out, poly)
	}

	return out
}
