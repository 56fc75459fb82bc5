package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/wricardo/gridsight/game/obstacles"
)

// ReadLayer loads a GeoJSON obstacle layer from disk
func ReadLayer(path string) ([]obstacles.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLayer, path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseLayer(name, data)
}

// ParseLayer converts a GeoJSON FeatureCollection in pixel coordinates into
// obstacle objects, one per feature bounding box. The walkable and
// block_sight properties default to false and true.
func ParseLayer(name string, data []byte) ([]obstacles.Object, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLayer, name, err)
	}

	objects := make([]obstacles.Object, 0, len(fc.Features))
	for i, feature := range fc.Features {
		if feature.Geometry == nil {
			continue
		}
		b := feature.Geometry.Bound()
		objects = append(objects, obstacles.Object{
			ID:         featureID(name, i, feature),
			X:          b.Min.X(),
			Y:          b.Min.Y(),
			W:          b.Max.X() - b.Min.X(),
			H:          b.Max.Y() - b.Min.Y(),
			Walkable:   obstacles.Flag(feature.Properties.MustBool("walkable", false)),
			BlockSight: obstacles.Flag(feature.Properties.MustBool("block_sight", true)),
		})
	}
	return objects, nil
}

// featureID prefers the feature id, then an "id" property, then the index
func featureID(layer string, index int, f *geojson.Feature) string {
	if f.ID != nil {
		return fmt.Sprintf("%s/%v", layer, f.ID)
	}
	if id := f.Properties.MustString("id", ""); id != "" {
		return layer + "/" + id
	}
	return fmt.Sprintf("%s/%d", layer, index)
}
