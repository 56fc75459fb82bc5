package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/gridsight/game/obstacles"
)

const testLayer = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "boulder",
      "geometry": {"type": "Polygon", "coordinates": [[[32,32],[96,32],[96,64],[32,64],[32,32]]]},
      "properties": {}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [10, 20]},
      "properties": {"id": "marker", "walkable": true, "block_sight": false}
    },
    {
      "type": "Feature",
      "geometry": {"type": "LineString", "coordinates": [[0,100],[50,120]]},
      "properties": {"block_sight": false}
    }
  ]
}`

func TestParseLayer(t *testing.T) {
	objects, err := ParseLayer("rocks", []byte(testLayer))
	require.NoError(t, err)
	require.Len(t, objects, 3)

	boulder := objects[0]
	assert.Equal(t, "rocks/boulder", boulder.ID)
	assert.Equal(t, 32.0, boulder.X)
	assert.Equal(t, 32.0, boulder.Y)
	assert.Equal(t, 64.0, boulder.W)
	assert.Equal(t, 32.0, boulder.H)
	assert.Equal(t, obstacles.Flag(false), boulder.Walkable)
	assert.Equal(t, obstacles.Flag(true), boulder.BlockSight)

	marker := objects[1]
	assert.Equal(t, "rocks/marker", marker.ID)
	assert.Zero(t, marker.W)
	assert.Equal(t, obstacles.Flag(true), marker.Walkable)
	assert.Equal(t, obstacles.Flag(false), marker.BlockSight)

	line := objects[2]
	assert.Equal(t, "rocks/2", line.ID)
	assert.Equal(t, 50.0, line.W)
	assert.Equal(t, 20.0, line.H)
	assert.Equal(t, obstacles.Flag(false), line.Walkable)
	assert.Equal(t, obstacles.Flag(false), line.BlockSight)
}

func TestParseLayer_Invalid(t *testing.T) {
	_, err := ParseLayer("bad", []byte(`{"type": "nonsense"`))
	assert.ErrorIs(t, err, ErrInvalidLayer)
}

func TestManager_LoadLayers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "layers"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "layers", "rocks.geojson"), []byte(testLayer), 0644))

	manager, err := NewManager(dir)
	require.NoError(t, err)

	config := createValidConfig()
	config.ObstacleLayers = []string{"layers/rocks.geojson"}
	objects, err := manager.LoadLayers(config)
	require.NoError(t, err)
	assert.Len(t, objects, 3)

	config.ObstacleLayers = []string{"layers/missing.geojson"}
	_, err = manager.LoadLayers(config)
	assert.ErrorIs(t, err, ErrInvalidLayer)

	config.ObstacleLayers = nil
	objects, err = manager.LoadLayers(config)
	require.NoError(t, err)
	assert.Empty(t, objects)
}
