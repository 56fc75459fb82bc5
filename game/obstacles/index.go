package obstacles

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/wricardo/gridsight/game/engine"
)

var (
	ErrInvalidObject  = errors.New("invalid object")
	ErrObjectNotFound = errors.New("object not found")
)

// minExtent keeps zero-size objects and regions valid R-tree rectangles
const minExtent = 1e-6

// Object is an axis-aligned host obstacle in pixel units. A nil
// attribute leaves the covered cells' attribute untouched.
type Object struct {
	ID         string  `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	W          float64 `json:"w"`
	H          float64 `json:"h"`
	Walkable   *bool   `json:"walkable,omitempty"`
	BlockSight *bool   `json:"block_sight,omitempty"`
}

// Flag returns a pointer to v, for Object attributes
func Flag(v bool) *bool {
	return &v
}

// entry wraps an object for R-tree storage
type entry struct {
	obj  Object
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *entry) Bounds() rtreego.Rect {
	return e.bbox
}

// Index manages obstacle spatial queries for one grid
type Index struct {
	tileSize int
	width    int
	height   int
	tree     *rtreego.Rtree
	entries  map[string]*entry
	mu       sync.RWMutex
}

// NewIndex creates an empty index for a width x height grid with the
// given tile size
func NewIndex(tileSize, width, height int) *Index {
	return &Index{
		tileSize: tileSize,
		width:    width,
		height:   height,
		tree:     rtreego.NewTree(2, 25, 50), // 2D, min 25, max 50 entries per node
		entries:  make(map[string]*entry),
	}
}

// Insert adds an object, replacing any object with the same ID
func (i *Index) Insert(obj Object) error {
	if obj.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidObject)
	}
	if !finite(obj.X, obj.Y, obj.W, obj.H) {
		return fmt.Errorf("%w: %s has a non-finite bound", ErrInvalidObject, obj.ID)
	}
	if obj.W < 0 || obj.H < 0 {
		return fmt.Errorf("%w: %s has negative size %gx%g", ErrInvalidObject, obj.ID, obj.W, obj.H)
	}

	bbox, err := rect(obj.X, obj.Y, obj.W, obj.H)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidObject, obj.ID, err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if old, ok := i.entries[obj.ID]; ok {
		i.tree.Delete(old)
	}
	e := &entry{obj: obj, bbox: bbox}
	i.tree.Insert(e)
	i.entries[obj.ID] = e
	return nil
}

// Remove deletes an object by ID
func (i *Index) Remove(id string) (Object, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	e, ok := i.entries[id]
	if !ok {
		return Object{}, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	i.tree.Delete(e)
	delete(i.entries, id)
	return e.obj, nil
}

// Get returns an object by ID
func (i *Index) Get(id string) (Object, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	e, ok := i.entries[id]
	if !ok {
		return Object{}, false
	}
	return e.obj, true
}

// Len returns the number of indexed objects
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// All returns every object ordered by ID
func (i *Index) All() []Object {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make([]Object, 0, len(i.entries))
	for _, e := range i.entries {
		out = append(out, e.obj)
	}
	sortByID(out)
	return out
}

// Search returns the objects intersecting the pixel region, ordered by ID
func (i *Index) Search(x, y, w, h float64) []Object {
	bbox, err := rect(x, y, w, h)
	if err != nil {
		return []Object{}
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	results := i.tree.SearchIntersect(bbox)
	out := make([]Object, 0, len(results))
	for _, item := range results {
		out = append(out, item.(*entry).obj)
	}
	sortByID(out)
	return out
}

// Cells returns the pixel origin of every grid cell the object covers,
// ready for engine.SetCells. An object touching a cell edge does not
// cover the neighbouring cell.
func (i *Index) Cells(obj Object) []engine.PixelPos {
	return CoveredCells(obj.X, obj.Y, obj.W, obj.H, i.tileSize, i.width, i.height)
}

// CoveredCells returns the pixel origins of the cells of a width x height
// grid under a pixel rectangle. A zero-size rectangle covers the single
// cell under its corner. The range is clipped to the grid before any
// allocation, so oversized rectangles cost no more than the grid.
func CoveredCells(x, y, w, h float64, tileSize, width, height int) []engine.PixelPos {
	if tileSize <= 0 || width <= 0 || height <= 0 {
		return nil
	}
	ts := float64(tileSize)

	minCol := math.Floor(x / ts)
	minRow := math.Floor(y / ts)
	maxCol := math.Max(minCol, math.Ceil((x+w)/ts)-1)
	maxRow := math.Max(minRow, math.Ceil((y+h)/ts)-1)

	minCol, maxCol = math.Max(minCol, 0), math.Min(maxCol, float64(width-1))
	minRow, maxRow = math.Max(minRow, 0), math.Min(maxRow, float64(height-1))
	// Also false for NaN bounds
	if !(minCol <= maxCol) || !(minRow <= maxRow) {
		return nil
	}

	c0, c1, r0, r1 := int(minCol), int(maxCol), int(minRow), int(maxRow)
	out := make([]engine.PixelPos, 0, (c1-c0+1)*(r1-r0+1))
	for col := c0; col <= c1; col++ {
		for row := r0; row <= r1; row++ {
			out = append(out, engine.PixelPos{
				X: engine.ToPixels(col, tileSize),
				Y: engine.ToPixels(row, tileSize),
			})
		}
	}
	return out
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func rect(x, y, w, h float64) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{x, y},
		[]float64{math.Max(w, minExtent), math.Max(h, minExtent)},
	)
}

func sortByID(objs []Object) {
	sort.Slice(objs, func(a, b int) bool { return objs[a].ID < objs[b].ID })
}
