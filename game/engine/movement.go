package engine

// Direction labels a movement step
type Direction string

const (
	Up        Direction = "up"
	Down      Direction = "down"
	Left      Direction = "left"
	Right     Direction = "right"
	UpLeft    Direction = "up-left"
	UpRight   Direction = "up-right"
	DownLeft  Direction = "down-left"
	DownRight Direction = "down-right"
	Finished  Direction = "finished"
	None      Direction = "none"
)

// StepResult describes one tick of movement along a path
type StepResult struct {
	Direction Direction `json:"direction"`
	DX        float64   `json:"dx"`
	DY        float64   `json:"dy"`
	Index     int       `json:"index"`
}

// Stepper walks an agent along a path at constant speed, one tick at a time
type Stepper struct {
	path      []Position
	index     int
	travelled float64
	speed     float64
	tileSize  int
}

// NewStepper creates a stepper moving speed pixels per tick
func NewStepper(speed float64, tileSize int) *Stepper {
	return &Stepper{speed: speed, tileSize: tileSize}
}

// SetPath replaces the active path and rewinds the cursor
func (s *Stepper) SetPath(path []Position) {
	s.path = path
	s.index = 0
	s.travelled = 0
}

// Path returns the active path
func (s *Stepper) Path() []Position { return s.path }

// Index returns the cursor into the active path
func (s *Stepper) Index() int { return s.index }

// Active reports whether a path is loaded
func (s *Stepper) Active() bool { return len(s.path) > 0 }

// Current returns the cell under the cursor
func (s *Stepper) Current() (Position, bool) {
	if len(s.path) == 0 {
		return Position{}, false
	}
	return s.path[s.index], true
}

// Advance moves the cursor one cell forward, stopping at the last cell
func (s *Stepper) Advance() bool {
	if s.index+1 >= len(s.path) {
		return false
	}
	s.index++
	s.travelled = 0
	return true
}

// Retreat moves the cursor one cell back, stopping at the first cell
func (s *Stepper) Retreat() bool {
	if s.index <= 0 || len(s.path) == 0 {
		return false
	}
	s.index--
	s.travelled = 0
	return true
}

// Reset drops the path and rewinds the cursor
func (s *Stepper) Reset() {
	s.path = nil
	s.index = 0
	s.travelled = 0
}

// Step advances one tick. With no path it reports None. Once the cursor
// sits on the final cell it reports Finished and discards the path,
// unless includeLast is set, in which case the path and final index are
// kept.
func (s *Stepper) Step(includeLast bool) StepResult {
	if len(s.path) == 0 {
		return StepResult{Direction: None}
	}

	if s.index >= len(s.path)-1 {
		result := StepResult{Direction: Finished, Index: s.index}
		if !includeLast {
			s.Reset()
		}
		return result
	}

	cur, next := s.path[s.index], s.path[s.index+1]
	dc := sign(next.Col - cur.Col)
	dr := sign(next.Row - cur.Row)

	result := StepResult{
		Direction: directionOf(dc, dr),
		DX:        float64(dc) * s.speed,
		DY:        float64(dr) * s.speed,
		Index:     s.index,
	}

	s.travelled += s.speed
	if s.travelled >= float64(s.tileSize) {
		s.travelled -= float64(s.tileSize)
		s.index++
	}
	return result
}

func directionOf(dc, dr int) Direction {
	switch {
	case dc == 0 && dr < 0:
		return Up
	case dc == 0 && dr > 0:
		return Down
	case dc < 0 && dr == 0:
		return Left
	case dc > 0 && dr == 0:
		return Right
	case dc < 0 && dr < 0:
		return UpLeft
	case dc > 0 && dr < 0:
		return UpRight
	case dc < 0 && dr > 0:
		return DownLeft
	case dc > 0 && dr > 0:
		return DownRight
	}
	return None
}
