package command

// Pointer turns absolute touch positions into relative Move commands.
// It is not safe for concurrent use.
type Pointer struct {
	lastX, lastY float64
	down         bool
}

// Down records the position where a touch started.
func (p *Pointer) Down(x, y float64) {
	p.lastX, p.lastY = x, y
	p.down = true
}

// Move returns the delta since the previous position, truncated toward zero.
// The fractional remainder is dropped, not carried. ok is false when no touch
// is in progress.
func (p *Pointer) Move(x, y float64) (c Command, ok bool) {
	if !p.down {
		return Command{}, false
	}
	c = MoveBy(int(x-p.lastX), int(y-p.lastY))
	p.lastX, p.lastY = x, y
	return c, true
}

// Up ends the touch.
func (p *Pointer) Up() { p.down = false }
