package effects

// CursorEasing is the fraction of the remaining distance covered per frame.
const CursorEasing = 0.25

// Cursor is an eased follower of the pointer, in viewport pixels.
type Cursor struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	TargetX float64 `json:"targetX"`
	TargetY float64 `json:"targetY"`
}

// SetTarget moves the point the cursor follows.
func (c *Cursor) SetTarget(x, y float64) {
	c.TargetX, c.TargetY = x, y
}

// Step moves the cursor one frame towards its target.
func (c *Cursor) Step() {
	c.X += (c.TargetX - c.X) * CursorEasing
	c.Y += (c.TargetY - c.Y) * CursorEasing
}
