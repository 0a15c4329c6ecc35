package x11

// Rect describes a rectangular region in screen coordinates. The JSON field
// names follow the configuration document format, where "right" and "bottom"
// carry the width and height of the region.
type Rect struct {
	X      int `json:"left"`
	Y      int `json:"top"`
	Width  int `json:"right"`
	Height int `json:"bottom"`
}

// AddPadding shrinks the rectangle by p on every side. A negative padding
// expands it.
func (r *Rect) AddPadding(p int) {
	r.X += p
	r.Y += p
	r.Width -= 2 * p
	r.Height -= 2 * p
}

// AddMargin grows the rectangle by m on every side.
func (r *Rect) AddMargin(m int) {
	r.X -= m
	r.Y -= m
	r.Width += 2 * m
	r.Height += 2 * m
}

// IsZero reports whether the rectangle is the zero value.
func (r Rect) IsZero() bool {
	return r == Rect{}
}
