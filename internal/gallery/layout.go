package gallery

// Rect is a pixel rectangle with the origin at the top left.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Layout places cards on a grid of fixed-size cells.
type Layout struct {
	// Columns fixes the column count; 0 fits as many as the width allows.
	Columns    int
	CardWidth  int
	CardHeight int
	Gap        int
}

// DefaultLayout matches the default window size.
func DefaultLayout() Layout {
	return Layout{CardWidth: 280, CardHeight: 210, Gap: 16}
}

// ColumnsFor returns the column count for a viewport width.
func (l Layout) ColumnsFor(width int) int {
	if l.Columns > 0 {
		return l.Columns
	}
	cols := (width - l.Gap) / (l.CardWidth + l.Gap)
	return max(cols, 1)
}

// Place returns the content-space rectangle of card i. The grid is
// centered when the width leaves room on both sides.
func (l Layout) Place(i, width int) Rect {
	cols := l.ColumnsFor(width)
	gridW := cols*l.CardWidth + (cols-1)*l.Gap
	left := max((width-gridW)/2, l.Gap)

	col, row := i%cols, i/cols
	return Rect{
		X: left + col*(l.CardWidth+l.Gap),
		Y: l.Gap + row*(l.CardHeight+l.Gap),
		W: l.CardWidth,
		H: l.CardHeight,
	}
}

// ContentHeight returns the height of a grid of n cards.
func (l Layout) ContentHeight(n, width int) int {
	if n == 0 {
		return 0
	}
	rows := (n + l.ColumnsFor(width) - 1) / l.ColumnsFor(width)
	return l.Gap + rows*(l.CardHeight+l.Gap)
}
