/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package deeptau

import "fmt"

// featureBatch is the output of one of the per-window networks: M feature
// rows plus one trailing zero-pad row, the network's response to an all-zero
// input. The zero-pad row is the fill value for grid cells no window maps to.
type featureBatch struct {
	rows  int // M, excluding the zero-pad row
	width int // features per row
	data  []float64
}

func (b featureBatch) row(i int) []float64 {
	return b.data[i*b.width : (i+1)*b.width]
}

func (b featureBatch) zeroPad() []float64 {
	return b.row(b.rows)
}

// cell addresses one grid cell of one object.
type cell struct {
	object, row, col int
}

// scatterFill builds the dense grid for ntaus objects: every cell starts as
// a copy of the zero-pad row, then the cells addressed by cells[i] are
// overwritten with feature row i. On duplicate addresses the later row wins.
// Out-of-range coordinates are rejected.
func scatterFill(b featureBatch, cells []cell, ntaus, grid int) ([]float64, error) {
	if len(cells) != b.rows {
		return nil, fmt.Errorf("%d feature rows but %d grid positions", b.rows, len(cells))
	}

	out := make([]float64, ntaus*grid*grid*b.width)
	pad := b.zeroPad()
	for i := 0; i < len(out); i += b.width {
		copy(out[i:i+b.width], pad)
	}

	for i, c := range cells {
		if c.object < 0 || c.object >= ntaus || c.row < 0 || c.row >= grid || c.col < 0 || c.col >= grid {
			return nil, fmt.Errorf("position %d addresses (object %d, row %d, col %d), outside a %dx%d grid over %d objects",
				i, c.object, c.row, c.col, grid, grid, ntaus)
		}
		at := ((c.object*grid+c.row)*grid + c.col) * b.width
		copy(out[at:at+b.width], b.row(i))
	}
	return out, nil
}
