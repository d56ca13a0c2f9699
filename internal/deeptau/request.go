/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package deeptau

import (
	"fmt"

	"github.com/hep-ml/deeptau-serve/internal/backend"
	"github.com/hep-ml/deeptau-serve/internal/tensor"
)

// inputs is the typed view of one request. All string-keyed lookups happen
// once, here, at the boundary.
type inputs struct {
	tau      tensor.Tensor
	ntaus    int
	inner    featureBatch
	outer    featureBatch
	innerPos []cell
	outerPos []cell
}

func parseRequest(req *backend.Request) (*inputs, error) {
	in := &inputs{}

	tau, err := req.Input("input_tau")
	if err != nil {
		return nil, err
	}
	if len(tau.Shape) < 1 {
		return nil, fmt.Errorf("input_tau: scalar tensor, want leading batch dimension")
	}
	in.tau = tau
	in.ntaus = int(tau.Dim(0))

	if in.inner, err = featureInput(req, "input_inner_forconv"); err != nil {
		return nil, err
	}
	if in.outer, err = featureInput(req, "input_outer_forconv"); err != nil {
		return nil, err
	}
	if in.innerPos, err = positionInput(req, "input_inner_pos"); err != nil {
		return nil, err
	}
	if in.outerPos, err = positionInput(req, "input_outer_pos"); err != nil {
		return nil, err
	}
	return in, nil
}

// featureInput reads a per-window feature tensor. The network emits shape
// (M+1, 1, 1, F); the two singleton axes are squeezed away, and a bare
// (M+1, F) shape is accepted as already squeezed. The last row is the
// zero-pad row, so M+1 is at least one.
func featureInput(req *backend.Request, name string) (featureBatch, error) {
	t, err := req.Input(name)
	if err != nil {
		return featureBatch{}, err
	}

	shape := t.Shape
	if len(shape) == 4 && shape[1] == 1 && shape[2] == 1 {
		shape = []int64{shape[0], shape[3]}
	}
	if len(shape) != 2 {
		return featureBatch{}, fmt.Errorf("%s: shape %v, want (M+1, 1, 1, F) or (M+1, F)", name, t.Shape)
	}
	if shape[0] < 1 {
		return featureBatch{}, fmt.Errorf("%s: no rows, want at least the zero-pad row", name)
	}
	return featureBatch{
		rows:  int(shape[0]) - 1,
		width: int(shape[1]),
		data:  t.Data,
	}, nil
}

// positionInput reads a grid index tensor of shape (M, 3) with rows
// (object, row, col).
func positionInput(req *backend.Request, name string) ([]cell, error) {
	t, err := req.Input(name)
	if err != nil {
		return nil, err
	}
	if len(t.Shape) != 2 || t.Dim(1) != 3 {
		return nil, fmt.Errorf("%s: shape %v, want (M, 3)", name, t.Shape)
	}
	idx := t.Int64s()
	cells := make([]cell, t.Dim(0))
	for i := range cells {
		cells[i] = cell{
			object: int(idx[i*3]),
			row:    int(idx[i*3+1]),
			col:    int(idx[i*3+2]),
		}
	}
	return cells, nil
}
