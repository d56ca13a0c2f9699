/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package deeptau post-processes the outputs of the DeepTau identification
// networks. The per-window "forconv" outputs arrive flat; this backend
// scatters them into dense per-tau grids (11x11 inner, 21x21 outer), filling
// unaddressed cells with the networks' zero-input row, and passes the tau
// score through with the declared output cast.
package deeptau

import (
	"fmt"

	"github.com/hep-ml/deeptau-serve/internal/backend"
	"github.com/hep-ml/deeptau-serve/internal/modelconfig"
	"github.com/hep-ml/deeptau-serve/internal/tensor"
)

const (
	innerGridSize = 11
	outerGridSize = 21
)

// Backend implements backend.Backend. After Initialize it holds only the
// three declared output datatypes; they are never written again, so the
// backend is safe for concurrent Execute calls.
type Backend struct {
	tauType   tensor.DataType
	innerType tensor.DataType
	outerType tensor.DataType
}

var _ backend.Backend = (*Backend)(nil)

// New returns an uninitialized backend.
func New() *Backend {
	return &Backend{}
}

// Initialize resolves the declared output datatypes. A missing output or an
// unparseable datatype is fatal.
func (b *Backend) Initialize(cfg *modelconfig.Config) error {
	for _, out := range []struct {
		name string
		dst  *tensor.DataType
	}{
		{"output_tau", &b.tauType},
		{"output_inner", &b.innerType},
		{"output_outer", &b.outerType},
	} {
		tc, err := cfg.OutputByName(out.name)
		if err != nil {
			return err
		}
		if *out.dst, err = tc.Type(); err != nil {
			return err
		}
	}
	return nil
}

// Execute processes each request independently and returns one response per
// request, in order. A failed request yields an error response; the rest of
// the batch is unaffected.
func (b *Backend) Execute(requests []*backend.Request) []*backend.Response {
	responses := make([]*backend.Response, len(requests))
	for i, req := range requests {
		outputs, err := b.process(req)
		if err != nil {
			responses[i] = backend.ErrorResponse(err)
			continue
		}
		responses[i] = &backend.Response{Outputs: outputs}
	}
	return responses
}

func (b *Backend) process(req *backend.Request) ([]tensor.Tensor, error) {
	in, err := parseRequest(req)
	if err != nil {
		return nil, err
	}

	innerGrid, err := gridTensor("output_inner", in.inner, in.innerPos, in.ntaus, innerGridSize)
	if err != nil {
		return nil, err
	}
	outerGrid, err := gridTensor("output_outer", in.outer, in.outerPos, in.ntaus, outerGridSize)
	if err != nil {
		return nil, err
	}

	tau := in.tau
	tau.Name = "output_tau"

	return []tensor.Tensor{
		tau.Cast(b.tauType),
		innerGrid.Cast(b.innerType),
		outerGrid.Cast(b.outerType),
	}, nil
}

func gridTensor(name string, b featureBatch, cells []cell, ntaus, grid int) (tensor.Tensor, error) {
	data, err := scatterFill(b, cells, ntaus, grid)
	if err != nil {
		return tensor.Tensor{}, fmt.Errorf("%s: %w", name, err)
	}
	return tensor.New(name, tensor.Fp64,
		[]int64{int64(ntaus), int64(grid), int64(grid), int64(b.width)}, data)
}

// Finalize has nothing to release.
func (b *Backend) Finalize() {}
