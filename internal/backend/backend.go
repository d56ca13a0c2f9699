/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package backend defines the contract between the serving host and the
// model backends it runs.
package backend

import (
	"fmt"

	"github.com/hep-ml/deeptau-serve/internal/modelconfig"
	"github.com/hep-ml/deeptau-serve/internal/tensor"
)

// Request carries the named input tensors of one inference request.
type Request struct {
	ID     string
	inputs []tensor.Tensor
}

// NewRequest builds a request from its input tensors.
func NewRequest(id string, inputs []tensor.Tensor) *Request {
	return &Request{ID: id, inputs: inputs}
}

// Input resolves an input tensor by name.
func (r *Request) Input(name string) (tensor.Tensor, error) {
	for _, t := range r.inputs {
		if t.Name == name {
			return t, nil
		}
	}
	return tensor.Tensor{}, fmt.Errorf("request has no input named %q", name)
}

// Tensors returns the inputs in request order, for backends that feed a
// runtime positionally.
func (r *Request) Tensors() []tensor.Tensor {
	return r.inputs
}

// Response carries the output tensors of one request, or the error that
// failed it. Exactly one of Outputs and Err is set.
type Response struct {
	Outputs []tensor.Tensor
	Err     error
}

// ErrorResponse builds a failed response.
func ErrorResponse(err error) *Response {
	return &Response{Err: err}
}

// Backend executes inference requests for one served model.
//
// Execute must return exactly one response per request, in request order.
// A failed request gets an error response; it must not affect the other
// requests in the batch. Implementations are free to keep state created in
// Initialize, but anything written during Execute must be request-scoped or
// locked.
type Backend interface {
	Initialize(cfg *modelconfig.Config) error
	Execute(requests []*Request) []*Response
	Finalize()
}
