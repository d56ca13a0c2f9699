/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package tflitebackend runs a TFLite model as a serving backend, so the
// upstream networks whose outputs feed the post-processing step can be
// hosted by the same process.
package tflitebackend

import (
	"fmt"
	"sync"

	"github.com/mattn/go-tflite"

	"github.com/hep-ml/deeptau-serve/internal/backend"
	"github.com/hep-ml/deeptau-serve/internal/modelconfig"
	"github.com/hep-ml/deeptau-serve/internal/tensor"
)

// Backend wraps one TFLite interpreter. The interpreter's tensors are shared
// mutable state, so Execute serializes on a mutex.
type Backend struct {
	mu     sync.Mutex
	model  *tflite.Model
	interp *tflite.Interpreter
}

var _ backend.Backend = (*Backend)(nil)

// New returns an uninitialized backend.
func New() *Backend {
	return &Backend{}
}

// Initialize loads the model named by parameters["model_path"] and allocates
// its tensors.
func (b *Backend) Initialize(cfg *modelconfig.Config) error {
	path, err := cfg.Parameter("model_path")
	if err != nil {
		return err
	}

	model := tflite.NewModelFromFile(path)
	if model == nil {
		return fmt.Errorf("cannot load model %q", path)
	}

	options := tflite.NewInterpreterOptions()
	options.SetNumThread(4)
	defer options.Delete()

	interp := tflite.NewInterpreter(model, options)
	if interp == nil {
		model.Delete()
		return fmt.Errorf("cannot create interpreter for %q", path)
	}
	if status := interp.AllocateTensors(); status != tflite.OK {
		interp.Delete()
		model.Delete()
		return fmt.Errorf("allocate tensors for %q: status %v", path, status)
	}

	b.model = model
	b.interp = interp
	return nil
}

// Execute runs the interpreter once per request, feeding inputs by position.
func (b *Backend) Execute(requests []*backend.Request) []*backend.Response {
	responses := make([]*backend.Response, len(requests))
	for i, req := range requests {
		outputs, err := b.invoke(req)
		if err != nil {
			responses[i] = backend.ErrorResponse(err)
			continue
		}
		responses[i] = &backend.Response{Outputs: outputs}
	}
	return responses
}

func (b *Backend) invoke(req *backend.Request) ([]tensor.Tensor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	inputs := req.Tensors()
	if len(inputs) != b.interp.GetInputTensorCount() {
		return nil, fmt.Errorf("model takes %d inputs, request has %d",
			b.interp.GetInputTensorCount(), len(inputs))
	}
	for i, in := range inputs {
		if err := fillInput(b.interp.GetInputTensor(i), in); err != nil {
			return nil, err
		}
	}

	if status := b.interp.Invoke(); status != tflite.OK {
		return nil, fmt.Errorf("invoke failed: status %v", status)
	}

	outputs := make([]tensor.Tensor, b.interp.GetOutputTensorCount())
	for i := range outputs {
		out, err := extractOutput(b.interp.GetOutputTensor(i))
		if err != nil {
			return nil, err
		}
		outputs[i] = out
	}
	return outputs, nil
}

func fillInput(dst *tflite.Tensor, src tensor.Tensor) error {
	want := 1
	for _, d := range tensorShape(dst) {
		want *= d
	}
	if int(src.NumElements()) != want {
		return fmt.Errorf("input %q: model wants %d elements, got %d", src.Name, want, src.NumElements())
	}

	switch dst.Type() {
	case tflite.Float32:
		v := dst.Float32s()
		for i, x := range src.Data {
			v[i] = float32(x)
		}
	case tflite.UInt8:
		v := dst.UInt8s()
		for i, x := range src.Data {
			v[i] = uint8(x)
		}
	case tflite.Int32:
		v := dst.Int32s()
		for i, x := range src.Data {
			v[i] = int32(x)
		}
	default:
		return fmt.Errorf("input %q: unsupported tensor type %v", src.Name, dst.Type())
	}
	return nil
}

func extractOutput(out *tflite.Tensor) (tensor.Tensor, error) {
	shape := tensorShape(out)
	dims := make([]int64, len(shape))
	for i, d := range shape {
		dims[i] = int64(d)
	}

	switch out.Type() {
	case tflite.Float32:
		f := out.Float32s()
		data := make([]float64, len(f))
		for i, v := range f {
			data[i] = float64(v)
		}
		return tensor.New(out.Name(), tensor.Fp32, dims, data)
	case tflite.UInt8:
		f := out.UInt8s()
		data := make([]float64, len(f))
		for i, v := range f {
			data[i] = float64(v)
		}
		return tensor.New(out.Name(), tensor.Uint8, dims, data)
	case tflite.Int32:
		f := out.Int32s()
		data := make([]float64, len(f))
		for i, v := range f {
			data[i] = float64(v)
		}
		return tensor.New(out.Name(), tensor.Int32, dims, data)
	}
	return tensor.Tensor{}, fmt.Errorf("output %q: unsupported tensor type %v", out.Name(), out.Type())
}

func tensorShape(t *tflite.Tensor) []int {
	shape := []int{}
	for idx := 0; idx < t.NumDims(); idx++ {
		shape = append(shape, t.Dim(idx))
	}
	return shape
}

// Finalize releases the interpreter and model.
func (b *Backend) Finalize() {
	if b.interp != nil {
		b.interp.Delete()
		b.interp = nil
	}
	if b.model != nil {
		b.model.Delete()
		b.model = nil
	}
}
