/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package tensor holds the named tensor values passed between the serving
// host and its backends. Data is stored flat, row-major, as float64 so one
// representation carries every supported datatype losslessly up to the
// output cast.
package tensor

import "fmt"

// Tensor is a named, typed, dense array.
type Tensor struct {
	Name     string
	DataType DataType
	Shape    []int64
	Data     []float64
}

// New builds a tensor and checks that the data length matches the shape.
func New(name string, dt DataType, shape []int64, data []float64) (Tensor, error) {
	n := int64(1)
	for _, d := range shape {
		if d < 0 {
			return Tensor{}, fmt.Errorf("tensor %q: negative dimension in shape %v", name, shape)
		}
		n *= d
	}
	if n != int64(len(data)) {
		return Tensor{}, fmt.Errorf("tensor %q: shape %v holds %d elements but %d values given",
			name, shape, n, len(data))
	}
	return Tensor{Name: name, DataType: dt, Shape: shape, Data: data}, nil
}

// NumElements returns the product of the shape dimensions.
func (t Tensor) NumElements() int64 {
	n := int64(1)
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Dim returns the size of dimension i.
func (t Tensor) Dim(i int) int64 {
	return t.Shape[i]
}

// Int64s converts the data to integers, truncating toward zero.
func (t Tensor) Int64s() []int64 {
	out := make([]int64, len(t.Data))
	for i, v := range t.Data {
		out[i] = int64(v)
	}
	return out
}

// Cast returns a copy of the tensor with every element passed through the
// target datatype and the datatype stamp updated. Values outside the target
// range follow Go conversion semantics.
func (t Tensor) Cast(dt DataType) Tensor {
	out := Tensor{
		Name:     t.Name,
		DataType: dt,
		Shape:    append([]int64(nil), t.Shape...),
		Data:     make([]float64, len(t.Data)),
	}
	for i, v := range t.Data {
		out.Data[i] = castValue(v, dt)
	}
	return out
}

func castValue(v float64, dt DataType) float64 {
	switch dt {
	case Fp64:
		return v
	case Fp32:
		return float64(float32(v))
	case Int64:
		return float64(int64(v))
	case Int32:
		return float64(int32(v))
	case Uint8:
		return float64(uint8(int64(v)))
	case Bool:
		if v != 0 {
			return 1
		}
		return 0
	}
	return v
}
