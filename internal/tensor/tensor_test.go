package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataType(t *testing.T) {
	cases := []struct {
		in   string
		want DataType
	}{
		{"TYPE_FP32", Fp32},
		{"FP32", Fp32},
		{"TYPE_FP64", Fp64},
		{"INT32", Int32},
		{"TYPE_INT64", Int64},
		{"UINT8", Uint8},
		{"TYPE_BOOL", Bool},
	}
	for _, c := range cases {
		got, err := ParseDataType(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}

	_, err := ParseDataType("TYPE_FP16")
	assert.Error(t, err)
	_, err = ParseDataType("")
	assert.Error(t, err)
}

func TestDataTypeRoundTrip(t *testing.T) {
	for _, d := range []DataType{Bool, Uint8, Int32, Int64, Fp32, Fp64} {
		got, err := ParseDataType(d.ConfigString())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
}

func TestNewShapeCheck(t *testing.T) {
	_, err := New("x", Fp32, []int64{2, 3}, make([]float64, 6))
	assert.NoError(t, err)

	_, err = New("x", Fp32, []int64{2, 3}, make([]float64, 5))
	assert.Error(t, err)

	_, err = New("x", Fp32, []int64{-1, 3}, nil)
	assert.Error(t, err)

	// scalar shape
	tn, err := New("x", Fp32, []int64{}, []float64{7})
	require.NoError(t, err)
	assert.Equal(t, int64(1), tn.NumElements())
}

func TestCast(t *testing.T) {
	tn, err := New("x", Fp64, []int64{4}, []float64{1.75, -2.5, 300.2, 0})
	require.NoError(t, err)

	got := tn.Cast(Int32)
	assert.Equal(t, Int32, got.DataType)
	assert.Equal(t, []float64{1, -2, 300, 0}, got.Data)

	// input untouched
	assert.Equal(t, []float64{1.75, -2.5, 300.2, 0}, tn.Data)

	got = tn.Cast(Fp32)
	assert.InDelta(t, 1.75, got.Data[0], 0)
	assert.InDelta(t, float64(float32(300.2)), got.Data[2], 0)

	got = tn.Cast(Bool)
	assert.Equal(t, []float64{1, 1, 1, 0}, got.Data)
}

func TestInt64s(t *testing.T) {
	tn, err := New("pos", Int32, []int64{2, 3}, []float64{0, 3, 4, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 3, 4, 0, 0, 0}, tn.Int64s())
}
