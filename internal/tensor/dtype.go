/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package tensor

import (
	"fmt"
	"strings"
)

// DataType identifies the declared element type of a served tensor. The
// names follow the serving configuration vocabulary (TYPE_FP32, ...) with
// the bare form (FP32) used on the wire.
type DataType int

const (
	Invalid DataType = iota
	Bool
	Uint8
	Int32
	Int64
	Fp32
	Fp64
)

var dtypeNames = map[DataType]string{
	Bool:  "BOOL",
	Uint8: "UINT8",
	Int32: "INT32",
	Int64: "INT64",
	Fp32:  "FP32",
	Fp64:  "FP64",
}

// String returns the wire form, e.g. "FP32".
func (d DataType) String() string {
	if s, ok := dtypeNames[d]; ok {
		return s
	}
	return "INVALID"
}

// ConfigString returns the configuration form, e.g. "TYPE_FP32".
func (d DataType) ConfigString() string {
	return "TYPE_" + d.String()
}

// ParseDataType accepts either the configuration form ("TYPE_FP32") or the
// wire form ("FP32").
func ParseDataType(s string) (DataType, error) {
	name := strings.TrimPrefix(s, "TYPE_")
	for d, n := range dtypeNames {
		if n == name {
			return d, nil
		}
	}
	return Invalid, fmt.Errorf("unknown datatype %q", s)
}
