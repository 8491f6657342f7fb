// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tftypes

import (
	"fmt"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tflower/build/ir"
)

// DataType is the code of an element type in the tensor runtime.
// A valid data type is never zero.
type DataType int

// Data types supported by the runtime. The numbering matches the runtime graph format.
const (
	Invalid    DataType = 0
	Float      DataType = 1
	Double     DataType = 2
	Int32      DataType = 3
	Uint8      DataType = 4
	Int16      DataType = 5
	Int8       DataType = 6
	String     DataType = 7
	Complex64  DataType = 8
	Int64      DataType = 9
	Bool       DataType = 10
	Bfloat16   DataType = 14
	Uint16     DataType = 17
	Complex128 DataType = 18
	Half       DataType = 19
	Resource   DataType = 20
	Variant    DataType = 21
	Uint32     DataType = 22
	Uint64     DataType = 23
)

var dataTypeNames = map[DataType]string{
	Invalid:    "DT_INVALID",
	Float:      "DT_FLOAT",
	Double:     "DT_DOUBLE",
	Int32:      "DT_INT32",
	Uint8:      "DT_UINT8",
	Int16:      "DT_INT16",
	Int8:       "DT_INT8",
	String:     "DT_STRING",
	Complex64:  "DT_COMPLEX64",
	Int64:      "DT_INT64",
	Bool:       "DT_BOOL",
	Bfloat16:   "DT_BFLOAT16",
	Uint16:     "DT_UINT16",
	Complex128: "DT_COMPLEX128",
	Half:       "DT_HALF",
	Resource:   "DT_RESOURCE",
	Variant:    "DT_VARIANT",
	Uint32:     "DT_UINT32",
	Uint64:     "DT_UINT64",
}

// String returns the name of the data type in the runtime.
func (dt DataType) String() string {
	if s, ok := dataTypeNames[dt]; ok {
		return s
	}
	return fmt.Sprintf("DT_UNKNOWN(%d)", int(dt))
}

// IsKnown returns true if the data type is a known, valid, data type.
func (dt DataType) IsKnown() bool {
	_, ok := dataTypeNames[dt]
	return ok && dt != Invalid
}

// IsInteger returns true if the data type stores integers.
func (dt DataType) IsInteger() bool {
	switch dt {
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// IsFloat returns true if the data type stores floating point numbers.
func (dt DataType) IsFloat() bool {
	switch dt {
	case Half, Bfloat16, Float, Double:
		return true
	}
	return false
}

// BackendDType returns the equivalent data type of the GX backend.
// Returns dtype.Invalid if the backend does not support the data type.
func (dt DataType) BackendDType() dtype.DataType {
	switch dt {
	case Bool:
		return dtype.Bool
	case Int32:
		return dtype.Int32
	case Int64:
		return dtype.Int64
	case Uint32:
		return dtype.Uint32
	case Uint64:
		return dtype.Uint64
	case Bfloat16:
		return dtype.Bfloat16
	case Float:
		return dtype.Float32
	case Double:
		return dtype.Float64
	}
	return dtype.Invalid
}

// StdlibModule is the module defining the standard numeric wrapper types.
const StdlibModule = "Swift"

var stdlibTypes = map[string]DataType{
	"Bool":     Bool,
	"Int8":     Int8,
	"UInt8":    Uint8,
	"Int16":    Int16,
	"UInt16":   Uint16,
	"Int32":    Int32,
	"UInt32":   Uint32,
	"Int64":    Int64,
	"UInt64":   Uint64,
	"Int":      Int64,
	"UInt":     Uint64,
	"Float16":  Half,
	"BFloat16": Bfloat16,
	"Float":    Float,
	"Double":   Double,
}

// ConvertType maps a source type into the runtime data type.
// Builtin types and the standard library numeric wrapper types are supported.
// It returns Invalid for types which cannot be tensor elements.
func ConvertType(typ ir.Type) DataType {
	switch typT := typ.(type) {
	case *ir.BuiltinIntType:
		switch typT.Width {
		case 1:
			return Bool
		case 8:
			return Int8
		case 16:
			return Int16
		case 32:
			return Int32
		case 64:
			return Int64
		}
	case *ir.BuiltinFloatType:
		switch typT.Width {
		case 16:
			return Half
		case 32:
			return Float
		case 64:
			return Double
		}
	case *ir.StructType:
		if typT.Module != StdlibModule || len(typT.Fields) != 1 {
			return Invalid
		}
		dt, ok := stdlibTypes[typT.Name]
		if !ok {
			return Invalid
		}
		// The wrapped builtin needs to be a valid element type as well.
		if ConvertType(typT.Fields[0].Type) == Invalid {
			return Invalid
		}
		return dt
	}
	return Invalid
}

// IsValidElementType returns true if the type is a valid tensor element type.
// For example, 128-bit integers and pointers are not.
func IsValidElementType(typ ir.Type) bool {
	return ConvertType(typ) != Invalid
}
