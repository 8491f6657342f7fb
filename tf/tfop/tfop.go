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

// Package tfop decodes builtin instructions representing tensor ops,
// validates their operands, and rewrites them in the canonical form
// expected by the graph emitter.
//
// The symbolic name of a tensor op is:
//
//	__tfop_<OpName>{,<entry>}
//
// where each entry is an optional attribute name followed by an optional
// '$' modifier naming the class of the operand (see OperandClass).
// Entries describe the trailing operands of the builtin: if there are fewer
// entries than operands, the leading operands are implicit tensor inputs.
// For example, "__tfop_Const,dtype$dtype,value$tensor,device" has a dtype,
// a tensor, and a device attribute.
package tfop

import "github.com/pkg/errors"

var (
	// ErrMalformedOp is returned when the symbolic name of a tensor op is malformed.
	ErrMalformedOp = errors.New("malformed tensor op")

	// ErrInvalidAttr is returned when an attribute operand is not a valid constant.
	ErrInvalidAttr = errors.New("invalid attribute operand")

	// ErrInvalidInput is returned when an input operand is not a tensor.
	ErrInvalidInput = errors.New("invalid input operand")
)
