// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrStackUnderflow is returned when an instruction consumes more words than the stack holds
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrLocalOutOfRange is returned when an instruction accesses a local variable outside of the frame
	ErrLocalOutOfRange = errors.New("local variable out of range")

	// ErrUnsupportedInstruction is returned for instructions the frame simulation does not model
	ErrUnsupportedInstruction = errors.New("unsupported instruction")

	// ErrNoFixpoint is returned when the solver exceeds its iteration bound
	ErrNoFixpoint = errors.New("iteration bound exceeded without reaching a fixpoint")
)

// A DataflowError is an internal inconsistency of the analysis at some instruction of a block. Index is -1 when the
// error is not specific to an instruction.
type DataflowError struct {
	Block int
	Index int
	Err   error
}

func (e *DataflowError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("dataflow error in block %d: %v", e.Block, e.Err)
	}
	return fmt.Sprintf("dataflow error in block %d at instruction %d: %v", e.Block, e.Index, e.Err)
}

func (e *DataflowError) Unwrap() error {
	return e.Err
}
