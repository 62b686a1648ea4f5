// Copyright 2026 The Oaf Authors
// This file is part of Oaf.
//
// Oaf is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Oaf is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Oaf. If not, see <http://www.gnu.org/licenses/>.

package vm

import "errors"

// Error kinds the VM surfaces via ExecResult.ErrorMessage (§7). Every runtime
// condition aborts the current Execute call immediately; there are no
// retries.
var (
	ErrEntryNotFound         = errors.New("entry function not found")
	ErrUnsupportedOpcode     = errors.New("unsupported opcode")
	ErrArrayIndexOutOfRange  = errors.New("array index out of range")
	ErrNotAnArray            = errors.New("value is not an array")
	ErrParallelBodyViolation = errors.New("parallel loop body violation")
	ErrThrownByProgram       = errors.New("thrown by program")
	ErrUnresolvedParallelEnd = errors.New("unresolved parallel end")
)
