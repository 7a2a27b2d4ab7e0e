package vm

import (
	"errors"
	"fmt"

	"golden/pkg/bytecode"
)

// Recoverable runtime errors. The failing instruction has no effect and
// execution continues; the error is reported as a diagnostic.
var (
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrStackOverflow    = errors.New("stack overflow")
	ErrStackUnderflow   = errors.New("stack underflow")
	ErrUnknownOpcode    = errors.New("unknown opcode")
	ErrUnboundArray     = errors.New("array variable is not bound")
	ErrNotAnArray       = errors.New("variable is not an array")
	ErrInvalidArraySize = errors.New("invalid array size")
	ErrNotImplemented   = errors.New("instruction not implemented")
)

// Fatal errors returned from Step and Run.
var (
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")
)

// RuntimeError is a recoverable error raised by one instruction.
type RuntimeError struct {
	PC    int
	Instr bytecode.Instruction
	Err   error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("pc %d %s: %v", e.PC, e.Instr.Op, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// maxRetainedDiagnostics bounds the diagnostics kept for inspection;
// DiagnosticCount keeps counting past it.
const maxRetainedDiagnostics = 1024
