package kernel

import (
	"errors"
	"strings"
)

// Kernel errors. Every non-fatal error leaves the kernel state unchanged.
var (
	// ErrInvalidPriority is returned when a priority is outside 0..2.
	ErrInvalidPriority = errors.New("kernel: invalid priority")

	// ErrProcessNotFound is returned when a PID does not name a live process.
	ErrProcessNotFound = errors.New("kernel: process not found")

	// ErrOperationNotPermitted is returned when an operation targets the idle
	// process or would deadlock the caller.
	ErrOperationNotPermitted = errors.New("kernel: operation not permitted")

	// ErrPayloadTooLong is returned when a message payload exceeds the
	// configured bound.
	ErrPayloadTooLong = errors.New("kernel: payload too long")

	// ErrAllocationFailure is returned when the process table cannot hold
	// another process. Callers treat it as fatal.
	ErrAllocationFailure = errors.New("kernel: allocation failure")
)

// Error codes name the kernel errors in scenarios and traces.
const (
	CodeInvalidPriority       = "InvalidPriority"
	CodeOperationNotPermitted = "OperationNotPermitted"
	CodeProcessNotFound       = "ProcessNotFound"
	CodePayloadTooLong        = "PayloadTooLong"
	CodeAllocationFailure     = "AllocationFailure"
)

var errorCodes = []struct {
	code string
	err  error
}{
	{CodeInvalidPriority, ErrInvalidPriority},
	{CodeOperationNotPermitted, ErrOperationNotPermitted},
	{CodeProcessNotFound, ErrProcessNotFound},
	{CodePayloadTooLong, ErrPayloadTooLong},
	{CodeAllocationFailure, ErrAllocationFailure},
}

// ErrorCode returns the short name of the first kernel error err wraps, or
// an empty string.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, candidate := range errorCodes {
		if errors.Is(err, candidate.err) {
			return candidate.code
		}
	}
	return ""
}

// ErrorOf returns the kernel error named by code, case-insensitive, or nil.
func ErrorOf(code string) error {
	for _, candidate := range errorCodes {
		if strings.EqualFold(candidate.code, code) {
			return candidate.err
		}
	}
	return nil
}
