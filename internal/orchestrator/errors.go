package orchestrator

import (
	"errors"
	"fmt"
)

// ErrPoolFailed is wrapped by Run's error when a spawn failed or any worker
// ended in Failure.
var ErrPoolFailed = errors.New("one or more workers failed")

// ConfigurationError rejects a request before any device is opened.
type ConfigurationError struct {
	Concurrency int
	Reason      string
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("Invalid value (%d) for concurrency", e.Concurrency)
}

// ResourceOpenError means the device could not be opened; no worker ran.
type ResourceOpenError struct {
	Device string
	Err    error
}

func (e *ResourceOpenError) Error() string {
	return fmt.Sprintf("cdev open %s: %v", e.Device, e.Err)
}
func (e *ResourceOpenError) Unwrap() error { return e.Err }

// ResourceCloseError means the device could not be closed after the pool
// ran; the run is reported as failed regardless of the pool result.
type ResourceCloseError struct {
	Device string
	Err    error
}

func (e *ResourceCloseError) Error() string {
	return fmt.Sprintf("cdev close %s: %v", e.Device, e.Err)
}
func (e *ResourceCloseError) Unwrap() error { return e.Err }
