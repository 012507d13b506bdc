// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/cockroachdb/errors"

	"github.com/devblok/koruvk/gfx"
)

// Error kinds reported by the backend. Match them with errors.Is.
var (
	// ErrDriverCallFailed marks any failing driver call, the status code
	// is available through DriverStatus.
	ErrDriverCallFailed = errors.New("driver call failed")

	// ErrVersionUnsupported is returned when the driver or a device reports
	// an API version below MinimumAPIVersion.
	ErrVersionUnsupported = errors.New("api version unsupported")

	// ErrNoSuitableQueueFamily is returned when no queue family can do
	// graphics, compute, transfer and presentation at once.
	ErrNoSuitableQueueFamily = errors.New("no suitable queue family")

	// ErrNoSuitableSurfaceFormat is returned when the surface offers none
	// of the formats the swapchain can render to.
	ErrNoSuitableSurfaceFormat = errors.New("no suitable surface format")

	// ErrCapabilityRequiredButUnsupported is returned when a layer or
	// extension that must be enabled is missing from the driver.
	ErrCapabilityRequiredButUnsupported = errors.New("required capability unsupported")

	// ErrNoPhysicalDevice is returned when the driver lists no GPUs.
	ErrNoPhysicalDevice = errors.New("no physical device")

	// ErrSurfaceExtentZero is returned when the window has no area,
	// typically while minimized. The swapchain is left untouched.
	ErrSurfaceExtentZero = errors.New("surface extent is zero")
)

// MinimumAPIVersion is the oldest API version the backend runs on.
var MinimumAPIVersion = gfx.MakeVersion(1, 1, 0)

// driverCallError is a failed driver call. It matches ErrDriverCallFailed
// and unwraps to the driver status.
type driverCallError struct {
	cause error
}

func (e *driverCallError) Error() string { return e.cause.Error() }

func (e *driverCallError) Unwrap() error { return e.cause }

func (e *driverCallError) Is(target error) bool {
	return target == ErrDriverCallFailed
}

// driverError marks err as a failed driver call made in op.
func driverError(err error, op string) error {
	return &driverCallError{cause: errors.Wrap(err, op)}
}

// DriverStatus extracts the driver status code from err.
func DriverStatus(err error) (gfx.Result, bool) {
	var result gfx.Result
	if errors.As(err, &result) {
		return result, true
	}
	return 0, false
}

// CheckVersion fails with ErrVersionUnsupported when v, reported by what,
// is older than MinimumAPIVersion.
func CheckVersion(v gfx.Version, what string) error {
	if v < MinimumAPIVersion {
		return errors.WithHintf(
			errors.Wrapf(ErrVersionUnsupported, "%s reports %s", what, v),
			"at least %d.%d is required", MinimumAPIVersion.Major(), MinimumAPIVersion.Minor())
	}
	return nil
}
