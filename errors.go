// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package bookrec

import "errors"

var (
	// ErrNotFound should be returned when a requested resource cannot be found
	ErrNotFound = errors.New("not found")

	// ErrRunFailed is returned when the assistant platform reports a run as failed
	ErrRunFailed = errors.New("assistant run failed")

	// ErrRunCancelled is returned when the assistant platform reports a run as cancelled
	ErrRunCancelled = errors.New("assistant run cancelled")

	// ErrRunTimeout is returned when a run does not reach a terminal status
	// before the monitor's deadline. Distinct from ErrRunFailed so callers can
	// tell an infrastructure stall from a genuine run failure.
	ErrRunTimeout = errors.New("assistant run timed out")
)
