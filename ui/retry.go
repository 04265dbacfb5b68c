// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ui

import "fmt"

// Retry selects what happens to an event the Reporter refused.
type Retry int

const (
	// RetryPending holds the refused event aside and sends it again before
	// anything else, keeping the event order.
	RetryPending Retry = iota
	// RetryRequeue pushes the refused event back at the tail of the queue.
	// Events queued meanwhile overtake it.
	RetryRequeue
)

func (r Retry) String() string {
	switch r {
	case RetryPending:
		return "pending"
	case RetryRequeue:
		return "requeue"
	}
	return fmt.Sprintf("Retry(%d)", int(r))
}

// Set implements the flag.Value interface.
func (r *Retry) Set(s string) error {
	switch s {
	case "pending":
		*r = RetryPending
	case "requeue":
		*r = RetryRequeue
	default:
		return fmt.Errorf("unknown retry policy %q: expected pending or requeue", s)
	}
	return nil
}
