// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package keymatrix scans an active-low key matrix and queues press and
// release events.
//
// Columns are outputs driven low one at a time; rows are pulled-up inputs.
// A row reading low while its column is driven means the key at that
// intersection is pressed. Debouncing relies on a fixed settle delay after
// each column is selected.
//
// Events are queued as (direction, key) byte pairs in a FIFO.
package keymatrix
