// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package event

import (
	"github.com/cocowh/linemux/core/utils"
	"github.com/cocowh/linemux/pkg/logger"
)

// Dispatch runs the tiers in order, typically the connection's own handler
// followed by its server's. Nil tiers are skipped. For abortive events a
// cancellation stops all remaining tiers, including one set before Dispatch.
//
// A panicking handler is recovered and logged; the remaining tiers still run.
// Dispatch reports whether the event ended up cancelled.
func Dispatch[E Event](e E, tiers ...Handler[E]) bool {
	for i, h := range tiers {
		if h == nil {
			continue
		}
		if e.Abortive() && e.IsCancelled() {
			break
		}
		if !utils.SafeCall(func() { h(e) }) {
			logger.Warnf("event handler %d for %T failed, conn: %s", i, e, connID(e))
		}
	}
	return e.IsCancelled()
}

func connID(e Event) string {
	if c := e.Connection(); c != nil {
		return c.ID()
	}
	return "-"
}
