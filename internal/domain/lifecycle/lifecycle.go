// Package lifecycle holds the bounds shared by start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds every OnStart and OnStop hook.
const DefaultTimeout = 10 * time.Second
