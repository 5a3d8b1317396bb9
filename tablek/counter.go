package tablek

import "sync/atomic"

var tabCounter int64

// GetTabID a global tab ID
func GetTabID() int64 {
	return atomic.AddInt64(&tabCounter, 1)
}
