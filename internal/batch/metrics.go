package batch

import "sync/atomic"

// Counters are simple health metrics for one driver, safe for concurrent workers.
type Counters struct {
	filesIn        atomic.Uint64 // files handed to a worker
	filesConverted atomic.Uint64 // outputs written
	filesFailed    atomic.Uint64 // read, decode or write failures
	bytesRead      atomic.Uint64 // raw bytes after decompression
}

// Reset resets all counters to zero.
func (c *Counters) Reset() {
	c.filesIn.Store(0)
	c.filesConverted.Store(0)
	c.filesFailed.Store(0)
	c.bytesRead.Store(0)
}

// Snapshot returns the current values.
func (c *Counters) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"files_in":        c.filesIn.Load(),
		"files_converted": c.filesConverted.Load(),
		"files_failed":    c.filesFailed.Load(),
		"bytes_read":      c.bytesRead.Load(),
	}
}

func (c *Counters) incFilesIn()        { c.filesIn.Add(1) }
func (c *Counters) incFilesConverted() { c.filesConverted.Add(1) }
func (c *Counters) incFilesFailed()    { c.filesFailed.Add(1) }
func (c *Counters) addBytesRead(n int) {
	if n > 0 {
		c.bytesRead.Add(uint64(n))
	}
}
