package ports

// DebugSink abstracts debug output for intermediate encoding results.
// It allows persisting the stats buffer and per-packet metadata between
// and after passes for inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveStats saves the accumulated first-pass statistics buffer.
	SaveStats(data []byte) error

	// SavePacketLog saves the packet listing for one pass as JSON.
	SavePacketLog(pass string, data []byte) error

	// SaveRunJSON saves the run summary metadata as JSON.
	SaveRunJSON(data []byte) error
}
