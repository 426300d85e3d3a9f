// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"path/filepath"

	"github.com/user/twopass/pkg/ports"
)

// Sink saves debug output to files.
type Sink struct {
	baseDir string
	fs      ports.FileSystem
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveStats saves the accumulated first-pass statistics buffer.
func (s *Sink) SaveStats(data []byte) error {
	path := filepath.Join(s.baseDir, "firstpass.stats")
	return s.fs.WriteFile(path, data)
}

// SavePacketLog saves the packet listing for one pass as JSON.
func (s *Sink) SavePacketLog(pass string, data []byte) error {
	path := filepath.Join(s.baseDir, fmt.Sprintf("packets-%s.json", pass))
	return s.fs.WriteFile(path, data)
}

// SaveRunJSON saves the run summary metadata as JSON.
func (s *Sink) SaveRunJSON(data []byte) error {
	path := filepath.Join(s.baseDir, "run.json")
	return s.fs.WriteFile(path, data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
