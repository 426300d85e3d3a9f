package filesink

import (
	"path/filepath"
	"testing"

	"github.com/user/twopass/pkg/mocks"
)

var testBaseDir = filepath.Join("debug")

func TestSink_Enabled(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem())
	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestSink_SaveStats(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs)

	data := make([]byte, 80)
	if err := sink.SaveStats(data); err != nil {
		t.Fatalf("SaveStats failed: %v", err)
	}

	saved, ok := fs.Files[filepath.Join(testBaseDir, "firstpass.stats")]
	if !ok {
		t.Fatal("expected stats file to be saved")
	}
	if len(saved) != 80 {
		t.Errorf("expected 80 bytes, got %d", len(saved))
	}
}

func TestSink_SavePacketLog(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs)

	data := []byte(`[{"index":0}]`)
	if err := sink.SavePacketLog("last", data); err != nil {
		t.Fatalf("SavePacketLog failed: %v", err)
	}

	saved, ok := fs.Files[filepath.Join(testBaseDir, "packets-last.json")]
	if !ok {
		t.Fatal("expected packet log to be saved")
	}
	if string(saved) != string(data) {
		t.Errorf("expected %q, got %q", data, saved)
	}
}

func TestSink_SaveRunJSON(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs)

	data := []byte(`{"frameCount":3}`)
	if err := sink.SaveRunJSON(data); err != nil {
		t.Fatalf("SaveRunJSON failed: %v", err)
	}

	saved, ok := fs.Files[filepath.Join(testBaseDir, "run.json")]
	if !ok {
		t.Fatal("expected run summary to be saved")
	}
	if string(saved) != string(data) {
		t.Errorf("expected %q, got %q", data, saved)
	}
}
