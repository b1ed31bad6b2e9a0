package sequence

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/user/vidseq/pkg/frame"
	"github.com/user/vidseq/pkg/mocks"
)

func TestImageWriter_CreatesDirectory(t *testing.T) {
	fs := mocks.NewFileSystem()
	codec := mocks.NewImageCodec()

	if _, err := NewImageWriter("frames", "", fs, codec); err != nil {
		t.Fatalf("NewImageWriter failed: %v", err)
	}
	if !fs.HasDir("frames") {
		t.Error("target directory was not created")
	}
}

func TestImageWriter_SequentialNumberingAcrossWrites(t *testing.T) {
	fs := mocks.NewFileSystem()
	codec := mocks.NewImageCodec()
	w, err := NewImageWriter("frames", "jpg", fs, codec)
	if err != nil {
		t.Fatalf("NewImageWriter failed: %v", err)
	}

	if err := w.Write(frame.NewBatch(3, 3, 2, 2)); err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	if err := w.Write(frame.NewBatch(2, 3, 2, 2)); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}

	saved := codec.Saved()
	if len(saved) != 5 {
		t.Fatalf("saved %d files, want 5", len(saved))
	}
	for i, path := range saved {
		want := filepath.Join("frames", fmt.Sprintf("%04d.jpg", i))
		if path != want {
			t.Errorf("file %d saved as %q, want %q", i, path, want)
		}
	}
}

func TestImageWriter_DefaultExtension(t *testing.T) {
	fs := mocks.NewFileSystem()
	codec := mocks.NewImageCodec()
	w, err := NewImageWriter("frames", "", fs, codec)
	if err != nil {
		t.Fatalf("NewImageWriter failed: %v", err)
	}

	if err := w.Write(frame.NewBatch(1, 3, 2, 2)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := filepath.Join("frames", "0000.jpg")
	if _, ok := codec.Get(want); !ok {
		t.Errorf("expected %q to be saved", want)
	}
}

func TestImageWriter_MkdirFailure(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.MkdirAllFunc = func(path string) error {
		return fmt.Errorf("read-only filesystem")
	}
	if _, err := NewImageWriter("frames", "png", fs, mocks.NewImageCodec()); err == nil {
		t.Error("expected error when the directory cannot be created")
	}
}

func TestImageWriter_CloseIsNoop(t *testing.T) {
	fs := mocks.NewFileSystem()
	codec := mocks.NewImageCodec()
	w, err := NewImageWriter("frames", "png", fs, codec)
	if err != nil {
		t.Fatalf("NewImageWriter failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	// Unlike VideoWriter, a closed ImageWriter keeps accepting writes;
	// there is no finalization state.
	if err := w.Write(frame.NewBatch(1, 3, 2, 2)); err != nil {
		t.Errorf("Write after Close failed: %v", err)
	}
}
