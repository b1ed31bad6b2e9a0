package av1container

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/vidseq/pkg/framerate"
	"github.com/user/vidseq/pkg/ports"
)

func exactRate(num, den int) framerate.Value {
	return framerate.Value{Rational: framerate.Rational{Num: num, Den: den}, Exact: true}
}

func TestEngine_OpenBadPath(t *testing.T) {
	engine := NewEngine()
	if _, err := engine.Open(filepath.Join(t.TempDir(), "missing", "out.mp4")); err == nil {
		t.Error("expected error for unwritable path")
	}
}

func TestEngine_Codecs(t *testing.T) {
	got := NewEngine().Codecs()
	if len(got) != 1 || got[0] != CodecAV1 {
		t.Errorf("Codecs = %v, want [%s]", got, CodecAV1)
	}
}

func TestTimebase(t *testing.T) {
	tests := []struct {
		rate      framerate.Value
		timescale uint32
		frameDur  uint32
	}{
		{exactRate(30, 1), 30, 1},
		{exactRate(2997, 100), 2997, 100},
		{framerate.Value{Float: 29.97}, 29970, 1000},
	}
	for _, tt := range tests {
		ts, dur, err := timebase(tt.rate)
		if err != nil {
			t.Fatalf("timebase(%v) failed: %v", tt.rate, err)
		}
		if ts != tt.timescale || dur != tt.frameDur {
			t.Errorf("timebase(%v) = (%d, %d), want (%d, %d)", tt.rate, ts, dur, tt.timescale, tt.frameDur)
		}
	}

	if _, _, err := timebase(exactRate(0, 1)); err == nil {
		t.Error("expected error for zero rate")
	}
	if _, _, err := timebase(framerate.Value{Float: -1}); err == nil {
		t.Error("expected error for negative rate")
	}
}

func TestContainer_AddStreamValidation(t *testing.T) {
	engine := NewEngine()
	path := filepath.Join(t.TempDir(), "out.mp4")
	c, err := engine.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := c.AddStream("h264", exactRate(30, 1), ports.StreamOptions{}); err == nil {
		t.Error("expected error for unsupported codec")
	}
	if _, err := c.AddStream(CodecAV1, exactRate(30, 1), ports.StreamOptions{PixelFormat: "rgb24"}); err == nil {
		t.Error("expected error for unsupported pixel format")
	}

	if _, err := c.AddStream(CodecAV1, exactRate(30, 1), ports.StreamOptions{PixelFormat: "yuv420p"}); err != nil {
		t.Fatalf("AddStream failed: %v", err)
	}
	if _, err := c.AddStream(CodecAV1, exactRate(30, 1), ports.StreamOptions{}); err == nil {
		t.Error("expected error for second stream")
	}
}

func TestContainer_MuxWithoutStream(t *testing.T) {
	engine := NewEngine()
	c, err := engine.Open(filepath.Join(t.TempDir(), "out.mp4"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := c.Mux([]ports.Packet{{Data: []byte{1}}}); err == nil {
		t.Error("expected error for mux before AddStream")
	}
}

func TestContainer_MuxAndClose(t *testing.T) {
	engine := NewEngine()
	path := filepath.Join(t.TempDir(), "out.mp4")
	c, err := engine.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := c.AddStream(CodecAV1, exactRate(2997, 100), ports.StreamOptions{}); err != nil {
		t.Fatalf("AddStream failed: %v", err)
	}

	key := append(append([]byte{}, seqHdrOBU...), 0x32, 0x01, 0xFF)
	packets := []ports.Packet{
		{Data: key, PTS: 0, Duration: 1, IsKeyframe: true},
		{Data: []byte{0x32, 0x01, 0x01}, PTS: 1, Duration: 1},
		{Data: nil, PTS: 2, Duration: 1}, // empty packets are skipped
	}
	if err := c.Mux(packets); err != nil {
		t.Fatalf("Mux failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := c.Close(); err == nil {
		t.Error("expected error for second Close")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open produced file: %v", err)
	}
	defer f.Close()
	parsed, err := mp4.DecodeFile(f)
	if err != nil {
		t.Fatalf("produced file does not parse: %v", err)
	}
	if parsed.Init.Moov.Trak.Mdia.Mdhd.Timescale != 2997 {
		t.Errorf("timescale = %d, want 2997", parsed.Init.Moov.Trak.Mdia.Mdhd.Timescale)
	}
}
