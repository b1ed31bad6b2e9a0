package av1source

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/vidseq/pkg/framerate"
)

// writeFragmentedMP4 assembles a minimal fragmented MP4 with the given
// sample entry type and sample durations, and writes it to a temp file.
func writeFragmentedMP4(t *testing.T, sampleEntry string, timescale uint32, durs []uint32) string {
	t.Helper()

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")
	trak := init.Moov.Trak

	entry := mp4.CreateVisualSampleEntryBox(sampleEntry, 4, 4, nil)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(entry)

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", sampleEntry, "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		t.Fatalf("encode ftyp: %v", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		t.Fatalf("encode moov: %v", err)
	}

	frag, err := mp4.CreateFragment(1, 1)
	if err != nil {
		t.Fatalf("create fragment: %v", err)
	}
	var decodeTime uint64
	for i, dur := range durs {
		flags := mp4.NonSyncSampleFlags
		if i == 0 {
			flags = mp4.SyncSampleFlags
		}
		data := []byte{0x12, 0x00, byte(i)}
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: flags,
				Size:  uint32(len(data)),
				Dur:   dur,
			},
			DecodeTime: decodeTime,
			Data:       data,
		})
		decodeTime += uint64(dur)
	}
	if err := frag.Encode(&buf); err != nil {
		t.Fatalf("encode fragment: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.mp4")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestEngineOpenMissingFile(t *testing.T) {
	engine := NewEngine()
	_, err := engine.Open(filepath.Join(t.TempDir(), "nope.mp4"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEngineOpenRejectsNonAV1(t *testing.T) {
	path := writeFragmentedMP4(t, "avc1", 30, []uint32{1, 1, 1})

	engine := NewEngine()
	_, err := engine.Open(path)
	if err == nil {
		t.Fatal("expected error for non-AV1 input")
	}
	if !strings.Contains(err.Error(), "h264") {
		t.Errorf("error should name the detected codec, got %v", err)
	}
}

func TestEngineOpenDemux(t *testing.T) {
	path := writeFragmentedMP4(t, "av01", 2997, []uint32{100, 100, 100, 100, 100})

	engine := NewEngine()
	source, err := engine.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer source.Close()

	if source.Len() != 5 {
		t.Errorf("expected 5 frames, got %d", source.Len())
	}

	value, err := source.FrameRate().Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !value.Exact || value.Rational.Num != 2997 || value.Rational.Den != 100 {
		t.Errorf("expected exact 2997/100, got %+v", value)
	}
}

func TestEngineOpenNoVideoTrack(t *testing.T) {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(48000, "audio", "en")

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		t.Fatalf("encode ftyp: %v", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		t.Fatalf("encode moov: %v", err)
	}

	path := filepath.Join(t.TempDir(), "audio.mp4")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	engine := NewEngine()
	if _, err := engine.Open(path); err == nil {
		t.Fatal("expected error for file without a video track")
	}
}

func TestSourceFrameOutOfRange(t *testing.T) {
	source := &Source{samples: []rawSample{{data: []byte{1}, dur: 1}}}

	if _, err := source.Frame(-1); err == nil {
		t.Error("expected error for negative index")
	}
	if _, err := source.Frame(1); err == nil {
		t.Error("expected error for index past the end")
	}
}

func TestRateFromTiming(t *testing.T) {
	samples := []rawSample{{dur: 100}}

	rate := rateFromTiming(2997, samples)
	value, err := rate.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if value.Rational.Num != 2997 || value.Rational.Den != 100 {
		t.Errorf("expected 2997/100, got %+v", value)
	}

	if rateFromTiming(0, samples).Kind() != framerate.KindUnknown {
		t.Error("zero timescale should yield an unknown rate")
	}
	if rateFromTiming(30, nil).Kind() != framerate.KindUnknown {
		t.Error("no samples should yield an unknown rate")
	}
}
