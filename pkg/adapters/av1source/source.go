package av1source

import (
	"fmt"
	"image"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/vidseq/pkg/adapters/codecdetect"
	"github.com/user/vidseq/pkg/framerate"
	"github.com/user/vidseq/pkg/ports"
)

// Engine opens AV1 MP4 files as video sources.
type Engine struct{}

// NewEngine creates a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// rawSample is one undecoded temporal unit with its timing.
type rawSample struct {
	data []byte
	dur  uint32
}

// Source implements ports.VideoSource. The MP4 is demuxed once at
// open; frames decode on demand. AV1 inter frames need their
// predecessors, so access decodes forward from the last decoded
// position and caches the results.
type Source struct {
	samples []rawSample
	rate    framerate.Rate

	dec     *decoder
	decoded []image.Image
}

// Open demuxes the MP4 at path. Non-AV1 files are rejected with the
// detected codec in the error.
func (e *Engine) Open(path string) (ports.VideoSource, error) {
	codec, err := codecdetect.DetectFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect codec: %w", err)
	}
	if codec != codecdetect.CodecAV1 {
		return nil, fmt.Errorf("unsupported codec %q, only AV1 input is supported", codec)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	mp4File, err := mp4.DecodeFile(f)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	samples, timescale, err := demux(mp4File)
	if err != nil {
		return nil, err
	}

	return &Source{
		samples: samples,
		rate:    rateFromTiming(timescale, samples),
	}, nil
}

// rateFromTiming derives the raw frame rate from the track timescale
// and the first sample duration. The value is deliberately left
// unnormalized; readers normalize lazily through the shared
// frame-rate path.
func rateFromTiming(timescale uint32, samples []rawSample) framerate.Rate {
	if timescale == 0 || len(samples) == 0 || samples[0].dur == 0 {
		return framerate.Rate{}
	}
	return framerate.FromRational(framerate.Rational{
		Num: int(timescale),
		Den: int(samples[0].dur),
	})
}

// demux extracts the video track's raw samples and timescale from a
// fragmented MP4.
func demux(mp4File *mp4.File) ([]rawSample, uint32, error) {
	if !mp4File.IsFragmented() {
		return nil, 0, fmt.Errorf("progressive MP4 not supported, use fragmented MP4")
	}
	if mp4File.Init == nil || mp4File.Init.Moov == nil {
		return nil, 0, fmt.Errorf("missing init segment")
	}

	var videoTrackID uint32
	var timescale uint32 = 1000
	var trex *mp4.TrexBox
	for _, trak := range mp4File.Init.Moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			videoTrackID = trak.Tkhd.TrackID
			if trak.Mdia.Mdhd != nil {
				timescale = trak.Mdia.Mdhd.Timescale
			}
			break
		}
	}
	if videoTrackID == 0 {
		return nil, 0, fmt.Errorf("no video track found")
	}
	if mp4File.Init.Moov.Mvex != nil {
		for _, t := range mp4File.Init.Moov.Mvex.Trexs {
			if t.TrackID == videoTrackID {
				trex = t
				break
			}
		}
	}

	var samples []rawSample
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != videoTrackID {
					continue
				}
				full, err := frag.GetFullSamples(trex)
				if err != nil {
					return nil, 0, fmt.Errorf("get samples: %w", err)
				}
				for _, s := range full {
					samples = append(samples, rawSample{data: s.Data, dur: s.Dur})
				}
			}
		}
	}
	return samples, timescale, nil
}

// FrameRate returns the raw rate captured at open time.
func (s *Source) FrameRate() framerate.Rate {
	return s.rate
}

// Len returns the number of frames in the track.
func (s *Source) Len() int {
	return len(s.samples)
}

// Frame returns the decoded frame at index, decoding forward from the
// last decoded position when needed.
func (s *Source) Frame(index int) (image.Image, error) {
	if index < 0 || index >= len(s.samples) {
		return nil, fmt.Errorf("frame %d out of range [0, %d)", index, len(s.samples))
	}

	if s.dec == nil {
		dec, err := newDecoder()
		if err != nil {
			return nil, err
		}
		s.dec = dec
	}

	for len(s.decoded) <= index {
		img, err := s.dec.decode(s.samples[len(s.decoded)].data)
		if err != nil {
			return nil, fmt.Errorf("decode frame %d: %w", len(s.decoded), err)
		}
		s.decoded = append(s.decoded, img)
	}
	return s.decoded[index], nil
}

// Close releases the decoder.
func (s *Source) Close() error {
	if s.dec != nil {
		s.dec.close()
		s.dec = nil
	}
	return nil
}

// Ensure Engine implements ports.SourceEngine
var _ ports.SourceEngine = (*Engine)(nil)

// Ensure Source implements ports.VideoSource
var _ ports.VideoSource = (*Source)(nil)
