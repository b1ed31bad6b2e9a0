package av1container

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/av1"
	"github.com/Eyevinn/mp4ff/mp4"
)

// buildMP4 assembles a fragmented MP4 with a single AV1 video track
// from the muxed samples.
func buildMP4(samples []sample, timescale uint32, width, height int) ([]byte, error) {
	if timescale == 0 {
		return nil, fmt.Errorf("no stream configured")
	}

	trackID := uint32(1)

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")

	trak := init.Moov.Trak

	av1C := av1ConfigRecord(samples)
	av01 := mp4.CreateVisualSampleEntryBox("av01", uint16(width), uint16(height), av1C)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(av01)

	trak.Tkhd.Width = mp4.Fixed32(width << 16)
	trak.Tkhd.Height = mp4.Fixed32(height << 16)

	var buf bytes.Buffer

	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "av01", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode moov: %w", err)
	}

	if len(samples) == 0 {
		// A closed writer with no frames still produces a valid,
		// empty container.
		return buf.Bytes(), nil
	}

	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return nil, fmt.Errorf("create fragment: %w", err)
	}
	for _, s := range samples {
		flags := mp4.NonSyncSampleFlags
		if s.isKeyframe {
			flags = mp4.SyncSampleFlags
		}
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: flags,
				Size:  uint32(len(s.data)),
				Dur:   s.dur,
			},
			DecodeTime: s.decodeTime,
			Data:       s.data,
		})
	}
	if err := frag.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode fragment: %w", err)
	}

	return buf.Bytes(), nil
}

// av1ConfigRecord builds the Av1C box, pulling the sequence header OBU
// from the first keyframe.
func av1ConfigRecord(samples []sample) *mp4.Av1CBox {
	var seqHdr []byte
	for _, s := range samples {
		if s.isKeyframe && len(s.data) > 0 {
			seqHdr = extractSequenceHeader(s.data)
			break
		}
	}

	return &mp4.Av1CBox{
		CodecConfRec: av1.CodecConfRec{
			Version:              1,
			SeqProfile:           0,
			SeqLevelIdx0:         8, // Level 4.0
			SeqTier0:             0,
			HighBitdepth:         0,
			TwelveBit:            0,
			MonoChrome:           0,
			ChromaSubsamplingX:   1, // 4:2:0
			ChromaSubsamplingY:   1,
			ChromaSamplePosition: 0,
			ConfigOBUs:           seqHdr,
		},
	}
}

// extractSequenceHeader returns the sequence header OBU (type 1) from
// an AV1 temporal unit, including its header bytes.
func extractSequenceHeader(data []byte) []byte {
	if len(data) < 2 {
		return nil
	}

	offset := 0
	for offset < len(data) {
		obuStart := offset
		header := data[offset]
		obuType := (header >> 3) & 0x0F
		hasExtension := (header >> 2) & 0x01
		hasSizeField := (header >> 1) & 0x01

		offset++
		if hasExtension == 1 && offset < len(data) {
			offset++
		}

		var obuSize int
		if hasSizeField == 1 {
			obuSize, offset = readLeb128(data, offset)
		} else {
			obuSize = len(data) - offset
		}

		if obuType == 1 {
			endOffset := offset + obuSize
			if endOffset > len(data) {
				endOffset = len(data)
			}
			return data[obuStart:endOffset]
		}

		offset += obuSize
	}

	return nil
}

// readLeb128 reads a LEB128 encoded value.
func readLeb128(data []byte, offset int) (int, int) {
	value := 0
	for i := 0; i < 8 && offset < len(data); i++ {
		b := data[offset]
		offset++
		value |= int(b&0x7F) << (i * 7)
		if b&0x80 == 0 {
			break
		}
	}
	return value, offset
}
