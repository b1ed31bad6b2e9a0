package av1container

/*
#cgo !windows pkg-config: aom
#cgo windows CFLAGS: -IC:/vcpkg/installed/x64-windows-static/include
#cgo windows LDFLAGS: -LC:/vcpkg/installed/x64-windows-static/lib -laom -static -lpthread
#include <aom/aom_encoder.h>
#include <aom/aomcx.h>
#include <stdlib.h>
#include <string.h>

static aom_codec_iface_t* av1_iface() {
    return aom_codec_av1_cx();
}

// Wrapper for aom_codec_enc_init (it's a macro)
static aom_codec_err_t enc_init(aom_codec_ctx_t *ctx, aom_codec_iface_t *iface,
                                aom_codec_enc_cfg_t *cfg) {
    return aom_codec_enc_init_ver(ctx, iface, cfg, 0, AOM_ENCODER_ABI_VERSION);
}

static int pkt_is_frame(const aom_codec_cx_pkt_t *pkt) {
    return pkt->kind == AOM_CODEC_CX_FRAME_PKT;
}

static void* pkt_buf(const aom_codec_cx_pkt_t *pkt) {
    return pkt->data.frame.buf;
}

static size_t pkt_sz(const aom_codec_cx_pkt_t *pkt) {
    return pkt->data.frame.sz;
}

static int pkt_is_key(const aom_codec_cx_pkt_t *pkt) {
    return (pkt->data.frame.flags & AOM_FRAME_IS_KEY) != 0;
}

static aom_codec_pts_t pkt_pts(const aom_codec_cx_pkt_t *pkt) {
    return pkt->data.frame.pts;
}

static void put_pixel(aom_image_t *img, int plane, int idx, unsigned char val) {
    img->planes[plane][idx] = val;
}

static int plane_stride(aom_image_t *img, int plane) {
    return img->stride[plane];
}

// Wrapper for aom_codec_control (it's a variadic macro)
static aom_codec_err_t set_cpu_used(aom_codec_ctx_t *ctx, int value) {
    return aom_codec_control(ctx, AOME_SET_CPUUSED, value);
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/user/vidseq/pkg/ports"
)

// Stream implements ports.VideoStream on a libaom AV1 encoder. The
// codec context is allocated lazily on the first Encode, once the
// dimensions are known.
type Stream struct {
	mu sync.Mutex

	codec *C.aom_codec_ctx_t
	cfg   *C.aom_codec_enc_cfg_t
	raw   *C.aom_image_t

	width, height int
	timescale     uint32
	frameDur      uint32
	bitRate       int

	count   int64
	drained bool
}

func newStream(timescale, frameDur uint32, bitRate int) *Stream {
	return &Stream{
		timescale: timescale,
		frameDur:  frameDur,
		bitRate:   bitRate,
	}
}

// SetSize fixes the stream dimensions. Must happen before the first
// Encode call.
func (s *Stream) SetSize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
}

// Width returns the stream width.
func (s *Stream) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

// Height returns the stream height.
func (s *Stream) Height() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

// Encode compresses one RGB frame, or drains the encoder when f is
// nil, returning the packets that became available.
func (s *Stream) Encode(f *ports.RawFrame) ([]ports.Packet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f == nil {
		return s.drain()
	}
	if s.drained {
		return nil, fmt.Errorf("stream already drained")
	}
	if s.codec == nil {
		if err := s.initialize(); err != nil {
			return nil, err
		}
	}
	if f.Width != s.width || f.Height != s.height {
		return nil, fmt.Errorf("frame is %dx%d, stream is %dx%d", f.Width, f.Height, s.width, s.height)
	}
	if len(f.Pix) < s.width*s.height*3 {
		return nil, fmt.Errorf("frame buffer too short: %d bytes", len(f.Pix))
	}

	s.rgbToYUV420(f.Pix)

	flags := C.aom_enc_frame_flags_t(0)
	if s.count == 0 {
		flags = C.AOM_EFLAG_FORCE_KF
	}
	if res := C.aom_codec_encode(s.codec, s.raw, C.aom_codec_pts_t(s.count), 1, flags); res != C.AOM_CODEC_OK {
		return nil, fmt.Errorf("aom encode: %d", res)
	}
	s.count++
	return s.collect(), nil
}

// initialize allocates and configures the libaom context.
func (s *Stream) initialize() error {
	if s.width <= 0 || s.height <= 0 {
		return fmt.Errorf("stream dimensions not set")
	}

	s.codec = (*C.aom_codec_ctx_t)(C.malloc(C.sizeof_aom_codec_ctx_t))
	if s.codec == nil {
		return fmt.Errorf("allocate codec context")
	}
	C.memset(unsafe.Pointer(s.codec), 0, C.sizeof_aom_codec_ctx_t)

	s.cfg = (*C.aom_codec_enc_cfg_t)(C.malloc(C.sizeof_aom_codec_enc_cfg_t))
	if s.cfg == nil {
		s.destroyLocked()
		return fmt.Errorf("allocate encoder config")
	}

	iface := C.av1_iface()
	if res := C.aom_codec_enc_config_default(iface, s.cfg, 0); res != C.AOM_CODEC_OK {
		s.destroyLocked()
		return fmt.Errorf("default config: %d", res)
	}

	s.cfg.g_w = C.uint(s.width)
	s.cfg.g_h = C.uint(s.height)
	// Timebase is seconds per tick; pts are in frame units, so one
	// frame spans frameDur ticks over a timescale-tick second.
	s.cfg.g_timebase.num = C.int(s.frameDur)
	s.cfg.g_timebase.den = C.int(s.timescale)
	s.cfg.g_error_resilient = 0
	s.cfg.g_threads = 4
	s.cfg.g_usage = C.AOM_USAGE_REALTIME
	s.cfg.rc_end_usage = C.AOM_VBR
	if s.bitRate > 0 {
		// libaom takes kilobits per second.
		s.cfg.rc_target_bitrate = C.uint(s.bitRate / 1000)
	} else {
		s.cfg.rc_target_bitrate = C.uint(s.width * s.height / 1000)
	}

	if res := C.enc_init(s.codec, iface, s.cfg); res != C.AOM_CODEC_OK {
		s.destroyLocked()
		return fmt.Errorf("init encoder: %d", res)
	}

	C.set_cpu_used(s.codec, 8)

	s.raw = (*C.aom_image_t)(C.malloc(C.sizeof_aom_image_t))
	if s.raw == nil {
		s.destroyLocked()
		return fmt.Errorf("allocate raw frame")
	}
	if C.aom_img_alloc(s.raw, C.AOM_IMG_FMT_I420, C.uint(s.width), C.uint(s.height), 32) == nil {
		C.free(unsafe.Pointer(s.raw))
		s.raw = nil
		s.destroyLocked()
		return fmt.Errorf("allocate image buffer")
	}
	return nil
}

// drain flushes buffered packets with an end-of-stream encode.
func (s *Stream) drain() ([]ports.Packet, error) {
	if s.drained || s.codec == nil {
		s.drained = true
		return nil, nil
	}
	s.drained = true
	if res := C.aom_codec_encode(s.codec, nil, 0, 1, 0); res != C.AOM_CODEC_OK {
		return nil, fmt.Errorf("aom flush: %d", res)
	}
	return s.collect(), nil
}

// collect gathers pending encoded packets from the codec.
func (s *Stream) collect() []ports.Packet {
	var packets []ports.Packet
	var iter C.aom_codec_iter_t
	for {
		pkt := C.aom_codec_get_cx_data(s.codec, &iter)
		if pkt == nil {
			break
		}
		if C.pkt_is_frame(pkt) == 0 {
			continue
		}
		packets = append(packets, ports.Packet{
			Data:       C.GoBytes(C.pkt_buf(pkt), C.int(C.pkt_sz(pkt))),
			PTS:        int64(C.pkt_pts(pkt)),
			Duration:   1,
			IsKeyframe: C.pkt_is_key(pkt) != 0,
		})
	}
	return packets
}

// destroy releases the libaom context. Safe to call more than once.
func (s *Stream) destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyLocked()
}

func (s *Stream) destroyLocked() {
	if s.raw != nil {
		C.aom_img_free(s.raw)
		C.free(unsafe.Pointer(s.raw))
		s.raw = nil
	}
	if s.codec != nil {
		C.aom_codec_destroy(s.codec)
		C.free(unsafe.Pointer(s.codec))
		s.codec = nil
	}
	if s.cfg != nil {
		C.free(unsafe.Pointer(s.cfg))
		s.cfg = nil
	}
}

// rgbToYUV420 converts interleaved RGB24 into the raw I420 buffer.
func (s *Stream) rgbToYUV420(pix []byte) {
	yStride := int(C.plane_stride(s.raw, 0))
	uStride := int(C.plane_stride(s.raw, 1))
	vStride := int(C.plane_stride(s.raw, 2))

	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			idx := (y*s.width + x) * 3
			r := int(pix[idx])
			g := int(pix[idx+1])
			b := int(pix[idx+2])

			yVal := clamp(((66*r + 129*g + 25*b + 128) >> 8) + 16)
			C.put_pixel(s.raw, 0, C.int(y*yStride+x), C.uchar(yVal))

			if y%2 == 0 && x%2 == 0 {
				uVal := clamp(((-38*r - 74*g + 112*b + 128) >> 8) + 128)
				vVal := clamp(((112*r - 94*g - 18*b + 128) >> 8) + 128)
				C.put_pixel(s.raw, 1, C.int((y/2)*uStride+x/2), C.uchar(uVal))
				C.put_pixel(s.raw, 2, C.int((y/2)*vStride+x/2), C.uchar(vVal))
			}
		}
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

var _ ports.VideoStream = (*Stream)(nil)
