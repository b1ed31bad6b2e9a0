// Package av1source implements the video source port with mp4ff demux
// and libaom AV1 decoding.
package av1source

/*
#cgo pkg-config: aom
#include <aom/aom_decoder.h>
#include <aom/aomdx.h>
#include <stdlib.h>
#include <string.h>

static aom_codec_iface_t* av1_dx_iface() {
    return aom_codec_av1_dx();
}

// Wrapper for aom_codec_dec_init (it's a macro)
static aom_codec_err_t dec_init(aom_codec_ctx_t *ctx, aom_codec_iface_t *iface) {
    return aom_codec_dec_init(ctx, iface, NULL, 0);
}

static unsigned char* img_plane(aom_image_t *img, int plane) {
    return img->planes[plane];
}

static int img_stride(aom_image_t *img, int plane) {
    return img->stride[plane];
}

static unsigned int img_width(aom_image_t *img) {
    return img->d_w;
}

static unsigned int img_height(aom_image_t *img) {
    return img->d_h;
}
*/
import "C"

import (
	"fmt"
	"image"
	"unsafe"
)

// decoder wraps a libaom decode context.
type decoder struct {
	codec *C.aom_codec_ctx_t
}

func newDecoder() (*decoder, error) {
	d := &decoder{}
	d.codec = (*C.aom_codec_ctx_t)(C.malloc(C.sizeof_aom_codec_ctx_t))
	if d.codec == nil {
		return nil, fmt.Errorf("allocate decoder context")
	}
	C.memset(unsafe.Pointer(d.codec), 0, C.sizeof_aom_codec_ctx_t)

	if res := C.dec_init(d.codec, C.av1_dx_iface()); res != C.AOM_CODEC_OK {
		C.free(unsafe.Pointer(d.codec))
		d.codec = nil
		return nil, fmt.Errorf("init decoder: %d", res)
	}
	return d, nil
}

// decode feeds one temporal unit to the decoder and returns the
// resulting frame.
func (d *decoder) decode(data []byte) (image.Image, error) {
	if d.codec == nil {
		return nil, fmt.Errorf("decoder closed")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty frame data")
	}

	res := C.aom_codec_decode(
		d.codec,
		(*C.uint8_t)(unsafe.Pointer(&data[0])),
		C.size_t(len(data)),
		nil,
	)
	if res != C.AOM_CODEC_OK {
		return nil, fmt.Errorf("aom decode: %d", res)
	}

	var iter C.aom_codec_iter_t
	img := C.aom_codec_get_frame(d.codec, &iter)
	if img == nil {
		return nil, fmt.Errorf("no frame available")
	}
	return yuvToRGBA(img), nil
}

func (d *decoder) close() {
	if d.codec != nil {
		C.aom_codec_destroy(d.codec)
		C.free(unsafe.Pointer(d.codec))
		d.codec = nil
	}
}

// yuvToRGBA converts a decoded I420 image to RGBA.
func yuvToRGBA(img *C.aom_image_t) *image.RGBA {
	width := int(C.img_width(img))
	height := int(C.img_height(img))

	yPlane := C.img_plane(img, 0)
	uPlane := C.img_plane(img, 1)
	vPlane := C.img_plane(img, 2)

	yStride := int(C.img_stride(img, 0))
	uStride := int(C.img_stride(img, 1))
	vStride := int(C.img_stride(img, 2))

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			yIdx := y*yStride + x
			uIdx := (y/2)*uStride + x/2
			vIdx := (y/2)*vStride + x/2

			yVal := int(*(*C.uchar)(unsafe.Pointer(uintptr(unsafe.Pointer(yPlane)) + uintptr(yIdx))))
			uVal := int(*(*C.uchar)(unsafe.Pointer(uintptr(unsafe.Pointer(uPlane)) + uintptr(uIdx))))
			vVal := int(*(*C.uchar)(unsafe.Pointer(uintptr(unsafe.Pointer(vPlane)) + uintptr(vIdx))))

			c := yVal - 16
			d := uVal - 128
			e := vVal - 128

			idx := y*rgba.Stride + x*4
			rgba.Pix[idx] = uint8(clamp((298*c + 409*e + 128) >> 8))
			rgba.Pix[idx+1] = uint8(clamp((298*c - 100*d - 208*e + 128) >> 8))
			rgba.Pix[idx+2] = uint8(clamp((298*c + 516*d + 128) >> 8))
			rgba.Pix[idx+3] = 255
		}
	}
	return rgba
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
