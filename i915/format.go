package i915

import (
	"fmt"

	"github.com/FydeOS-ArcHero/external-minigbm/memutils"
)

// Format is a fourcc pixel format code as used by the rest of the DRM
// ecosystem.
type Format uint32

const (
	FormatARGB8888      Format = 0x34325241 // 'AR24'
	FormatABGR8888      Format = 0x34324241 // 'AB24'
	FormatXRGB8888      Format = 0x34325258 // 'XR24'
	FormatXBGR8888      Format = 0x34324258 // 'XB24'
	FormatARGB2101010   Format = 0x30335241 // 'AR30'
	FormatABGR2101010   Format = 0x30334241 // 'AB30'
	FormatXRGB2101010   Format = 0x30335258 // 'XR30'
	FormatXBGR2101010   Format = 0x30334258 // 'XB30'
	FormatRGB565        Format = 0x36314752 // 'RG16'
	FormatBGR888        Format = 0x34324742 // 'BG24'
	FormatABGR16161616F Format = 0x48344241 // 'AB4H'
	FormatR8            Format = 0x20203852 // 'R8  '
	FormatNV12          Format = 0x3231564e // 'NV12'
	FormatP010          Format = 0x30313050 // 'P010'
	FormatP016          Format = 0x36313050 // 'P016'
	FormatYVU420        Format = 0x32315659 // 'YV12'
	// FormatYVU420Android is Android's packed YV12 variant, which carries its
	// own stride contract on top of the base format.
	FormatYVU420Android Format = 0x37393939 // '9997'
)

func (f Format) String() string {
	b := []byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("Format(0x%08x)", uint32(f))
		}
	}
	return string(b)
}

// planeGeometry describes how one plane of a format samples the image:
// bytes per stored sample and the horizontal/vertical subsampling factors.
type planeGeometry struct {
	bytesPerSample int
	horizSubsample int
	vertSubsample  int
}

var (
	packed1  = []planeGeometry{{1, 1, 1}}
	packed2  = []planeGeometry{{2, 1, 1}}
	packed3  = []planeGeometry{{3, 1, 1}}
	packed4  = []planeGeometry{{4, 1, 1}}
	packed8  = []planeGeometry{{8, 1, 1}}
	biplanar = []planeGeometry{{1, 1, 1}, {2, 2, 2}}
	// P010/P016 store 16 bits per sample; the chroma plane packs a U/V pair.
	biplanar16 = []planeGeometry{{2, 1, 1}, {4, 2, 2}}
	triplanar  = []planeGeometry{{1, 1, 1}, {1, 2, 2}, {1, 2, 2}}
)

func formatPlanes(format Format) []planeGeometry {
	switch format {
	case FormatR8:
		return packed1
	case FormatRGB565:
		return packed2
	case FormatBGR888:
		return packed3
	case FormatARGB8888, FormatABGR8888, FormatXRGB8888, FormatXBGR8888,
		FormatARGB2101010, FormatABGR2101010, FormatXRGB2101010, FormatXBGR2101010:
		return packed4
	case FormatABGR16161616F:
		return packed8
	case FormatNV12:
		return biplanar
	case FormatP010, FormatP016:
		return biplanar16
	case FormatYVU420, FormatYVU420Android:
		return triplanar
	}
	return packed4
}

// NumPlanes reports how many planes the format stores.
func NumPlanes(format Format) int {
	return len(formatPlanes(format))
}

// planeStride is the unaligned bytes-per-row of one plane at the given pixel
// width.
func planeStride(format Format, width, plane int) int {
	geometry := formatPlanes(format)[plane]
	return memutils.DivRoundUp(width, geometry.horizSubsample) * geometry.bytesPerSample
}

// planeHeight is the unaligned row count of one plane at the given pixel
// height.
func planeHeight(format Format, height, plane int) int {
	geometry := formatPlanes(format)[plane]
	return memutils.DivRoundUp(height, geometry.vertSubsample)
}
