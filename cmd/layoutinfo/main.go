// layoutinfo resolves the physical layout for a buffer request described in a
// YAML file and prints the result as JSON.
//
// Usage:
//
//	layoutinfo request.yaml
//
// Example request:
//
//	device_id: 0x9A49
//	has_llc: true
//	format: NV12
//	width: 1920
//	height: 1080
//	usage: [HWVideoDecoder]
package main

import (
	"fmt"
	"os"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"

	"github.com/FydeOS-ArcHero/external-minigbm/i915"
)

type request struct {
	DeviceID           uint16 `yaml:"device_id"`
	HasLLC             bool   `yaml:"has_llc"`
	DisableCompression bool   `yaml:"disable_compression"`

	Format    string   `yaml:"format"`
	Width     int      `yaml:"width"`
	Height    int      `yaml:"height"`
	Usage     []string `yaml:"usage"`
	Modifiers []string `yaml:"modifiers"`
}

var formatNames = map[string]i915.Format{
	"ARGB8888":      i915.FormatARGB8888,
	"ABGR8888":      i915.FormatABGR8888,
	"XRGB8888":      i915.FormatXRGB8888,
	"XBGR8888":      i915.FormatXBGR8888,
	"ARGB2101010":   i915.FormatARGB2101010,
	"ABGR2101010":   i915.FormatABGR2101010,
	"XRGB2101010":   i915.FormatXRGB2101010,
	"XBGR2101010":   i915.FormatXBGR2101010,
	"RGB565":        i915.FormatRGB565,
	"BGR888":        i915.FormatBGR888,
	"ABGR16161616F": i915.FormatABGR16161616F,
	"R8":            i915.FormatR8,
	"NV12":          i915.FormatNV12,
	"P010":          i915.FormatP010,
	"P016":          i915.FormatP016,
	"YVU420":        i915.FormatYVU420,
	"YVU420Android": i915.FormatYVU420Android,
}

var usageNames = map[string]i915.UseFlags{
	"Scanout":        i915.UseScanout,
	"Rendering":      i915.UseRendering,
	"Texture":        i915.UseTexture,
	"Linear":         i915.UseLinear,
	"SWReadOften":    i915.UseSWReadOften,
	"SWReadRarely":   i915.UseSWReadRarely,
	"SWWriteOften":   i915.UseSWWriteOften,
	"SWWriteRarely":  i915.UseSWWriteRarely,
	"CameraRead":     i915.UseCameraRead,
	"CameraWrite":    i915.UseCameraWrite,
	"HWVideoDecoder": i915.UseHWVideoDecoder,
	"HWVideoEncoder": i915.UseHWVideoEncoder,
	"RenderScript":   i915.UseRenderScript,
	"Protected":      i915.UseProtected,
}

var modifierNames = map[string]i915.Modifier{
	"Linear":    i915.ModifierLinear,
	"XTiled":    i915.ModifierXTiled,
	"YTiled":    i915.ModifierYTiled,
	"YTiledCCS": i915.ModifierYTiledCCS,
}

func loadRequest(path string) (*request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}

	var req request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request file: %w", err)
	}
	return &req, nil
}

func run(path string) error {
	req, err := loadRequest(path)
	if err != nil {
		return err
	}

	format, ok := formatNames[req.Format]
	if !ok {
		return fmt.Errorf("unknown format %q", req.Format)
	}

	var use i915.UseFlags
	for _, name := range req.Usage {
		bit, ok := usageNames[name]
		if !ok {
			return fmt.Errorf("unknown usage flag %q", name)
		}
		use |= bit
	}

	var modifiers []i915.Modifier
	for _, name := range req.Modifiers {
		modifier, ok := modifierNames[name]
		if !ok {
			return fmt.Errorf("unknown modifier %q", name)
		}
		modifiers = append(modifiers, modifier)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr))
	profile := i915.NewDeviceProfile(req.DeviceID, req.HasLLC)
	resolver := i915.NewResolver(logger, profile, i915.ResolverOptions{
		DisableCompression: req.DisableCompression,
	})

	layout, err := resolver.ResolveLayout(format, req.Width, req.Height, use, modifiers)
	if err != nil {
		return err
	}

	writer := jwriter.NewWriter()
	obj := writer.Object()
	layout.PrintJSON(&obj)
	obj.End()
	if writer.Error() != nil {
		return writer.Error()
	}

	fmt.Println(string(writer.Bytes()))
	return nil
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <request.yaml>\n", os.Args[0])
		os.Exit(2)
	}

	if err := run(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
