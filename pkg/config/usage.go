package config

import (
	"fmt"
	"io"

	"github.com/tauraamui/panoexport/pkg/configdef"
)

const usage = `Usage: panoexport -i <stream> [options]

Options:
  -i <path>     input stream (required)
  -o <dir>      output directory, created if missing (default: %[1]s)
  -r <s-e>      frame range, e.g. 0-99 (default: all frames)
  -w <WxH>      panorama resolution (default: %[2]dx%[3]d)
  -t <type>     render type: pano, dome, spherical, rectify-0 .. rectify-5 (default: pano)
  -f <format>   image format: bmp, jpg, jpeg, tiff, png (default: jpg)
  -c <method>   color processing: hq, hq-gpu, edge, near, near-f, down4, down16, mono (default: hq)
  -b <pixels>   blending width (default: %[4]d)
  -s <bool>     software rendering (default: false)
  -k <bool>     anti-aliasing (default: false)
  -a <bool>     falloff correction (default: false)
  -v <value>    falloff correction value (default: %[5].1f)
  -z <bool>     stabilization (default: false)
  -x <type>     export type, only 6processed is recognised (default: panorama)
  -q <string>   rotation, e.g. "Front 10 -Down 90" (default: "Front 0 -Down 0")
  -e <engine>   imaging engine: opencv, synthetic (default: %[6]s)
  -j <path>     record the run in a sqlite journal
  -m <path>     write run metrics to a prometheus textfile
  -h, -?        print this message

Examples:
  panoexport -i ladybug.pgr -r 0-10 -w 4096x2048 -f png
  panoexport -i ladybug.pgr -o frames -x 6processed -c down4
  panoexport -i ladybug.pgr -q "Front 0 -Down 90" -t spherical
`

// PrintUsage writes the command usage to w.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usage,
		configdef.DefaultOutput,
		configdef.DefaultWidth, configdef.DefaultHeight,
		configdef.DefaultBlendingWidth,
		configdef.DefaultFalloffValue,
		configdef.DefaultEngine,
	)
}
