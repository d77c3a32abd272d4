package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/tauraamui/panoexport/internal/config"
	"github.com/tauraamui/panoexport/pkg/configdef"
	"github.com/tauraamui/panoexport/pkg/engine"
	"github.com/tauraamui/panoexport/pkg/log"
	"github.com/tauraamui/xerror"
)

const engineEnvVar = "PANOEXPORT_ENGINE"

type Resolver interface {
	Resolve(args []string) (configdef.CommandConfig, error)
}

func DefaultResolver() Resolver {
	return defaultResolver{defaults: config.DefaultResolver()}
}

// NewResolver resolves arguments on top of the given persisted defaults.
func NewResolver(defaults configdef.Resolver) Resolver {
	return defaultResolver{defaults: defaults}
}

type defaultResolver struct {
	defaults configdef.Resolver
}

func (d defaultResolver) Resolve(args []string) (configdef.CommandConfig, error) {
	if len(args) == 0 {
		return configdef.CommandConfig{}, xerror.Errorf("%w: no arguments provided", configdef.ErrArgument)
	}

	if helpRequested(args) {
		return configdef.CommandConfig{}, configdef.ErrHelpRequested
	}

	values, err := d.defaults.Resolve()
	if err != nil {
		return configdef.CommandConfig{}, xerror.Errorf("%w: unable to load defaults: %w", configdef.ErrArgument, err)
	}

	b := newBuilder(values)
	if env := os.Getenv(engineEnvVar); len(env) > 0 {
		b.engine = env
	}

	for i := 0; i < len(args); i++ {
		tok := args[i]
		if isHelp(tok) {
			return configdef.CommandConfig{}, configdef.ErrHelpRequested
		}
		if !isFlag(tok) {
			log.Warn("Unexpected argument %q ignored", tok)
			continue
		}
		apply, known := flagSetters[tok]
		if !known {
			log.Warn("Unknown flag %s ignored", tok)
			continue
		}
		if i+1 >= len(args) {
			log.Warn("Missing value for flag %s, skipping", tok)
			continue
		}
		i++
		if err := apply(b, args[i]); err != nil {
			return configdef.CommandConfig{}, err
		}
	}

	return b.build()
}

// helpRequested walks args the way Resolve does, so a flag value that
// happens to read as a help flag is not mistaken for one.
func helpRequested(args []string) bool {
	for i := 0; i < len(args); i++ {
		if isHelp(args[i]) {
			return true
		}
		if _, known := flagSetters[args[i]]; known {
			i++
		}
	}
	return false
}

func isFlag(tok string) bool {
	return len(tok) >= 2 && tok[0] == '-'
}

func isHelp(tok string) bool {
	return tok == "-h" || tok == "-?" || tok == "--help"
}

type builder struct {
	input, output string
	frames        configdef.FrameRange
	width, height int
	renderTag     string
	formatTag     string
	colorTag      string
	blending      int
	render        engine.RenderOptions
	exportTag     string
	rotation      configdef.Rotation
	engine        string
	journal       string
	metrics       string
}

func newBuilder(v configdef.Values) *builder {
	b := builder{
		output:    v.Output,
		frames:    configdef.FrameRange{All: true},
		width:     configdef.DefaultWidth,
		height:    configdef.DefaultHeight,
		renderTag: "pano",
		formatTag: v.Format,
		colorTag:  v.ColorProcessing,
		blending:  configdef.DefaultBlendingWidth,
		render:    engine.RenderOptions{FalloffValue: configdef.DefaultFalloffValue},
		engine:    v.Engine,
		journal:   v.JournalPath,
		metrics:   v.MetricsPath,
	}
	if v.BlendingWidth != nil {
		b.blending = *v.BlendingWidth
	}
	return &b
}

var flagSetters = map[string]func(*builder, string) error{
	"-i": func(b *builder, v string) error { b.input = v; return nil },
	"-o": func(b *builder, v string) error { b.output = v; return nil },
	"-r": func(b *builder, v string) error {
		r, ok := ParseFrameRange(v)
		if !ok {
			log.Warn("Malformed frame range %q, exporting all frames", v)
			return nil
		}
		b.frames = r
		return nil
	},
	"-w": func(b *builder, v string) error {
		w, h, ok := ParseResolution(v)
		if !ok {
			log.Warn("Malformed resolution %q, keeping %dx%d", v, b.width, b.height)
			return nil
		}
		b.width, b.height = w, h
		return nil
	},
	"-t": func(b *builder, v string) error { b.renderTag = v; return nil },
	"-f": func(b *builder, v string) error { b.formatTag = v; return nil },
	"-c": func(b *builder, v string) error { b.colorTag = v; return nil },
	"-b": func(b *builder, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			log.Warn("Malformed blending width %q, keeping %d", v, b.blending)
			return nil
		}
		b.blending = n
		return nil
	},
	"-s": func(b *builder, v string) error { b.render.SoftwareRendering = parseBool(v); return nil },
	"-k": func(b *builder, v string) error { b.render.AntiAliasing = parseBool(v); return nil },
	"-a": func(b *builder, v string) error { b.render.FalloffEnabled = parseBool(v); return nil },
	"-z": func(b *builder, v string) error { b.render.Stabilization = parseBool(v); return nil },
	"-v": func(b *builder, v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
		if err != nil {
			log.Warn("Malformed falloff value %q, keeping %.2f", v, b.render.FalloffValue)
			return nil
		}
		b.render.FalloffValue = float32(f)
		return nil
	},
	"-x": func(b *builder, v string) error { b.exportTag = v; return nil },
	"-q": func(b *builder, v string) error {
		r, err := ParseRotation(v)
		if err != nil {
			return err
		}
		b.rotation = r
		return nil
	},
	"-e": func(b *builder, v string) error { b.engine = v; return nil },
	"-j": func(b *builder, v string) error { b.journal = v; return nil },
	"-m": func(b *builder, v string) error { b.metrics = v; return nil },
}

func (b *builder) build() (configdef.CommandConfig, error) {
	if len(b.input) == 0 {
		return configdef.CommandConfig{}, xerror.Errorf("%w: input stream path (-i) is required", configdef.ErrArgument)
	}
	if len(b.output) == 0 {
		b.output = configdef.DefaultOutput
	}
	if !configdef.KnownEngine(b.engine) {
		if len(b.engine) > 0 {
			log.Warn("Unknown engine %q, using %s", b.engine, configdef.DefaultEngine)
		}
		b.engine = configdef.DefaultEngine
	}
	if b.blending < 0 {
		log.Warn("Blending width %d is negative, using %d", b.blending, configdef.DefaultBlendingWidth)
		b.blending = configdef.DefaultBlendingWidth
	}

	cfg := configdef.CommandConfig{
		Input:         b.input,
		Output:        b.output,
		Range:         b.frames,
		Format:        fileFormat(b.formatTag),
		FormatTag:     b.formatTag,
		ColorMethod:   colorMethod(b.colorTag),
		ColorTag:      b.colorTag,
		RenderTag:     b.renderTag,
		BlendingWidth: b.blending,
		Render:        b.render,
		Engine:        b.engine,
		JournalPath:   b.journal,
		MetricsPath:   b.metrics,
	}

	if isSixProcessed(b.exportTag) {
		cfg.Mode = configdef.SixCameraMode{}
	} else {
		if len(b.exportTag) > 0 {
			log.Warn("Unknown export type %q, exporting panoramas", b.exportTag)
		}
		cfg.Mode = configdef.PanoramaMode{
			Width:    b.width,
			Height:   b.height,
			Output:   outputType(b.renderTag),
			Rotation: b.rotation,
		}
	}

	if err := cfg.RunValidate(); err != nil {
		return configdef.CommandConfig{}, xerror.Errorf("%w: %w", configdef.ErrArgument, err)
	}
	return cfg, nil
}

func isSixProcessed(tag string) bool {
	return strings.EqualFold(tag, "6processed")
}

func outputType(tag string) engine.OutputType {
	switch t := strings.ToLower(tag); t {
	case "pano", "":
		return engine.OutputPanoramic
	case "dome":
		return engine.OutputDome
	case "spherical":
		return engine.OutputSpherical
	default:
		if strings.HasPrefix(t, "rectify-") {
			if n, err := strconv.Atoi(strings.TrimPrefix(t, "rectify-")); err == nil && n >= 0 && n < engine.NumCameras {
				return engine.OutputRectifyCam0 + engine.OutputType(n)
			}
		}
	}
	log.Warn("Unknown render type %q, rendering panoramas", tag)
	return engine.OutputPanoramic
}

func fileFormat(tag string) engine.FileFormat {
	switch strings.ToLower(tag) {
	case "jpg", "jpeg", "":
		return engine.FileFormatJPG
	case "bmp":
		return engine.FileFormatBMP
	case "tiff":
		return engine.FileFormatTIFF
	case "png":
		return engine.FileFormatPNG
	}
	log.Warn("Unknown output format %q, writing jpg", tag)
	return engine.FileFormatJPG
}

func colorMethod(tag string) engine.ColorMethod {
	switch strings.ToLower(tag) {
	case "hq", "hq-gpu", "":
		return engine.ColorMethodHQLinear
	case "edge":
		return engine.ColorMethodEdgeSensing
	case "near", "near-f":
		return engine.ColorMethodNearestNeighborFast
	case "down4":
		return engine.ColorMethodDownsample4
	case "down16":
		return engine.ColorMethodDownsample16
	case "mono":
		return engine.ColorMethodMono
	}
	log.Warn("Unknown color processing method %q, using hq", tag)
	return engine.ColorMethodHQLinear
}
