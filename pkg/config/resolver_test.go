package config_test

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matryer/is"
	"github.com/tauraamui/panoexport/pkg/config"
	"github.com/tauraamui/panoexport/pkg/configdef"
	"github.com/tauraamui/panoexport/pkg/engine"
)

type stubDefaults struct {
	values configdef.Values
	err    error
}

func (s stubDefaults) Resolve() (configdef.Values, error) {
	return s.values, s.err
}

func resolve(args ...string) (configdef.CommandConfig, error) {
	return config.NewResolver(stubDefaults{values: configdef.Values{
		Engine: configdef.DefaultEngine,
		Output: configdef.DefaultOutput,
	}}).Resolve(args)
}

func defaultPanorama() configdef.PanoramaMode {
	return configdef.PanoramaMode{
		Width:  configdef.DefaultWidth,
		Height: configdef.DefaultHeight,
		Output: engine.OutputPanoramic,
	}
}

func TestResolveWithNoArgumentsIsArgumentError(t *testing.T) {
	is := is.New(t)
	_, err := resolve()
	is.True(errors.Is(err, configdef.ErrArgument))
	is.Equal(err.Error(), "argument error: no arguments provided")
}

func TestResolveWithoutInputIsArgumentError(t *testing.T) {
	is := is.New(t)
	_, err := resolve("-o", "frames")
	is.True(errors.Is(err, configdef.ErrArgument))
	is.Equal(err.Error(), "argument error: input stream path (-i) is required")
}

func TestResolveWithoutOutputFallsBackToDefaultLiteral(t *testing.T) {
	is := is.New(t)
	cfg, err := config.NewResolver(stubDefaults{}).Resolve([]string{"-i", "stream.pgr"})
	is.NoErr(err)
	is.Equal(cfg.Output, "panoImageOutput")
}

func TestResolveHelpRequest(t *testing.T) {
	for _, flag := range []string{"-h", "-?", "--help"} {
		t.Run(flag, func(t *testing.T) {
			is := is.New(t)
			_, err := resolve("-i", "stream.pgr", flag)
			is.True(errors.Is(err, configdef.ErrHelpRequested))
		})
	}
}

func TestResolveAppliesDefaults(t *testing.T) {
	is := is.New(t)
	cfg, err := resolve("-i", "stream.pgr")
	is.NoErr(err)

	want := configdef.CommandConfig{
		Input:         "stream.pgr",
		Output:        configdef.DefaultOutput,
		Range:         configdef.FrameRange{All: true},
		Format:        engine.FileFormatJPG,
		ColorMethod:   engine.ColorMethodHQLinear,
		RenderTag:     "pano",
		BlendingWidth: configdef.DefaultBlendingWidth,
		Render:        engine.RenderOptions{FalloffValue: 1},
		Mode:          defaultPanorama(),
		Engine:        configdef.DefaultEngine,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("resolved config mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveEveryPanoramaFlag(t *testing.T) {
	is := is.New(t)
	cfg, err := resolve(
		"-i", "/data/stream.pgr",
		"-o", "/exports/run-1",
		"-r", "5-20",
		"-w", "4096X2048",
		"-t", "spherical",
		"-f", "PNG",
		"-c", "down16",
		"-b", "64",
		"-s", "TRUE",
		"-k", "true",
		"-a", "True",
		"-v", "0.5",
		"-z", "yes",
		"-q", "Front 10 -Down 90",
		"-e", "synthetic",
		"-j", "/tmp/journal.db",
		"-m", "/tmp/panoexport.prom",
	)
	is.NoErr(err)

	want := configdef.CommandConfig{
		Input:         "/data/stream.pgr",
		Output:        "/exports/run-1",
		Range:         configdef.FrameRange{Start: 5, End: 20},
		Format:        engine.FileFormatPNG,
		FormatTag:     "PNG",
		ColorMethod:   engine.ColorMethodDownsample16,
		ColorTag:      "down16",
		RenderTag:     "spherical",
		BlendingWidth: 64,
		Render: engine.RenderOptions{
			SoftwareRendering: true,
			AntiAliasing:      true,
			FalloffEnabled:    true,
			FalloffValue:      0.5,
			Stabilization:     false,
		},
		Mode: configdef.PanoramaMode{
			Width:    4096,
			Height:   2048,
			Output:   engine.OutputSpherical,
			Rotation: configdef.Rotation{Front: 10, Down: 90},
		},
		Engine:      "synthetic",
		JournalPath: "/tmp/journal.db",
		MetricsPath: "/tmp/panoexport.prom",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("resolved config mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveSixCameraModeIgnoresPanoramaFields(t *testing.T) {
	is := is.New(t)
	cfg, err := resolve("-i", "stream.pgr", "-x", "6Processed", "-w", "800x600", "-q", "Front 4")
	is.NoErr(err)
	is.True(cfg.IsSixCamera())
	is.Equal(cfg.Mode, configdef.SixCameraMode{})
}

func TestResolveUnknownExportTypeKeepsPanoramaMode(t *testing.T) {
	is := is.New(t)
	warnings, reset := captureWarnings()
	defer reset()

	cfg, err := resolve("-i", "stream.pgr", "-x", "6raw")
	is.NoErr(err)
	is.True(!cfg.IsSixCamera())
	is.Equal(*warnings, []string{`Unknown export type "6raw", exporting panoramas`})
}

func TestResolveMalformedResolutionWarnsAndKeepsDefault(t *testing.T) {
	is := is.New(t)
	warnings, reset := captureWarnings()
	defer reset()

	cfg, err := resolve("-i", "stream.pgr", "-w", "huge")
	is.NoErr(err)
	is.Equal(cfg.Mode, defaultPanorama())
	is.Equal(*warnings, []string{`Malformed resolution "huge", keeping 2048x1024`})
}

func TestResolveMalformedRangeWarnsAndKeepsAllFrames(t *testing.T) {
	is := is.New(t)
	warnings, reset := captureWarnings()
	defer reset()

	cfg, err := resolve("-i", "stream.pgr", "-r", "3")
	is.NoErr(err)
	is.Equal(cfg.Range, configdef.FrameRange{All: true})
	is.Equal(*warnings, []string{`Malformed frame range "3", exporting all frames`})
}

func TestResolveMalformedRotationIsArgumentError(t *testing.T) {
	is := is.New(t)
	_, err := resolve("-i", "stream.pgr", "-q", "Front "+strings.Repeat("9", 512))
	is.True(errors.Is(err, configdef.ErrArgument))
}

func TestResolveMalformedNumbersWarnAndKeepDefaults(t *testing.T) {
	is := is.New(t)
	warnings, reset := captureWarnings()
	defer reset()

	cfg, err := resolve("-i", "stream.pgr", "-b", "wide", "-v", "lots")
	is.NoErr(err)
	is.Equal(cfg.BlendingWidth, configdef.DefaultBlendingWidth)
	is.Equal(cfg.Render.FalloffValue, float32(1))
	is.Equal(*warnings, []string{
		`Malformed blending width "wide", keeping 100`,
		`Malformed falloff value "lots", keeping 1.00`,
	})
}

func TestResolveUnknownTagsFallBack(t *testing.T) {
	is := is.New(t)
	warnings, reset := captureWarnings()
	defer reset()

	cfg, err := resolve("-i", "stream.pgr", "-t", "cube", "-f", "gif", "-c", "bilinear")
	is.NoErr(err)
	is.Equal(cfg.Format, engine.FileFormatJPG)
	is.Equal(cfg.ColorMethod, engine.ColorMethodHQLinear)
	is.Equal(cfg.Mode.(configdef.PanoramaMode).Output, engine.OutputPanoramic)
	is.Equal(len(*warnings), 3)
}

func TestResolveRenderTypes(t *testing.T) {
	tests := map[string]engine.OutputType{
		"pano":      engine.OutputPanoramic,
		"dome":      engine.OutputDome,
		"spherical": engine.OutputSpherical,
		"rectify-0": engine.OutputRectifyCam0,
		"rectify-3": engine.OutputRectifyCam3,
		"rectify-5": engine.OutputRectifyCam5,
	}
	for tag, want := range tests {
		t.Run(tag, func(t *testing.T) {
			is := is.New(t)
			cfg, err := resolve("-i", "stream.pgr", "-t", tag)
			is.NoErr(err)
			is.Equal(cfg.Mode.(configdef.PanoramaMode).Output, want)
		})
	}
}

func TestResolveColorMethods(t *testing.T) {
	tests := map[string]engine.ColorMethod{
		"hq":     engine.ColorMethodHQLinear,
		"hq-gpu": engine.ColorMethodHQLinear,
		"edge":   engine.ColorMethodEdgeSensing,
		"near":   engine.ColorMethodNearestNeighborFast,
		"near-f": engine.ColorMethodNearestNeighborFast,
		"down4":  engine.ColorMethodDownsample4,
		"down16": engine.ColorMethodDownsample16,
		"mono":   engine.ColorMethodMono,
	}
	for tag, want := range tests {
		t.Run(tag, func(t *testing.T) {
			is := is.New(t)
			cfg, err := resolve("-i", "stream.pgr", "-c", tag)
			is.NoErr(err)
			is.Equal(cfg.ColorMethod, want)
		})
	}
}

func TestResolveJpegFormatUsesJpgExtension(t *testing.T) {
	is := is.New(t)
	cfg, err := resolve("-i", "stream.pgr", "-f", "jpeg")
	is.NoErr(err)
	is.Equal(cfg.Format.Extension(), "jpg")
}

func TestResolveUnknownFlagAdvancesOneToken(t *testing.T) {
	is := is.New(t)
	warnings, reset := captureWarnings()
	defer reset()

	cfg, err := resolve("-i", "stream.pgr", "-y", "5", "-o", "frames")
	is.NoErr(err)
	is.Equal(cfg.Output, "frames")
	is.Equal(*warnings, []string{
		"Unknown flag -y ignored",
		`Unexpected argument "5" ignored`,
	})
}

func TestResolveUnknownFlagNeverReprocessesConsumedValue(t *testing.T) {
	is := is.New(t)
	warnings, reset := captureWarnings()
	defer reset()

	// the value of -o looks like a flag but belongs to -o
	cfg, err := resolve("-o", "-r", "-y", "-i", "stream.pgr")
	is.NoErr(err)
	is.Equal(cfg.Output, "-r")
	is.Equal(cfg.Range, configdef.FrameRange{All: true})
	is.Equal(*warnings, []string{"Unknown flag -y ignored"})
}

func TestResolveKnownFlagWithoutValueIsSkipped(t *testing.T) {
	is := is.New(t)
	warnings, reset := captureWarnings()
	defer reset()

	cfg, err := resolve("-i", "stream.pgr", "-w")
	is.NoErr(err)
	is.Equal(cfg.Mode, defaultPanorama())
	is.Equal(*warnings, []string{"Missing value for flag -w, skipping"})
}

func TestResolveEngineFromEnvironmentIsOverriddenByFlag(t *testing.T) {
	is := is.New(t)
	os.Setenv("PANOEXPORT_ENGINE", "synthetic")
	defer os.Unsetenv("PANOEXPORT_ENGINE")

	cfg, err := resolve("-i", "stream.pgr")
	is.NoErr(err)
	is.Equal(cfg.Engine, "synthetic")

	cfg, err = resolve("-i", "stream.pgr", "-e", "opencv")
	is.NoErr(err)
	is.Equal(cfg.Engine, "opencv")
}

func TestResolveUsesPersistedDefaults(t *testing.T) {
	is := is.New(t)
	bw := 12
	cfg, err := config.NewResolver(stubDefaults{values: configdef.Values{
		Output:          "/srv/exports",
		Format:          "tiff",
		ColorProcessing: "mono",
		BlendingWidth:   &bw,
		JournalPath:     "/srv/journal.db",
	}}).Resolve([]string{"-i", "stream.pgr", "-f", "bmp"})
	is.NoErr(err)
	is.Equal(cfg.Output, "/srv/exports")
	is.Equal(cfg.Format, engine.FileFormatBMP)
	is.Equal(cfg.ColorMethod, engine.ColorMethodMono)
	is.Equal(cfg.BlendingWidth, 12)
	is.Equal(cfg.JournalPath, "/srv/journal.db")
}

func TestResolveDefaultsFailureIsArgumentError(t *testing.T) {
	is := is.New(t)
	_, err := config.NewResolver(stubDefaults{err: errors.New("parsing configuration error")}).
		Resolve([]string{"-i", "stream.pgr"})
	is.True(errors.Is(err, configdef.ErrArgument))
}

func TestResolveHelpIsHonouredWhenDefaultsAreMalformed(t *testing.T) {
	is := is.New(t)
	_, err := config.NewResolver(stubDefaults{err: errors.New("parsing configuration error")}).
		Resolve([]string{"-h"})
	is.True(errors.Is(err, configdef.ErrHelpRequested))
	is.True(!errors.Is(err, configdef.ErrArgument))
}

func TestResolveHelpAsFlagValueIsNotAHelpRequest(t *testing.T) {
	is := is.New(t)
	cfg, err := resolve("-i", "stream.pgr", "-o", "-h")
	is.NoErr(err)
	is.Equal(cfg.Output, "-h")
}

func TestResolveUnknownEngineWarnsAndUsesDefault(t *testing.T) {
	is := is.New(t)
	warnings, reset := captureWarnings()
	defer reset()

	cfg, err := resolve("-i", "stream.pgr", "-e", "vulkan")
	is.NoErr(err)
	is.Equal(cfg.Engine, configdef.DefaultEngine)
	is.Equal(*warnings, []string{`Unknown engine "vulkan", using opencv`})
}

func TestResolveUnknownEngineFromEnvironmentWarns(t *testing.T) {
	is := is.New(t)
	warnings, reset := captureWarnings()
	defer reset()
	os.Setenv("PANOEXPORT_ENGINE", "metal")
	defer os.Unsetenv("PANOEXPORT_ENGINE")

	cfg, err := resolve("-i", "stream.pgr")
	is.NoErr(err)
	is.Equal(cfg.Engine, configdef.DefaultEngine)
	is.Equal(*warnings, []string{`Unknown engine "metal", using opencv`})
}
