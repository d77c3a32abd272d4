package config

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/tauraamui/panoexport/pkg/configdef"
	"github.com/tauraamui/xerror"
)

// Rotation: case insensitive, both clauses optional and in either order.
//
//	rotation = [ "Front" ws+ decimal ] [ ["-"] "Down" ws+ decimal ]
//	decimal  = ["-" | "+"] digit+ ["." digit*]
var (
	frontClause = regexp.MustCompile(`(?i)front\s+([-+]?\d+\.?\d*)`)
	downClause  = regexp.MustCompile(`(?i)-?down\s+([-+]?\d+\.?\d*)`)
)

// Range: "<uint>-<uint>", nothing else.
var frameRangeGrammar = regexp.MustCompile(`^(\d+)-(\d+)$`)

// Resolution: "<int>x<int>" with either case of separator.
var resolutionGrammar = regexp.MustCompile(`^(\d+)[xX](\d+)$`)

// ParseRotation reads pitch (front) and yaw (down) in degrees. Missing
// clauses are zero. A numeral that cannot be represented as a finite
// float is an argument error.
func ParseRotation(s string) (configdef.Rotation, error) {
	var (
		r   configdef.Rotation
		err error
	)
	if m := frontClause.FindStringSubmatch(s); m != nil {
		if r.Front, err = parseAngle("Front", m[1]); err != nil {
			return configdef.Rotation{}, err
		}
	}
	if m := downClause.FindStringSubmatch(s); m != nil {
		if r.Down, err = parseAngle("Down", m[1]); err != nil {
			return configdef.Rotation{}, err
		}
	}
	return r, nil
}

func parseAngle(clause, numeral string) (float64, error) {
	v, err := strconv.ParseFloat(numeral, 64)
	if err != nil {
		return 0, xerror.Errorf("%w: malformed %s rotation %q: %w", configdef.ErrArgument, clause, numeral, errors.Unwrap(err))
	}
	return v, nil
}

// ParseFrameRange reports false for anything other than two unsigned
// integers joined by a single dash.
func ParseFrameRange(s string) (configdef.FrameRange, bool) {
	m := frameRangeGrammar.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return configdef.FrameRange{}, false
	}
	start, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return configdef.FrameRange{}, false
	}
	end, err := strconv.ParseUint(m[2], 10, 32)
	if err != nil {
		return configdef.FrameRange{}, false
	}
	return configdef.FrameRange{Start: uint(start), End: uint(end)}, true
}

// ParseResolution reports false unless both dimensions are positive.
func ParseResolution(s string) (int, int, bool) {
	m := resolutionGrammar.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}
	w, err := strconv.Atoi(m[1])
	if err != nil || w <= 0 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(m[2])
	if err != nil || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

func parseBool(s string) bool {
	return strings.EqualFold(s, "true")
}
