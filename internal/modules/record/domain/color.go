package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	apperrors "studyhub/internal/platform/errors"
)

type ColorKind int

const (
	ColorHex ColorKind = iota + 1
	ColorNamed
)

var (
	hexPattern   = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	tokenPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
)

// Color is either a literal hex value or a named palette token. The kind is
// decided once when the value enters the system.
type Color struct {
	kind  ColorKind
	value string
}

func HexColor(v string) Color   { return Color{kind: ColorHex, value: strings.ToLower(v)} }
func NamedColor(v string) Color { return Color{kind: ColorNamed, value: v} }

func ParseColor(raw string) (Color, error) {
	v := strings.TrimSpace(raw)
	switch {
	case hexPattern.MatchString(v):
		return HexColor(v), nil
	case tokenPattern.MatchString(v):
		return NamedColor(v), nil
	default:
		return Color{}, fmt.Errorf("%w: color %q is neither hex nor a palette token", apperrors.ErrInvalidInput, raw)
	}
}

func (c Color) Kind() ColorKind { return c.kind }
func (c Color) Value() string   { return c.value }
func (c Color) IsZero() bool    { return c.kind == 0 }

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.value)
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: color must be a string", apperrors.ErrInvalidInput)
	}
	if raw == "" {
		*c = Color{}
		return nil
	}
	parsed, err := ParseColor(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
