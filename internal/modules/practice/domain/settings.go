package domain

import (
	"fmt"
	"strings"

	apperrors "keyloop/internal/platform/errors"
)

const (
	HandBoth  = "both"
	HandLeft  = "left"
	HandRight = "right"

	MinBarsPerSection     = 1
	MaxBarsPerSection     = 16
	DefaultBarsPerSection = 4
)

// Segmentation is the user choice that shapes the section list.
type Segmentation struct {
	Hand           string
	BarsPerSection int
}

func DefaultSegmentation() Segmentation {
	return Segmentation{Hand: HandBoth, BarsPerSection: DefaultBarsPerSection}
}

func NormalizeHand(hand string) (string, error) {
	switch h := strings.ToLower(strings.TrimSpace(hand)); h {
	case "", HandBoth:
		return HandBoth, nil
	case HandLeft, HandRight:
		return h, nil
	default:
		return "", fmt.Errorf("%w: hand %q", apperrors.ErrInvalidInput, hand)
	}
}

func ValidateBars(bars int) error {
	if bars < MinBarsPerSection || bars > MaxBarsPerSection {
		return fmt.Errorf("%w: bars per section must be between %d and %d", apperrors.ErrInvalidInput, MinBarsPerSection, MaxBarsPerSection)
	}
	return nil
}

func ValidateTheme(theme string) (string, error) {
	switch t := strings.ToLower(strings.TrimSpace(theme)); t {
	case "light", "dark":
		return t, nil
	default:
		return "", fmt.Errorf("%w: theme %q", apperrors.ErrInvalidInput, theme)
	}
}
