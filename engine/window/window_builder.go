package window

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
)

// WindowBuilderOption is a functional option for configuring a window before it is created.
type WindowBuilderOption func(s *settings)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(s *settings) {
		s.title = title
	}
}

// WithSize sets the initial window size. Non-positive values are ignored.
//
// Parameters:
//   - width, height: initial size in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(s *settings) {
		if width > 0 {
			s.width = width
		}
		if height > 0 {
			s.height = height
		}
	}
}

// WithSizeLimits bounds interactive resizing. Pass -1 for no limit.
//
// Parameters:
//   - minWidth, minHeight: the smallest allowed size
//   - maxWidth, maxHeight: the largest allowed size
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(s *settings) {
		s.minWidth, s.minHeight = minWidth, minHeight
		s.maxWidth, s.maxHeight = maxWidth, maxHeight
	}
}

// WithEscapeCloses sets whether the escape key closes the window.
func WithEscapeCloses(enabled bool) WindowBuilderOption {
	return func(s *settings) {
		s.escapeCloses = enabled
	}
}

// WithConfig applies the window section of a loaded configuration.
//
// Parameters:
//   - cfg: the window configuration
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithConfig(cfg config.Window) WindowBuilderOption {
	return func(s *settings) {
		if cfg.Title != "" {
			s.title = cfg.Title
		}
		WithSize(cfg.Width, cfg.Height)(s)
	}
}
