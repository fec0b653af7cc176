//go:build !ws281x

package ws281x

import (
	"log/slog"

	"github.com/couchcryptid/storm-matrix/internal/domain"
)

// Driver is a placeholder in builds without the C library.
type Driver struct {
	opts Options
}

func New(opts Options, _ *slog.Logger) *Driver {
	return &Driver{opts: opts}
}

func (d *Driver) Init() error { return ErrUnsupported }
func (d *Driver) Render(_ []domain.Packed) error { return ErrUnsupported }
func (d *Driver) Shutdown() error { return nil }
