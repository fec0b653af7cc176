// Package terminal previews the LED matrix in a truecolor terminal, two
// character cells per LED so pixels come out roughly square.
package terminal

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/storm-matrix/internal/domain"
	"github.com/gdamore/tcell/v2"
)

// Driver implements engine.Driver on a tcell screen.
type Driver struct {
	width  int
	order  domain.ChannelOrder
	screen tcell.Screen
	onQuit func()
	logger *slog.Logger

	quitOnce sync.Once
	started  bool
	done     chan struct{}
}

// New creates a preview driver for a panel width LEDs wide. Packed values are
// unpacked with order. onQuit runs once when the user presses q, Esc or
// Ctrl-C.
func New(width int, order domain.ChannelOrder, onQuit func(), logger *slog.Logger) (*Driver, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create terminal screen: %w", err)
	}
	return NewWithScreen(screen, width, order, onQuit, logger), nil
}

// NewWithScreen wraps an existing screen, such as a simulation screen.
func NewWithScreen(screen tcell.Screen, width int, order domain.ChannelOrder, onQuit func(), logger *slog.Logger) *Driver {
	if onQuit == nil {
		onQuit = func() {}
	}
	return &Driver{
		width:  width,
		order:  order,
		screen: screen,
		onQuit: onQuit,
		logger: logger,
		done:   make(chan struct{}),
	}
}

func (d *Driver) Init() error {
	if err := d.screen.Init(); err != nil {
		return fmt.Errorf("init terminal screen: %w", err)
	}
	d.screen.HideCursor()
	d.screen.Clear()
	d.started = true
	go d.pollEvents()
	d.logger.Info("terminal preview started", "colors", d.screen.Colors())
	return nil
}

// Render paints one frame. Rows wider than the terminal are clipped.
func (d *Driver) Render(leds []domain.Packed) error {
	for i, v := range leds {
		x, y := 2*(i%d.width), i/d.width
		style := CellStyle(d.order.Unpack(v))
		d.screen.SetContent(x, y, ' ', nil, style)
		d.screen.SetContent(x+1, y, ' ', nil, style)
	}
	d.screen.Show()
	return nil
}

func (d *Driver) Shutdown() error {
	if !d.started {
		return nil
	}
	d.screen.Fini()
	<-d.done
	return nil
}

// CellStyle is the style of one LED cell.
func CellStyle(c domain.Color) tcell.Style {
	return tcell.StyleDefault.Background(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
}

func (d *Driver) pollEvents() {
	defer close(d.done)
	for {
		switch ev := d.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if isQuitKey(ev) {
				d.quitOnce.Do(d.onQuit)
			}
		case *tcell.EventResize:
			d.screen.Sync()
		}
	}
}

func isQuitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}
