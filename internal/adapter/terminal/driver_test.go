package terminal_test

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/storm-matrix/internal/adapter/terminal"
	"github.com/couchcryptid/storm-matrix/internal/domain"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimDriver(t *testing.T, width int, order domain.ChannelOrder, onQuit func()) (*terminal.Driver, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	d := terminal.NewWithScreen(screen, width, order, onQuit, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, d.Init())
	screen.SetSize(80, 24)
	t.Cleanup(func() { _ = d.Shutdown() })
	return d, screen
}

func TestDriver_RenderPaintsTwoCellsPerLED(t *testing.T) {
	d, screen := newSimDriver(t, 3, domain.OrderGBR, nil)

	red := domain.Color{R: 200, G: 10, B: 20}
	blue := domain.Color{B: 255}
	leds := []domain.Packed{
		domain.OrderGBR.Pack(red), 0, 0,
		0, 0, domain.OrderGBR.Pack(blue),
	}
	require.NoError(t, d.Render(leds))

	tests := []struct {
		x, y int
		want domain.Color
	}{
		{x: 0, y: 0, want: red},
		{x: 1, y: 0, want: red},
		{x: 2, y: 0, want: domain.Black},
		{x: 4, y: 1, want: blue},
		{x: 5, y: 1, want: blue},
	}
	for _, tt := range tests {
		_, _, style, _ := screen.GetContent(tt.x, tt.y)
		_, bg, _ := style.Decompose()
		r, g, b := bg.RGB()
		assert.Equal(t, tt.want, domain.RGB(int(r), int(g), int(b)), "cell %d,%d", tt.x, tt.y)
	}
}

func TestCellStyle(t *testing.T) {
	_, bg, _ := terminal.CellStyle(domain.Color{R: 1, G: 2, B: 3}).Decompose()
	r, g, b := bg.RGB()
	assert.Equal(t, []int32{1, 2, 3}, []int32{r, g, b})
}

func TestDriver_QuitKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		ch   rune
		mod  tcell.ModMask
	}{
		{name: "q", key: tcell.KeyRune, ch: 'q'},
		{name: "escape", key: tcell.KeyEscape},
		{name: "ctrl-c", key: tcell.KeyCtrlC, mod: tcell.ModCtrl},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var quits atomic.Int32
			_, screen := newSimDriver(t, 18, domain.OrderRGB, func() { quits.Add(1) })

			screen.InjectKey(tt.key, tt.ch, tt.mod)
			screen.InjectKey(tt.key, tt.ch, tt.mod)

			require.Eventually(t, func() bool { return quits.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
			time.Sleep(20 * time.Millisecond)
			assert.Equal(t, int32(1), quits.Load(), "quit runs once")
		})
	}
}

func TestDriver_OtherKeysIgnored(t *testing.T) {
	var quits atomic.Int32
	_, screen := newSimDriver(t, 18, domain.OrderRGB, func() { quits.Add(1) })

	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	time.Sleep(50 * time.Millisecond)

	assert.Zero(t, quits.Load())
}

func TestDriver_ShutdownWithoutInit(t *testing.T) {
	d := terminal.NewWithScreen(tcell.NewSimulationScreen("UTF-8"), 18, domain.OrderRGB, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, d.Shutdown())
}
