// Package epd drives a UC8159-class 7-color e-paper panel (Inky
// Impression) over SPI. The panel refresh is slow (~30 s) and blocking,
// which the single-flow frame cycle tolerates by design.
package epd

import (
	"fmt"
	"image"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// UC8159 command set (subset used here).
const (
	cmdPSR  = 0x00 // panel setting
	cmdPWR  = 0x01 // power setting
	cmdPOF  = 0x02 // power off
	cmdPON  = 0x04 // power on
	cmdBTST = 0x06 // booster soft start
	cmdDSLP = 0x07 // deep sleep
	cmdDTM1 = 0x10 // data start transmission
	cmdDRF  = 0x12 // display refresh
	cmdIPC  = 0x13 // image process
	cmdPLL  = 0x30 // PLL control
	cmdTSE  = 0x41 // temperature sensor enable
	cmdCDI  = 0x50 // vcom and data interval
	cmdTCON = 0x60 // gate/source non-overlap
	cmdTRES = 0x61 // resolution setting
	cmdPWS  = 0xE3 // power saving
)

// Default Raspberry Pi wiring for an Inky Impression HAT.
const (
	DefaultSPIPort  = "SPI0.0"
	DefaultDCPin    = "GPIO22"
	DefaultResetPin = "GPIO27"
	DefaultBusyPin  = "GPIO17"
)

// palette holds the seven ink colors the panel can physically show, in
// controller index order.
var palette = [][3]uint8{
	{0, 0, 0},       // black
	{255, 255, 255}, // white
	{0, 255, 0},     // green
	{0, 0, 255},     // blue
	{255, 0, 0},     // red
	{255, 255, 0},   // yellow
	{255, 140, 0},   // orange
}

// Opts configures the panel geometry.
type Opts struct {
	Width  int
	Height int
}

// Dev is an open handle to the panel.
type Dev struct {
	c     spi.Conn
	dc    gpio.PinIO
	reset gpio.PinIO
	busy  gpio.PinIO
	w, h  int
}

// Open initializes the host, opens the default SPI port and GPIO pins and
// returns a ready panel. This is the production entry point; NewSPI exists
// for callers that manage buses themselves.
func Open(width, height int) (*Dev, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("epd: host init: %w", err)
	}
	port, err := spireg.Open(DefaultSPIPort)
	if err != nil {
		return nil, fmt.Errorf("epd: opening %s: %w", DefaultSPIPort, err)
	}
	dc := gpioreg.ByName(DefaultDCPin)
	reset := gpioreg.ByName(DefaultResetPin)
	busy := gpioreg.ByName(DefaultBusyPin)
	if dc == nil || reset == nil || busy == nil {
		return nil, fmt.Errorf("epd: gpio pins %s/%s/%s not found",
			DefaultDCPin, DefaultResetPin, DefaultBusyPin)
	}
	return NewSPI(port, dc, reset, busy, &Opts{Width: width, Height: height})
}

// NewSPI opens the panel on the given SPI port and control pins.
func NewSPI(p spi.Port, dc, reset, busy gpio.PinIO, opts *Opts) (*Dev, error) {
	if opts == nil || opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("epd: invalid panel dimensions")
	}
	c, err := p.Connect(3*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("epd: spi connect: %w", err)
	}
	if err := dc.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("epd: dc pin: %w", err)
	}
	if err := busy.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("epd: busy pin: %w", err)
	}
	d := &Dev{c: c, dc: dc, reset: reset, busy: busy, w: opts.Width, h: opts.Height}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Size returns the panel resolution.
func (d *Dev) Size() (int, int) { return d.w, d.h }

// Push quantizes the frame to the ink palette and refreshes the panel.
// Blocks until the refresh completes.
func (d *Dev) Push(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != d.w || b.Dy() != d.h {
		return fmt.Errorf("epd: frame is %dx%d, panel is %dx%d", b.Dx(), b.Dy(), d.w, d.h)
	}

	buf := packFrame(img)

	if err := d.sendCommand(cmdDTM1, nil); err != nil {
		return err
	}
	if err := d.sendData(buf); err != nil {
		return err
	}
	if err := d.sendCommand(cmdPON, nil); err != nil {
		return err
	}
	if err := d.waitIdle(40 * time.Second); err != nil {
		return err
	}
	if err := d.sendCommand(cmdDRF, nil); err != nil {
		return err
	}
	if err := d.waitIdle(40 * time.Second); err != nil {
		return err
	}
	if err := d.sendCommand(cmdPOF, nil); err != nil {
		return err
	}
	return d.waitIdle(10 * time.Second)
}

// Halt puts the panel into deep sleep. Call on shutdown; a hardware reset
// wakes it.
func (d *Dev) Halt() error {
	return d.sendCommand(cmdDSLP, []byte{0xA5})
}

func (d *Dev) init() error {
	if err := d.hwReset(); err != nil {
		return err
	}
	w, h := d.w, d.h
	steps := []struct {
		cmd  byte
		data []byte
	}{
		{cmdTRES, []byte{byte(w >> 8), byte(w), byte(h >> 8), byte(h)}},
		{cmdPSR, []byte{0xE3, 0x08}},
		{cmdPWR, []byte{0x37, 0x00, 0x23, 0x23}},
		{cmdIPC, []byte{0x00}},
		{cmdPLL, []byte{0x3C}},
		{cmdTSE, []byte{0x00}},
		{cmdCDI, []byte{0x37}},
		{cmdTCON, []byte{0x22}},
		{cmdBTST, []byte{0xC7, 0xC7, 0x1D}},
		{cmdPWS, []byte{0xAA}},
	}
	for _, s := range steps {
		if err := d.sendCommand(s.cmd, s.data); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dev) hwReset() error {
	if d.reset == nil {
		return nil
	}
	if err := d.reset.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	if err := d.reset.Out(gpio.High); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	return d.waitIdle(2 * time.Second)
}

func (d *Dev) sendCommand(cmd byte, data []byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("epd: command %#02x: %w", cmd, err)
	}
	if len(data) == 0 {
		return nil
	}
	return d.sendData(data)
}

// sendData transmits payload bytes in chunks below the common 4096-byte
// SPI transfer limit.
func (d *Dev) sendData(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	const chunk = 4096
	for len(data) > 0 {
		n := len(data)
		if n > chunk {
			n = chunk
		}
		if err := d.c.Tx(data[:n], nil); err != nil {
			return fmt.Errorf("epd: data: %w", err)
		}
		data = data[n:]
	}
	return nil
}

// waitIdle polls the busy line until the controller releases it. Busy is
// active low on the UC8159.
func (d *Dev) waitIdle(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if d.busy.Read() == gpio.High {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("epd: busy timeout after %s", timeout)
}

// packFrame packs a frame into the controller's wire format: two ink
// indices per byte, high nibble first, rows padded to a whole byte when
// the width is odd.
func packFrame(img image.Image) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	buf := make([]byte, 0, (w+1)/2*h)
	var cur byte
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			idx := nearestInk(img.At(x, y).RGBA())
			if (x-b.Min.X)%2 == 0 {
				cur = idx << 4
			} else {
				buf = append(buf, cur|idx)
			}
		}
		if w%2 != 0 {
			buf = append(buf, cur)
		}
	}
	return buf
}

// nearestInk maps a pixel to the closest palette entry by squared RGB
// distance. Fine color fidelity is bounded by the seven physical inks, so
// a simple metric is enough.
func nearestInk(r, g, b, _ uint32) byte {
	r8, g8, b8 := int(r>>8), int(g>>8), int(b>>8)
	best, bestDist := 0, 1<<31-1
	for i, p := range palette {
		dr, dg, db := r8-int(p[0]), g8-int(p[1]), b8-int(p[2])
		dist := dr*dr + dg*dg + db*db
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return byte(best)
}
