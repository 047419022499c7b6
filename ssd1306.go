// Package ssd1306 controls a 128x64 monochrome SSD1306 OLED display via I²C.
//
// See the examples for how to use this package.
package ssd1306

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Display geometry.
const (
	Width      = 128
	Height     = 64
	Pages      = (Height + 7) / 8
	BufferSize = Width * Pages

	// ChunkSize is the number of pixel bytes sent per data transaction.
	ChunkSize = 64

	// DefaultAddr is the usual I²C address of the controller. Some modules
	// use 0x3D.
	DefaultAddr = 0x3C
)

// Flush must never send a partial chunk.
var _ [0]struct{} = [BufferSize % ChunkSize]struct{}{}

var (
	// ErrBusUnavailable is returned by Init when the bus cannot be opened.
	ErrBusUnavailable = errors.New("bus unavailable")
	// ErrTransactionIncomplete is returned by Init, Write, Draw and Halt when
	// fewer bytes than requested were written or the device did not
	// acknowledge.
	ErrTransactionIncomplete = errors.New("transaction incomplete")
)

// Opts is the configuration for the SSD1306 display.
type Opts struct {
	// Addr is the 7-bit I²C address. Zero means DefaultAddr.
	Addr uint16
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Addr: DefaultAddr,
}

// Dev is the device handle for the SSD1306 display.
//
// Dev is not safe for concurrent use.
type Dev struct {
	// Buffer is the frame sent by Flush. See package image1bit for its layout.
	Buffer [BufferSize]byte

	bus  Bus
	addr uint16
}

// New returns a Dev talking to the controller through bus.
//
// opts can be nil to use DefaultOpts. Nothing is sent until Init is called.
func New(bus Bus, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultAddr
	}
	return &Dev{bus: bus, addr: addr}
}

// NewI2C returns a Dev on an already opened periph.io I²C bus.
func NewI2C(b i2c.Bus, opts *Opts) *Dev {
	return New(NewI2CBus(b), opts)
}

// Init opens the bus and sends the initialization sequence.
//
// It must succeed before the other methods are meaningful. On failure the
// display state is undefined and the Dev should not be used further.
func (d *Dev) Init() error {
	if err := d.bus.Open(); err != nil {
		return fmt.Errorf("ssd1306: %w: %w", ErrBusUnavailable, err)
	}
	return d.txInit(initCmds[:])
}

// SetContrast sets the display contrast (0-255).
//
// Transport failures are not reported.
func (d *Dev) SetContrast(level byte) {
	_ = d.tx([]byte{byte(ControlCommand), byte(SetContrast), level})
}

// SetPower turns the display on or off. The GDDRAM content is retained while
// off.
func (d *Dev) SetPower(on bool) {
	_ = d.sendSingle(pick(on, DisplayOff, DisplayOn))
}

// FlipHorizontal mirrors the display left to right.
func (d *Dev) FlipHorizontal(flip bool) {
	_ = d.sendSingle(pick(flip, SegNormal, SegFlipped))
}

// FlipVertical mirrors the display top to bottom.
func (d *Dev) FlipVertical(flip bool) {
	_ = d.sendSingle(pick(flip, ComScanNormal, ComScanFlipped))
}

// Invert swaps lit and dark pixels.
func (d *Dev) Invert(invert bool) {
	_ = d.sendSingle(pick(invert, NormalDisplay, InvertDisplay))
}

// Flush sends the whole Buffer to the display.
//
// Transport failures are not reported. Buffer must not be modified until
// Flush returns.
func (d *Dev) Flush() {
	_ = d.flush()
}

// Image returns an image sharing its pixels with Buffer.
//
// Drawing into it and calling Flush updates the display.
func (d *Dev) Image() *image1bit.VerticalLSB {
	return &image1bit.VerticalLSB{
		Pix:    d.Buffer[:],
		Stride: Width,
		Rect:   d.Bounds(),
	}
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// Draw implements display.Drawer.
//
// src is drawn into Buffer, then the whole Buffer is sent. Unlike Flush, the
// first transport error is returned.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if img, ok := src.(*image1bit.VerticalLSB); ok && r == d.Bounds() && img.Rect == r && sp == (image.Point{}) && len(img.Pix) == BufferSize {
		// Exact size, full frame, image1bit encoding: fast path!
		copy(d.Buffer[:], img.Pix)
	} else {
		draw.Src.Draw(d.Image(), r, src, sp)
	}
	return d.flush()
}

// Write replaces Buffer with pixels and sends it.
//
// The format is the one of image1bit.VerticalLSB.Pix. pixels must be exactly
// BufferSize bytes long.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != BufferSize {
		return 0, fmt.Errorf("ssd1306: invalid pixel stream length; expected %d bytes, got %d bytes", BufferSize, len(pixels))
	}
	copy(d.Buffer[:], pixels)
	if err := d.flush(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Halt implements conn.Resource. It turns the display off.
func (d *Dev) Halt() error {
	return d.sendSingle(DisplayOff)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ssd1306.Dev{%#x, %dx%d}", d.addr, Width, Height)
}

// flush sets the addressing window to the whole display and sends Buffer in
// ChunkSize pieces, one data transaction each. Every chunk is sent even if a
// previous one failed; the first error is returned.
func (d *Dev) flush() error {
	err := d.tx(windowCmds[:])
	for off := 0; off < BufferSize; off += ChunkSize {
		if e := d.tx(dataPrefix[:], d.Buffer[off:off+ChunkSize]); err == nil {
			err = e
		}
	}
	return err
}

var dataPrefix = [...]byte{byte(ControlData)}

// sendSingle sends one opcode with the single command control byte.
func (d *Dev) sendSingle(op Opcode) error {
	return d.tx([]byte{byte(ControlSingle), byte(op)})
}

// tx sends parts as one transaction. The transaction is always ended, even
// after a short write, so the bus is released; the first error is returned.
func (d *Dev) tx(parts ...[]byte) error {
	d.bus.BeginTransmission(d.addr)
	var err error
	for _, p := range parts {
		if e := d.write(p); err == nil {
			err = e
		}
	}
	if e := d.bus.EndTransmission(); err == nil && e != nil {
		err = fmt.Errorf("ssd1306: %w: %w", ErrTransactionIncomplete, e)
	}
	return err
}

// txInit is like tx but a short write abandons the transaction without
// ending it, so that a partial initialization sequence is never committed.
func (d *Dev) txInit(parts ...[]byte) error {
	d.bus.BeginTransmission(d.addr)
	for _, p := range parts {
		if err := d.write(p); err != nil {
			return err
		}
	}
	if err := d.bus.EndTransmission(); err != nil {
		return fmt.Errorf("ssd1306: %w: %w", ErrTransactionIncomplete, err)
	}
	return nil
}

// write stages p in the current transaction.
func (d *Dev) write(p []byte) error {
	n, err := d.bus.Write(p)
	if n != len(p) {
		if err != nil {
			return fmt.Errorf("ssd1306: %w: wrote %d of %d bytes: %w", ErrTransactionIncomplete, n, len(p), err)
		}
		return fmt.Errorf("ssd1306: %w: wrote %d of %d bytes", ErrTransactionIncomplete, n, len(p))
	}
	if err != nil {
		return fmt.Errorf("ssd1306: %w: %w", ErrTransactionIncomplete, err)
	}
	return nil
}
