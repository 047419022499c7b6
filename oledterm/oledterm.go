// Package oledterm emulates a 128x64 SSD1306 panel on an ANSI terminal.
//
// Panel implements ssd1306.Bus: it decodes the I²C transactions the driver
// sends, keeps its own copy of the controller state and GDDRAM, and renders
// what the glass would show using ANSI 256 color codes.
//
// Useful to develop screens without the hardware, and to check the exact
// bytes the driver sends.
package oledterm

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/flavioheleno/ssd1306"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// Opts represents the options available for the emulated panel.
type Opts struct {
	// W receives the rendering. Defaults to a colorable stdout.
	W io.Writer
	// Palette defaults to ansi256.Default.
	Palette *ansi256.Palette
	// Lit is the color of a lit pixel at maximum contrast. Defaults to white.
	Lit color.NRGBA
	// Addr is the address the panel answers to. Defaults to
	// ssd1306.DefaultAddr.
	Addr uint16

	_ struct{}
}

// Panel is an emulated SSD1306 panel.
type Panel struct {
	w       io.Writer
	palette ansi256.Palette
	lit     color.NRGBA
	addr    uint16

	open     bool
	txAddr   uint16
	tx       []byte
	rendered bool
	buf      bytes.Buffer

	// Controller state.
	ram        [ssd1306.BufferSize]byte
	on         bool
	chargePump bool
	inverted   bool
	segRemap   bool // column 127 mapped to SEG0
	comRemap   bool // COM scan from COM[N-1] to COM0
	contrast   byte
	multiplex  byte
	mode       ssd1306.Opcode

	colStart, colEnd   int
	pageStart, pageEnd int
	col, page          int
}

// New returns a Panel in its power on reset state.
func New(opts *Opts) *Panel {
	if opts == nil {
		opts = &Opts{}
	}
	p := &Panel{
		w:         opts.W,
		lit:       opts.Lit,
		addr:      opts.Addr,
		colEnd:    ssd1306.Width - 1,
		pageEnd:   ssd1306.Pages - 1,
		contrast:  0x7F,
		multiplex: ssd1306.Height - 1,
		mode:      pageAddressing,
	}
	if p.w == nil {
		p.w = colorable.NewColorableStdout()
	}
	pal := opts.Palette
	if pal == nil {
		pal = ansi256.Default
	}
	p.palette = *pal
	if p.lit == (color.NRGBA{}) {
		p.lit = color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}
	}
	if p.addr == 0 {
		p.addr = ssd1306.DefaultAddr
	}
	return p
}

func (p *Panel) String() string {
	return fmt.Sprintf("oledterm.Panel{%#x}", p.addr)
}

// Open implements ssd1306.Bus.
func (p *Panel) Open() error {
	p.open = true
	return nil
}

// BeginTransmission implements ssd1306.Bus.
func (p *Panel) BeginTransmission(addr uint16) {
	p.txAddr = addr
	p.tx = p.tx[:0]
}

// Write implements ssd1306.Bus.
func (p *Panel) Write(b []byte) (int, error) {
	p.tx = append(p.tx, b...)
	return len(b), nil
}

// EndTransmission implements ssd1306.Bus.
//
// It fails when the bus was not opened, nothing answers at the address, or
// the transaction is malformed.
func (p *Panel) EndTransmission() error {
	if !p.open {
		return errors.New("oledterm: bus is not open")
	}
	if p.txAddr != p.addr {
		return fmt.Errorf("oledterm: no device at address %#x", p.txAddr)
	}
	tx := p.tx
	p.tx = p.tx[:0]
	if len(tx) == 0 {
		return nil
	}
	switch ssd1306.Opcode(tx[0]) {
	case ssd1306.ControlCommand:
		return p.commands(tx[1:])
	case ssd1306.ControlSingle:
		if len(tx) != 2 {
			return fmt.Errorf("oledterm: single command frame with %d command bytes", len(tx)-1)
		}
		return p.commands(tx[1:])
	case ssd1306.ControlData:
		p.data(tx[1:])
		return nil
	default:
		return fmt.Errorf("oledterm: invalid control byte %#02x", tx[0])
	}
}

// Pixel reports whether the pixel at (x, y) of the glass is lit.
func (p *Panel) Pixel(x, y int) bool {
	if x < 0 || x >= ssd1306.Width || y < 0 || y >= ssd1306.Height {
		return false
	}
	if !p.on || !p.chargePump {
		return false
	}
	col, row := x, y
	if !p.segRemap {
		col = ssd1306.Width - 1 - x
	}
	if !p.comRemap {
		row = ssd1306.Height - 1 - y
	}
	if row > int(p.multiplex) {
		return false
	}
	set := p.ram[(row/8)*ssd1306.Width+col]&(1<<uint(row&7)) != 0
	return set != p.inverted
}

// RAM returns a copy of the emulated GDDRAM.
func (p *Panel) RAM() [ssd1306.BufferSize]byte {
	return p.ram
}

// Powered reports whether the display is on.
func (p *Panel) Powered() bool {
	return p.on
}

// Contrast returns the current contrast level.
func (p *Panel) Contrast() byte {
	return p.contrast
}

// Inverted reports whether the display is in inverse mode.
func (p *Panel) Inverted() bool {
	return p.inverted
}

// Flipped reports whether the glass is mirrored horizontally and vertically.
func (p *Panel) Flipped() (horizontal, vertical bool) {
	return !p.segRemap, !p.comRemap
}

// Render draws the glass to the writer, replacing the previous rendering.
func (p *Panel) Render() error {
	p.buf.Reset()
	if p.rendered {
		fmt.Fprintf(&p.buf, "\033[%dA", ssd1306.Height)
	}
	dark := color.NRGBA{0, 0, 0, 0xFF}
	lit := p.litColor()
	for y := 0; y < ssd1306.Height; y++ {
		_, _ = p.buf.WriteString("\r\033[0m")
		for x := 0; x < ssd1306.Width; x++ {
			c := dark
			if p.Pixel(x, y) {
				c = lit
			}
			_, _ = io.WriteString(&p.buf, p.palette.Block(c))
		}
		_, _ = p.buf.WriteString("\033[0m\n")
	}
	p.rendered = true
	_, err := p.buf.WriteTo(p.w)
	return err
}

// litColor scales the lit color with the contrast. Contrast 0 is still
// faintly visible, as on the real glass.
func (p *Panel) litColor() color.NRGBA {
	level := 64 + int(p.contrast)*191/255
	scale := func(v uint8) uint8 {
		return uint8(int(v) * level / 255)
	}
	return color.NRGBA{scale(p.lit.R), scale(p.lit.G), scale(p.lit.B), 0xFF}
}

const pageAddressing ssd1306.Opcode = 0x02

// params is the number of parameter bytes following each command.
var params = map[ssd1306.Opcode]int{
	ssd1306.SetAddressingMode: 1,
	ssd1306.SetContrast:       1,
	ssd1306.SetComPins:        1,
	ssd1306.SetVcomDetect:     1,
	ssd1306.SetClockDiv:       1,
	ssd1306.SetMultiplex:      1,
	ssd1306.SetChargePump:     1,
	ssd1306.SetColumnWindow:   2,
	ssd1306.SetPageWindow:     2,
}

// commands applies a stream of commands.
func (p *Panel) commands(b []byte) error {
	for i := 0; i < len(b); {
		op := ssd1306.Opcode(b[i])
		n, ok := params[op]
		if !ok && !p.simple(op) {
			return fmt.Errorf("oledterm: unsupported command %#02x", b[i])
		}
		if i+1+n > len(b) {
			return fmt.Errorf("oledterm: command %#02x needs %d parameter bytes", b[i], n)
		}
		arg := b[i+1 : i+1+n]
		i += 1 + n
		switch op {
		case ssd1306.SetAddressingMode:
			if arg[0] > byte(pageAddressing) {
				return fmt.Errorf("oledterm: invalid addressing mode %#02x", arg[0])
			}
			p.mode = ssd1306.Opcode(arg[0])
		case ssd1306.SetContrast:
			p.contrast = arg[0]
		case ssd1306.SetMultiplex:
			if arg[0] < 15 || arg[0] > 63 {
				return fmt.Errorf("oledterm: invalid multiplex ratio %d", arg[0])
			}
			p.multiplex = arg[0]
		case ssd1306.SetChargePump:
			p.chargePump = arg[0]&0x04 != 0
		case ssd1306.SetColumnWindow:
			p.colStart, p.colEnd = int(arg[0]&0x7F), int(arg[1]&0x7F)
			p.col = p.colStart
		case ssd1306.SetPageWindow:
			p.pageStart, p.pageEnd = int(arg[0]&0x07), int(arg[1]&0x07)
			p.page = p.pageStart
		}
	}
	return nil
}

// simple applies a command without parameters and reports whether it is
// known.
func (p *Panel) simple(op ssd1306.Opcode) bool {
	switch op {
	case ssd1306.DisplayOff:
		p.on = false
	case ssd1306.DisplayOn:
		p.on = true
	case ssd1306.SegNormal:
		p.segRemap = true
	case ssd1306.SegFlipped:
		p.segRemap = false
	case ssd1306.ComScanNormal:
		p.comRemap = true
	case ssd1306.ComScanFlipped:
		p.comRemap = false
	case ssd1306.NormalDisplay:
		p.inverted = false
	case ssd1306.InvertDisplay:
		p.inverted = true
	default:
		return false
	}
	return true
}

// data writes GDDRAM bytes at the current pointer and advances it inside the
// addressing window.
func (p *Panel) data(b []byte) {
	for _, v := range b {
		p.ram[p.page*ssd1306.Width+p.col] = v
		switch p.mode {
		case ssd1306.AddressingHorizontal:
			if p.col++; p.col > p.colEnd {
				p.col = p.colStart
				if p.page++; p.page > p.pageEnd {
					p.page = p.pageStart
				}
			}
		case ssd1306.AddressingVertical:
			if p.page++; p.page > p.pageEnd {
				p.page = p.pageStart
				if p.col++; p.col > p.colEnd {
					p.col = p.colStart
				}
			}
		default:
			// Page addressing wraps within the page.
			if p.col++; p.col >= ssd1306.Width {
				p.col = 0
			}
		}
	}
}

var _ ssd1306.Bus = &Panel{}
var _ fmt.Stringer = &Panel{}
