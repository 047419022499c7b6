package oledterm

import (
	"bytes"
	"strings"
	"testing"

	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/flavioheleno/ssd1306"
)

func newDev(t *testing.T) (*ssd1306.Dev, *Panel, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	p := New(&Opts{W: &out})
	d := ssd1306.New(p, nil)
	if err := d.Init(); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	return d, p, &out
}

func TestInitState(t *testing.T) {
	_, p, _ := newDev(t)
	if !p.Powered() {
		t.Error("display should be on after Init")
	}
	if p.Contrast() != 0x7F {
		t.Errorf("Contrast() = %#x, want 0x7f", p.Contrast())
	}
	if p.Inverted() {
		t.Error("display should not be inverted after Init")
	}
	if h, v := p.Flipped(); h || v {
		t.Errorf("Flipped() = %v, %v, want upright", h, v)
	}
}

func TestFlushUpright(t *testing.T) {
	d, p, _ := newDev(t)
	img := d.Image()
	img.SetBit(0, 0, image1bit.On)
	img.SetBit(127, 63, image1bit.On)
	img.SetBit(5, 17, image1bit.On)
	d.Flush()

	if ram := p.RAM(); !bytes.Equal(ram[:], d.Buffer[:]) {
		t.Fatal("GDDRAM differs from Buffer after Flush")
	}
	for y := 0; y < ssd1306.Height; y++ {
		for x := 0; x < ssd1306.Width; x++ {
			want := img.BitAt(x, y) == image1bit.On
			if got := p.Pixel(x, y); got != want {
				t.Fatalf("Pixel(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestOrientation(t *testing.T) {
	d, p, _ := newDev(t)
	d.Image().SetBit(1, 2, image1bit.On)
	d.Flush()

	d.FlipHorizontal(true)
	if !p.Pixel(126, 2) || p.Pixel(1, 2) {
		t.Error("horizontal flip did not mirror columns")
	}
	d.FlipVertical(true)
	if !p.Pixel(126, 61) {
		t.Error("vertical flip did not mirror rows")
	}
	d.FlipHorizontal(false)
	d.FlipVertical(false)
	if !p.Pixel(1, 2) {
		t.Error("orientation was not restored")
	}
}

func TestInvertAndPower(t *testing.T) {
	d, p, _ := newDev(t)
	d.Flush()

	d.Invert(true)
	if !p.Inverted() || !p.Pixel(10, 10) {
		t.Error("inverted display should light cleared pixels")
	}
	d.SetPower(false)
	if p.Powered() || p.Pixel(10, 10) {
		t.Error("display off should not light any pixel")
	}
	d.SetPower(true)
	d.Invert(false)
	if p.Pixel(10, 10) {
		t.Error("cleared pixel lit after restoring")
	}
}

func TestContrast(t *testing.T) {
	d, p, _ := newDev(t)
	d.SetContrast(0x55)
	if p.Contrast() != 0x55 {
		t.Errorf("Contrast() = %#x, want 0x55", p.Contrast())
	}
}

func TestAddressMismatch(t *testing.T) {
	p := New(&Opts{W: &bytes.Buffer{}})
	d := ssd1306.New(p, &ssd1306.Opts{Addr: 0x3D})
	if err := d.Init(); err == nil {
		t.Error("Init should fail when nothing answers at the address")
	}
}

func TestNotOpen(t *testing.T) {
	p := New(&Opts{W: &bytes.Buffer{}})
	p.BeginTransmission(ssd1306.DefaultAddr)
	if err := p.EndTransmission(); err == nil {
		t.Error("EndTransmission should fail before Open")
	}
}

func TestMalformed(t *testing.T) {
	tests := []struct {
		name string
		tx   []byte
	}{
		{"invalid control byte", []byte{0x12, 0xAF}},
		{"unsupported command", []byte{0x00, 0xE3}},
		{"missing parameter", []byte{0x00, 0x81}},
		{"missing window end", []byte{0x00, 0x21, 0x00}},
		{"two single commands", []byte{0x80, 0xAF, 0xAE}},
		{"empty single command", []byte{0x80}},
		{"invalid addressing mode", []byte{0x00, 0x20, 0x03}},
		{"invalid multiplex", []byte{0x00, 0xA8, 0x05}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(&Opts{W: &bytes.Buffer{}})
			_ = p.Open()
			p.BeginTransmission(ssd1306.DefaultAddr)
			_, _ = p.Write(tt.tx)
			if err := p.EndTransmission(); err == nil {
				t.Errorf("EndTransmission(% X) should fail", tt.tx)
			}
		})
	}
}

func TestDataWindowWraps(t *testing.T) {
	p := New(&Opts{W: &bytes.Buffer{}})
	_ = p.Open()
	send := func(b ...byte) {
		t.Helper()
		p.BeginTransmission(ssd1306.DefaultAddr)
		_, _ = p.Write(b)
		if err := p.EndTransmission(); err != nil {
			t.Fatal(err)
		}
	}
	send(0x00, 0x20, 0x00, 0x21, 10, 11, 0x22, 2, 3)
	send(0x40, 1, 2, 3, 4, 5)

	ram := p.RAM()
	want := map[int]byte{
		2*ssd1306.Width + 10: 5, // wrapped back to the window start
		2*ssd1306.Width + 11: 2,
		3*ssd1306.Width + 10: 3,
		3*ssd1306.Width + 11: 4,
	}
	for i, b := range ram {
		if b != want[i] {
			t.Errorf("ram[%d] = %d, want %d", i, b, want[i])
		}
	}
}

func TestRender(t *testing.T) {
	d, p, out := newDev(t)
	d.Image().SetBit(0, 0, image1bit.On)
	d.Flush()

	if err := p.Render(); err != nil {
		t.Fatal(err)
	}
	first := out.String()
	if n := strings.Count(first, "\n"); n != ssd1306.Height {
		t.Errorf("rendered %d lines, want %d", n, ssd1306.Height)
	}
	if !strings.HasPrefix(first, "\r\033[0m") {
		t.Errorf("rendering starts with %q", first[:8])
	}

	out.Reset()
	if err := p.Render(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "\033[64A") {
		t.Error("second rendering does not move the cursor back up")
	}
}

func TestString(t *testing.T) {
	if got, want := New(&Opts{W: &bytes.Buffer{}}).String(), "oledterm.Panel{0x3c}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
