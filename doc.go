// Package ssd1306 controls a SSD1306 OLED display via I²C.
//
// The SSD1306 is a monochrome OLED controller. This driver targets the common
// 128×64 modules and implements the display.Drawer interface from periph.io.
//
// # Display Characteristics
//
// - 1-bit monochrome, 128×64 pixels
// - 1024 bytes of GDDRAM organised in 8 pages of 8 rows each
// - Adjustable contrast (0-255)
// - Horizontal and vertical mirroring
// - Display inversion
//
// # Hardware Connection
//
// Connect the SSD1306 module to your system via I²C:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V (or 5V depending on module)
//	SCL         → I²C Clock (SCL)
//	SDA         → I²C Data (SDA)
//
// Most modules answer at address 0x3C, some at 0x3D.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/flavioheleno/ssd1306"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		if _, err := host.Init(); err != nil {
//			log.Fatal(err)
//		}
//
//		bus := ssd1306.OpenI2CBus("")
//		defer bus.Close()
//
//		dev := ssd1306.New(bus, nil)
//		if err := dev.Init(); err != nil {
//			log.Fatal(err)
//		}
//
//		// Light the top-left pixel
//		dev.Buffer[0] = 0x01
//		dev.Flush()
//	}
//
// # Frame Buffer
//
// Dev.Buffer is the 1024 byte frame. Byte i covers column i%128 of page i/128,
// and bit n of that byte is the pixel at row page*8+n. The driver never checks
// coordinates; graphics code writes the bytes directly or draws into
// Dev.Image(), which shares its pixels with Buffer.
//
// Flush always sends the whole frame: one command transaction selecting the
// full column and page window, then 16 data transactions of 64 bytes.
//
// # Error Handling
//
// Only Init reports failures: ErrBusUnavailable when the bus cannot be opened,
// ErrTransactionIncomplete on a short write or a missing acknowledgement.
// SetContrast, SetPower, FlipHorizontal, FlipVertical, Invert and Flush are
// fire-and-forget. Write, Draw and Halt, which exist for display.Drawer,
// return the first transport error.
//
// A short write during Init abandons the initialization transaction without
// ending it. Every other transaction is ended even when a write was short, so
// the truncated bytes still reach the bus and the bus is released.
//
// # Custom Transports
//
// Any type implementing Bus can carry the transactions. I2CBus wraps a
// periph.io I²C bus; package oledterm emulates the controller on a terminal.
//
// # Datasheet
//
// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf
package ssd1306
