package ssd1306

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// Bus is the addressed two-wire transaction capability the driver talks
// through.
//
// A transaction is BeginTransmission, one or more Write calls, then
// EndTransmission. Implementations do not need to be safe for concurrent use.
type Bus interface {
	// Open acquires the bus. Dev.Init calls it once before anything else.
	Open() error
	// BeginTransmission starts a transaction to the device at addr and
	// discards anything staged by a transaction that was never ended.
	BeginTransmission(addr uint16)
	// Write stages p and returns how many bytes were accepted.
	Write(p []byte) (int, error)
	// EndTransmission sends the staged bytes. A nil error means the device
	// acknowledged the whole transaction.
	EndTransmission() error
}

// DefaultTxLimit is the size of the transmit buffer of most two-wire
// controllers.
const DefaultTxLimit = 128

// I2CBus implements Bus on top of a periph.io I²C bus.
//
// Bytes written during a transaction are staged and go out as one Tx() when
// the transaction ends.
type I2CBus struct {
	// TxLimit is the maximum number of bytes in one transaction. Writes past
	// it are short.
	TxLimit int

	name   string
	bus    i2c.Bus
	closer i2c.BusCloser

	addr uint16
	tx   []byte
}

// NewI2CBus returns a Bus on an already opened I²C bus. Open is a no-op.
func NewI2CBus(b i2c.Bus) *I2CBus {
	return &I2CBus{TxLimit: DefaultTxLimit, bus: b}
}

// OpenI2CBus returns a Bus that opens the I²C bus called name from the i2creg
// registry when Open is called. Use "" for the first available bus.
//
// periph.io/x/host/v3 Init() must have been called first.
func OpenI2CBus(name string) *I2CBus {
	return &I2CBus{TxLimit: DefaultTxLimit, name: name}
}

// Open implements Bus.
func (b *I2CBus) Open() error {
	if b.bus != nil {
		return nil
	}
	c, err := i2creg.Open(b.name)
	if err != nil {
		return err
	}
	b.bus = c
	b.closer = c
	return nil
}

// Close releases the bus if it was opened by Open.
func (b *I2CBus) Close() error {
	if b.closer == nil {
		return nil
	}
	err := b.closer.Close()
	b.closer = nil
	b.bus = nil
	return err
}

// BeginTransmission implements Bus.
func (b *I2CBus) BeginTransmission(addr uint16) {
	if b.tx == nil {
		b.tx = make([]byte, 0, b.limit())
	}
	b.addr = addr
	b.tx = b.tx[:0]
}

// Write implements Bus.
func (b *I2CBus) Write(p []byte) (int, error) {
	n := b.limit() - len(b.tx)
	if n > len(p) {
		n = len(p)
	}
	if n < 0 {
		n = 0
	}
	b.tx = append(b.tx, p[:n]...)
	if n != len(p) {
		return n, fmt.Errorf("ssd1306: transaction exceeds %d bytes", b.limit())
	}
	return n, nil
}

// EndTransmission implements Bus.
func (b *I2CBus) EndTransmission() error {
	if b.bus == nil {
		return errors.New("ssd1306: i2c bus is not open")
	}
	err := b.bus.Tx(b.addr, b.tx, nil)
	b.tx = b.tx[:0]
	return err
}

func (b *I2CBus) String() string {
	if b.bus == nil {
		return fmt.Sprintf("I2CBus{%q}", b.name)
	}
	return fmt.Sprintf("I2CBus{%s}", b.bus)
}

func (b *I2CBus) limit() int {
	if b.TxLimit <= 0 {
		return DefaultTxLimit
	}
	return b.TxLimit
}

var _ Bus = &I2CBus{}
