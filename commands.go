package ssd1306

// Opcode is a SSD1306 command byte or command parameter.
type Opcode byte

// Control bytes. Every I²C transaction to the controller starts with one of
// them, telling it how to interpret the bytes that follow.
const (
	ControlCommand Opcode = 0x00 // stream of command bytes
	ControlSingle  Opcode = 0x80 // exactly one command byte
	ControlData    Opcode = 0x40 // stream of GDDRAM bytes
)

// Commands used by the driver. Parameters follow the opcode in the same
// command stream.
const (
	DisplayOff Opcode = 0xAE
	DisplayOn  Opcode = 0xAF

	SetAddressingMode    Opcode = 0x20 // + mode
	AddressingHorizontal Opcode = 0x00
	AddressingVertical   Opcode = 0x01

	SetContrast     Opcode = 0x81 // + level
	SetComPins      Opcode = 0xDA // + configuration
	SetVcomDetect   Opcode = 0xDB // + level
	SetClockDiv     Opcode = 0xD5 // + divide ratio/oscillator frequency
	SetMultiplex    Opcode = 0xA8 // + ratio-1
	SetChargePump   Opcode = 0x8D // + 0x14 enable, 0x10 disable
	SetColumnWindow Opcode = 0x21 // + start, end
	SetPageWindow   Opcode = 0x22 // + start, end

	// The panel is mounted so that reversed COM scan and column 127 on SEG0
	// show the RAM upright.
	ComScanNormal  Opcode = 0xC8
	ComScanFlipped Opcode = 0xC0
	SegNormal      Opcode = 0xA1
	SegFlipped     Opcode = 0xA0

	NormalDisplay Opcode = 0xA6
	InvertDisplay Opcode = 0xA7
)

// Parameters of the initialization sequence.
const (
	defaultClockDiv = 0x80 // power on reset value
	chargePumpOn    = 0x14
	defaultContrast = 0x7F
	defaultVcom     = 0x40
	comPinsAlt      = 0x12 // alternative COM pins, 128x64 panels
	multiplex64     = Height - 1
)

// initCmds is sent as a single command stream by Init.
//
// The display stays off while timing and analog parameters are set and is
// turned on once addressing and orientation are fixed.
var initCmds = [...]byte{
	byte(ControlCommand),
	byte(DisplayOff),
	byte(SetClockDiv), defaultClockDiv,
	byte(SetChargePump), chargePumpOn,
	byte(SetAddressingMode), byte(AddressingHorizontal),
	byte(SetContrast), defaultContrast,
	byte(SetVcomDetect), defaultVcom,
	byte(SegNormal), byte(ComScanNormal),
	byte(DisplayOn),
	byte(SetComPins), comPinsAlt,
	byte(SetMultiplex), multiplex64,
}

// windowCmds selects the whole GDDRAM as the addressing window.
var windowCmds = [...]byte{
	byte(ControlCommand),
	byte(SetColumnWindow), 0, Width - 1,
	byte(SetPageWindow), 0, Pages - 1,
}

// pick returns normal when flag is false and alt otherwise.
func pick(flag bool, normal, alt Opcode) Opcode {
	if flag {
		return alt
	}
	return normal
}
