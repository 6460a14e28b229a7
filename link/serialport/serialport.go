// Package serialport is the Link layer's serial transport: a thin
// abstraction over the physical byte stream to the UI terminal so the
// frame codec in package link can be driven by a native port or a mock.
// The native port is not built for wasm, and no wasm transport exists.
package serialport

import "io"

// Port is a serial port capable of being read, written, closed, and
// flushed.
type Port interface {
	io.ReadWriteCloser
	Flush() error
}

// Config holds the serial parameters for the UI terminal link.
type Config struct {
	Device string

	// Baud is 115200 per the wire protocol's external-interface
	// definition: 115200 baud, 8N1, 3.3V logic, three-wire.
	Baud int

	// ReadTimeout in milliseconds; 0 blocks.
	ReadTimeout int
}

// DefaultConfig is the UI terminal link's standard configuration.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 50, // matches the inter-byte frame timeout
	}
}
