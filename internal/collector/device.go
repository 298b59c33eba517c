package collector

import (
	"bufio"
	"context"
	"io"
)

// Device is one reading source. The physical transport (a serial port, a
// USB adapter, a test fixture) stays behind this interface.
type Device interface {
	// ReadLine blocks until the device produces one line of data.
	ReadLine(ctx context.Context) (string, error)
}

// ReaderDevice adapts any line-oriented io.Reader, typically an opened
// serial TTY, into a Device.
type ReaderDevice struct {
	scanner *bufio.Scanner
}

func NewReaderDevice(r io.Reader) *ReaderDevice {
	return &ReaderDevice{scanner: bufio.NewScanner(r)}
}

func (d *ReaderDevice) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !d.scanner.Scan() {
		if err := d.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return d.scanner.Text(), nil
}
