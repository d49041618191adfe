// Copyright (c) 2026 Sadra Hemmati
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package analog

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	serial "github.com/jacobsa/go-serial/serial"
)

// SerialSource reads raw samples from a serial-attached ADC bridge (a
// microcontroller streaming one decimal reading per line). Useful when the
// audio front end lives on a separate board instead of an I2C ADC.
type SerialSource struct {
	port   io.ReadWriteCloser
	reader *bufio.Reader
	rawMax int
}

// NewSerialSource opens the serial port.
// NOTE: adjust the port name to your setup: /dev/serial0, /dev/ttyUSB0, etc.
func NewSerialSource(portName string, baudRate uint, rawMax int) (*SerialSource, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              baudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("serial source: open %s: %w", portName, err)
	}
	log.Printf("serial source: port opened on %s at %d baud", portName, baudRate)

	return &SerialSource{
		port:   port,
		reader: bufio.NewReader(port),
		rawMax: rawMax,
	}, nil
}

// Read consumes lines until it finds a parseable reading in range. Blank
// lines and partial lines from a mid-stream attach are skipped.
func (s *SerialSource) Read() (int, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return 0, fmt.Errorf("serial source: read: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		raw, err := strconv.Atoi(line)
		if err != nil {
			// noisy link or partial first line; skip
			continue
		}
		if raw < 0 || raw > s.rawMax {
			continue
		}
		return raw, nil
	}
}

func (s *SerialSource) Close() error {
	return s.port.Close()
}
