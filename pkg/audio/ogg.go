package audio

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrMalformed is returned when a voice payload cannot be parsed as an Ogg
// stream. Callers use it to distinguish broken uploads from transient
// transcription failures.
var ErrMalformed = errors.New("audio: malformed ogg stream")

var oggMagic = []byte("OggS")

const (
	oggHeaderSize = 27

	// header type flags
	oggContinuation = 0x01
)

// extractPackets demuxes a complete Ogg stream into its logical packets.
// Packets spanning page boundaries are reassembled. Only single-stream files
// are expected; pages of all serials are read in file order.
func extractPackets(data []byte) ([][]byte, error) {
	if len(data) < oggHeaderSize || !bytes.HasPrefix(data, oggMagic) {
		return nil, ErrMalformed
	}

	var (
		packets [][]byte
		partial []byte
		open    bool
	)

	off := 0
	for off < len(data) {
		if len(data)-off < oggHeaderSize {
			return nil, fmt.Errorf("%w: truncated page header at offset %d", ErrMalformed, off)
		}
		page := data[off:]
		if !bytes.HasPrefix(page, oggMagic) {
			return nil, fmt.Errorf("%w: bad capture pattern at offset %d", ErrMalformed, off)
		}
		if page[4] != 0 {
			return nil, fmt.Errorf("%w: unsupported ogg version %d", ErrMalformed, page[4])
		}

		headerType := page[5]
		numSegments := int(page[26])
		if len(page) < oggHeaderSize+numSegments {
			return nil, fmt.Errorf("%w: truncated segment table at offset %d", ErrMalformed, off)
		}
		lacing := page[oggHeaderSize : oggHeaderSize+numSegments]

		payloadLen := 0
		for _, l := range lacing {
			payloadLen += int(l)
		}
		payloadStart := oggHeaderSize + numSegments
		if len(page) < payloadStart+payloadLen {
			return nil, fmt.Errorf("%w: truncated page payload at offset %d", ErrMalformed, off)
		}
		payload := page[payloadStart : payloadStart+payloadLen]

		if headerType&oggContinuation == 0 && open {
			// A fresh packet starts here but the previous one never ended.
			// Drop the dangling fragment rather than failing the whole file.
			partial = nil
			open = false
		}

		pos := 0
		for _, l := range lacing {
			partial = append(partial, payload[pos:pos+int(l)]...)
			pos += int(l)
			if l < 255 {
				packets = append(packets, partial)
				partial = nil
				open = false
			} else {
				open = true
			}
		}

		off += payloadStart + payloadLen
	}

	if len(packets) == 0 {
		return nil, fmt.Errorf("%w: no packets", ErrMalformed)
	}
	return packets, nil
}
