package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// ---- helpers ----------------------------------------------------------------

// buildPage assembles one Ogg page carrying the given segments. Each entry in
// lacing is the length of the corresponding slice in the payload; segments of
// exactly 255 bytes mark packet continuation per the Ogg framing rules.
func buildPage(headerType byte, seq uint32, segments ...[]byte) []byte {
	var lacing []byte
	var payload []byte
	for _, seg := range segments {
		lacing = append(lacing, byte(len(seg)))
		payload = append(payload, seg...)
	}

	page := make([]byte, 0, 27+len(lacing)+len(payload))
	page = append(page, "OggS"...)
	page = append(page, 0)          // version
	page = append(page, headerType) // header type
	page = append(page, make([]byte, 8)...) // granule position
	page = append(page, make([]byte, 4)...) // serial
	var seqBuf [4]byte
	binary.LittleEndian.PutUint32(seqBuf[:], seq)
	page = append(page, seqBuf[:]...)
	page = append(page, make([]byte, 4)...) // crc (unchecked)
	page = append(page, byte(len(lacing)))
	page = append(page, lacing...)
	page = append(page, payload...)
	return page
}

func packetOfSize(n int, fill byte) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = fill
	}
	return p
}

// ---- packet extraction -------------------------------------------------------

func TestExtractPackets_SinglePage(t *testing.T) {
	p1 := []byte("first")
	p2 := []byte("second")
	stream := buildPage(0x02, 0, p1, p2)

	packets, err := extractPackets(stream)
	if err != nil {
		t.Fatalf("extractPackets: %v", err)
	}
	if len(packets) != 2 {
		t.Fatalf("got %d packets; want 2", len(packets))
	}
	if !bytes.Equal(packets[0], p1) || !bytes.Equal(packets[1], p2) {
		t.Errorf("packets = %q, %q; want %q, %q", packets[0], packets[1], p1, p2)
	}
}

func TestExtractPackets_PacketSpansPages(t *testing.T) {
	// A 300-byte packet needs a 255-byte segment (continued) plus a 45-byte
	// terminator on the next page.
	full := packetOfSize(300, 0xAB)
	stream := append(
		buildPage(0x02, 0, full[:255]),
		buildPage(oggContinuation, 1, full[255:])...,
	)

	packets, err := extractPackets(stream)
	if err != nil {
		t.Fatalf("extractPackets: %v", err)
	}
	if len(packets) != 1 {
		t.Fatalf("got %d packets; want 1", len(packets))
	}
	if !bytes.Equal(packets[0], full) {
		t.Errorf("reassembled packet length = %d; want %d", len(packets[0]), len(full))
	}
}

func TestExtractPackets_MultiSegmentPacketOnOnePage(t *testing.T) {
	// 255-byte lacing inside a page continues the packet into the next segment.
	full := packetOfSize(400, 0x42)
	stream := buildPage(0x02, 0, full[:255], full[255:])

	packets, err := extractPackets(stream)
	if err != nil {
		t.Fatalf("extractPackets: %v", err)
	}
	if len(packets) != 1 {
		t.Fatalf("got %d packets; want 1", len(packets))
	}
	if !bytes.Equal(packets[0], full) {
		t.Error("reassembled packet does not match input")
	}
}

func TestExtractPackets_NotOgg_ReturnsErrMalformed(t *testing.T) {
	_, err := extractPackets([]byte("ID3\x04 definitely not ogg data here"))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v; want ErrMalformed", err)
	}
}

func TestExtractPackets_Empty_ReturnsErrMalformed(t *testing.T) {
	_, err := extractPackets(nil)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v; want ErrMalformed", err)
	}
}

func TestExtractPackets_TruncatedPayload_ReturnsErrMalformed(t *testing.T) {
	stream := buildPage(0x02, 0, []byte("hello"))
	_, err := extractPackets(stream[:len(stream)-2])
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v; want ErrMalformed", err)
	}
}

func TestExtractPackets_GarbageBetweenPages_ReturnsErrMalformed(t *testing.T) {
	stream := append(buildPage(0x02, 0, []byte("ok")), []byte("garbage in the middle of the stream")...)
	_, err := extractPackets(stream)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v; want ErrMalformed", err)
	}
}

// ---- opus framing validation -------------------------------------------------

func TestDecodeOggOpus_MissingOpusHead_ReturnsErrMalformed(t *testing.T) {
	stream := buildPage(0x02, 0, []byte("NotOpus!"), []byte("OpusTags"))
	_, err := DecodeOggOpus(stream)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v; want ErrMalformed", err)
	}
}

func TestDecodeOggOpus_MissingOpusTags_ReturnsErrMalformed(t *testing.T) {
	stream := buildPage(0x02, 0, []byte("OpusHead\x01"), []byte("WrongTag"))
	_, err := DecodeOggOpus(stream)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v; want ErrMalformed", err)
	}
}

func TestDecodeOggOpus_HeadersOnly_ReturnsErrMalformed(t *testing.T) {
	stream := buildPage(0x02, 0, []byte("OpusHead\x01"), []byte("OpusTags"))
	_, err := DecodeOggOpus(stream)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v; want ErrMalformed", err)
	}
}
