package audio

import (
	"bytes"
	"fmt"

	"layeh.com/gopus"
)

// Opus always decodes at 48 kHz; voice notes are mono.
const (
	opusSampleRate = 48000
	opusChannels   = 1
	// maxFrameSize is the largest possible frame, 120 ms at 48 kHz.
	maxFrameSize = opusSampleRate * 120 / 1000
)

var (
	opusHeadMagic = []byte("OpusHead")
	opusTagsMagic = []byte("OpusTags")
)

// DecodeOggOpus decodes an Ogg Opus voice note into mono little-endian int16
// PCM at 48 kHz. The OpusHead and OpusTags header packets are validated and
// skipped; everything after them is audio.
func DecodeOggOpus(data []byte) ([]byte, error) {
	packets, err := extractPackets(data)
	if err != nil {
		return nil, err
	}
	if len(packets) < 2 || !bytes.HasPrefix(packets[0], opusHeadMagic) {
		return nil, fmt.Errorf("%w: missing OpusHead", ErrMalformed)
	}
	if !bytes.HasPrefix(packets[1], opusTagsMagic) {
		return nil, fmt.Errorf("%w: missing OpusTags", ErrMalformed)
	}

	dec, err := gopus.NewDecoder(opusSampleRate, opusChannels)
	if err != nil {
		return nil, fmt.Errorf("audio: create opus decoder: %w", err)
	}

	var out []byte
	for _, pkt := range packets[2:] {
		if len(pkt) == 0 {
			continue
		}
		pcm, err := dec.Decode(pkt, maxFrameSize, false)
		if err != nil {
			return nil, fmt.Errorf("%w: opus decode: %v", ErrMalformed, err)
		}
		out = append(out, int16sToBytes(pcm)...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no audio packets", ErrMalformed)
	}
	return out, nil
}

// DecodeVoiceNote decodes an Ogg Opus voice note and resamples it to mono
// PCM at targetRate, ready for speech recognition.
func DecodeVoiceNote(data []byte, targetRate int) ([]byte, error) {
	pcm, err := DecodeOggOpus(data)
	if err != nil {
		return nil, err
	}
	return ResampleMono16(pcm, opusSampleRate, targetRate), nil
}

// int16sToBytes converts a slice of int16 PCM samples to little-endian bytes.
func int16sToBytes(pcm []int16) []byte {
	b := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		b[i*2] = byte(s)
		b[i*2+1] = byte(s >> 8)
	}
	return b
}

// bytesToInt16s converts little-endian bytes to a slice of int16 PCM samples.
func bytesToInt16s(b []byte) []int16 {
	pcm := make([]int16, len(b)/2)
	for i := range pcm {
		pcm[i] = int16(b[i*2]) | int16(b[i*2+1])<<8
	}
	return pcm
}
