package audio

import "encoding/binary"

// EncodeWAV wraps raw little-endian int16 PCM in a minimal RIFF/WAVE
// container (16-bit PCM, no extra chunks).
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	const (
		fmtSize       = 16
		bitsPerSample = 16
	)
	dataSize := uint32(len(pcm))
	byteRate := uint32(sampleRate * channels * bitsPerSample / 8)
	blockAlign := uint16(channels * bitsPerSample / 8)

	buf := make([]byte, 0, 44+len(pcm))
	le := binary.LittleEndian
	putU32 := func(v uint32) {
		var b [4]byte
		le.PutUint32(b[:], v)
		buf = append(buf, b[:]...)
	}
	putU16 := func(v uint16) {
		var b [2]byte
		le.PutUint16(b[:], v)
		buf = append(buf, b[:]...)
	}

	// RIFF chunk.
	buf = append(buf, "RIFF"...)
	putU32(4 + (8 + fmtSize) + (8 + dataSize))
	buf = append(buf, "WAVE"...)

	// fmt sub-chunk.
	buf = append(buf, "fmt "...)
	putU32(fmtSize)
	putU16(1) // PCM format
	putU16(uint16(channels))
	putU32(uint32(sampleRate))
	putU32(byteRate)
	putU16(blockAlign)
	putU16(bitsPerSample)

	// data sub-chunk.
	buf = append(buf, "data"...)
	putU32(dataSize)
	buf = append(buf, pcm...)
	return buf
}
