// Package wav provides utilities for WAV audio handling.
package wav

import (
	"encoding/binary"
	"errors"
	"time"
)

// WAV format constants.
const (
	// HeaderSize is the size of a standard WAV file header in bytes.
	HeaderSize = 44

	// FormatPCM is the audio format code for uncompressed PCM.
	FormatPCM = 1
)

// Piper TTS output defaults.
const (
	// PiperSampleRate is the default sample rate output by Piper TTS (22050 Hz).
	PiperSampleRate = 22050

	// PiperChannels is the default number of channels output by Piper TTS (mono).
	PiperChannels = 1

	// PiperBitsPerSample is the default bit depth output by Piper TTS (16-bit).
	PiperBitsPerSample = 16
)

// ErrInvalidWAV is returned when data does not parse as a WAV file.
var ErrInvalidWAV = errors.New("invalid WAV data")

// Info describes the format of a parsed WAV payload.
type Info struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	DataOffset    int
	DataLen       int
}

// WrapRawPCM adds a WAV header to raw PCM data.
func WrapRawPCM(pcm []byte, sampleRate, channels, bitsPerSample int) []byte {
	dataSize := len(pcm)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	header := make([]byte, HeaderSize)

	// RIFF header
	copy(header[0:4], "RIFF")
	PutLE32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")

	// fmt subchunk
	copy(header[12:16], "fmt ")
	PutLE32(header[16:20], 16) // subchunk size
	PutLE16(header[20:22], FormatPCM)
	PutLE16(header[22:24], uint16(channels))
	PutLE32(header[24:28], uint32(sampleRate))
	PutLE32(header[28:32], uint32(byteRate))
	PutLE16(header[32:34], uint16(blockAlign))
	PutLE16(header[34:36], uint16(bitsPerSample))

	// data subchunk
	copy(header[36:40], "data")
	PutLE32(header[40:44], uint32(dataSize))

	return append(header, pcm...)
}

// Parse walks the RIFF chunks of a WAV file and returns its format info.
// Chunks other than "fmt " and "data" are skipped.
func Parse(data []byte) (Info, error) {
	var info Info

	if len(data) < HeaderSize || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return info, ErrInvalidWAV
	}

	pos := 12
	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))

		switch chunkID {
		case "fmt ":
			if chunkSize >= 16 && pos+24 <= len(data) {
				info.Channels = int(binary.LittleEndian.Uint16(data[pos+10 : pos+12]))
				info.SampleRate = int(binary.LittleEndian.Uint32(data[pos+12 : pos+16]))
				info.BitsPerSample = int(binary.LittleEndian.Uint16(data[pos+22 : pos+24]))
			}
		case "data":
			info.DataOffset = pos + 8
			info.DataLen = chunkSize
		}

		pos += 8 + chunkSize
		if pos%2 != 0 {
			pos++ // word alignment
		}
	}

	if info.SampleRate == 0 || info.DataOffset == 0 {
		return info, ErrInvalidWAV
	}
	if info.DataOffset+info.DataLen > len(data) {
		info.DataLen = len(data) - info.DataOffset
	}
	return info, nil
}

// Duration computes the playing time of a WAV payload from its header.
func Duration(data []byte) (time.Duration, error) {
	info, err := Parse(data)
	if err != nil {
		return 0, err
	}
	byteRate := info.SampleRate * info.Channels * info.BitsPerSample / 8
	if byteRate == 0 {
		return 0, ErrInvalidWAV
	}
	secs := float64(info.DataLen) / float64(byteRate)
	return time.Duration(secs * float64(time.Second)), nil
}

// PutLE16 writes a uint16 value in little-endian format to a byte slice.
func PutLE16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

// PutLE32 writes a uint32 value in little-endian format to a byte slice.
func PutLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// CreateMinimal creates a minimal valid WAV file with the specified number of
// samples, initialized to silence. Useful for tests.
func CreateMinimal(numSamples, sampleRate, channels, bitsPerSample int) []byte {
	bytesPerSample := bitsPerSample / 8
	pcm := make([]byte, numSamples*channels*bytesPerSample)
	return WrapRawPCM(pcm, sampleRate, channels, bitsPerSample)
}
