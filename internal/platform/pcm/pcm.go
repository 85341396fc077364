// Package pcm decodes the speech payload returned by the AI service: raw
// signed 16-bit little-endian mono samples, base64 encoded.
package pcm

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	SampleRate    = 24000
	Channels      = 1
	BitsPerSample = 16
)

var (
	ErrEmpty      = errors.New("pcm: empty payload")
	ErrOddPayload = errors.New("pcm: payload is not a whole number of 16-bit samples")
)

// Clip is a decoded buffer of little-endian int16 samples.
type Clip struct {
	Data       []byte
	SampleRate int
	Channels   int
}

func Decode(b64 string) (Clip, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return Clip{}, fmt.Errorf("pcm: base64: %w", err)
	}
	return FromBytes(raw)
}

func FromBytes(raw []byte) (Clip, error) {
	if len(raw) == 0 {
		return Clip{}, ErrEmpty
	}
	if len(raw)%2 != 0 {
		return Clip{}, ErrOddPayload
	}
	return Clip{Data: raw, SampleRate: SampleRate, Channels: Channels}, nil
}

func (c Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Data) / 2 / c.Channels
}

func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// WriteWAV writes c as a canonical 44-byte-header RIFF/WAVE file.
func (c Clip) WriteWAV(w io.Writer) error {
	blockAlign := c.Channels * BitsPerSample / 8
	header := struct {
		ChunkID       [4]byte
		ChunkSize     uint32
		Format        [4]byte
		Subchunk1ID   [4]byte
		Subchunk1Size uint32
		AudioFormat   uint16
		NumChannels   uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		Subchunk2ID   [4]byte
		Subchunk2Size uint32
	}{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + len(c.Data)),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   uint16(c.Channels),
		SampleRate:    uint32(c.SampleRate),
		ByteRate:      uint32(c.SampleRate * blockAlign),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: BitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(len(c.Data)),
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("pcm: wav header: %w", err)
	}
	if _, err := w.Write(c.Data); err != nil {
		return fmt.Errorf("pcm: wav data: %w", err)
	}
	return nil
}
