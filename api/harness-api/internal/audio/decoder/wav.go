// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_decoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/zaf/g711"
)

const (
	FormatPCM        = 1
	FormatIEEEFloat  = 3
	FormatALaw       = 6
	FormatMuLaw      = 7
	FormatExtensible = 0xFFFE

	pcmBytesPerSample = 2
	pcmBitsPerSample  = 16
)

var (
	ErrNotWAV            = errors.New("not a RIFF/WAVE stream")
	ErrUnsupportedFormat = errors.New("unsupported wav format")
)

type Format struct {
	AudioFormat   uint16 `json:"audioFormat"`
	Channels      int    `json:"channels"`
	SampleRate    int    `json:"sampleRate"`
	BitsPerSample int    `json:"bitsPerSample"`
}

// Audio is a decoded capture, downmixed to mono.
type Audio struct {
	Format     Format
	SampleRate int
	Samples    []float32
}

func (a *Audio) Duration() float64 {
	if a.SampleRate == 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// Decode reads a whole WAV stream: PCM 8/16/24/32 bit, 32 bit float,
// A-law and µ-law, any channel count.
func Decode(r io.Reader) (*Audio, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	var format *Format
	var pcm []byte
	for pos := 12; pos+8 <= len(data); {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		end := min(pos+8+size, len(data))
		body := data[pos+8 : end]
		switch id {
		case "fmt ":
			if format, err = parseFormat(body); err != nil {
				return nil, err
			}
		case "data":
			pcm = body
		}
		// chunks are word aligned
		pos = end + size&1
	}
	if format == nil {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrNotWAV)
	}
	if pcm == nil {
		return nil, fmt.Errorf("%w: missing data chunk", ErrNotWAV)
	}

	interleaved, err := decodeSamples(*format, pcm)
	if err != nil {
		return nil, err
	}
	return &Audio{
		Format:     *format,
		SampleRate: format.SampleRate,
		Samples:    Downmix(interleaved, format.Channels),
	}, nil
}

func parseFormat(body []byte) (*Format, error) {
	if len(body) < 16 {
		return nil, fmt.Errorf("%w: fmt chunk of %d bytes", ErrNotWAV, len(body))
	}
	format := &Format{
		AudioFormat:   binary.LittleEndian.Uint16(body[0:2]),
		Channels:      int(binary.LittleEndian.Uint16(body[2:4])),
		SampleRate:    int(binary.LittleEndian.Uint32(body[4:8])),
		BitsPerSample: int(binary.LittleEndian.Uint16(body[14:16])),
	}
	if format.AudioFormat == FormatExtensible && len(body) >= 26 {
		format.AudioFormat = binary.LittleEndian.Uint16(body[24:26])
	}
	if format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, format.Channels, format.SampleRate)
	}
	return format, nil
}

func decodeSamples(format Format, pcm []byte) ([]float32, error) {
	var width int
	var decode func([]byte) float32
	switch {
	case format.AudioFormat == FormatPCM && format.BitsPerSample == 8:
		width, decode = 1, func(b []byte) float32 { return (float32(b[0]) - 128) / 128 }
	case format.AudioFormat == FormatPCM && format.BitsPerSample == 16:
		width, decode = 2, func(b []byte) float32 { return float32(int16(binary.LittleEndian.Uint16(b))) / 32768 }
	case format.AudioFormat == FormatPCM && format.BitsPerSample == 24:
		width, decode = 3, func(b []byte) float32 {
			v := int32(uint32(b[0])<<8|uint32(b[1])<<16|uint32(b[2])<<24) >> 8
			return float32(v) / 8388608
		}
	case format.AudioFormat == FormatPCM && format.BitsPerSample == 32:
		width, decode = 4, func(b []byte) float32 { return float32(int32(binary.LittleEndian.Uint32(b))) / 2147483648 }
	case format.AudioFormat == FormatIEEEFloat && format.BitsPerSample == 32:
		width, decode = 4, func(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b)) }
	case format.AudioFormat == FormatALaw && format.BitsPerSample == 8:
		width, decode = 1, func(b []byte) float32 { return float32(g711.DecodeAlawFrame(b[0])) / 32768 }
	case format.AudioFormat == FormatMuLaw && format.BitsPerSample == 8:
		width, decode = 1, func(b []byte) float32 { return float32(g711.DecodeUlawFrame(b[0])) / 32768 }
	default:
		return nil, fmt.Errorf("%w: format %d with %d bits", ErrUnsupportedFormat, format.AudioFormat, format.BitsPerSample)
	}

	frameSize := width * format.Channels
	numFrames := len(pcm) / frameSize
	samples := make([]float32, numFrames*format.Channels)
	for i := range samples {
		samples[i] = decode(pcm[i*width : (i+1)*width])
	}
	return samples, nil
}

// Downmix averages interleaved channels into one.
func Downmix(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	mono := make([]float32, len(interleaved)/channels)
	for frame := range mono {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += interleaved[frame*channels+ch]
		}
		mono[frame] = sum / float32(channels)
	}
	return mono
}

// EncodeWAV renders mono samples as a 16 bit PCM WAV file.
func EncodeWAV(samples []float32, sampleRate int) []byte {
	var buf bytes.Buffer
	dataLen := len(samples) * pcmBytesPerSample
	byteRate := sampleRate * pcmBytesPerSample

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(FormatPCM))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(pcmBytesPerSample))
	binary.Write(&buf, binary.LittleEndian, uint16(pcmBitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	for _, sample := range samples {
		v := math.Round(float64(sample) * 32767)
		binary.Write(&buf, binary.LittleEndian, int16(min(max(v, -32768), 32767)))
	}
	return buf.Bytes()
}
