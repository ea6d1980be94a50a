// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_decoder

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zaf/g711"
)

// buildWAV assembles a minimal RIFF file around raw sample bytes.
func buildWAV(audioFormat uint16, channels, sampleRate, bits int, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, audioFormat)
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*bits/8))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*bits/8))
	binary.Write(&buf, binary.LittleEndian, uint16(bits))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func TestEncodeDecode_PCM16(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1, -1}
	wav := EncodeWAV(samples, 48000)
	assert.Len(t, wav, 44+len(samples)*2)

	audio, err := Decode(bytes.NewReader(wav))
	require.NoError(t, err)

	assert.Equal(t, 48000, audio.SampleRate)
	assert.Equal(t, Format{AudioFormat: FormatPCM, Channels: 1, SampleRate: 48000, BitsPerSample: 16}, audio.Format)
	require.Len(t, audio.Samples, len(samples))
	for i := range samples {
		assert.InDelta(t, samples[i], audio.Samples[i], 1.0/16384)
	}
}

func TestDecode_StereoDownmix(t *testing.T) {
	var data bytes.Buffer
	for _, v := range []int16{16384, 0, -16384, -16384} {
		binary.Write(&data, binary.LittleEndian, v)
	}

	audio, err := Decode(bytes.NewReader(buildWAV(FormatPCM, 2, 44100, 16, data.Bytes())))
	require.NoError(t, err)

	assert.Equal(t, []float32{0.25, -0.5}, audio.Samples)
	assert.InDelta(t, 2.0/44100, audio.Duration(), 1e-12)
}

func TestDecode_Float32(t *testing.T) {
	var data bytes.Buffer
	for _, v := range []float32{0.125, -0.75} {
		binary.Write(&data, binary.LittleEndian, math.Float32bits(v))
	}

	audio, err := Decode(bytes.NewReader(buildWAV(FormatIEEEFloat, 1, 48000, 32, data.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, []float32{0.125, -0.75}, audio.Samples)
}

func TestDecode_Companded(t *testing.T) {
	data := []byte{0x00, 0x55, 0x80, 0xFF}

	ulaw, err := Decode(bytes.NewReader(buildWAV(FormatMuLaw, 1, 8000, 8, data)))
	require.NoError(t, err)
	alaw, err := Decode(bytes.NewReader(buildWAV(FormatALaw, 1, 8000, 8, data)))
	require.NoError(t, err)

	for i, b := range data {
		assert.Equal(t, float32(g711.DecodeUlawFrame(b))/32768, ulaw.Samples[i])
		assert.Equal(t, float32(g711.DecodeAlawFrame(b))/32768, alaw.Samples[i])
	}
}

func TestDecode_PCM24(t *testing.T) {
	data := []byte{0x00, 0x00, 0x40, 0x00, 0x00, 0xC0}

	audio, err := Decode(bytes.NewReader(buildWAV(FormatPCM, 1, 48000, 24, data)))
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.5}, audio.Samples)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a wav file at all")))
	assert.ErrorIs(t, err, ErrNotWAV)

	_, err = Decode(bytes.NewReader(buildWAV(2, 1, 8000, 4, []byte{1, 2})))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	headerOnly := buildWAV(FormatPCM, 1, 8000, 16, nil)
	_, err = Decode(bytes.NewReader(headerOnly[:36]))
	assert.ErrorIs(t, err, ErrNotWAV)
}

func TestOpenFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")
	require.NoError(t, os.WriteFile(path, EncodeWAV([]float32{0.5, 0.25, 0}, 48000), 0o644))

	source, err := OpenFileSource(path, 48000)
	require.NoError(t, err)
	assert.Equal(t, 48000, source.SampleRate())

	buffer := make([]float32, 2)
	n, err := source.Read(buffer)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, _ = source.Read(buffer)
	assert.Equal(t, 1, n)
	n, err = source.Read(buffer)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = OpenFileSource(filepath.Join(t.TempDir(), "missing.wav"), 48000)
	assert.Error(t, err)
}

func TestResample(t *testing.T) {
	samples := []float32{0.1, 0.2}
	same, err := Resample(samples, 48000, 48000)
	require.NoError(t, err)
	assert.Equal(t, samples, same)

	_, err = Resample(samples, 0, 48000)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	tone := make([]float32, 8000)
	for i := range tone {
		tone[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/8000))
	}
	upsampled, err := Resample(tone, 8000, 48000)
	require.NoError(t, err)
	assert.NotEmpty(t, upsampled)
}
