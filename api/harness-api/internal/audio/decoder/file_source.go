// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_decoder

import (
	"fmt"
	"os"
	"time"
)

// FileSource replays decoded samples as a capture device would deliver
// them, optionally paced at the sample rate.
type FileSource struct {
	samples    []float32
	sampleRate int
	pos        int
	realtime   bool
}

type FileSourceOption func(*FileSource)

// Realtime paces reads so a chunk takes as long as it would on a device.
func Realtime() FileSourceOption {
	return func(f *FileSource) { f.realtime = true }
}

func NewFileSource(samples []float32, sampleRate int, opts ...FileSourceOption) *FileSource {
	f := &FileSource{samples: samples, sampleRate: sampleRate}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OpenFileSource decodes the WAV file at path and converts it to sampleRate.
func OpenFileSource(path string, sampleRate int, opts ...FileSourceOption) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	audio, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	samples, err := Resample(audio.Samples, audio.SampleRate, sampleRate)
	if err != nil {
		return nil, err
	}
	return NewFileSource(samples, sampleRate, opts...), nil
}

func (f *FileSource) SampleRate() int {
	return f.sampleRate
}

func (f *FileSource) Samples() []float32 {
	return f.samples
}

// Read returns 0 and a nil error once every sample was delivered.
func (f *FileSource) Read(buffer []float32) (int, error) {
	n := copy(buffer, f.samples[f.pos:])
	f.pos += n
	if f.realtime && n > 0 {
		time.Sleep(time.Duration(n) * time.Second / time.Duration(f.sampleRate))
	}
	return n, nil
}
