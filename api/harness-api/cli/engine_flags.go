// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package harness_cli

import (
	"flag"
	"fmt"
	"strings"

	internal_engine "github.com/rapidaai/harness/api/harness-api/internal/engine"
	internal_type "github.com/rapidaai/harness/api/harness-api/internal/type"
)

// engineFlags shape the simulated engine the commands measure against.
type engineFlags struct {
	framesPerBurst int
	capacity       int
	baseLatency    int
	discontinuity  int
	jump           int
	confidenceDip  bool
	notMMAP        bool
	jitter         int
	seed           uint64
	failEvery      int
}

func registerEngineFlags(fs *flag.FlagSet) *engineFlags {
	f := &engineFlags{}
	fs.IntVar(&f.framesPerBurst, "frames-per-burst", internal_engine.DefaultFramesPerBurst, "simulated burst size in frames")
	fs.IntVar(&f.capacity, "capacity", internal_engine.DefaultCapacityInBursts, "simulated buffer capacity in bursts")
	fs.IntVar(&f.baseLatency, "base-latency", internal_engine.DefaultBaseLatency, "simulated latency in frames on top of the buffer")
	fs.IntVar(&f.discontinuity, "discontinuity", 0, "simulate a DSP position error above this many bursts, 0 for none")
	fs.IntVar(&f.jump, "jump", 1000, "latency jump in frames caused by the position error")
	fs.BoolVar(&f.confidenceDip, "confidence-dip", false, "drop confidence at the discontinuity")
	fs.BoolVar(&f.notMMAP, "no-mmap", false, "simulate a stream that is not MMAP exclusive")
	fs.IntVar(&f.jitter, "jitter", 0, "random latency jitter in frames")
	fs.Uint64Var(&f.seed, "seed", 1, "jitter random seed")
	fs.IntVar(&f.failEvery, "fail-every", 0, "fail every nth analysis, 0 for never")
	return f
}

func (f *engineFlags) options() []internal_engine.EngineOption {
	opts := []internal_engine.EngineOption{
		internal_engine.WithFramesPerBurst(f.framesPerBurst),
		internal_engine.WithCapacityInBursts(f.capacity),
		internal_engine.WithBaseLatency(f.baseLatency),
		internal_engine.WithMMAPExclusive(!f.notMMAP),
	}
	if f.discontinuity > 0 {
		opts = append(opts, internal_engine.WithDiscontinuity(f.discontinuity, f.jump))
	}
	if f.confidenceDip {
		opts = append(opts, internal_engine.WithConfidenceDip())
	}
	if f.jitter > 0 {
		opts = append(opts, internal_engine.WithJitter(f.jitter, f.seed))
	}
	if f.failEvery > 0 {
		opts = append(opts, internal_engine.WithFailEvery(f.failEvery))
	}
	return opts
}

// parseDirections accepts input, output or both.
func parseDirections(value string) ([]internal_type.Direction, error) {
	switch strings.ToLower(value) {
	case "both", "":
		return []internal_type.Direction{internal_type.DirectionInput, internal_type.DirectionOutput}, nil
	case string(internal_type.DirectionInput):
		return []internal_type.Direction{internal_type.DirectionInput}, nil
	case string(internal_type.DirectionOutput):
		return []internal_type.Direction{internal_type.DirectionOutput}, nil
	default:
		return nil, fmt.Errorf("unknown direction %q, want input, output or both", value)
	}
}
