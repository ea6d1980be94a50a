// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_runner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rapidaai/harness/config"
	"github.com/rapidaai/harness/pkg/commons"
)

func newTestLogger(t *testing.T) commons.Logger {
	t.Helper()
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-runner"),
		commons.Path(t.TempDir()),
		commons.Level("debug"),
	)
	require.NoError(t, err)
	return logger
}

func testCaptureConfig() config.CaptureConfig {
	return config.CaptureConfig{
		SampleRate:      48000,
		ChunkSize:       256,
		AnalysisSeconds: 1.4,
		DelaySeconds:    0.5,
		MarginSeconds:   0.5,
	}
}
