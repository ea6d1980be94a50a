// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_discontinuity "github.com/rapidaai/harness/api/harness-api/internal/analysis/discontinuity"
)

func TestNewReport_Payload(t *testing.T) {
	report, err := NewReport(KindTap, "", StatusOK, "tap-to-tone latency = 120 msec\n", nil)
	require.NoError(t, err)
	assert.Empty(t, report.Payload)
	assert.Empty(t, report.ID)

	_, err = NewReport(KindTap, "", StatusOK, "", make(chan int))
	assert.Error(t, err)
}

func TestScanStatus(t *testing.T) {
	tests := []struct {
		code internal_discontinuity.ResultCode
		want string
	}{
		{internal_discontinuity.ResultOK, StatusOK},
		{internal_discontinuity.ResultDiscontinuity, StatusDiscontinuity},
		{internal_discontinuity.ResultError, StatusFailed},
		{internal_discontinuity.ResultContinue, StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ScanStatus(tt.code))
		})
	}
}
