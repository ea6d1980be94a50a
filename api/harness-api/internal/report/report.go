// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_report

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	internal_discontinuity "github.com/rapidaai/harness/api/harness-api/internal/analysis/discontinuity"
)

const (
	KindTap     = "tap"
	KindLatency = "latency"
	KindAverage = "average"
	KindScan    = "scan"
)

const (
	StatusOK            = "ok"
	StatusDiscontinuity = "discontinuity"
	StatusFailed        = "failed"
	StatusCancelled     = "cancelled"
)

// Report is one archived test outcome: the human readable text plus the
// structured result it was rendered from.
type Report struct {
	ID          string    `json:"id" gorm:"column:id;type:varchar(36);primaryKey;<-:create"`
	Kind        string    `json:"kind" gorm:"column:kind;type:varchar(20);not null;index"`
	Direction   string    `json:"direction" gorm:"column:direction;type:varchar(20);not null;default:''"`
	Status      string    `json:"status" gorm:"column:status;type:varchar(20);not null;default:''"`
	Text        string    `json:"text" gorm:"column:text;type:text;not null"`
	Payload     string    `json:"payload,omitempty" gorm:"column:payload;type:text"`
	CreatedDate time.Time `json:"createdDate" gorm:"column:created_date;type:timestamp;not null;index;<-:create"`
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedDate.IsZero() {
		r.CreatedDate = time.Now().UTC()
	}
	return nil
}

// NewReport renders payload as JSON alongside the text.
func NewReport(kind, direction, status, text string, payload any) (*Report, error) {
	r := &Report{Kind: kind, Direction: direction, Status: status, Text: text}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		r.Payload = string(data)
	}
	return r, nil
}

// ScanStatus maps a finished discontinuity search onto a report status.
func ScanStatus(code internal_discontinuity.ResultCode) string {
	switch code {
	case internal_discontinuity.ResultOK:
		return StatusOK
	case internal_discontinuity.ResultDiscontinuity:
		return StatusDiscontinuity
	default:
		return StatusFailed
	}
}
