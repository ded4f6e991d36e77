package partner

import (
	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// HistoryActionType classifies a patient history entry
type HistoryActionType string

const (
	HistoryRental     HistoryActionType = "RENTAL"
	HistorySale       HistoryActionType = "SALE"
	HistoryDiagnostic HistoryActionType = "DIAGNOSTIC"
	HistoryPayment    HistoryActionType = "PAYMENT"
	HistoryTransfer   HistoryActionType = "TRANSFER"
	HistoryNote       HistoryActionType = "NOTE"
)

// PatientHistory is an append-only trail of what happened to a patient
type PatientHistory struct {
	shared.BaseEntity
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	ActionType      HistoryActionType `gorm:"type:varchar(20);not null"`
	PerformedByID   uuid.UUID         `gorm:"type:uuid;not null"`
	RelatedItemID   *uuid.UUID        `gorm:"type:uuid"`
	RelatedItemType string            `gorm:"type:varchar(50)"`
	Details         shared.JSONMap    `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (PatientHistory) TableName() string {
	return "patient_histories"
}

// NewPatientHistory records an action against a patient
func NewPatientHistory(patientID, performedBy uuid.UUID, action HistoryActionType, itemID uuid.UUID, itemType string, details shared.JSONMap) *PatientHistory {
	if details == nil {
		details = shared.JSONMap{}
	}
	id := itemID
	return &PatientHistory{
		BaseEntity:      shared.NewBaseEntity(),
		PatientID:       patientID,
		ActionType:      action,
		PerformedByID:   performedBy,
		RelatedItemID:   &id,
		RelatedItemType: itemType,
		Details:         details,
	}
}
