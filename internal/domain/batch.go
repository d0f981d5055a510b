package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type SourceKind string

const (
	SourceKindInbound   SourceKind = "INBOUND"
	SourceKindOutbound  SourceKind = "OUTBOUND"
	SourceKindInventory SourceKind = "INVENTORY"
	SourceKindCatalog   SourceKind = "CATALOG"
)

// ParseSourceKind accepts the kind in any case, e.g. "inbound".
func ParseSourceKind(s string) (SourceKind, bool) {
	switch k := SourceKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case SourceKindInbound, SourceKindOutbound, SourceKindInventory, SourceKindCatalog:
		return k, true
	}
	return "", false
}

// IsMovement reports whether the kind is stored as movement facts.
func (k SourceKind) IsMovement() bool {
	return k == SourceKindInbound || k == SourceKindOutbound
}

type BatchStatus string

const (
	BatchStatusProcessing BatchStatus = "PROCESSING"
	BatchStatusProcessed  BatchStatus = "PROCESSED"
	BatchStatusFailed     BatchStatus = "FAILED"
)

type UploadBatch struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	SourceKind  SourceKind  `db:"source_kind" json:"source_kind"`
	FileName    string      `db:"file_name" json:"file_name"`
	Status      BatchStatus `db:"status" json:"status"`
	RowCount    int64       `db:"row_count" json:"row_count"`
	Error       *string     `db:"error" json:"error,omitempty"`
	UploadedAt  time.Time   `db:"uploaded_at" json:"uploaded_at"`
	ProcessedAt *time.Time  `db:"processed_at" json:"processed_at,omitempty"`
}
