package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UpdateType records what kind of change a history entry documents.
type UpdateType string

const (
	UpdateStatusChange UpdateType = "statusChange"
	UpdateDataUpdate   UpdateType = "dataUpdate"
)

const noteDataUpdated = "Data updated"

// HistoryEntry is an immutable audit record of one update call.
type HistoryEntry struct {
	ID                uuid.UUID
	LeadDisplayID     string
	ActorID           uuid.UUID
	PreviousStatus    Status
	NewStatus         Status
	Note              string
	UpdateType        UpdateType
	RecipientID       *uuid.UUID
	ChangedBySubAdmin bool
	CreatedAt         time.Time
}

// NewHistoryEntry builds the entry for an update by actor. statusChanged tells
// whether the change set carried a status, even one equal to the previous one.
func NewHistoryEntry(displayID string, actor Actor, previous, next Status, statusChanged bool, recipient *uuid.UUID, at time.Time) HistoryEntry {
	entry := HistoryEntry{
		ID:                uuid.New(),
		LeadDisplayID:     displayID,
		ActorID:           actor.ID,
		PreviousStatus:    previous,
		NewStatus:         next,
		UpdateType:        UpdateDataUpdate,
		Note:              noteDataUpdated,
		RecipientID:       recipient,
		ChangedBySubAdmin: actor.Role == RoleSubAdmin,
		CreatedAt:         at,
	}
	if statusChanged {
		entry.UpdateType = UpdateStatusChange
		entry.Note = fmt.Sprintf("Status changed from %s to %s", previous, next)
	}
	return entry
}
