package domain

import "time"

type RefreshStatus string

const (
	RefreshStatusQueued     RefreshStatus = "queued"
	RefreshStatusProcessing RefreshStatus = "processing"
	RefreshStatusDone       RefreshStatus = "done"
	RefreshStatusFailed     RefreshStatus = "failed"
)

// RefreshJob is one requested price refresh for an asset class.
type RefreshJob struct {
	ID        string
	Class     AssetClass
	Status    RefreshStatus
	Error     *string
	UpdatedAt time.Time
}
