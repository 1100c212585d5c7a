package dto

import "time"

// CronRunRequest optionally pins the reference time of a cron run; defaults
// to now. Pinning is used by backfills and tests.
type CronRunRequest struct {
	AsOf *time.Time `json:"as_of,omitempty"`
}

func (r *CronRunRequest) GetAsOf() time.Time {
	if r != nil && r.AsOf != nil {
		return r.AsOf.UTC()
	}
	return time.Now().UTC()
}

// CronRunResponse summarizes a batch job. Failures never abort the batch, so
// processed+skipped+failed always equals the scanned row count.
type CronRunResponse struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}
