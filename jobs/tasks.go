// Package jobs contains the background task definitions and the Asynq
// worker wiring.
package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLeadDistribute assigns unassigned leads to a team's
	// corretores in round-robin order.
	TaskLeadDistribute = "lead:distribute"
	// TaskTrialScan sweeps subscriptions for expired trials.
	TaskTrialScan = "subscription:trial_scan"
)

// LeadDistributePayload names the tenant and team a distribution run
// targets.
type LeadDistributePayload struct {
	TenantID uuid.UUID `json:"tenantId"`
	TeamID   uuid.UUID `json:"teamId"`
}

// NewLeadDistributeTask constructs the distribution task.
func NewLeadDistributeTask(payload LeadDistributePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadDistribute, data), nil
}

// NewTrialScanTask constructs the trial scan task. It carries no
// payload; the scan always sweeps the whole subscriptions table.
func NewTrialScanTask() *asynq.Task {
	return asynq.NewTask(TaskTrialScan, nil)
}
