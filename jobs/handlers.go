package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	jobmetrics "github.com/imobiflow/imobiflow/internal/jobs"
	"github.com/imobiflow/imobiflow/internal/subscriptions"
)

// LeadDistributor runs the round-robin assignment of unassigned leads.
type LeadDistributor interface {
	RunDistribution(ctx context.Context, tenantID, teamID uuid.UUID) (int, error)
}

// NewLeadDistributeHandler builds the handler for lead:distribute
// tasks.
func NewLeadDistributeHandler(logger *slog.Logger, distributor LeadDistributor, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("lead_distribute")
		var payload LeadDistributePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			_ = tracker.End(err)
			return asynq.SkipRetry
		}
		assigned, err := distributor.RunDistribution(ctx, payload.TenantID, payload.TeamID)
		if err != nil {
			logger.Error("lead distribution",
				slog.String("tenant", payload.TenantID.String()),
				slog.Any("error", err))
			return tracker.End(err)
		}
		logger.Info("lead distribution",
			slog.String("tenant", payload.TenantID.String()),
			slog.String("team", payload.TeamID.String()),
			slog.Int("assigned", assigned))
		return tracker.End(nil)
	}
}

// TrialStore lists and rewrites subscription snapshots for the scan.
type TrialStore interface {
	ListExpiredTrials(ctx context.Context, now time.Time) ([]subscriptions.Snapshot, error)
	Upsert(ctx context.Context, snapshot subscriptions.Snapshot) error
}

// NewTrialScanHandler builds the handler for subscription:trial_scan
// tasks. Expired trials flip to OVERDUE so the gate evaluation starts
// blocking without waiting for a provider webhook.
func NewTrialScanHandler(logger *slog.Logger, store TrialStore, expired prometheus.Counter, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("trial_scan")
		snapshots, err := store.ListExpiredTrials(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("trial scan", slog.Any("error", err))
			return tracker.End(err)
		}
		flipped := 0
		for _, snapshot := range snapshots {
			snapshot.Status = subscriptions.StatusOverdue
			if err := store.Upsert(ctx, snapshot); err != nil {
				logger.Error("trial scan upsert",
					slog.String("agency", snapshot.AgencyID.String()),
					slog.Any("error", err))
				return tracker.End(err)
			}
			if expired != nil {
				expired.Inc()
			}
			flipped++
		}
		if flipped > 0 {
			logger.Info("trial scan", slog.Int("expired", flipped))
		}
		return tracker.End(nil)
	}
}
