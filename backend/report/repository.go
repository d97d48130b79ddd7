package report

import (
	"context"
	"fmt"
	"sync"

	"mangrovewatch/backend/api"
	"mangrovewatch/backend/store"

	"github.com/apex/log"
)

// Repository is the durable report list kept under store.KeyReports.
// Appends are serialized within the process; nothing is ever deduplicated
// or removed.
type Repository struct {
	store store.Store
	mu    sync.Mutex
}

func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// List returns every persisted report in submission order. A missing or
// malformed list reads as empty.
func (r *Repository) List(ctx context.Context) ([]api.Report, error) {
	var reports []api.Report
	if _, err := store.GetJSON(ctx, r.store, store.KeyReports, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]api.Report, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var mine []api.Report
	for _, rep := range all {
		if rep.UserID == userID {
			mine = append(mine, rep)
		}
	}
	return mine, nil
}

// Append adds rep to the end of the list and returns the new length.
func (r *Repository) Append(ctx context.Context, rep api.Report) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reports, err := r.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load reports: %w", err)
	}
	reports = append(reports, rep)
	if err := store.SetJSON(ctx, r.store, store.KeyReports, reports); err != nil {
		return 0, fmt.Errorf("failed to save reports: %w", err)
	}
	log.WithFields(log.Fields{
		"report_id": rep.ID,
		"user_id":   rep.UserID,
		"total":     len(reports),
	}).Info("Report stored")
	return len(reports), nil
}
