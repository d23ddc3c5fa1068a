package jobs

import (
	"context"

	"github.com/buddemax/kontext/internal/services"
)

// KnowledgeMaintenanceJob runs the knowledge cleanup pass on a schedule.
// The same pass also runs once at startup so a long-offline knowledge
// base is cleaned immediately.
type KnowledgeMaintenanceJob struct {
	maintenance *services.MaintenanceService
}

// NewKnowledgeMaintenanceJob creates the maintenance job
func NewKnowledgeMaintenanceJob(maintenance *services.MaintenanceService) *KnowledgeMaintenanceJob {
	return &KnowledgeMaintenanceJob{maintenance: maintenance}
}

// Name implements Job
func (j *KnowledgeMaintenanceJob) Name() string {
	return "knowledge-maintenance"
}

// Run implements Job
func (j *KnowledgeMaintenanceJob) Run(ctx context.Context) error {
	_, err := j.maintenance.Run(ctx)
	return err
}
