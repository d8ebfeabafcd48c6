package lifecycle

import (
	"context"
	"fmt"

	"github.com/campuscrisis/platform/internal/models"
	"github.com/campuscrisis/platform/internal/repository"
)

// Projector maintains the public alert view of incidents. Correlation is a
// textual title match, not a foreign key, so all sync operations are best
// effort: zero or multiple matches are tolerated, never rolled back.
type Projector struct {
	alerts repository.AlertRepository
}

func NewProjector(alerts repository.AlertRepository) *Projector {
	return &Projector{alerts: alerts}
}

// ProjectNew creates the public alert for a freshly reported incident.
// Incident reports skip the moderation queue: the alert is approved at
// creation and visible immediately.
func (p *Projector) ProjectNew(ctx context.Context, inc *models.Incident) error {
	alert := &models.Alert{
		Title:       inc.Title(),
		Category:    inc.Category,
		Severity:    inc.Severity,
		Status:      inc.Status,
		Location:    inc.Location,
		Description: inc.Description,
		Approved:    true,
		CreatedAt:   inc.CreatedAt,
	}
	if _, err := p.alerts.Create(ctx, alert); err != nil {
		return fmt.Errorf("error projecting alert for issue %d: %w", inc.ID, err)
	}
	return nil
}

// SyncStatus pushes an incident's status onto alerts sharing its derived
// title. Only status follows the incident; alert severity is frozen at
// projection time. Returns how many alerts matched.
func (p *Projector) SyncStatus(ctx context.Context, inc *models.Incident) (int64, error) {
	n, err := p.alerts.UpdateStatusByTitle(ctx, inc.Title(), inc.Status)
	if err != nil {
		return 0, fmt.Errorf("error syncing alerts for issue %d: %w", inc.ID, err)
	}
	return n, nil
}

// RemoveFor deletes the alerts projected from a deleted incident.
func (p *Projector) RemoveFor(ctx context.Context, inc *models.Incident) (int64, error) {
	n, err := p.alerts.DeleteByTitle(ctx, inc.Title())
	if err != nil {
		return 0, fmt.Errorf("error removing alerts for issue %d: %w", inc.ID, err)
	}
	return n, nil
}
