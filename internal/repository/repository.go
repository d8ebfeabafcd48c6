package repository

import (
	"context"
	"errors"

	"github.com/campuscrisis/platform/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// IncidentFilter narrows incident listings. Nil fields are ignored.
type IncidentFilter struct {
	Status   *models.Status
	Category *models.Category
	Limit    int
}

type IncidentRepository interface {
	Create(ctx context.Context, inc *models.Incident) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Incident, error)
	// UpdateStatus sets status and severity together and bumps updated_at.
	UpdateStatus(ctx context.Context, id int64, status models.Status, severity models.Severity) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f IncidentFilter) ([]models.Incident, error)
	Stats(ctx context.Context) (*models.IncidentStats, error)
}

type AlertRepository interface {
	Create(ctx context.Context, a *models.Alert) (int64, error)
	// List returns approved alerts only, ordered by severity rank then
	// creation time descending.
	List(ctx context.Context, limit int) ([]models.Alert, error)
	// UpdateStatusByTitle is the best-effort textual correlation with a
	// source incident; it reports how many rows matched.
	UpdateStatusByTitle(ctx context.Context, title string, status models.Status) (int64, error)
	DeleteByTitle(ctx context.Context, title string) (int64, error)
}

type ForumRepository interface {
	// Create inserts an unapproved post.
	Create(ctx context.Context, p *models.ForumPost) (int64, error)
	// Approve flips the flag on a pending post; ErrNotFound if the post is
	// missing or was already processed.
	Approve(ctx context.Context, id int64) error
	// DeletePending removes an unapproved post; approved posts cannot be
	// rejected through this path.
	DeletePending(ctx context.Context, id int64) error
	ListPending(ctx context.Context) ([]models.ForumPost, error)
	ListApproved(ctx context.Context, limit int) ([]models.ForumPost, error)
}

// ResourcePatch carries a partial resource update; nil fields are left
// untouched.
type ResourcePatch struct {
	Status      *string
	Quantity    *int
	Unit        *string
	IsAvailable *bool
	Notes       *string
	UpdatedBy   *string
}

func (p ResourcePatch) Empty() bool {
	return p.Status == nil && p.Quantity == nil && p.Unit == nil &&
		p.IsAvailable == nil && p.Notes == nil && p.UpdatedBy == nil
}

type ResourceRepository interface {
	List(ctx context.Context, limit int) ([]models.Resource, error)
	Update(ctx context.Context, id int64, patch ResourcePatch) error
}

type UserRepository interface {
	// Create returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, u *models.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
