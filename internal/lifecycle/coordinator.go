package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campuscrisis/platform/internal/moderation"
	"github.com/campuscrisis/platform/internal/models"
	"github.com/campuscrisis/platform/internal/repository"
)

// Coordinator orchestrates every mutating request: content filter, then
// store, then alert projection or moderation queue. It is the only
// stateful-workflow component; everything it calls is synchronous within
// the request.
type Coordinator struct {
	incidents repository.IncidentRepository
	alerts    repository.AlertRepository
	forum     repository.ForumRepository
	resources repository.ResourceRepository
	filter    *moderation.Filter
	projector *Projector
}

func NewCoordinator(
	incidents repository.IncidentRepository,
	alerts repository.AlertRepository,
	forum repository.ForumRepository,
	resources repository.ResourceRepository,
	filter *moderation.Filter,
) *Coordinator {
	return &Coordinator{
		incidents: incidents,
		alerts:    alerts,
		forum:     forum,
		resources: resources,
		filter:    filter,
		projector: NewProjector(alerts),
	}
}

// IncidentSubmission is the untyped inbound report; every field is
// validated here before anything is written.
type IncidentSubmission struct {
	Category    string
	Location    string
	Description string
	ContactInfo string
	Severity    string
}

// SubmitIncident runs the full intake pipeline. The incident write and the
// alert projection are not one transaction: if projection fails the
// incident stays and the gap is logged, not rolled back.
func (c *Coordinator) SubmitIncident(ctx context.Context, sub IncidentSubmission) (*models.Incident, error) {
	location := c.filter.Sanitize(sub.Location)
	description := c.filter.Sanitize(sub.Description)
	contact := c.filter.Sanitize(sub.ContactInfo)

	if sub.Category == "" || location == "" || description == "" || contact == "" {
		return nil, validationErrorf("all fields are required")
	}

	for field, text := range map[string]string{"description": description, "location": location} {
		if term, blocked := c.filter.Classify(text); blocked {
			slog.Info("submission blocked by content filter", "field", field, "term", term)
			return nil, &BlockedContentError{Field: field, Term: term}
		}
	}

	category, ok := models.ParseCategory(sub.Category)
	if !ok {
		return nil, validationErrorf("invalid category: %s", sub.Category)
	}

	severity, ok := models.ParseSeverity(sub.Severity)
	if !ok {
		severity = models.SeverityYellow
	}

	inc := &models.Incident{
		Category:    category,
		Location:    location,
		Description: description,
		ContactInfo: contact,
		Status:      models.StatusReported,
		Severity:    severity,
	}
	if _, err := c.incidents.Create(ctx, inc); err != nil {
		return nil, fmt.Errorf("error creating issue: %w", err)
	}

	if err := c.projector.ProjectNew(ctx, inc); err != nil {
		// Recoverable inconsistency: issue persisted, alert missing.
		slog.Error("alert projection failed after issue write", "issue_id", inc.ID, "error", err)
	}

	return inc, nil
}

// UpdateIncidentStatus recomputes severity from the new status, stores
// both, and pushes the status onto matching alerts best-effort.
func (c *Coordinator) UpdateIncidentStatus(ctx context.Context, id int64, status string) (old, updated models.Status, err error) {
	newStatus, ok := models.ParseStatus(status)
	if !ok {
		return "", "", validationErrorf("invalid status: %s", status)
	}

	inc, err := c.incidents.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return "", "", &NotFoundError{Resource: "issue"}
	}
	if err != nil {
		return "", "", fmt.Errorf("error loading issue: %w", err)
	}

	old = inc.Status
	severity := models.SeverityFor(newStatus)
	if err := c.incidents.UpdateStatus(ctx, id, newStatus, severity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", "", &NotFoundError{Resource: "issue"}
		}
		return "", "", fmt.Errorf("error updating issue status: %w", err)
	}

	inc.Status = newStatus
	inc.Severity = severity
	if n, err := c.projector.SyncStatus(ctx, inc); err != nil {
		slog.Error("alert status sync failed", "issue_id", id, "error", err)
	} else if n != 1 {
		slog.Warn("alert status sync matched unexpected row count", "issue_id", id, "title", inc.Title(), "matched", n)
	}

	return old, newStatus, nil
}

// DeleteIncident removes the incident and cascades to alerts sharing its
// derived title.
func (c *Coordinator) DeleteIncident(ctx context.Context, id int64) error {
	inc, err := c.incidents.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "issue"}
	}
	if err != nil {
		return fmt.Errorf("error loading issue: %w", err)
	}

	if err := c.incidents.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "issue"}
		}
		return fmt.Errorf("error deleting issue: %w", err)
	}

	if n, err := c.projector.RemoveFor(ctx, inc); err != nil {
		slog.Error("alert cascade delete failed", "issue_id", id, "error", err)
	} else {
		slog.Info("issue deleted", "issue_id", id, "alerts_removed", n)
	}
	return nil
}

// ListIncidents tolerates unknown filter values the way the dashboard
// always has: an unparsable status or category is simply ignored.
func (c *Coordinator) ListIncidents(ctx context.Context, status, category string, limit int) ([]models.Incident, error) {
	f := repository.IncidentFilter{Limit: limit}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if s, ok := models.ParseStatus(status); ok {
		f.Status = &s
	}
	if cat, ok := models.ParseCategory(category); ok {
		f.Category = &cat
	}
	return c.incidents.List(ctx, f)
}

func (c *Coordinator) Stats(ctx context.Context) (*models.IncidentStats, error) {
	return c.incidents.Stats(ctx)
}

func (c *Coordinator) ListAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 20
	}
	return c.alerts.List(ctx, limit)
}

// SubmitPost gates the author name and message through the content filter,
// then queues the post unapproved.
func (c *Coordinator) SubmitPost(ctx context.Context, author, message string) (int64, error) {
	author = c.filter.Sanitize(author)
	message = c.filter.Sanitize(message)
	if author == "" || message == "" {
		return 0, validationErrorf("user name and message are required")
	}

	for field, text := range map[string]string{"user_name": author, "message": message} {
		if term, blocked := c.filter.Classify(text); blocked {
			slog.Info("post blocked by content filter", "field", field, "term", term)
			return 0, &BlockedContentError{Field: field, Term: term}
		}
	}

	post := &models.ForumPost{Author: author, Message: message}
	id, err := c.forum.Create(ctx, post)
	if err != nil {
		return 0, fmt.Errorf("error queueing post: %w", err)
	}
	return id, nil
}

// DispositionPost approves or rejects a pending post exactly once. Repeat
// dispositions and approved-post rejections surface as NotFoundError.
func (c *Coordinator) DispositionPost(ctx context.Context, id int64, approve bool) error {
	var err error
	if approve {
		err = c.forum.Approve(ctx, id)
	} else {
		err = c.forum.DeletePending(ctx, id)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "post"}
	}
	if err != nil {
		return fmt.Errorf("error dispositioning post: %w", err)
	}
	return nil
}

func (c *Coordinator) ListPendingPosts(ctx context.Context) ([]models.ForumPost, error) {
	return c.forum.ListPending(ctx)
}

// PublicPost is the reader-facing shape of an approved post. Comments is
// always present as an empty array; threaded replies are not stored, but
// clients receive the field.
type PublicPost struct {
	Author   string   `json:"author"`
	Text     string   `json:"text"`
	Age      string   `json:"time"`
	Comments []string `json:"comments"`
}

func (c *Coordinator) ListPublicPosts(ctx context.Context, limit int) ([]PublicPost, error) {
	posts, err := c.forum.ListApproved(ctx, limit)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := make([]PublicPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, PublicPost{
			Author:   p.Author,
			Text:     p.Message,
			Age:      models.RelativeAge(p.CreatedAt, now),
			Comments: []string{},
		})
	}
	return out, nil
}

func (c *Coordinator) ListResources(ctx context.Context, limit int) ([]models.Resource, error) {
	return c.resources.List(ctx, limit)
}

func (c *Coordinator) UpdateResource(ctx context.Context, id int64, patch repository.ResourcePatch) error {
	if patch.Empty() {
		return validationErrorf("no valid fields provided for update")
	}
	err := c.resources.Update(ctx, id, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "resource"}
	}
	if err != nil {
		return fmt.Errorf("error updating resource: %w", err)
	}
	return nil
}
