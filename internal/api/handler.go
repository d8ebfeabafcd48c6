package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuscrisis/platform/internal/lifecycle"
	"github.com/campuscrisis/platform/internal/models"
	"github.com/campuscrisis/platform/internal/repository"
)

const displayTimeFormat = "Jan 2, 3:04 PM"

type Handler struct {
	coord          *lifecycle.Coordinator
	users          repository.UserRepository
	adminToken     string
	forumPageSize  int
	incidentsLimit int
}

func NewHandler(coord *lifecycle.Coordinator, users repository.UserRepository, adminToken string, forumPageSize int) *Handler {
	return &Handler{
		coord:          coord,
		users:          users,
		adminToken:     adminToken,
		forumPageSize:  forumPageSize,
		incidentsLimit: 50,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		respondError(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.GET("/health", h.health)

	api := r.Group("/api")
	{
		api.POST("/issues", h.submitIssue)
		api.GET("/issues", h.getIssues)
		api.POST("/issues/:id/status", h.updateIssueStatus)
		api.DELETE("/issues/:id", h.deleteIssue)

		api.GET("/alerts", h.getAlerts)

		api.POST("/posts", h.addPost)
		api.GET("/posts", h.getPosts)
		api.GET("/posts/pending", h.pendingPosts)
		api.POST("/posts/:id/disposition", h.dispositionPost)

		api.GET("/resources", h.getResources)
		api.POST("/resources/:id", h.updateResource)

		api.POST("/auth/signup", h.signup)
		api.POST("/auth/login", h.login)
		api.POST("/auth/logout", h.logout)
		api.GET("/auth/me", h.me)
		api.POST("/admin/login", h.adminLogin)
	}
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "message": message})
}

// respondEngineError maps the engine's error taxonomy onto the response
// envelope. Unrecognized errors are logged with detail and surfaced as a
// generic 500.
func respondEngineError(c *gin.Context, err error) {
	var verr *lifecycle.ValidationError
	var berr *lifecycle.BlockedContentError
	var nerr *lifecycle.NotFoundError

	switch {
	case errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, verr.Msg)
	case errors.As(err, &berr):
		respondError(c, http.StatusBadRequest, "Inappropriate content detected. Please revise and resubmit.")
	case errors.As(err, &nerr):
		respondError(c, http.StatusNotFound, nerr.Error())
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "An internal error occurred")
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		respondError(c, http.StatusBadRequest, "Invalid identifier")
		return 0, false
	}
	return id, true
}

func queryLimit(c *gin.Context, fallback, max int) int {
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= max {
			return lim
		}
	}
	return fallback
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type issueRequest struct {
	Category    string `json:"category"`
	Location    string `json:"location"`
	Description string `json:"description"`
	ContactInfo string `json:"contact_info"`
	Severity    string `json:"severity"`
}

func (h *Handler) submitIssue(c *gin.Context) {
	if !h.requireLogin(c) {
		return
	}

	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid JSON input")
		return
	}

	inc, err := h.coord.SubmitIncident(c.Request.Context(), lifecycle.IncidentSubmission{
		Category:    req.Category,
		Location:    req.Location,
		Description: req.Description,
		ContactInfo: req.ContactInfo,
		Severity:    req.Severity,
	})
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Issue reported successfully! It now appears on the dashboard.",
		"issue_id": inc.ID,
	})
}

func (h *Handler) getIssues(c *gin.Context) {
	ctx := c.Request.Context()
	limit := queryLimit(c, h.incidentsLimit, 500)

	incidents, err := h.coord.ListIncidents(ctx, c.Query("status"), c.Query("category"), limit)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	stats, err := h.coord.Stats(ctx)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	issues := make([]gin.H, 0, len(incidents))
	for i := range incidents {
		inc := &incidents[i]
		issues = append(issues, gin.H{
			"id":          inc.ID,
			"title":       inc.Title(),
			"category":    inc.Category,
			"location":    inc.Location,
			"description": inc.Description,
			"contact":     inc.ContactInfo,
			"status":      inc.Status,
			"severity":    inc.Severity,
			"time":        inc.CreatedAt.Format(displayTimeFormat),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"issues":  issues,
		"stats":   stats,
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateIssueStatus(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		respondError(c, http.StatusBadRequest, "Invalid input - status required")
		return
	}

	old, updated, err := h.coord.UpdateIncidentStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Issue status updated successfully",
		"issue_id":   id,
		"old_status": old,
		"new_status": updated,
	})
}

func (h *Handler) deleteIssue(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.coord.DeleteIncident(c.Request.Context(), id); err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Issue deleted successfully"})
}

// alertCategories drives the dashboard's icon mapping.
var alertCategories = map[models.Category]gin.H{
	models.CategoryPower:     {"label": "Power", "icon": "⚡"},
	models.CategoryWater:     {"label": "Water", "icon": "💧"},
	models.CategoryMedical:   {"label": "Medical", "icon": "🏥"},
	models.CategoryFood:      {"label": "Food", "icon": "🍽️"},
	models.CategoryTransport: {"label": "Transport", "icon": "🚌"},
	models.CategoryOther:     {"label": "Other", "icon": "📌"},
}

func (h *Handler) getAlerts(c *gin.Context) {
	limit := queryLimit(c, 20, 100)

	alerts, err := h.coord.ListAlerts(c.Request.Context(), limit)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	formatted := make([]gin.H, 0, len(alerts))
	for i := range alerts {
		a := &alerts[i]
		formatted = append(formatted, gin.H{
			"id":          a.ID,
			"title":       a.Title,
			"category":    a.Category,
			"severity":    a.Severity,
			"status":      a.Status,
			"location":    a.Location,
			"description": a.Description,
			"time":        a.CreatedAt.Format(displayTimeFormat),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"alerts":     formatted,
		"categories": alertCategories,
	})
}

type postRequest struct {
	UserName string `json:"user_name"`
	Message  string `json:"message"`
}

func (h *Handler) addPost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid JSON input")
		return
	}

	if _, err := h.coord.SubmitPost(c.Request.Context(), req.UserName, req.Message); err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Post submitted successfully! It will appear in the community after admin approval.",
	})
}

func (h *Handler) getPosts(c *gin.Context) {
	posts, err := h.coord.ListPublicPosts(c.Request.Context(), h.forumPageSize)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "posts": posts})
}

func (h *Handler) pendingPosts(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	posts, err := h.coord.ListPendingPosts(c.Request.Context())
	if err != nil {
		respondEngineError(c, err)
		return
	}

	formatted := make([]gin.H, 0, len(posts))
	for _, p := range posts {
		formatted = append(formatted, gin.H{
			"post_id":    p.ID,
			"user_name":  p.Author,
			"message":    p.Message,
			"created_at": p.CreatedAt.Format("Jan 2, 2006 3:04 PM"),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"posts":   formatted,
		"count":   len(formatted),
	})
}

type dispositionRequest struct {
	Approve *bool `json:"approve"`
}

func (h *Handler) dispositionPost(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dispositionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Approve == nil {
		respondError(c, http.StatusBadRequest, "approve parameter required")
		return
	}

	if err := h.coord.DispositionPost(c.Request.Context(), id, *req.Approve); err != nil {
		respondEngineError(c, err)
		return
	}

	message := "Forum post rejected and removed successfully."
	if *req.Approve {
		message = "Forum post approved successfully! It now appears in the community."
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func (h *Handler) getResources(c *gin.Context) {
	limit := queryLimit(c, 50, 100)

	resources, err := h.coord.ListResources(c.Request.Context(), limit)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	formatted := make([]gin.H, 0, len(resources))
	for i := range resources {
		r := &resources[i]
		lastUpdated := "Never"
		if !r.LastUpdated.IsZero() {
			lastUpdated = r.LastUpdated.Format(displayTimeFormat)
		}
		formatted = append(formatted, gin.H{
			"resource_id":  r.ID,
			"name":         r.Name,
			"category":     r.Category,
			"status":       r.Status,
			"quantity":     r.Quantity,
			"unit":         r.Unit,
			"is_available": r.IsAvailable,
			"notes":        r.Notes,
			"last_updated": lastUpdated,
			"updated_by":   r.UpdatedBy,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "resources": formatted})
}

type resourceRequest struct {
	Status      *string `json:"status"`
	Quantity    *int    `json:"quantity"`
	Unit        *string `json:"unit"`
	IsAvailable *bool   `json:"is_available"`
	Notes       *string `json:"notes"`
	UpdatedBy   *string `json:"updated_by"`
}

func (h *Handler) updateResource(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid JSON input")
		return
	}

	patch := repository.ResourcePatch{
		Status:      req.Status,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		IsAvailable: req.IsAvailable,
		Notes:       req.Notes,
		UpdatedBy:   req.UpdatedBy,
	}
	if err := h.coord.UpdateResource(c.Request.Context(), id, patch); err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Resource updated successfully",
		"resource_id": id,
	})
}
