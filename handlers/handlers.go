package handlers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"report-moderation/database"
	"report-moderation/middleware"
	"report-moderation/models"
	"report-moderation/rabbitmq"
	"report-moderation/storage"
	ws "report-moderation/websocket"

	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	db              *database.Database
	store           *storage.Store
	hub             *ws.Hub
	publisher       *rabbitmq.Publisher // nil when event publishing is disabled
	notify          func()
	defaultOperator string
}

// NewHandlers creates a new handlers instance. notify pokes the broadcast
// loop after any store write so dashboards get the fresh snapshot without
// waiting for the safety ticker.
func NewHandlers(db *database.Database, store *storage.Store, hub *ws.Hub, publisher *rabbitmq.Publisher, notify func(), defaultOperator string) *Handlers {
	return &Handlers{
		db:              db,
		store:           store,
		hub:             hub,
		publisher:       publisher,
		notify:          notify,
		defaultOperator: defaultOperator,
	}
}

// SubmitRequest is the JSON payload for report submission
type SubmitRequest struct {
	MessageContent string  `json:"messageContent"`
	Provider       string  `json:"provider"`
	Category       string  `json:"category"`
	Description    string  `json:"description"`
	Email          string  `json:"email"`
	UserID         *string `json:"userId"`
	Timestamp      string  `json:"timestamp"`
	AppVersion     string  `json:"appVersion"`
	Platform       string  `json:"platform"`
}

// SubmitReport handles POST /api/v1/reports for both JSON and multipart
// submissions
func (h *Handlers) SubmitReport(c *gin.Context) {
	if c.ContentType() == "multipart/form-data" {
		h.submitMultipart(c)
		return
	}
	h.submitJSON(c)
}

func (h *Handlers) submitJSON(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Failed to read report submission: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	if reason, ok := validateSubmission(req.MessageContent, req.Provider, req.Category, req.Description, req.Email); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": reason})
		return
	}

	report := models.Report{
		MessageContent:    req.MessageContent,
		Provider:          req.Provider,
		Category:          req.Category,
		Description:       req.Description,
		Email:             req.Email,
		UserID:            req.UserID,
		SubmittedAt:       time.Now().UTC(),
		OriginalTimestamp: req.Timestamp,
		AppVersion:        req.AppVersion,
		Platform:          req.Platform,
		Status:            models.StatusPending,
	}

	seq, err := h.db.InsertReport(c.Request.Context(), &report)
	if err != nil {
		log.Printf("Failed to insert report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error. Please try again later."})
		return
	}

	h.afterInsert(seq, &report)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"reportId": seq,
		"message":  "Report submitted successfully",
	})
}

func (h *Handlers) submitMultipart(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		log.Printf("Failed to parse multipart form: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid multipart form"})
		return
	}

	req := SubmitRequest{
		MessageContent: c.PostForm("messageContent"),
		Provider:       c.PostForm("provider"),
		Category:       c.PostForm("category"),
		Description:    c.PostForm("description"),
		Email:          c.PostForm("email"),
		Timestamp:      c.PostForm("timestamp"),
		AppVersion:     c.PostForm("appVersion"),
		Platform:       c.PostForm("platform"),
	}
	if userID := c.PostForm("userId"); userID != "" {
		req.UserID = &userID
	}

	if reason, ok := validateSubmission(req.MessageContent, req.Provider, req.Category, req.Description, req.Email); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": reason})
		return
	}

	// Validate every file before the first blob write so a rejected
	// submission never commits a partial attachment set.
	var accepted []*multipart.FileHeader
	for _, file := range form.File["attachments"] {
		if file == nil || file.Size == 0 {
			continue
		}
		if file.Size > MaxFileSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   fmt.Sprintf("File %s exceeds 40MB limit", file.Filename),
			})
			return
		}
		fileType := file.Header.Get("Content-Type")
		if !allowedFileTypes[fileType] {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   fmt.Sprintf("File type %s not allowed", fileType),
			})
			return
		}
		accepted = append(accepted, file)
	}

	// Stage all blobs, then commit the record. Any failure removes the
	// blobs staged so far; no orphans, no record.
	epoch := time.Now().UnixMilli()
	attachments := make([]models.Attachment, 0, len(accepted))
	var staged []string
	for i, file := range accepted {
		name := storedFileName(epoch, i, file.Filename)

		url, err := h.saveBlob(name, file)
		if err != nil {
			log.Printf("Failed to save attachment %s: %v", file.Filename, err)
			h.removeStaged(staged)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   fmt.Sprintf("Failed to save file %s", file.Filename),
			})
			return
		}
		staged = append(staged, name)

		fileType := file.Header.Get("Content-Type")
		attachments = append(attachments, models.Attachment{
			FileName:       file.Filename,
			StoredFileName: name,
			FileSize:       file.Size,
			FileType:       fileType,
			Type:           models.DeriveAttachmentType(fileType),
			URL:            url,
			UploadedAt:     time.Now().UTC(),
		})
	}

	report := models.Report{
		MessageContent:    req.MessageContent,
		Provider:          req.Provider,
		Category:          req.Category,
		Description:       req.Description,
		Email:             req.Email,
		UserID:            req.UserID,
		SubmittedAt:       time.Now().UTC(),
		OriginalTimestamp: req.Timestamp,
		AppVersion:        req.AppVersion,
		Platform:          req.Platform,
		Status:            models.StatusPending,
		Attachments:       attachments,
		AttachmentCount:   len(attachments),
	}

	seq, err := h.db.InsertReport(c.Request.Context(), &report)
	if err != nil {
		log.Printf("Failed to insert report: %v", err)
		h.removeStaged(staged)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error. Please try again later."})
		return
	}

	h.afterInsert(seq, &report)

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"reportId":        seq,
		"attachmentCount": len(attachments),
		"message":         "Report submitted successfully",
	})
}

func (h *Handlers) saveBlob(name string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return h.store.Save(name, src)
}

func (h *Handlers) removeStaged(staged []string) {
	for _, name := range staged {
		if err := h.store.Remove(name); err != nil {
			log.Printf("Warning: failed to remove staged blob %s: %v", name, err)
		}
	}
}

func (h *Handlers) afterInsert(seq int64, report *models.Report) {
	h.notify()

	if h.publisher == nil {
		return
	}
	event := gin.H{
		"reportId":    seq,
		"provider":    report.Provider,
		"category":    report.Category,
		"attachments": report.AttachmentCount,
		"submittedAt": report.SubmittedAt,
	}
	if err := h.publisher.Publish(rabbitmq.RouteReportCreated, event); err != nil {
		log.Printf("Warning: failed to publish report.created for %d: %v", seq, err)
	}
}

// ReviewReport handles POST /api/v1/reports/review. It applies exactly one
// partial update to the reviewer fields of the targeted record.
func (h *Handlers) ReviewReport(c *gin.Context) {
	var req models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	if req.ReportID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing reportId"})
		return
	}
	if req.Status != models.StatusReviewed && req.Status != models.StatusResolved {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": fmt.Sprintf("Invalid status %s", req.Status)})
		return
	}

	operator := middleware.OperatorFromContext(c, h.defaultOperator)

	resolution := req.Resolution
	if req.Status == models.StatusResolved && resolution == nil {
		text := DefaultResolution
		resolution = &text
	}

	err := h.db.UpdateReportStatus(c.Request.Context(), req.ReportID, req.Status, operator, resolution)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Report not found"})
		return
	}
	if err != nil {
		log.Printf("Failed to update report %d status: %v", req.ReportID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update report status"})
		return
	}

	// Audit trail; failures must not fail the review itself.
	if err := h.db.InsertModerationEvent(c.Request.Context(), database.ModerationEvent{
		Actor:     operator,
		ActorIP:   c.ClientIP(),
		Action:    "status." + req.Status,
		ReportSeq: req.ReportID,
		Details:   gin.H{"resolution": resolution},
	}); err != nil {
		log.Printf("Warning: failed to record moderation event for %d: %v", req.ReportID, err)
	}

	h.notify()

	if h.publisher != nil {
		event := gin.H{
			"reportId":   req.ReportID,
			"status":     req.Status,
			"reviewedBy": operator,
		}
		if err := h.publisher.Publish(rabbitmq.RouteReportReviewed, event); err != nil {
			log.Printf("Warning: failed to publish report.reviewed for %d: %v", req.ReportID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"reportId": req.ReportID,
		"status":   req.Status,
	})
}

// GetReports handles GET /api/v1/reports: the full dataset ordered newest
// first, optionally narrowed by a status filter. Filtering is applied over
// the full snapshot, never pushed into a second store read.
func (h *Handlers) GetReports(c *gin.Context) {
	status := c.DefaultQuery("status", models.StatusAll)
	if status != models.StatusAll && !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid status %s", status)})
		return
	}

	reports, err := h.db.GetAllReports(c.Request.Context())
	if err != nil {
		log.Printf("Failed to load reports: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reports"})
		return
	}

	filtered := models.FilterByStatus(reports, status)
	c.JSON(http.StatusOK, models.ReportSnapshot{
		Reports: filtered,
		Count:   len(filtered),
	})
}

// HealthCheck returns the service health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	connectedClients, _ := h.hub.GetStats()

	total, err := h.db.GetReportCount(c.Request.Context())
	if err != nil {
		log.Printf("Failed to count reports for health check: %v", err)
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:           "healthy",
		Service:          "report-moderation",
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		ConnectedClients: connectedClients,
		TotalReports:     total,
	})
}
