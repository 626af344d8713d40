package models

import (
	"strings"
	"time"
)

// Report status lifecycle values
const (
	StatusPending  = "pending"
	StatusReviewed = "reviewed"
	StatusResolved = "resolved"

	// StatusAll is a filter-only pseudo status accepted by snapshot filters
	StatusAll = "all"
)

// Report categories a submission must fall under
var Categories = []string{
	"harmful",
	"inappropriate",
	"misinformation",
	"bias",
	"privacy",
	"quality",
	"other",
}

// ValidCategory reports whether s is a member of the category enumeration
func ValidCategory(s string) bool {
	for _, c := range Categories {
		if s == c {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a member of the status enumeration
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusReviewed || s == StatusResolved
}

// Attachment represents a media file stored as evidence with a report
type Attachment struct {
	FileName       string    `json:"fileName"`
	StoredFileName string    `json:"storedFileName"`
	FileSize       int64     `json:"fileSize"`
	FileType       string    `json:"fileType"`
	Type           string    `json:"type"`
	URL            string    `json:"url"`
	UploadedAt     time.Time `json:"uploadedAt"`
}

// DeriveAttachmentType classifies a MIME type as image or video
func DeriveAttachmentType(fileType string) string {
	if strings.HasPrefix(fileType, "image/") {
		return "image"
	}
	return "video"
}

// Report represents one moderation complaint from the reports table
type Report struct {
	Seq               int64        `json:"id" db:"seq"`
	MessageContent    string       `json:"messageContent" db:"message_content"`
	Provider          string       `json:"provider" db:"provider"`
	Category          string       `json:"category" db:"category"`
	Description       string       `json:"description" db:"description"`
	Email             string       `json:"email" db:"email"`
	UserID            *string      `json:"userId" db:"user_id"`
	SubmittedAt       time.Time    `json:"submittedAt" db:"submitted_at"`
	OriginalTimestamp string       `json:"originalTimestamp,omitempty" db:"original_timestamp"`
	AppVersion        string       `json:"appVersion,omitempty" db:"app_version"`
	Platform          string       `json:"platform,omitempty" db:"platform"`
	Status            string       `json:"status" db:"status"`
	ReviewedAt        *time.Time   `json:"reviewedAt" db:"reviewed_at"`
	ReviewedBy        *string      `json:"reviewedBy" db:"reviewed_by"`
	Resolution        *string      `json:"resolution" db:"resolution"`
	Attachments       []Attachment `json:"attachments"`
	AttachmentCount   int          `json:"attachmentCount" db:"attachment_count"`
}

// FilterByStatus returns the subset of reports matching the given status.
// StatusAll (or empty) passes everything through. The input slice is never
// modified; filtering is a pure view operation over a snapshot.
func FilterByStatus(reports []Report, status string) []Report {
	if status == "" || status == StatusAll {
		out := make([]Report, len(reports))
		copy(out, reports)
		return out
	}
	out := make([]Report, 0, len(reports))
	for _, r := range reports {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// ReportSnapshot is a full replacement dataset pushed to dashboard clients
type ReportSnapshot struct {
	Reports []Report `json:"reports"`
	Count   int      `json:"count"`
}

// BroadcastMessage represents a message sent to WebSocket clients
type BroadcastMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// ReviewRequest is the payload for the review endpoint
type ReviewRequest struct {
	ReportID   int64   `json:"reportId"`
	Status     string  `json:"status"`
	Resolution *string `json:"resolution,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status           string `json:"status"`
	Service          string `json:"service"`
	Timestamp        string `json:"timestamp"`
	ConnectedClients int    `json:"connected_clients"`
	TotalReports     int    `json:"total_reports"`
}
