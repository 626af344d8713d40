package handlers

import (
	"fmt"
	"regexp"
	"strings"

	"report-moderation/models"
)

const (
	// MaxFileSize is the attachment size ceiling (40 MiB)
	MaxFileSize = 40 << 20

	// DefaultResolution is stamped when a report is resolved without an
	// explicit resolution text
	DefaultResolution = "Issue resolved"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// allowedFileTypes is the attachment MIME allow-list
var allowedFileTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/quicktime": true,
	"video/mov":       true,
}

// validateSubmission checks the required report fields. It returns a
// human-readable reason when the submission must be rejected.
func validateSubmission(messageContent, provider, category, description, email string) (string, bool) {
	if messageContent == "" || provider == "" || category == "" || description == "" || email == "" {
		return "Missing required fields", false
	}
	if !emailPattern.MatchString(email) {
		return "Invalid email format", false
	}
	if !models.ValidCategory(category) {
		return fmt.Sprintf("Invalid category %s", category), false
	}
	return "", true
}

// storedFileName builds the server-generated storage key for one attachment:
// report_<submission-epoch-ms>_<index>.<extension>. The index keeps names
// unique within a submission, the timestamp across submissions.
func storedFileName(epochMillis int64, index int, originalName string) string {
	return fmt.Sprintf("report_%d_%d.%s", epochMillis, index, fileExtension(originalName))
}

// fileExtension extracts the extension from a client-supplied filename,
// falling back to "bin". The original name is never used as a storage path.
func fileExtension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return "bin"
	}
	return name[i+1:]
}
