// Dev/test client for dev/test/troubleshooting.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"report-moderation/dashboard"
	"report-moderation/middleware"

	"github.com/apex/log"
)

var (
	serviceURL = flag.String("url", "http://127.0.0.1:8080", "Service base URL")
	jwtSecret  = flag.String("jwt_secret", "dev-secret", "Operator JWT secret (must match the service)")
	operator   = flag.String("operator", "admin", "Operator identity for review actions")
)

const contentType = "application/json"

// Minimal valid PNG header, enough for a smoke-test attachment
var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

func doSubmitJSON() int64 {
	log.Info("doSubmitJSON()")
	buf := `
	{
		"messageContent": "The model told me the moon landing was staged.",
		"provider": "gemini",
		"category": "misinformation",
		"description": "Confident false claim presented as fact.",
		"email": "tester@example.com",
		"appVersion": "1.4.2",
		"platform": "ios"
	}`

	resp, err := http.Post(*serviceURL+"/api/v1/reports", contentType, bytes.NewBufferString(buf))
	if err != nil {
		log.Errorf("Failed to call the server with %v", err)
		return 0
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	log.Infof("Done, %s: %v", resp.Status, string(body))

	var result struct {
		ReportID int64 `json:"reportId"`
	}
	json.Unmarshal(body, &result)
	return result.ReportID
}

func doSubmitMultipart() {
	log.Info("doSubmitMultipart()")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("messageContent", "Screenshot attached, response was explicit.")
	w.WriteField("provider", "openai")
	w.WriteField("category", "inappropriate")
	w.WriteField("description", "See attached screenshot.")
	w.WriteField("email", "tester@example.com")

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="attachments"; filename="screenshot.png"`)
	header.Set("Content-Type", "image/png")
	part, _ := w.CreatePart(header)
	part.Write(pngBytes)
	w.Close()

	resp, err := http.Post(*serviceURL+"/api/v1/reports", w.FormDataContentType(), &buf)
	if err != nil {
		log.Errorf("Failed to call the server with %v", err)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	log.Infof("Done, %s: %v", resp.Status, string(body))
}

func doReview(reportID int64) {
	log.Infof("doReview(%d)", reportID)

	token, err := middleware.SignOperatorToken(*jwtSecret, *operator, time.Hour)
	if err != nil {
		log.Errorf("Failed to mint operator token: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub, err := dashboard.Subscribe(ctx, *serviceURL, token)
	if err != nil {
		log.Errorf("Failed to subscribe: %v", err)
		return
	}
	defer sub.Close()

	// Give the initial snapshot a moment to land.
	time.Sleep(500 * time.Millisecond)
	log.Infof("Snapshot: %d reports, counts %v", len(sub.Snapshot()), sub.Counts())

	if reportID == 0 {
		snapshot := sub.Filter("pending")
		if len(snapshot) == 0 {
			log.Warn("No pending reports to review")
			return
		}
		reportID = snapshot[0].Seq
	}

	if err := sub.MarkReviewed(ctx, reportID); err != nil {
		log.Errorf("Failed to mark report %d reviewed: %v", reportID, err)
		return
	}
	log.Infof("Marked report %d reviewed", reportID)
}

func main() {
	flag.Parse()

	reportID := doSubmitJSON()
	doSubmitMultipart()
	doReview(reportID)
}
