// Package dashboard is the operator-side view over the report feed: a
// subscription handle with an explicit open/close lifecycle, a client-local
// status filter, and the two review actions. The handle holds only the
// last-received full snapshot; every push replaces it wholesale.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"report-moderation/models"

	"github.com/gorilla/websocket"
)

// Subscription is a live dashboard session
type Subscription struct {
	baseURL string
	token   string
	httpc   *http.Client

	conn *websocket.Conn
	done chan struct{}

	mu       sync.RWMutex
	snapshot []models.Report
	closed   bool
}

type snapshotMessage struct {
	Type string                `json:"type"`
	Data models.ReportSnapshot `json:"data"`
}

// Subscribe opens the live feed. baseURL is the service root
// (e.g. http://localhost:8080); token is an operator JWT. The returned
// subscription keeps replacing its snapshot until Close is called or the
// connection drops.
func Subscribe(ctx context.Context, baseURL, token string) (*Subscription, error) {
	wsURL := strings.Replace(baseURL, "http", "ws", 1) + "/api/v1/reports/listen"

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to open report feed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to open report feed: %w", err)
	}

	s := &Subscription{
		baseURL: baseURL,
		token:   token,
		httpc:   http.DefaultClient,
		conn:    conn,
		done:    make(chan struct{}),
	}

	go s.readLoop()

	return s, nil
}

// readLoop replaces the local snapshot on every push. No diffing; the feed
// contract is full replacement so the view can never mix stale and fresh
// records.
func (s *Subscription) readLoop() {
	defer close(s.done)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			wasClosed := s.closed
			s.mu.Unlock()
			if !wasClosed {
				log.Printf("Report feed closed: %v", err)
			}
			return
		}

		var msg snapshotMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Ignoring malformed feed message: %v", err)
			continue
		}
		if msg.Type != "reports" {
			continue
		}

		s.mu.Lock()
		s.snapshot = msg.Data.Reports
		s.mu.Unlock()
	}
}

// Close tears down the subscription
func (s *Subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.conn.Close()
	<-s.done
	return err
}

// Done is closed when the feed terminates
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Snapshot returns a copy of the last-received dataset, newest first
func (s *Subscription) Snapshot() []models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Report, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// Filter returns the subset of the last snapshot with the given status.
// A pure view operation; it never triggers a store read.
func (s *Subscription) Filter(status string) []models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.FilterByStatus(s.snapshot, status)
}

// Counts returns per-status totals over the last snapshot
func (s *Subscription) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int, 3)
	for _, r := range s.snapshot {
		counts[r.Status]++
	}
	return counts
}

// MarkReviewed advances a report to reviewed. The local snapshot is not
// touched; the visible change arrives with the next push.
func (s *Subscription) MarkReviewed(ctx context.Context, reportID int64) error {
	return s.review(ctx, models.ReviewRequest{ReportID: reportID, Status: models.StatusReviewed})
}

// MarkResolved advances a report to resolved with the service's default
// resolution text.
func (s *Subscription) MarkResolved(ctx context.Context, reportID int64) error {
	return s.review(ctx, models.ReviewRequest{ReportID: reportID, Status: models.StatusResolved})
}

func (s *Subscription) review(ctx context.Context, req models.ReviewRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal review request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/v1/reports/review", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build review request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpc.Do(httpReq)
	if err != nil {
		log.Printf("Error updating report %d status: %v", req.ReportID, err)
		return fmt.Errorf("failed to update report status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		log.Printf("Error updating report %d status: %d %s", req.ReportID, resp.StatusCode, payload)
		return fmt.Errorf("failed to update report status: %d", resp.StatusCode)
	}
	return nil
}
