package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"

	"report-moderation/models"
)

var (
	rawDB *sql.DB
	mock  sqlmock.Sqlmock
	d     *Database
)

func setUp() {
	rawDB, mock, _ = sqlmock.New()
	d = NewWithDB(rawDB)
}

func tearDown() {
	rawDB.Close()
}

var it = beforeeach.Create(setUp, tearDown)

var reportColumnNames = []string{
	"seq", "message_content", "provider", "category", "description", "email", "user_id",
	"submitted_at", "original_timestamp", "app_version", "platform",
	"status", "reviewed_at", "reviewed_by", "resolution", "attachments", "attachment_count",
}

func TestInsertReport(t *testing.T) {
	it(func() {
		report := &models.Report{
			MessageContent: "hi",
			Provider:       "gemini",
			Category:       "quality",
			Description:    "bad answer",
			Email:          "a@b.com",
			SubmittedAt:    time.Now().UTC(),
			Status:         models.StatusPending,
		}

		mock.ExpectExec("INSERT INTO reports").
			WillReturnResult(sqlmock.NewResult(7, 1))

		seq, err := d.InsertReport(context.Background(), report)
		if err != nil {
			t.Fatalf("InsertReport failed: %v", err)
		}
		if seq != 7 {
			t.Errorf("got seq %d, want 7", seq)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestInsertReportWithAttachments(t *testing.T) {
	it(func() {
		report := &models.Report{
			MessageContent: "see screenshot",
			Provider:       "openai",
			Category:       "inappropriate",
			Description:    "explicit response",
			Email:          "a@b.com",
			SubmittedAt:    time.Now().UTC(),
			Status:         models.StatusPending,
			Attachments: []models.Attachment{
				{
					FileName:       "shot.png",
					StoredFileName: "report_1700000000000_0.png",
					FileSize:       1234,
					FileType:       "image/png",
					Type:           "image",
					URL:            "/uploads/report_1700000000000_0.png",
					UploadedAt:     time.Now().UTC(),
				},
			},
			AttachmentCount: 1,
		}

		mock.ExpectExec("INSERT INTO reports").
			WillReturnResult(sqlmock.NewResult(8, 1))

		seq, err := d.InsertReport(context.Background(), report)
		if err != nil {
			t.Fatalf("InsertReport failed: %v", err)
		}
		if seq != 8 {
			t.Errorf("got seq %d, want 8", seq)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestGetAllReports(t *testing.T) {
	it(func() {
		now := time.Now().UTC()
		attachments, _ := json.Marshal([]models.Attachment{
			{
				FileName:       "shot.png",
				StoredFileName: "report_1700000000000_0.png",
				FileSize:       1234,
				FileType:       "image/png",
				Type:           "image",
				URL:            "/uploads/report_1700000000000_0.png",
				UploadedAt:     now,
			},
		})

		rows := sqlmock.NewRows(reportColumnNames).
			AddRow(2, "second", "gemini", "quality", "desc", "a@b.com", nil,
				now, nil, nil, nil,
				"pending", nil, nil, nil, attachments, 1).
			AddRow(1, "first", "openai", "harmful", "desc", "c@d.com", "user-1",
				now.Add(-time.Hour), "2026-08-30T12:00:00Z", "1.4.2", "ios",
				"reviewed", now, "admin", "Issue resolved", nil, 0)

		mock.ExpectQuery("SELECT(.|\n)+FROM reports(.|\n)+ORDER BY submitted_at DESC").
			WillReturnRows(rows)

		reports, err := d.GetAllReports(context.Background())
		if err != nil {
			t.Fatalf("GetAllReports failed: %v", err)
		}
		if len(reports) != 2 {
			t.Fatalf("got %d reports, want 2", len(reports))
		}

		first := reports[0]
		if first.Seq != 2 || first.Status != models.StatusPending {
			t.Errorf("unexpected first report: %+v", first)
		}
		if first.AttachmentCount != 1 || len(first.Attachments) != 1 {
			t.Errorf("attachment count mismatch: count=%d len=%d", first.AttachmentCount, len(first.Attachments))
		}
		if first.Attachments[0].StoredFileName != "report_1700000000000_0.png" {
			t.Errorf("unexpected attachment: %+v", first.Attachments[0])
		}
		if first.ReviewedAt != nil || first.ReviewedBy != nil || first.Resolution != nil {
			t.Errorf("pending report should have null reviewer fields: %+v", first)
		}

		second := reports[1]
		if second.Status != models.StatusReviewed {
			t.Errorf("got status %q, want reviewed", second.Status)
		}
		if second.ReviewedBy == nil || *second.ReviewedBy != "admin" {
			t.Errorf("unexpected reviewedBy: %v", second.ReviewedBy)
		}
		if second.Resolution == nil || *second.Resolution != "Issue resolved" {
			t.Errorf("unexpected resolution: %v", second.Resolution)
		}
		if second.UserID == nil || *second.UserID != "user-1" {
			t.Errorf("unexpected userId: %v", second.UserID)
		}
		if second.AttachmentCount != 0 || second.Attachments != nil {
			t.Errorf("report without attachments should stay empty: %+v", second)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestGetReportBySeqNotFound(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT(.|\n)+FROM reports WHERE seq").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows(reportColumnNames))

		_, err := d.GetReportBySeq(context.Background(), 42)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got err %v, want ErrNotFound", err)
		}
	})
}

func TestUpdateReportStatus(t *testing.T) {
	it(func() {
		testCases := []struct {
			name       string
			status     string
			resolution *string

			rowsAffected int64
			wantErr      error
		}{
			{
				name:         "mark reviewed",
				status:       models.StatusReviewed,
				rowsAffected: 1,
			},
			{
				name:         "mark resolved with resolution",
				status:       models.StatusResolved,
				resolution:   strPtr("Issue resolved"),
				rowsAffected: 1,
			},
			{
				name:         "missing report",
				status:       models.StatusReviewed,
				rowsAffected: 0,
				wantErr:      ErrNotFound,
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				expect := mock.ExpectExec("UPDATE reports")
				if tc.resolution != nil {
					expect.WithArgs(tc.status, sqlmock.AnyArg(), "admin", *tc.resolution, int64(5))
				} else {
					expect.WithArgs(tc.status, sqlmock.AnyArg(), "admin", int64(5))
				}
				expect.WillReturnResult(sqlmock.NewResult(0, tc.rowsAffected))

				err := d.UpdateReportStatus(context.Background(), 5, tc.status, "admin", tc.resolution)
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("got err %v, want %v", err, tc.wantErr)
				}
			})
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestChangeMarker(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT COUNT(.|\n)+FROM reports").
			WillReturnRows(sqlmock.NewRows([]string{"count", "max_seq", "last_review"}).
				AddRow(3, 9, 1700000123.5))

		m, err := d.ChangeMarker(context.Background())
		if err != nil {
			t.Fatalf("ChangeMarker failed: %v", err)
		}
		want := Marker{Count: 3, MaxSeq: 9, LastReview: 1700000123.5}
		if m != want {
			t.Errorf("got %+v, want %+v", m, want)
		}
	})
}

func TestInsertModerationEvent(t *testing.T) {
	it(func() {
		mock.ExpectExec("INSERT INTO moderation_events").
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := d.InsertModerationEvent(context.Background(), ModerationEvent{
			Actor:     "admin",
			ActorIP:   "10.0.0.1",
			Action:    "status.reviewed",
			ReportSeq: 5,
			Details:   map[string]any{"resolution": nil},
		})
		if err != nil {
			t.Fatalf("InsertModerationEvent failed: %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func strPtr(s string) *string {
	return &s
}
