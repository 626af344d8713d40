package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"report-moderation/models"
)

// InsertReport writes one report record and returns its assigned sequence.
// The caller is responsible for having validated the report; submitted_at and
// status must already be set.
func (d *Database) InsertReport(ctx context.Context, r *models.Report) (int64, error) {
	var attachmentsJSON []byte
	if len(r.Attachments) > 0 {
		b, err := json.Marshal(r.Attachments)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal attachments: %w", err)
		}
		attachmentsJSON = b
	}

	result, err := d.db.ExecContext(ctx, `
		INSERT INTO reports (
			message_content, provider, category, description, email, user_id,
			submitted_at, original_timestamp, app_version, platform,
			status, attachments, attachment_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.MessageContent,
		r.Provider,
		r.Category,
		r.Description,
		r.Email,
		nullableStrPtr(r.UserID),
		r.SubmittedAt,
		nullableStr(r.OriginalTimestamp),
		nullableStr(r.AppVersion),
		nullableStr(r.Platform),
		r.Status,
		nullableBytes(attachmentsJSON),
		r.AttachmentCount,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get report seq: %w", err)
	}
	return seq, nil
}

const reportColumns = `
	seq, message_content, provider, category, description, email, user_id,
	submitted_at, original_timestamp, app_version, platform,
	status, reviewed_at, reviewed_by, resolution, attachments, attachment_count`

// GetAllReports returns the full dataset ordered by submission time, newest
// first. Dashboard pushes always carry this full set, never a delta.
func (d *Database) GetAllReports(ctx context.Context) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + `
		FROM reports
		ORDER BY submitted_at DESC, seq DESC`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}

// GetReportBySeq returns a single report or ErrNotFound
func (d *Database) GetReportBySeq(ctx context.Context, seq int64) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE seq = ?`

	rows, err := d.db.QueryContext(ctx, query, seq)
	if err != nil {
		return nil, fmt.Errorf("failed to query report %d: %w", seq, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error reading report %d: %w", seq, err)
		}
		return nil, ErrNotFound
	}

	r, err := scanReport(rows)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateReportStatus applies one partial update touching only the reviewer
// fields. Attachments and submission data are never modified here.
func (d *Database) UpdateReportStatus(ctx context.Context, seq int64, status, reviewedBy string, resolution *string) error {
	reviewedAt := time.Now().UTC()

	var (
		result sql.Result
		err    error
	)
	if resolution != nil {
		result, err = d.db.ExecContext(ctx, `UPDATE reports
			SET status = ?, reviewed_at = ?, reviewed_by = ?, resolution = ?
			WHERE seq = ?`, status, reviewedAt, reviewedBy, *resolution, seq)
	} else {
		result, err = d.db.ExecContext(ctx, `UPDATE reports
			SET status = ?, reviewed_at = ?, reviewed_by = ?
			WHERE seq = ?`, status, reviewedAt, reviewedBy, seq)
	}
	if err != nil {
		return fmt.Errorf("failed to update report %d: %w", seq, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get status of report update: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetReportCount returns the total number of reports
func (d *Database) GetReportCount(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// Marker captures the observable write state of the reports table. The
// broadcast loop compares markers to detect both inserts and review updates.
type Marker struct {
	Count      int
	MaxSeq     int64
	LastReview float64
}

// ChangeMarker reads the current marker
func (d *Database) ChangeMarker(ctx context.Context) (Marker, error) {
	var m Marker
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MAX(seq), 0), COALESCE(MAX(UNIX_TIMESTAMP(reviewed_at)), 0)
		FROM reports
	`).Scan(&m.Count, &m.MaxSeq, &m.LastReview)
	if err != nil {
		return Marker{}, fmt.Errorf("failed to read change marker: %w", err)
	}
	return m, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(rows rowScanner) (models.Report, error) {
	var (
		r                 models.Report
		userID            sql.NullString
		originalTimestamp sql.NullString
		appVersion        sql.NullString
		platform          sql.NullString
		reviewedAt        sql.NullTime
		reviewedBy        sql.NullString
		resolution        sql.NullString
		attachmentsJSON   []byte
	)

	err := rows.Scan(
		&r.Seq,
		&r.MessageContent,
		&r.Provider,
		&r.Category,
		&r.Description,
		&r.Email,
		&userID,
		&r.SubmittedAt,
		&originalTimestamp,
		&appVersion,
		&platform,
		&r.Status,
		&reviewedAt,
		&reviewedBy,
		&resolution,
		&attachmentsJSON,
		&r.AttachmentCount,
	)
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to scan report: %w", err)
	}

	if userID.Valid {
		r.UserID = &userID.String
	}
	r.OriginalTimestamp = originalTimestamp.String
	r.AppVersion = appVersion.String
	r.Platform = platform.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		r.ReviewedAt = &t
	}
	if reviewedBy.Valid {
		r.ReviewedBy = &reviewedBy.String
	}
	if resolution.Valid {
		r.Resolution = &resolution.String
	}
	if len(attachmentsJSON) > 0 {
		if err := json.Unmarshal(attachmentsJSON, &r.Attachments); err != nil {
			return models.Report{}, fmt.Errorf("failed to unmarshal attachments for report %d: %w", r.Seq, err)
		}
	}

	return r, nil
}

func nullableStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableStrPtr(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func nullableBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
