package database

import (
	"fmt"

	"github.com/apex/log"
)

// InitSchema creates the necessary database tables if they don't exist
func (d *Database) InitSchema() error {
	log.Info("Initializing report moderation schema...")

	reportsTableSQL := `
	CREATE TABLE IF NOT EXISTS reports(
		seq INT NOT NULL AUTO_INCREMENT,
		message_content TEXT NOT NULL,
		provider VARCHAR(64) NOT NULL,
		category ENUM('harmful', 'inappropriate', 'misinformation', 'bias', 'privacy', 'quality', 'other') NOT NULL,
		description TEXT NOT NULL,
		email VARCHAR(255) NOT NULL,
		user_id VARCHAR(255),
		submitted_at TIMESTAMP(3) NOT NULL,
		original_timestamp VARCHAR(64),
		app_version VARCHAR(64),
		platform VARCHAR(64),
		status ENUM('pending', 'reviewed', 'resolved') NOT NULL DEFAULT 'pending',
		reviewed_at TIMESTAMP(3) NULL,
		reviewed_by VARCHAR(255),
		resolution TEXT,
		attachments JSON,
		attachment_count INT NOT NULL DEFAULT 0,
		PRIMARY KEY (seq),
		INDEX status_index (status),
		INDEX submitted_at_index (submitted_at)
	)`

	if _, err := d.db.Exec(reportsTableSQL); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}
	log.Info("Reports table created/verified")

	moderationEventsTableSQL := `
	CREATE TABLE IF NOT EXISTS moderation_events(
		id INT NOT NULL AUTO_INCREMENT,
		actor VARCHAR(255),
		actor_ip VARCHAR(64),
		action VARCHAR(64) NOT NULL,
		target_type VARCHAR(32) NOT NULL,
		target_id VARCHAR(64) NOT NULL,
		details JSON,
		request_id VARCHAR(64),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		INDEX target_index (target_type, target_id)
	)`

	if _, err := d.db.Exec(moderationEventsTableSQL); err != nil {
		return fmt.Errorf("failed to create moderation_events table: %w", err)
	}
	log.Info("Moderation_events table created/verified")

	return nil
}
