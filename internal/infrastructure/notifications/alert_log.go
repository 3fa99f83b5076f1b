package notifications

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Alert delivery types recorded in the escalation log
const (
	AlertTypeSMS   = "sms"
	AlertTypeVoice = "voice_alert"
)

// AlertEntry is one recorded escalation delivery attempt
type AlertEntry struct {
	ID          string    `db:"id" json:"id"`
	VoicemailID string    `db:"voicemail_id" json:"voicemail_id"`
	AlertType   string    `db:"alert_type" json:"alert_type"`
	Recipient   string    `db:"recipient" json:"recipient"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// AlertLog persists escalation delivery attempts so staff can audit
// what was sent, to whom and when
type AlertLog struct {
	db *sqlx.DB
}

// NewAlertLog creates an alert log on top of an existing database connection
func NewAlertLog(db *sql.DB) *AlertLog {
	return &AlertLog{db: sqlx.NewDb(db, "postgres")}
}

// Record stores a delivery attempt
func (l *AlertLog) Record(ctx context.Context, voicemailID, alertType, recipient, status string) error {
	query := `
		INSERT INTO escalation_alerts (id, voicemail_id, alert_type, recipient, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := l.db.ExecContext(ctx, query,
		uuid.New().String(), voicemailID, alertType, recipient, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record escalation alert: %w", err)
	}
	return nil
}

// ListByVoicemail returns the delivery history for a voicemail, newest first
func (l *AlertLog) ListByVoicemail(ctx context.Context, voicemailID string) ([]AlertEntry, error) {
	query := `
		SELECT id, voicemail_id, alert_type, recipient, status, created_at
		FROM escalation_alerts
		WHERE voicemail_id = $1
		ORDER BY created_at DESC`

	var entries []AlertEntry
	if err := l.db.SelectContext(ctx, &entries, query, voicemailID); err != nil {
		return nil, fmt.Errorf("failed to list escalation alerts: %w", err)
	}
	return entries, nil
}
