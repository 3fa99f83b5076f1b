package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
	"github.com/heidicalls/voicemail-triage/internal/domain/repositories"
	"github.com/heidicalls/voicemail-triage/internal/infrastructure/clients/postgres"
	apperrors "github.com/heidicalls/voicemail-triage/pkg/errors"
)

const voicemailsTable = "voicemails"

// Actioned items older than this are hidden from default listings.
// Archived items are always kept.
const actionedHideWindow = 48 * time.Hour

// VoicemailAdapter implements the VoicemailRepository interface using PostgreSQL
type VoicemailAdapter struct {
	db     *goqu.Database
	client *postgres.Client
}

// NewVoicemailAdapter creates a new PostgreSQL voicemail adapter
func NewVoicemailAdapter(client *postgres.Client) repositories.VoicemailRepository {
	return &VoicemailAdapter{
		db:     goqu.New("postgres", client.DB()),
		client: client,
	}
}

// voicemailRow maps a voicemail onto the relational schema. Nested
// documents are stored as JSONB, fields the list endpoints filter or
// sort on get their own columns.
type voicemailRow struct {
	VoicemailID string `db:"voicemail_id"`

	Language     string          `db:"language"`
	LanguageInfo json.RawMessage `db:"language_info"`

	UrgencyLevel      int     `db:"urgency_level"`
	UrgencyReasoning  string  `db:"urgency_reasoning"`
	UrgencyConfidence float64 `db:"urgency_confidence"`

	Intent     string `db:"intent"`
	Summary    string `db:"summary"`
	ActionItem string `db:"action_item"`

	ExtractedEntities json.RawMessage `db:"extracted_entities"`
	CallbackNumber    sql.NullString  `db:"callback_number"`
	MentionedDoctor   sql.NullString  `db:"mentioned_doctor"`

	LocationInfo json.RawMessage `db:"location_info"`
	PatientMatch json.RawMessage `db:"patient_match"`
	UIState      json.RawMessage `db:"ui_state"`
	Escalation   json.RawMessage `db:"escalation"`

	IsAmbiguous         bool `db:"is_ambiguous"`
	EscalationTriggered bool `db:"escalation_triggered"`

	AudioFileURL sql.NullString `db:"audio_file_url"`

	IsPIISafe           bool           `db:"is_pii_safe"`
	RedactedTranscript  string         `db:"redacted_transcript"`
	CallerPhoneRedacted sql.NullString `db:"caller_phone_redacted"`

	CreatedAt   time.Time      `db:"created_at"`
	ProcessedAt sql.NullTime   `db:"processed_at"`
	Status      string         `db:"status"`
	AssignedTo  sql.NullString `db:"assigned_to"`
	Notes       sql.NullString `db:"notes"`

	CallbackStatus      sql.NullString `db:"callback_status"`
	CallbackAttemptedAt sql.NullTime   `db:"callback_attempted_at"`
	CallbackCompletedAt sql.NullTime   `db:"callback_completed_at"`
	CallbackBy          sql.NullString `db:"callback_by"`
	CallbackNotes       sql.NullString `db:"callback_notes"`

	CallerPhoneHash     sql.NullString  `db:"caller_phone_hash"`
	RelatedVoicemailIDs json.RawMessage `db:"related_voicemail_ids"`
	CallCountToday      int             `db:"call_count_today"`
	IsRepeatCaller      bool            `db:"is_repeat_caller"`

	EscalationAcknowledged   bool           `db:"escalation_acknowledged"`
	EscalationAcknowledgedAt sql.NullTime   `db:"escalation_acknowledged_at"`
	EscalationAcknowledgedBy sql.NullString `db:"escalation_acknowledged_by"`
	EscalationReminderCount  int            `db:"escalation_reminder_count"`
	EscalationLastReminderAt sql.NullTime   `db:"escalation_last_reminder_at"`

	PMSSystem        sql.NullString `db:"pms_system"`
	PMSPatientID     sql.NullString `db:"pms_patient_id"`
	PMSLinked        bool           `db:"pms_linked"`
	PMSLastSync      sql.NullTime   `db:"pms_last_sync"`
	PMSAppointmentID sql.NullString `db:"pms_appointment_id"`
}

// Create stores a newly triaged voicemail
func (a *VoicemailAdapter) Create(ctx context.Context, voicemail *entities.TriagedVoicemail) error {
	row, err := toRow(voicemail)
	if err != nil {
		return apperrors.NewInternalError("failed to encode voicemail", err)
	}

	query, args, err := a.db.Insert(voicemailsTable).Rows(row).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to insert voicemail", err)
	}
	return nil
}

// GetByID retrieves a voicemail by its ID
func (a *VoicemailAdapter) GetByID(ctx context.Context, id string) (*entities.TriagedVoicemail, error) {
	query, args, err := a.db.From(voicemailsTable).
		Select(selectColumns()...).
		Where(goqu.C("voicemail_id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build select query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query voicemail", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, apperrors.NewInternalError("failed to read voicemail row", err)
		}
		return nil, apperrors.NewNotFoundError("voicemail not found: " + id)
	}

	row, err := scanRow(rows)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to scan voicemail row", err)
	}
	return fromRow(row)
}

// Update replaces a stored voicemail record
func (a *VoicemailAdapter) Update(ctx context.Context, voicemail *entities.TriagedVoicemail) error {
	row, err := toRow(voicemail)
	if err != nil {
		return apperrors.NewInternalError("failed to encode voicemail", err)
	}

	query, args, err := a.db.Update(voicemailsTable).
		Set(row).
		Where(goqu.C("voicemail_id").Eq(voicemail.VoicemailID)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update voicemail", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read update result", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("voicemail not found: " + voicemail.VoicemailID)
	}
	return nil
}

// Delete removes a voicemail record
func (a *VoicemailAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete(voicemailsTable).
		Where(goqu.C("voicemail_id").Eq(id)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete voicemail", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read delete result", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("voicemail not found: " + id)
	}
	return nil
}

// List returns a filtered, sorted page of voicemails plus the total count
func (a *VoicemailAdapter) List(ctx context.Context, filter repositories.VoicemailFilter) ([]*entities.TriagedVoicemail, int, error) {
	conditions := buildConditions(filter)

	countQuery, countArgs, err := a.db.From(voicemailsTable).
		Select(goqu.COUNT("*")).
		Where(conditions...).
		ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count voicemails", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	query, args, err := a.db.From(voicemailsTable).
		Select(selectColumns()...).
		Where(conditions...).
		Order(buildOrder(filter.SortBy, filter.SortOrder)).
		Limit(uint(pageSize)).
		Offset(uint((page - 1) * pageSize)).
		ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build list query", err)
	}

	items, err := a.queryVoicemails(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByPhoneHash returns all voicemails sharing a caller phone hash,
// newest first
func (a *VoicemailAdapter) ListByPhoneHash(ctx context.Context, phoneHash string) ([]*entities.TriagedVoicemail, error) {
	query, args, err := a.db.From(voicemailsTable).
		Select(selectColumns()...).
		Where(goqu.C("caller_phone_hash").Eq(phoneHash)).
		Order(goqu.C("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build phone hash query", err)
	}
	return a.queryVoicemails(ctx, query, args)
}

// ListPendingCallbacks returns non-archived voicemails awaiting a
// callback, most urgent and oldest first
func (a *VoicemailAdapter) ListPendingCallbacks(ctx context.Context) ([]*entities.TriagedVoicemail, error) {
	query, args, err := a.db.From(voicemailsTable).
		Select(selectColumns()...).
		Where(
			goqu.C("status").Neq(string(entities.StatusArchived)),
			goqu.C("callback_status").In(
				string(entities.CallbackPending),
				string(entities.CallbackAttempted),
				string(entities.CallbackNoAnswer),
			),
		).
		Order(goqu.C("urgency_level").Desc(), goqu.C("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build pending callbacks query", err)
	}
	return a.queryVoicemails(ctx, query, args)
}

// ListActiveEscalations returns triggered, unacknowledged escalations
func (a *VoicemailAdapter) ListActiveEscalations(ctx context.Context) ([]*entities.TriagedVoicemail, error) {
	query, args, err := a.db.From(voicemailsTable).
		Select(selectColumns()...).
		Where(
			goqu.C("escalation_triggered").IsTrue(),
			goqu.C("escalation_acknowledged").IsFalse(),
		).
		Order(goqu.C("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build active escalations query", err)
	}
	return a.queryVoicemails(ctx, query, args)
}

// ListAll returns every stored voicemail
func (a *VoicemailAdapter) ListAll(ctx context.Context) ([]*entities.TriagedVoicemail, error) {
	query, args, err := a.db.From(voicemailsTable).
		Select(selectColumns()...).
		Order(goqu.C("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list all query", err)
	}
	return a.queryVoicemails(ctx, query, args)
}

func (a *VoicemailAdapter) queryVoicemails(ctx context.Context, query string, args []interface{}) ([]*entities.TriagedVoicemail, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query voicemails", err)
	}
	defer rows.Close()

	items := []*entities.TriagedVoicemail{}
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan voicemail row", err)
		}
		voicemail, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		items = append(items, voicemail)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read voicemail rows", err)
	}
	return items, nil
}

func buildConditions(filter repositories.VoicemailFilter) []goqu.Expression {
	var conditions []goqu.Expression

	if filter.HideOldActioned {
		cutoff := time.Now().UTC().Add(-actionedHideWindow)
		conditions = append(conditions, goqu.Or(
			goqu.C("status").Neq(string(entities.StatusActioned)),
			goqu.C("created_at").Gte(cutoff),
		))
	}
	if filter.Status != "" {
		conditions = append(conditions, goqu.C("status").Eq(filter.Status))
	}
	if filter.Intent != "" {
		conditions = append(conditions, goqu.C("intent").Eq(filter.Intent))
	}
	if filter.UrgencyMin > 0 {
		conditions = append(conditions, goqu.C("urgency_level").Gte(filter.UrgencyMin))
	}
	if filter.UrgencyMax > 0 {
		conditions = append(conditions, goqu.C("urgency_level").Lte(filter.UrgencyMax))
	}
	if filter.AmbiguousOnly {
		conditions = append(conditions, goqu.Or(
			goqu.C("intent").Eq(string(entities.IntentAmbiguous)),
			goqu.C("is_ambiguous").IsTrue(),
		))
	}
	if filter.Phone != "" {
		pattern := "%" + filter.Phone + "%"
		conditions = append(conditions, goqu.Or(
			goqu.C("caller_phone_redacted").ILike(pattern),
			goqu.C("callback_number").ILike(pattern),
		))
	}
	if filter.Symptom != "" {
		conditions = append(conditions, keywordCondition("symptoms", filter.Symptom))
	}
	if filter.Medication != "" {
		conditions = append(conditions, keywordCondition("medication_names", filter.Medication))
	}
	if filter.Doctor != "" {
		conditions = append(conditions, goqu.C("mentioned_doctor").ILike("%"+filter.Doctor+"%"))
	}
	return conditions
}

// keywordCondition searches a JSONB entity array, falling back to the
// redacted transcript
func keywordCondition(field, keyword string) goqu.Expression {
	pattern := "%" + keyword + "%"
	return goqu.Or(
		goqu.L("extracted_entities->? ::text ILIKE ?", field, pattern),
		goqu.C("redacted_transcript").ILike(pattern),
	)
}

func buildOrder(sortBy, sortOrder string) exp.OrderedExpression {
	var col string
	switch sortBy {
	case "urgency":
		col = "urgency_level"
	case "status":
		col = "status"
	case "confidence":
		col = "urgency_confidence"
	default:
		col = "created_at"
	}
	if sortOrder == "asc" {
		return goqu.C(col).Asc()
	}
	return goqu.C(col).Desc()
}

func toRow(v *entities.TriagedVoicemail) (*voicemailRow, error) {
	row := &voicemailRow{
		VoicemailID:         v.VoicemailID,
		Language:            v.Language,
		UrgencyLevel:        v.Urgency.Level,
		UrgencyReasoning:    v.Urgency.Reasoning,
		UrgencyConfidence:   v.Urgency.Confidence,
		Intent:              string(v.Intent),
		Summary:             v.Summary,
		ActionItem:          v.ActionItem,
		IsPIISafe:           v.IsPIISafe,
		RedactedTranscript:  v.RedactedTranscript,
		CreatedAt:           v.CreatedAt,
		Status:              string(v.Status),
		CallCountToday:      v.CallCountToday,
		IsRepeatCaller:      v.IsRepeatCaller,
	}
	row.EscalationAcknowledged = v.EscalationAcknowledged
	row.EscalationReminderCount = v.EscalationReminderCount
	row.PMSLinked = v.PMSLinked

	row.AudioFileURL = nullString(v.AudioFileURL)
	row.CallerPhoneRedacted = nullString(v.CallerPhoneRedacted)
	row.AssignedTo = nullString(v.AssignedTo)
	row.Notes = nullString(v.Notes)
	row.CallbackStatus = nullString(string(v.CallbackStatus))
	row.CallbackBy = nullString(v.CallbackBy)
	row.CallbackNotes = nullString(v.CallbackNotes)
	row.CallerPhoneHash = nullString(v.CallerPhoneHash)
	row.EscalationAcknowledgedBy = nullString(v.EscalationAcknowledgedBy)
	row.PMSSystem = nullString(v.PMSSystem)
	row.PMSPatientID = nullString(v.PMSPatientID)
	row.PMSAppointmentID = nullString(v.PMSAppointmentID)

	row.ProcessedAt = nullTime(v.ProcessedAt)
	row.CallbackAttemptedAt = nullTime(v.CallbackAttemptedAt)
	row.CallbackCompletedAt = nullTime(v.CallbackCompletedAt)
	row.EscalationAcknowledgedAt = nullTime(v.EscalationAcknowledgedAt)
	row.EscalationLastReminderAt = nullTime(v.EscalationLastReminderAt)
	row.PMSLastSync = nullTime(v.PMSLastSync)

	if v.UIState != nil {
		row.IsAmbiguous = v.UIState.IsAmbiguous
	}
	if v.Intent == entities.IntentAmbiguous {
		row.IsAmbiguous = true
	}
	if v.Escalation != nil {
		row.EscalationTriggered = v.Escalation.EscalationTriggered
	}
	if v.ExtractedEntities != nil {
		row.CallbackNumber = nullString(v.ExtractedEntities.CallbackNumber)
		row.MentionedDoctor = nullString(v.ExtractedEntities.MentionedDoctor)
	}

	var err error
	if row.LanguageInfo, err = marshalNullable(v.LanguageInfo); err != nil {
		return nil, err
	}
	if row.ExtractedEntities, err = marshalNullable(v.ExtractedEntities); err != nil {
		return nil, err
	}
	if row.LocationInfo, err = marshalNullable(v.LocationInfo); err != nil {
		return nil, err
	}
	if row.PatientMatch, err = marshalNullable(v.PatientMatch); err != nil {
		return nil, err
	}
	if row.UIState, err = marshalNullable(v.UIState); err != nil {
		return nil, err
	}
	if row.Escalation, err = marshalNullable(v.Escalation); err != nil {
		return nil, err
	}
	if len(v.RelatedVoicemailIDs) > 0 {
		if row.RelatedVoicemailIDs, err = json.Marshal(v.RelatedVoicemailIDs); err != nil {
			return nil, err
		}
	}
	return row, nil
}

func fromRow(row *voicemailRow) (*entities.TriagedVoicemail, error) {
	v := &entities.TriagedVoicemail{
		VoicemailID: row.VoicemailID,
		Language:    row.Language,
		Urgency: entities.UrgencyInfo{
			Level:      row.UrgencyLevel,
			Reasoning:  row.UrgencyReasoning,
			Confidence: row.UrgencyConfidence,
		},
		Intent:              entities.Intent(row.Intent),
		Summary:             row.Summary,
		ActionItem:          row.ActionItem,
		AudioFileURL:        row.AudioFileURL.String,
		IsPIISafe:           row.IsPIISafe,
		RedactedTranscript:  row.RedactedTranscript,
		CallerPhoneRedacted: row.CallerPhoneRedacted.String,
		CreatedAt:           row.CreatedAt,
		Status:              entities.VoicemailStatus(row.Status),
		AssignedTo:          row.AssignedTo.String,
		Notes:               row.Notes.String,
		CallbackStatus:      entities.CallbackStatus(row.CallbackStatus.String),
		CallbackBy:          row.CallbackBy.String,
		CallbackNotes:       row.CallbackNotes.String,
		CallerPhoneHash:     row.CallerPhoneHash.String,
		CallCountToday:      row.CallCountToday,
		IsRepeatCaller:      row.IsRepeatCaller,

		EscalationAcknowledged:   row.EscalationAcknowledged,
		EscalationAcknowledgedBy: row.EscalationAcknowledgedBy.String,
		EscalationReminderCount:  row.EscalationReminderCount,

		PMSSystem:        row.PMSSystem.String,
		PMSPatientID:     row.PMSPatientID.String,
		PMSLinked:        row.PMSLinked,
		PMSAppointmentID: row.PMSAppointmentID.String,
	}

	v.ProcessedAt = timePtr(row.ProcessedAt)
	v.CallbackAttemptedAt = timePtr(row.CallbackAttemptedAt)
	v.CallbackCompletedAt = timePtr(row.CallbackCompletedAt)
	v.EscalationAcknowledgedAt = timePtr(row.EscalationAcknowledgedAt)
	v.EscalationLastReminderAt = timePtr(row.EscalationLastReminderAt)
	v.PMSLastSync = timePtr(row.PMSLastSync)

	if err := unmarshalNullable(row.LanguageInfo, &v.LanguageInfo); err != nil {
		return nil, apperrors.NewInternalError("failed to decode language info", err)
	}
	if err := unmarshalNullable(row.ExtractedEntities, &v.ExtractedEntities); err != nil {
		return nil, apperrors.NewInternalError("failed to decode extracted entities", err)
	}
	if err := unmarshalNullable(row.LocationInfo, &v.LocationInfo); err != nil {
		return nil, apperrors.NewInternalError("failed to decode location info", err)
	}
	if err := unmarshalNullable(row.PatientMatch, &v.PatientMatch); err != nil {
		return nil, apperrors.NewInternalError("failed to decode patient match", err)
	}
	if err := unmarshalNullable(row.UIState, &v.UIState); err != nil {
		return nil, apperrors.NewInternalError("failed to decode ui state", err)
	}
	if err := unmarshalNullable(row.Escalation, &v.Escalation); err != nil {
		return nil, apperrors.NewInternalError("failed to decode escalation", err)
	}
	if len(row.RelatedVoicemailIDs) > 0 {
		if err := json.Unmarshal(row.RelatedVoicemailIDs, &v.RelatedVoicemailIDs); err != nil {
			return nil, apperrors.NewInternalError("failed to decode related voicemail ids", err)
		}
	}
	return v, nil
}

// selectColumns lists the columns in the order scanRow reads them
func selectColumns() []interface{} {
	return []interface{}{
		"voicemail_id",
		"language", "language_info",
		"urgency_level", "urgency_reasoning", "urgency_confidence",
		"intent", "summary", "action_item",
		"extracted_entities", "callback_number", "mentioned_doctor",
		"location_info", "patient_match", "ui_state", "escalation",
		"is_ambiguous", "escalation_triggered",
		"audio_file_url",
		"is_pii_safe", "redacted_transcript", "caller_phone_redacted",
		"created_at", "processed_at", "status", "assigned_to", "notes",
		"callback_status", "callback_attempted_at", "callback_completed_at",
		"callback_by", "callback_notes",
		"caller_phone_hash", "related_voicemail_ids",
		"call_count_today", "is_repeat_caller",
		"escalation_acknowledged", "escalation_acknowledged_at",
		"escalation_acknowledged_by", "escalation_reminder_count",
		"escalation_last_reminder_at",
		"pms_system", "pms_patient_id", "pms_linked",
		"pms_last_sync", "pms_appointment_id",
	}
}

// scanRow reads one result row in the order of selectColumns
func scanRow(rows *sql.Rows) (*voicemailRow, error) {
	row := &voicemailRow{}
	err := rows.Scan(
		&row.VoicemailID,
		&row.Language, &row.LanguageInfo,
		&row.UrgencyLevel, &row.UrgencyReasoning, &row.UrgencyConfidence,
		&row.Intent, &row.Summary, &row.ActionItem,
		&row.ExtractedEntities, &row.CallbackNumber, &row.MentionedDoctor,
		&row.LocationInfo, &row.PatientMatch, &row.UIState, &row.Escalation,
		&row.IsAmbiguous, &row.EscalationTriggered,
		&row.AudioFileURL,
		&row.IsPIISafe, &row.RedactedTranscript, &row.CallerPhoneRedacted,
		&row.CreatedAt, &row.ProcessedAt, &row.Status, &row.AssignedTo, &row.Notes,
		&row.CallbackStatus, &row.CallbackAttemptedAt, &row.CallbackCompletedAt,
		&row.CallbackBy, &row.CallbackNotes,
		&row.CallerPhoneHash, &row.RelatedVoicemailIDs,
		&row.CallCountToday, &row.IsRepeatCaller,
		&row.EscalationAcknowledged, &row.EscalationAcknowledgedAt,
		&row.EscalationAcknowledgedBy, &row.EscalationReminderCount,
		&row.EscalationLastReminderAt,
		&row.PMSSystem, &row.PMSPatientID, &row.PMSLinked,
		&row.PMSLastSync, &row.PMSAppointmentID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no voicemail row: %w", err)
		}
		return nil, err
	}
	return row, nil
}

func marshalNullable(v interface{}) (json.RawMessage, error) {
	if v == nil || isNilPointer(v) {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalNullable(data json.RawMessage, target interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}

func isNilPointer(v interface{}) bool {
	switch p := v.(type) {
	case *entities.LanguageInfo:
		return p == nil
	case *entities.ExtractedEntities:
		return p == nil
	case *entities.LocationInfo:
		return p == nil
	case *entities.PatientMatchInfo:
		return p == nil
	case *entities.UIState:
		return p == nil
	case *entities.EscalationInfo:
		return p == nil
	}
	return false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}
