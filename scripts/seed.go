package main

import (
	"context"
	"log"
	"os"

	"github.com/heidicalls/voicemail-triage/internal/adapters/classifier"
	"github.com/heidicalls/voicemail-triage/internal/adapters/database"
	"github.com/heidicalls/voicemail-triage/internal/application/services"
	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
	"github.com/heidicalls/voicemail-triage/internal/infrastructure/clients/postgres"
	"github.com/heidicalls/voicemail-triage/internal/infrastructure/notifications"
	"github.com/heidicalls/voicemail-triage/pkg/config"
)

// Demo transcripts covering the urgency range, the supported languages
// and the PII patterns the redaction layer handles.
var demoTranscripts = []entities.VoicemailInput{
	{
		Transcript:  "Hi, this is about my repeat prescription for blood pressure medication, I've nearly run out. My Medicare number is 2345 67890 1, please call me back on 0412 345 678.",
		CallerPhone: "0412345678",
	},
	{
		Transcript:  "Hello, I'd like to book an appointment with Dr Wong for next week, preferably Tuesday morning. You can reach me on 0423 456 789.",
		CallerPhone: "0423456789",
	},
	{
		Transcript:  "I'm calling about my blood test results from last week at the harbour clinic, just wondering if they're back yet.",
		CallerPhone: "0434567890",
	},
	{
		Transcript:  "I have severe chest pain and I can't breathe properly, please someone call me back urgently on 0445 678 901.",
		CallerPhone: "0445678901",
	},
	{
		Transcript:  "你好，我胸痛，呼吸困难，请尽快回电 0456 789 012。",
		CallerPhone: "0456789012",
	},
	{
		Transcript:  "Xin chào, tôi muốn đặt lịch khám với bác sĩ, xin gọi lại cho tôi. Cảm ơn.",
		CallerPhone: "0467890123",
	},
	{
		Transcript:  "Um, hi, it's... I was calling about the, uh... actually can you just call me back.",
		CallerPhone: "0478901234",
	},
}

const schema = `
CREATE TABLE IF NOT EXISTS voicemails (
	voicemail_id TEXT PRIMARY KEY,
	language TEXT NOT NULL DEFAULT '',
	language_info JSONB,
	urgency_level INT NOT NULL DEFAULT 3,
	urgency_reasoning TEXT NOT NULL DEFAULT '',
	urgency_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	intent TEXT NOT NULL DEFAULT 'Other',
	summary TEXT NOT NULL DEFAULT '',
	action_item TEXT NOT NULL DEFAULT '',
	extracted_entities JSONB,
	callback_number TEXT,
	mentioned_doctor TEXT,
	location_info JSONB,
	patient_match JSONB,
	ui_state JSONB,
	escalation JSONB,
	is_ambiguous BOOLEAN NOT NULL DEFAULT FALSE,
	escalation_triggered BOOLEAN NOT NULL DEFAULT FALSE,
	audio_file_url TEXT,
	is_pii_safe BOOLEAN NOT NULL DEFAULT FALSE,
	redacted_transcript TEXT NOT NULL DEFAULT '',
	caller_phone_redacted TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	processed_at TIMESTAMPTZ,
	status TEXT NOT NULL DEFAULT 'pending',
	assigned_to TEXT,
	notes TEXT,
	callback_status TEXT,
	callback_attempted_at TIMESTAMPTZ,
	callback_completed_at TIMESTAMPTZ,
	callback_by TEXT,
	callback_notes TEXT,
	caller_phone_hash TEXT,
	related_voicemail_ids JSONB,
	call_count_today INT NOT NULL DEFAULT 0,
	is_repeat_caller BOOLEAN NOT NULL DEFAULT FALSE,
	escalation_acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
	escalation_acknowledged_at TIMESTAMPTZ,
	escalation_acknowledged_by TEXT,
	escalation_reminder_count INT NOT NULL DEFAULT 0,
	escalation_last_reminder_at TIMESTAMPTZ,
	pms_system TEXT,
	pms_patient_id TEXT,
	pms_linked BOOLEAN NOT NULL DEFAULT FALSE,
	pms_last_sync TIMESTAMPTZ,
	pms_appointment_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_voicemails_status ON voicemails (status);
CREATE INDEX IF NOT EXISTS idx_voicemails_urgency ON voicemails (urgency_level);
CREATE INDEX IF NOT EXISTS idx_voicemails_phone_hash ON voicemails (caller_phone_hash);
CREATE INDEX IF NOT EXISTS idx_voicemails_created_at ON voicemails (created_at);

CREATE TABLE IF NOT EXISTS escalation_alerts (
	id TEXT PRIMARY KEY,
	voicemail_id TEXT NOT NULL,
	alert_type TEXT NOT NULL,
	recipient TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_escalation_alerts_voicemail ON escalation_alerts (voicemail_id);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}
	log.Println("Schema ready")

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				escalation_alerts,
				voicemails
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	directory, err := services.LoadClinicDirectory(&cfg.Reference)
	if err != nil {
		log.Printf("Failed to load reference data (%v), using built-in directory", err)
		directory = services.DefaultClinicDirectory()
	}

	voicemailRepo := database.NewVoicemailAdapter(pgClient)
	alertLog := notifications.NewAlertLog(pgClient.DB())
	sender := notifications.NewSimulatedSender(cfg.Alerts.ManagerPhone)

	triageService := services.NewTriageService(
		classifier.NewRuleBased(),
		services.NewRedactionService(),
		services.NewExtractionService(directory),
		services.NewRoutingService(directory),
		services.NewEscalationService(sender, cfg.Alerts.ManagerPhone, alertLog),
		voicemailRepo,
	)

	for i := range demoTranscripts {
		result, err := triageService.Triage(ctx, &demoTranscripts[i])
		if err != nil {
			log.Printf("Failed to triage demo voicemail %d: %v", i, err)
			continue
		}
		log.Printf("Seeded %s (urgency %d, intent %s)", result.VoicemailID, result.Urgency.Level, result.Intent)
	}

	log.Println("Seeding complete")
}
