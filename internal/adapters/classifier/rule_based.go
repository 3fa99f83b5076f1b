package classifier

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
)

// Multilingual keyword tables. Keys are ISO 639-1 codes.
var emergencyKeywords = map[string][]string{
	"en": {"emergency", "chest pain", "can't breathe", "bleeding", "unconscious", "heart attack", "stroke"},
	"vi": {"đau ngực", "khó thở", "chảy máu", "bất tỉnh", "cấp cứu", "đau tim"},
	"zh": {"胸痛", "呼吸困难", "出血", "昏迷", "急诊", "心脏病"},
	"el": {"πόνος στο στήθος", "δυσκολία αναπνοής", "αιμορραγία"},
}

var highPriorityKeywords = map[string][]string{
	"en": {"urgent", "ran out", "medication", "worse", "pain", "worried"},
	"vi": {"cấp bách", "hết thuốc", "tệ hơn", "đau", "lo lắng"},
	"zh": {"紧急", "没药了", "更糟", "疼痛"},
}

var (
	prescriptionKeywords = []string{"prescription", "refill", "medication", "pills", "tablets", "script", "thuốc", "药"}
	bookingKeywords      = []string{"appointment", "book", "schedule", "reschedule", "预约", "đặt lịch"}
	resultsKeywords      = []string{"results", "test", "blood work", "scan", "report", "kết quả", "结果"}
)

var actionItems = map[entities.Intent]string{
	entities.IntentEmergency:    "IMMEDIATE: Contact patient and advise to call 000 or present to ED immediately",
	entities.IntentPrescription: "Review with prescriber and arrange e-script if appropriate",
	entities.IntentResults:      "Retrieve results and arrange callback or appointment to discuss",
	entities.IntentBooking:      "Check availability and call back to confirm appointment",
	entities.IntentOther:        "Review message and respond within standard timeframe",
}

var (
	vietnameseChars = regexp.MustCompile(`(?i)[àáảãạăằắẳẵặâầấẩẫậđèéẻẽẹêềếểễệìíỉĩịòóỏõọôồốổỗộơờớởỡợùúủũụưừứửữựỳýỷỹỵ]`)
	chineseChars    = regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)
	greekChars      = regexp.MustCompile(`[\x{0370}-\x{03ff}]`)
)

var vietnameseWords = []string{"xin", "chào", "tôi", "của", "gọi", "lại", "cảm ơn"}

var attentionLevels = []string{"routine", "moderate", "standard", "urgent", "immediate"}

// RuleBased is a network-free classifier built on multilingual keyword
// tables and script-range language detection. It is the default when
// no classifier API key is configured, and the test stand-in.
type RuleBased struct{}

// NewRuleBased creates a rule-based classifier
func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

// Classify produces a classification from keyword and script analysis
func (c *RuleBased) Classify(ctx context.Context, redactedTranscript string) (*entities.Classification, error) {
	lower := strings.ToLower(redactedTranscript)

	language, code, requiresInterpreter := detectLanguage(redactedTranscript, lower)

	urgencyLevel := 3
	urgencyReasoning := "Standard medical inquiry requiring routine follow-up"
	confidence := 0.85

	isEmergency := matchesAny(lower, emergencyKeywords)
	isHighPriority := matchesAny(lower, highPriorityKeywords)

	if isEmergency {
		urgencyLevel = 5
		urgencyReasoning = "Emergency symptoms detected - potential life-threatening situation"
		confidence = 0.92
	} else if isHighPriority {
		urgencyLevel = 4
		urgencyReasoning = "High priority indicators - patient may need urgent attention"
		confidence = 0.88
	}

	intent := entities.IntentOther
	switch {
	case isEmergency:
		intent = entities.IntentEmergency
	case containsAny(lower, prescriptionKeywords):
		intent = entities.IntentPrescription
	case containsAny(lower, resultsKeywords):
		intent = entities.IntentResults
	case containsAny(lower, bookingKeywords):
		intent = entities.IntentBooking
	}

	action := actionItems[intent]
	if requiresInterpreter {
		action += fmt.Sprintf(" - %s interpreter required", language)
	}

	return &entities.Classification{
		Language:            language,
		LanguageCode:        code,
		RequiresInterpreter: requiresInterpreter,
		UrgencyLevel:        urgencyLevel,
		UrgencyReasoning:    urgencyReasoning,
		Confidence:          confidence,
		Intent:              intent,
		Summary: fmt.Sprintf("Patient message regarding %s matter - requires %s attention",
			strings.ToLower(string(intent)), attentionLevels[urgencyLevel-1]),
		ActionItem: action,
	}, nil
}

// detectLanguage identifies the transcript language from script ranges
// and common Vietnamese function words
func detectLanguage(text, lower string) (language, code string, requiresInterpreter bool) {
	hasVietnameseWord := false
	for _, w := range vietnameseWords {
		if strings.Contains(lower, w) {
			hasVietnameseWord = true
			break
		}
	}

	switch {
	case vietnameseChars.MatchString(text) || hasVietnameseWord:
		return "Vietnamese", "vi", true
	case chineseChars.MatchString(text):
		return "Mandarin Chinese", "zh", true
	case greekChars.MatchString(text):
		return "Greek", "el", true
	}
	return "English", "en", false
}

func matchesAny(lower string, tables map[string][]string) bool {
	for _, keywords := range tables {
		if containsAny(lower, keywords) {
			return true
		}
	}
	return false
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
