package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
)

const redactionChar = "█"

// RedactionService detects and redacts personally identifiable
// information in voicemail transcripts before any external processing.
// All patterns are compiled once at construction.
type RedactionService struct {
	medicarePattern   *regexp.Regexp
	phonePattern      *regexp.Regexp
	emailPattern      *regexp.Regexp
	dobPatterns       []*regexp.Regexp
	creditCardPattern *regexp.Regexp
	tfnPattern        *regexp.Regexp
	addressPattern    *regexp.Regexp
	namePatterns      []*regexp.Regexp

	dobPrefixes  []*regexp.Regexp
	namePrefixes []*regexp.Regexp
	nonDigit     *regexp.Regexp
}

// NewRedactionService creates a redaction service with compiled patterns
func NewRedactionService() *RedactionService {
	months := `January|February|March|April|May|June|July|August|September|October|November|December`

	return &RedactionService{
		// Australian Medicare: 10-11 digits, often spaced 4-5-1
		medicarePattern: regexp.MustCompile(`\b\d{4}[\s-]?\d{5}[\s-]?\d{1,2}\b`),

		// Australian mobiles and landlines, with or without +61 prefix
		phonePattern: regexp.MustCompile(
			`(?:\+?61[-.\s]?|0)(?:` +
				`4\d{2}[-.\s]?\d{3}[-.\s]?\d{3}|` +
				`[2-9]\d[-.\s]?\d{4}[-.\s]?\d{4}|` +
				`\(\d{2}\)[-.\s]?\d{4}[-.\s]?\d{4})`),

		emailPattern: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),

		dobPatterns: []*regexp.Regexp{
			regexp.MustCompile(
				`(?i)(?:date\s+of\s+birth|DOB|d\.o\.b\.?|born\s+on|birthday)\s*(?:is\s+|:\s*)?` +
					`(?:\d{1,2}[-/]\d{1,2}[-/]\d{2,4}|` +
					`(?:` + months + `)\s+\d{1,2},?\s+\d{4}|` +
					`\d{1,2}\s+(?:` + months + `)\s+\d{4})`),
			regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`),
			regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		},

		creditCardPattern: regexp.MustCompile(`\b(?:\d{4}[-\s]?){3,4}\d{1,4}\b`),

		tfnPattern: regexp.MustCompile(`\b\d{3}[-\s]?\d{3}[-\s]?\d{3}\b`),

		addressPattern: regexp.MustCompile(
			`(?i)\b\d+\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+` +
				`(?:Street|St|Road|Rd|Avenue|Ave|Drive|Dr|Lane|Ln|Court|Ct|` +
				`Place|Pl|Crescent|Cres|Boulevard|Blvd|Way|Close|Circuit)\b`),

		namePatterns: []*regexp.Regexp{
			regexp.MustCompile(
				`(?i)(?:my\s+name\s+is|this\s+is|I'?m|I\s+am|name'?s|speaking\s+is|patient\s+name:?)\s+` +
					`[A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3}`),
			regexp.MustCompile(`\b(?:Mrs?\.?|Ms\.?|Dr\.?|Miss)\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2}\b`),
		},

		dobPrefixes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^(date\s+of\s+birth\s*(?:is\s*)?)`),
			regexp.MustCompile(`(?i)^(DOB\s*:?\s*)`),
			regexp.MustCompile(`(?i)^(born\s+on\s*)`),
		},
		namePrefixes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^(my\s+name\s+is\s+)`),
			regexp.MustCompile(`(?i)^(this\s+is\s+)`),
			regexp.MustCompile(`(?i)^(I'?m\s+)`),
			regexp.MustCompile(`(?i)^(I\s+am\s+)`),
			regexp.MustCompile(`(?i)^(name'?s\s+)`),
			regexp.MustCompile(`(?i)^((?:Mrs?\.?|Ms\.?|Dr\.?|Miss)\s+)`),
		},
		nonDigit: regexp.MustCompile(`\D`),
	}
}

// Redact detects PII in text and replaces each instance with its
// kind-specific mask. Replacements are applied from the highest offset
// down so earlier positions stay valid. The returned flag is always
// true: a transcript that passed through redaction is considered safe.
func (s *RedactionService) Redact(text string) (string, []entities.PIIMatch, bool) {
	matches := s.DetectPII(text)
	if len(matches) == 0 {
		return text, nil, true
	}

	ordered := make([]entities.PIIMatch, len(matches))
	copy(ordered, matches)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Start > ordered[j].Start
	})

	redacted := text
	for _, m := range ordered {
		redacted = redacted[:m.Start] + m.Redacted + redacted[m.End:]
	}

	return redacted, matches, true
}

// DetectPII runs every pattern pass over the text and resolves
// overlapping matches
func (s *RedactionService) DetectPII(text string) []entities.PIIMatch {
	var matches []entities.PIIMatch

	for _, loc := range s.medicarePattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		matches = append(matches, entities.PIIMatch{
			Kind: entities.PIIMedicare, Original: value, Start: loc[0], End: loc[1],
			Redacted: s.redactMedicare(value),
		})
	}

	for _, loc := range s.phonePattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		matches = append(matches, entities.PIIMatch{
			Kind: entities.PIIPhone, Original: value, Start: loc[0], End: loc[1],
			Redacted: s.redactPhone(value),
		})
	}

	for _, loc := range s.emailPattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		matches = append(matches, entities.PIIMatch{
			Kind: entities.PIIEmail, Original: value, Start: loc[0], End: loc[1],
			Redacted: s.redactEmail(value),
		})
	}

	for _, pattern := range s.dobPatterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			value := text[loc[0]:loc[1]]
			matches = append(matches, entities.PIIMatch{
				Kind: entities.PIIDOB, Original: value, Start: loc[0], End: loc[1],
				Redacted: s.redactDOB(value),
			})
		}
	}

	for _, loc := range s.creditCardPattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		digits := s.digitsOnly(value)
		// Distinguish cards from shorter numeric runs
		if len(digits) >= 13 && len(digits) <= 19 {
			matches = append(matches, entities.PIIMatch{
				Kind: entities.PIICreditCard, Original: value, Start: loc[0], End: loc[1],
				Redacted: s.redactCreditCard(value),
			})
		}
	}

	for _, loc := range s.tfnPattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		matches = append(matches, entities.PIIMatch{
			Kind: entities.PIITFN, Original: value, Start: loc[0], End: loc[1],
			Redacted: strings.Repeat(redactionChar, len(s.digitsOnly(value))),
		})
	}

	for _, loc := range s.addressPattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		matches = append(matches, entities.PIIMatch{
			Kind: entities.PIIAddress, Original: value, Start: loc[0], End: loc[1],
			Redacted: strings.Repeat(redactionChar, len(value)),
		})
	}

	for _, pattern := range s.namePatterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			value := text[loc[0]:loc[1]]
			matches = append(matches, entities.PIIMatch{
				Kind: entities.PIIName, Original: value, Start: loc[0], End: loc[1],
				Redacted: s.redactName(value),
			})
		}
	}

	return s.resolveOverlaps(matches)
}

// resolveOverlaps drops overlapping matches. Matches are ordered by
// start position then length descending, and kept greedily left to
// right, so the longest match starting earliest wins each collision.
func (s *RedactionService) resolveOverlaps(matches []entities.PIIMatch) []entities.PIIMatch {
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		return matches[i].Length() > matches[j].Length()
	})

	result := make([]entities.PIIMatch, 0, len(matches))
	lastEnd := -1
	for _, m := range matches {
		if m.Start >= lastEnd {
			result = append(result, m)
			lastEnd = m.End
		}
	}
	return result
}

// PIISummary returns a count of detected PII instances per kind
func (s *RedactionService) PIISummary(matches []entities.PIIMatch) map[string]int {
	summary := make(map[string]int)
	for _, m := range matches {
		summary[string(m.Kind)]++
	}
	return summary
}

func (s *RedactionService) digitsOnly(value string) string {
	return s.nonDigit.ReplaceAllString(value, "")
}

// redactMedicare keeps the first 2 digits
func (s *RedactionService) redactMedicare(value string) string {
	digits := s.digitsOnly(value)
	return digits[:2] + strings.Repeat(redactionChar, len(digits)-2)
}

// redactPhone keeps the last 3 digits
func (s *RedactionService) redactPhone(value string) string {
	digits := s.digitsOnly(value)
	return strings.Repeat(redactionChar, len(digits)-3) + digits[len(digits)-3:]
}

// redactEmail keeps the first local character and the domain
func (s *RedactionService) redactEmail(value string) string {
	at := strings.Index(value, "@")
	if at <= 0 {
		return strings.Repeat(redactionChar, len(value))
	}
	local := value[:at]
	return local[:1] + strings.Repeat(redactionChar, len(local)-1) + value[at:]
}

// redactDOB keeps a recognised cue prefix and replaces the date
func (s *RedactionService) redactDOB(value string) string {
	for _, prefix := range s.dobPrefixes {
		if m := prefix.FindStringSubmatch(value); m != nil {
			return m[1] + "[DOB REDACTED]"
		}
	}
	return "[DOB REDACTED]"
}

// redactCreditCard keeps the last 4 digits
func (s *RedactionService) redactCreditCard(value string) string {
	digits := s.digitsOnly(value)
	return strings.Repeat(redactionChar, len(digits)-4) + digits[len(digits)-4:]
}

// redactName keeps a recognised cue prefix and replaces the name
func (s *RedactionService) redactName(value string) string {
	for _, prefix := range s.namePrefixes {
		if m := prefix.FindStringSubmatch(value); m != nil {
			return m[1] + "[NAME REDACTED]"
		}
	}
	return "[NAME REDACTED]"
}
