package entities

// PIIKind identifies a category of personally identifiable information
type PIIKind string

const (
	PIIMedicare   PIIKind = "medicare_number"
	PIIPhone      PIIKind = "phone_number"
	PIIEmail      PIIKind = "email"
	PIIDOB        PIIKind = "date_of_birth"
	PIIName       PIIKind = "name"
	PIIAddress    PIIKind = "address"
	PIICreditCard PIIKind = "credit_card"
	PIITFN        PIIKind = "tax_file_number"
)

// PIIMatch is a single detected PII instance with its replacement
type PIIMatch struct {
	Kind     PIIKind `json:"kind"`
	Original string  `json:"original"`
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Redacted string  `json:"redacted"`
}

// Length returns the span length of the match in bytes
func (m PIIMatch) Length() int {
	return m.End - m.Start
}
