package forms

import "unicode"

// Strength is the bucketed result of a password score
type Strength int

const (
	StrengthWeak Strength = iota
	StrengthMedium
	StrengthStrong
)

// String returns the label shown by the strength meter
func (s Strength) String() string {
	switch s {
	case StrengthWeak:
		return "weak"
	case StrengthMedium:
		return "medium"
	case StrengthStrong:
		return "strong"
	}
	return "unknown"
}

// Score thresholds: a score at or below WeakMaxScore is weak, at or below
// MediumMaxScore is medium, anything higher is strong.
const (
	WeakMaxScore   = 2
	MediumMaxScore = 4
	MaxScore       = 6
)

// StrengthReport breaks a score down into the individual checks
type StrengthReport struct {
	MinLength  bool     `json:"min_length"`
	LongLength bool     `json:"long_length"`
	Lowercase  bool     `json:"lowercase"`
	Uppercase  bool     `json:"uppercase"`
	Digit      bool     `json:"digit"`
	Symbol     bool     `json:"symbol"`
	Score      int      `json:"score"`
	Strength   Strength `json:"-"`
	Label      string   `json:"strength"`
}

// Evaluate runs the six strength checks. Every check is worth one point,
// including the 12 character bonus.
func Evaluate(password string) StrengthReport {
	var r StrengthReport
	n := 0
	for _, c := range password {
		n++
		switch {
		case unicode.IsLower(c):
			r.Lowercase = true
		case unicode.IsUpper(c):
			r.Uppercase = true
		case unicode.IsDigit(c):
			r.Digit = true
		case !unicode.IsLetter(c) && !unicode.IsSpace(c):
			r.Symbol = true
		}
	}
	r.MinLength = n >= MinPasswordLength
	r.LongLength = n >= 12

	for _, ok := range []bool{r.MinLength, r.LongLength, r.Lowercase, r.Uppercase, r.Digit, r.Symbol} {
		if ok {
			r.Score++
		}
	}

	switch {
	case r.Score <= WeakMaxScore:
		r.Strength = StrengthWeak
	case r.Score <= MediumMaxScore:
		r.Strength = StrengthMedium
	default:
		r.Strength = StrengthStrong
	}
	r.Label = r.Strength.String()
	return r
}

// Score returns only the numeric score of a password
func Score(password string) int {
	return Evaluate(password).Score
}

// Rate returns only the strength bucket of a password
func Rate(password string) Strength {
	return Evaluate(password).Strength
}
