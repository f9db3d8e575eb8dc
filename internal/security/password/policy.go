package password

import (
	"errors"
	"strings"
	"unicode"
)

// Motivos de rechazo devueltos por Policy.Check.
const (
	ReasonTooShort      = "too_short"
	ReasonMissingUpper  = "missing_upper"
	ReasonMissingLower  = "missing_lower"
	ReasonMissingDigit  = "missing_digit"
	ReasonMissingSymbol = "missing_symbol"
	ReasonBlacklisted   = "blacklisted"
	ReasonContainsUser  = "contains_username"
)

// Policy valida passwords locales al crearlas o cambiarlas desde el CLI.
// El login nunca aplica la política: solo verifica el hash.
type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool

	// Blacklist opcional de passwords comunes.
	Blacklist *Blacklist
}

// DefaultPolicy es la política usada por "johngate users".
var DefaultPolicy = Policy{MinLength: 8, RequireLower: true, RequireDigit: true}

// PolicyError agrupa los motivos de rechazo.
type PolicyError struct {
	Reasons []string
}

func (e *PolicyError) Error() string {
	return "password: policy violation: " + strings.Join(e.Reasons, ", ")
}

// IsPolicyError indica si err es un rechazo de política.
func IsPolicyError(err error) bool {
	var pe *PolicyError
	return errors.As(err, &pe)
}

// Check retorna nil o un *PolicyError con todos los motivos.
// username se usa para rechazar passwords que lo contienen.
func (p Policy) Check(username, s string) error {
	var reasons []string
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, ReasonTooShort)
	}
	var hasU, hasL, hasD, hasS bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasU = true
		case unicode.IsLower(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasS = true
		}
	}
	if p.RequireUpper && !hasU {
		reasons = append(reasons, ReasonMissingUpper)
	}
	if p.RequireLower && !hasL {
		reasons = append(reasons, ReasonMissingLower)
	}
	if p.RequireDigit && !hasD {
		reasons = append(reasons, ReasonMissingDigit)
	}
	if p.RequireSymbol && !hasS {
		reasons = append(reasons, ReasonMissingSymbol)
	}
	if u := strings.ToLower(strings.TrimSpace(username)); len(u) >= 3 && strings.Contains(strings.ToLower(s), u) {
		reasons = append(reasons, ReasonContainsUser)
	}
	if p.Blacklist.Contains(s) {
		reasons = append(reasons, ReasonBlacklisted)
	}
	if len(reasons) > 0 {
		return &PolicyError{Reasons: reasons}
	}
	return nil
}
