package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Recipient is a report subscriber and the state codes they follow.
type Recipient struct {
	Name   string   `json:"name" yaml:"name"`
	Email  string   `json:"email" yaml:"email"`
	States []string `json:"states" yaml:"states"`
	Unit   Unit     `json:"unit" yaml:"unit"`
}

// Select returns the recipient's reading list from the store: every state's
// matches, appended in selection order.
func (r Recipient) Select(store *Store) []Reading {
	return store.ForStates(r.States...)
}

// ValidateEmail performs a loose sanity check on an address. Delivery
// failures for syntactically plausible but dead addresses are the sink's
// concern.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if strings.ContainsAny(email, " \t") {
		return fmt.Errorf("email %q contains whitespace", email)
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return fmt.Errorf("email %q must contain '@' and '.'", email)
	}
	return nil
}

// ValidateStateCode accepts exactly two ASCII letters. It does not check that
// the code names a real U.S. state; unknown codes simply match nothing.
func ValidateStateCode(code string) error {
	if len(code) != 2 {
		return fmt.Errorf("state code %q must be two letters", code)
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return fmt.Errorf("state code %q must be two letters", code)
		}
	}
	return nil
}

// NormalizeStateCode validates code and returns it upper-cased. Matching is
// case-sensitive and feed labels carry upper-case codes, so "me" is stored
// as "ME".
func NormalizeStateCode(code string) (string, error) {
	if err := ValidateStateCode(code); err != nil {
		return "", err
	}
	return strings.ToUpper(code), nil
}
