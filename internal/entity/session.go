package entity

import "time"

// Credential ties one browser session to one pending view of a link.
// Only the most recently issued credential per (session, link code) is redeemable.
type Credential struct {
	LinkCode string
	Token    string
	IssuedAt time.Time
}

// RedeemOutcome is the result of presenting a credential.
type RedeemOutcome int

const (
	// RedeemMismatch means no credential was pending or the token differed.
	RedeemMismatch RedeemOutcome = iota
	// RedeemMatched means the presented token was the pending credential.
	RedeemMatched
)

func (o RedeemOutcome) String() string {
	if o == RedeemMatched {
		return "matched"
	}
	return "mismatch"
}
