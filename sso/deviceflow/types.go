package deviceflow

import "time"

// Authorization holds the state of one device authorization request. The
// device code is only ever exchanged with the provider, never shown to the
// user.
type Authorization struct {
	ClientID                string
	ClientSecret            string
	DeviceCode              string
	UserCode                string
	VerificationURI         string
	VerificationURIComplete string
	ExpiresAt               time.Time
	Interval                int32 // minimum seconds between polls
	StartURL                string
	Region                  string
}

// Account is an AWS account reachable through the SSO portal.
type Account struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	Email       string `json:"email,omitempty"`
}

// Role is a permission set scoped to a single account.
type Role struct {
	RoleName  string `json:"role_name"`
	AccountID string `json:"account_id"`
}

// RoleCredentials are the short-lived keys issued for one account/role pair.
type RoleCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
}

// Expired reports whether the credentials are past their expiry at t.
func (c RoleCredentials) Expired(t time.Time) bool {
	return !c.Expiration.After(t)
}

type PollStatus string

const (
	PollPending  PollStatus = "pending"
	PollSlowDown PollStatus = "slow_down"
	PollSuccess  PollStatus = "success"
	PollExpired  PollStatus = "expired"
	PollDenied   PollStatus = "denied"
	PollError    PollStatus = "error"
)

// PollResult is the classified outcome of a single token poll.
type PollResult struct {
	Status      PollStatus
	AccessToken string
	ExpiresIn   int32 // seconds, set on success
	Message     string
}
