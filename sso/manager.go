package sso

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/screenerhq/scan-server/internal/errors"
	"github.com/screenerhq/scan-server/sso/deviceflow"
)

// State of the process-wide SSO session.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StatePending         State = "pending"
	StateAuthenticated   State = "authenticated"
	StateFailed          State = "failed"
)

// FailureKind distinguishes why a login ended up in StateFailed.
type FailureKind string

const (
	FailureExpired FailureKind = "expired"
	FailureDenied  FailureKind = "denied"
	FailureError   FailureKind = "error"
)

// Provider "slow down" responses raise the effective poll interval by this
// many seconds for the rest of the pending lifetime.
const slowDownIncrement = 5

// DeviceFlow is the provider client contract the manager drives. One
// implementation per region; the manager builds a fresh one per login
// attempt since the region is caller-supplied.
type DeviceFlow interface {
	Region() string
	StartDeviceAuthorization(ctx context.Context, startURL string) (*deviceflow.Authorization, error)
	PollToken(ctx context.Context, auth *deviceflow.Authorization) deviceflow.PollResult
	ListAccounts(ctx context.Context, accessToken string) ([]deviceflow.Account, error)
	ListRoles(ctx context.Context, accessToken, accountID string) ([]deviceflow.Role, error)
	GetRoleCredentials(ctx context.Context, accessToken, accountID, roleName string) (*deviceflow.RoleCredentials, error)
}

// FlowFactory builds a DeviceFlow for a region.
type FlowFactory func(ctx context.Context, region string) (DeviceFlow, error)

// DefaultFlowFactory builds the real AWS-backed device flow client.
func DefaultFlowFactory(ctx context.Context, region string) (DeviceFlow, error) {
	return deviceflow.NewClient(ctx, region)
}

// LoginStarted is returned from StartLogin. The device code stays inside the
// manager.
type LoginStarted struct {
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	ExpiresIn               int64  `json:"expires_in"`
	Interval                int32  `json:"interval"`
	Region                  string `json:"region"`
}

// PollOutcome is the caller-visible result of one poll exchange.
type PollOutcome struct {
	Status    deviceflow.PollStatus `json:"status"`
	ExpiresIn int64                 `json:"expires_in,omitempty"`
	Interval  int32                 `json:"interval,omitempty"`
	Message   string                `json:"message,omitempty"`
}

// CredentialGrant is the opaque handle handed back after role selection.
// Only the ref is ever passed back in, on job creation.
type CredentialGrant struct {
	Ref        string    `json:"credential_ref"`
	AccountID  string    `json:"account_id"`
	RoleName   string    `json:"role_name"`
	Expiration time.Time `json:"expiration"`
}

// Manager owns the single process-wide SSO session: the pending device
// authorization, the authenticated token, cached account and role lists and
// issued role credentials. All operations serialize on one mutex so two
// polls never race on the same device authorization.
type Manager struct {
	mu          sync.Mutex
	flowFactory FlowFactory
	flow        DeviceFlow

	state       State
	auth        *deviceflow.Authorization
	accessToken string
	tokenExpiry time.Time

	failure    FailureKind
	failureMsg string

	accounts        []deviceflow.Account
	rolesByAccount  map[string][]deviceflow.Role
	selectedAccount string
	selectedRole    string
	credentials     map[string]*deviceflow.RoleCredentials

	nowTime func() time.Time
}

// ManagerOption modifies a Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// NewManager creates a session manager. flowFactory may be nil, in which
// case the AWS-backed client is used.
func NewManager(flowFactory FlowFactory, options ...ManagerOption) *Manager {
	if flowFactory == nil {
		flowFactory = DefaultFlowFactory
	}
	m := &Manager{
		flowFactory:    flowFactory,
		state:          StateUnauthenticated,
		rolesByAccount: make(map[string][]deviceflow.Role),
		credentials:    make(map[string]*deviceflow.RoleCredentials),
		nowTime:        time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// StartLogin begins a device authorization flow. Any prior pending
// authorization is discarded.
func (m *Manager) StartLogin(ctx context.Context, startURL, region string) (*LoginStarted, error) {
	normalized, err := NormalizeStartURL(startURL)
	if err != nil {
		return nil, err
	}
	if region == "" {
		region = DetectRegion(normalized)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	flow, err := m.flowFactory(ctx, region)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrProviderUnreachable, "building client for region %s: %v", region, err)
	}

	auth, err := flow.StartDeviceAuthorization(ctx, normalized)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrProviderUnreachable, "%v", err)
	}

	m.flow = flow
	m.auth = auth
	m.state = StatePending
	m.failure = ""
	m.failureMsg = ""

	log.Info().Str("region", region).Str("user_code", auth.UserCode).Msg("device authorization started")

	return &LoginStarted{
		UserCode:                auth.UserCode,
		VerificationURI:         auth.VerificationURI,
		VerificationURIComplete: auth.VerificationURIComplete,
		ExpiresIn:               int64(auth.ExpiresAt.Sub(m.nowTime()) / time.Second),
		Interval:                auth.Interval,
		Region:                  region,
	}, nil
}

// Poll performs exactly one token exchange for the pending authorization.
// The caller is expected to wait at least the returned interval between
// calls; the provider throttles early polls itself.
func (m *Manager) Poll(ctx context.Context) (*PollOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// An authenticated session never re-triggers a token exchange.
	if m.state == StateAuthenticated {
		return &PollOutcome{
			Status:    deviceflow.PollSuccess,
			ExpiresIn: int64(m.tokenExpiry.Sub(m.nowTime()) / time.Second),
		}, nil
	}
	if m.state != StatePending || m.auth == nil {
		return nil, errors.ErrNoLoginInProgress
	}

	result := m.flow.PollToken(ctx, m.auth)
	switch result.Status {
	case deviceflow.PollPending:
		return &PollOutcome{Status: result.Status, Interval: m.auth.Interval, Message: result.Message}, nil

	case deviceflow.PollSlowDown:
		m.auth.Interval += slowDownIncrement
		return &PollOutcome{Status: result.Status, Interval: m.auth.Interval, Message: result.Message}, nil

	case deviceflow.PollSuccess:
		m.accessToken = result.AccessToken
		m.tokenExpiry = m.nowTime().Add(time.Duration(result.ExpiresIn) * time.Second)
		m.state = StateAuthenticated
		m.auth = nil
		log.Info().Time("expires_at", m.tokenExpiry).Msg("SSO login completed")
		return &PollOutcome{Status: result.Status, ExpiresIn: int64(result.ExpiresIn)}, nil

	case deviceflow.PollExpired:
		m.fail(FailureExpired, result.Message)
		return &PollOutcome{Status: result.Status, Message: result.Message}, nil

	case deviceflow.PollDenied:
		m.fail(FailureDenied, result.Message)
		return &PollOutcome{Status: result.Status, Message: result.Message}, nil

	default:
		m.fail(FailureError, result.Message)
		return &PollOutcome{Status: deviceflow.PollError, Message: result.Message}, nil
	}
}

func (m *Manager) fail(kind FailureKind, message string) {
	m.state = StateFailed
	m.failure = kind
	m.failureMsg = message
	m.auth = nil
	log.Warn().Str("kind", string(kind)).Str("message", message).Msg("SSO login failed")
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Failure returns why the session failed, if it did.
func (m *Manager) Failure() (FailureKind, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failure, m.failureMsg
}

// Authenticated reports whether a non-expired access token is held, and its
// expiry. Expiry is checked lazily; no background clock watches the token.
func (m *Manager) Authenticated() (bool, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated || !m.tokenExpiry.After(m.nowTime()) {
		return false, time.Time{}
	}
	return true, m.tokenExpiry
}

// accessTokenLocked returns the token, treating an expired token as absent.
// Callers must hold m.mu.
func (m *Manager) accessTokenLocked() (string, error) {
	if m.state != StateAuthenticated || m.accessToken == "" {
		return "", errors.ErrNotAuthenticated
	}
	if !m.tokenExpiry.After(m.nowTime()) {
		return "", errors.ErrNotAuthenticated
	}
	return m.accessToken, nil
}

// Accounts fetches the accounts available to the user. The list is always
// re-fetched rather than served from cache, since it can legitimately change
// mid-session.
func (m *Manager) Accounts(ctx context.Context) ([]deviceflow.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.accessTokenLocked()
	if err != nil {
		return nil, err
	}

	accounts, err := m.flow.ListAccounts(ctx, token)
	if err != nil {
		return nil, errors.Wrapf(err, "loading accounts")
	}
	m.accounts = accounts

	out := make([]deviceflow.Account, len(accounts))
	copy(out, accounts)
	return out, nil
}

// Roles fetches the roles for one account, leaving roles cached for other
// accounts untouched.
func (m *Manager) Roles(ctx context.Context, accountID string) ([]deviceflow.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.accessTokenLocked()
	if err != nil {
		return nil, err
	}

	roles, err := m.flow.ListRoles(ctx, token, accountID)
	if err != nil {
		return nil, errors.Wrapf(err, "loading roles for account %s", accountID)
	}
	m.rolesByAccount[accountID] = roles

	out := make([]deviceflow.Role, len(roles))
	copy(out, roles)
	return out, nil
}

// SelectRole exchanges the access token for temporary credentials for an
// account/role pair previously returned by Roles, stores them under an
// opaque ref and returns the grant.
func (m *Manager) SelectRole(ctx context.Context, accountID, roleName string) (*CredentialGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.accessTokenLocked()
	if err != nil {
		return nil, err
	}

	if !m.knownRoleLocked(accountID, roleName) {
		return nil, errors.Wrapf(errors.ErrUnknownAccountOrRole, "%s/%s", accountID, roleName)
	}

	creds, err := m.flow.GetRoleCredentials(ctx, token, accountID, roleName)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCredentialExchangeFailed, "%s/%s: %v", accountID, roleName, err)
	}

	ref := uuid.New().String()
	m.credentials[ref] = creds
	m.selectedAccount = accountID
	m.selectedRole = roleName

	log.Info().Str("account_id", accountID).Str("role", roleName).Time("expiration", creds.Expiration).Msg("role credentials issued")

	return &CredentialGrant{
		Ref:        ref,
		AccountID:  accountID,
		RoleName:   roleName,
		Expiration: creds.Expiration,
	}, nil
}

func (m *Manager) knownRoleLocked(accountID, roleName string) bool {
	for _, role := range m.rolesByAccount[accountID] {
		if role.RoleName == roleName {
			return true
		}
	}
	return false
}

// Credentials resolves a credential ref. Expired credentials are treated as
// absent so callers surface a re-authentication requirement instead of
// silently using stale keys.
func (m *Manager) Credentials(ref string) (*deviceflow.RoleCredentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, ok := m.credentials[ref]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "credential ref %s", ref)
	}
	if creds.Expired(m.nowTime()) {
		return nil, errors.Wrapf(errors.ErrCredentialsExpired, "credential ref %s", ref)
	}
	out := *creds
	return &out, nil
}

// Logout resets the session to Unauthenticated, discarding the token,
// cached accounts and roles, and every issued credential.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.flow = nil
	m.state = StateUnauthenticated
	m.auth = nil
	m.accessToken = ""
	m.tokenExpiry = time.Time{}
	m.failure = ""
	m.failureMsg = ""
	m.accounts = nil
	m.rolesByAccount = make(map[string][]deviceflow.Role)
	m.selectedAccount = ""
	m.selectedRole = ""
	m.credentials = make(map[string]*deviceflow.RoleCredentials)
}
