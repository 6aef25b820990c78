package fakedeviceflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/screenerhq/scan-server/sso"
	"github.com/screenerhq/scan-server/sso/deviceflow"
)

var _ sso.DeviceFlow = (*FakeDeviceFlow)(nil)

// FakeDeviceFlow is a scripted device flow client for tests. Poll results
// are consumed in order; the last one repeats.
type FakeDeviceFlow struct {
	lock sync.Mutex

	FlowRegion    string
	Authorization *deviceflow.Authorization
	StartErr      error
	PollResults   []deviceflow.PollResult
	pollCalls     int

	AccountList map[string][]deviceflow.Account // keyed by access token
	RoleList    map[string][]deviceflow.Role    // keyed by account ID
	Credentials map[string]*deviceflow.RoleCredentials
	ListErr     error
	CredsErr    error
}

func NewFakeDeviceFlow() *FakeDeviceFlow {
	return &FakeDeviceFlow{
		FlowRegion: "us-east-1",
		Authorization: &deviceflow.Authorization{
			ClientID:                "client-id",
			ClientSecret:            "client-secret",
			DeviceCode:              "device-code",
			UserCode:                "ABCD-EFGH",
			VerificationURI:         "https://device.sso.us-east-1.amazonaws.com/",
			VerificationURIComplete: "https://device.sso.us-east-1.amazonaws.com/?user_code=ABCD-EFGH",
			ExpiresAt:               time.Now().Add(10 * time.Minute),
			Interval:                5,
		},
		AccountList: make(map[string][]deviceflow.Account),
		RoleList:    make(map[string][]deviceflow.Role),
		Credentials: make(map[string]*deviceflow.RoleCredentials),
	}
}

func (f *FakeDeviceFlow) Factory(ctx context.Context, region string) (sso.DeviceFlow, error) {
	f.FlowRegion = region
	return f, nil
}

func (f *FakeDeviceFlow) Region() string {
	return f.FlowRegion
}

func (f *FakeDeviceFlow) PollCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.pollCalls
}

func (f *FakeDeviceFlow) StartDeviceAuthorization(ctx context.Context, startURL string) (*deviceflow.Authorization, error) {
	if f.StartErr != nil {
		return nil, f.StartErr
	}
	auth := *f.Authorization
	auth.StartURL = startURL
	auth.Region = f.FlowRegion
	return &auth, nil
}

func (f *FakeDeviceFlow) PollToken(ctx context.Context, auth *deviceflow.Authorization) deviceflow.PollResult {
	f.lock.Lock()
	defer f.lock.Unlock()

	if len(f.PollResults) == 0 {
		return deviceflow.PollResult{Status: deviceflow.PollError, Message: "no scripted poll results"}
	}
	idx := f.pollCalls
	if idx >= len(f.PollResults) {
		idx = len(f.PollResults) - 1
	}
	f.pollCalls++
	return f.PollResults[idx]
}

func (f *FakeDeviceFlow) ListAccounts(ctx context.Context, accessToken string) ([]deviceflow.Account, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	accounts, ok := f.AccountList[accessToken]
	if !ok {
		return nil, errors.New("unknown access token")
	}
	return accounts, nil
}

func (f *FakeDeviceFlow) ListRoles(ctx context.Context, accessToken, accountID string) ([]deviceflow.Role, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.RoleList[accountID], nil
}

func (f *FakeDeviceFlow) GetRoleCredentials(ctx context.Context, accessToken, accountID, roleName string) (*deviceflow.RoleCredentials, error) {
	if f.CredsErr != nil {
		return nil, f.CredsErr
	}
	creds, ok := f.Credentials[accountID+"/"+roleName]
	if !ok {
		return nil, errors.New("no credentials configured")
	}
	return creds, nil
}
