package deviceflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sso"
	ssotypes "github.com/aws/aws-sdk-go-v2/service/sso/types"
	"github.com/aws/aws-sdk-go-v2/service/ssooidc"
	oidctypes "github.com/aws/aws-sdk-go-v2/service/ssooidc/types"
	"github.com/stretchr/testify/require"

	"github.com/screenerhq/scan-server/sso/deviceflow"
)

type fakeOIDC struct {
	createTokenErr error
	accessToken    string
	expiresIn      int32
}

func (f *fakeOIDC) RegisterClient(ctx context.Context, params *ssooidc.RegisterClientInput, optFns ...func(*ssooidc.Options)) (*ssooidc.RegisterClientOutput, error) {
	return &ssooidc.RegisterClientOutput{
		ClientId:     aws.String("client-id"),
		ClientSecret: aws.String("client-secret"),
	}, nil
}

func (f *fakeOIDC) StartDeviceAuthorization(ctx context.Context, params *ssooidc.StartDeviceAuthorizationInput, optFns ...func(*ssooidc.Options)) (*ssooidc.StartDeviceAuthorizationOutput, error) {
	return &ssooidc.StartDeviceAuthorizationOutput{
		DeviceCode:              aws.String("device-code"),
		UserCode:                aws.String("WXYZ-1234"),
		VerificationUri:         aws.String("https://device.sso.us-east-1.amazonaws.com/"),
		VerificationUriComplete: aws.String("https://device.sso.us-east-1.amazonaws.com/?user_code=WXYZ-1234"),
		ExpiresIn:               600,
		Interval:                5,
	}, nil
}

func (f *fakeOIDC) CreateToken(ctx context.Context, params *ssooidc.CreateTokenInput, optFns ...func(*ssooidc.Options)) (*ssooidc.CreateTokenOutput, error) {
	if f.createTokenErr != nil {
		return nil, f.createTokenErr
	}
	return &ssooidc.CreateTokenOutput{
		AccessToken: aws.String(f.accessToken),
		ExpiresIn:   f.expiresIn,
	}, nil
}

type fakePortal struct {
	accountPages [][]ssotypes.AccountInfo
	rolePages    [][]ssotypes.RoleInfo
	credentials  *ssotypes.RoleCredentials
	page         int
}

func (f *fakePortal) ListAccounts(ctx context.Context, params *sso.ListAccountsInput, optFns ...func(*sso.Options)) (*sso.ListAccountsOutput, error) {
	out := &sso.ListAccountsOutput{AccountList: f.accountPages[f.page]}
	if f.page < len(f.accountPages)-1 {
		out.NextToken = aws.String("next")
		f.page++
	}
	return out, nil
}

func (f *fakePortal) ListAccountRoles(ctx context.Context, params *sso.ListAccountRolesInput, optFns ...func(*sso.Options)) (*sso.ListAccountRolesOutput, error) {
	out := &sso.ListAccountRolesOutput{RoleList: f.rolePages[f.page]}
	if f.page < len(f.rolePages)-1 {
		out.NextToken = aws.String("next")
		f.page++
	}
	return out, nil
}

func (f *fakePortal) GetRoleCredentials(ctx context.Context, params *sso.GetRoleCredentialsInput, optFns ...func(*sso.Options)) (*sso.GetRoleCredentialsOutput, error) {
	return &sso.GetRoleCredentialsOutput{RoleCredentials: f.credentials}, nil
}

func pendingAuth() *deviceflow.Authorization {
	return &deviceflow.Authorization{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		DeviceCode:   "device-code",
		ExpiresAt:    time.Now().Add(10 * time.Minute),
	}
}

func TestStartDeviceAuthorization(t *testing.T) {
	client := deviceflow.NewClientWithAPIs("us-east-1", &fakeOIDC{}, &fakePortal{})

	auth, err := client.StartDeviceAuthorization(context.Background(), "https://acme.awsapps.com/start")
	require.NoError(t, err)
	require.Equal(t, "WXYZ-1234", auth.UserCode)
	require.Equal(t, "device-code", auth.DeviceCode)
	require.Equal(t, "us-east-1", auth.Region)
	require.EqualValues(t, 5, auth.Interval)
	require.True(t, auth.ExpiresAt.After(time.Now().Add(9*time.Minute)))
}

func TestPollTokenClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want deviceflow.PollStatus
	}{
		{"pending", &oidctypes.AuthorizationPendingException{}, deviceflow.PollPending},
		{"slow down", &oidctypes.SlowDownException{}, deviceflow.PollSlowDown},
		{"expired", &oidctypes.ExpiredTokenException{}, deviceflow.PollExpired},
		{"denied", &oidctypes.AccessDeniedException{}, deviceflow.PollDenied},
		{"api error", &oidctypes.InternalServerException{Message: aws.String("boom")}, deviceflow.PollError},
		{"transport error", errors.New("dial tcp: connection refused"), deviceflow.PollError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := deviceflow.NewClientWithAPIs("us-east-1", &fakeOIDC{createTokenErr: tc.err}, &fakePortal{})
			result := client.PollToken(context.Background(), pendingAuth())
			require.Equal(t, tc.want, result.Status)
			if tc.want == deviceflow.PollError {
				require.NotEmpty(t, result.Message)
			}
		})
	}
}

func TestPollTokenSuccess(t *testing.T) {
	client := deviceflow.NewClientWithAPIs("us-east-1", &fakeOIDC{accessToken: "token", expiresIn: 28800}, &fakePortal{})

	result := client.PollToken(context.Background(), pendingAuth())
	require.Equal(t, deviceflow.PollSuccess, result.Status)
	require.Equal(t, "token", result.AccessToken)
	require.EqualValues(t, 28800, result.ExpiresIn)
}

func TestPollTokenLocalExpiry(t *testing.T) {
	// No exchange is attempted once the provider-supplied expiry has passed.
	client := deviceflow.NewClientWithAPIs("us-east-1", &fakeOIDC{accessToken: "token"}, &fakePortal{})

	auth := pendingAuth()
	auth.ExpiresAt = time.Now().Add(-time.Minute)
	result := client.PollToken(context.Background(), auth)
	require.Equal(t, deviceflow.PollExpired, result.Status)
}

func TestListAccountsPaginates(t *testing.T) {
	portal := &fakePortal{accountPages: [][]ssotypes.AccountInfo{
		{{AccountId: aws.String("111111111111"), AccountName: aws.String("Prod"), EmailAddress: aws.String("prod@acme.com")}},
		{{AccountId: aws.String("222222222222"), AccountName: aws.String("Dev")}},
	}}
	client := deviceflow.NewClientWithAPIs("us-east-1", &fakeOIDC{}, portal)

	accounts, err := client.ListAccounts(context.Background(), "token")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	require.Equal(t, "111111111111", accounts[0].AccountID)
	require.Equal(t, "Dev", accounts[1].AccountName)
}

func TestListRolesPaginates(t *testing.T) {
	portal := &fakePortal{rolePages: [][]ssotypes.RoleInfo{
		{{RoleName: aws.String("ReadOnly")}},
		{{RoleName: aws.String("SecurityAudit")}},
	}}
	client := deviceflow.NewClientWithAPIs("us-east-1", &fakeOIDC{}, portal)

	roles, err := client.ListRoles(context.Background(), "token", "111111111111")
	require.NoError(t, err)
	require.Len(t, roles, 2)
	require.Equal(t, "SecurityAudit", roles[1].RoleName)
	require.Equal(t, "111111111111", roles[1].AccountID)
}

func TestGetRoleCredentials(t *testing.T) {
	expiration := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	portal := &fakePortal{credentials: &ssotypes.RoleCredentials{
		AccessKeyId:     aws.String("AKIAEXAMPLE"),
		SecretAccessKey: aws.String("secret"),
		SessionToken:    aws.String("session"),
		Expiration:      expiration.UnixMilli(),
	}}
	client := deviceflow.NewClientWithAPIs("us-east-1", &fakeOIDC{}, portal)

	creds, err := client.GetRoleCredentials(context.Background(), "token", "111111111111", "ReadOnly")
	require.NoError(t, err)
	require.Equal(t, "AKIAEXAMPLE", creds.AccessKeyID)
	require.Equal(t, expiration.UnixMilli(), creds.Expiration.UnixMilli())
	require.False(t, creds.Expired(time.Now()))
	require.True(t, creds.Expired(expiration.Add(time.Second)))
}
