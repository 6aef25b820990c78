package deviceflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sso"
	ssotypes "github.com/aws/aws-sdk-go-v2/service/sso/types"
	"github.com/aws/aws-sdk-go-v2/service/ssooidc"
	oidctypes "github.com/aws/aws-sdk-go-v2/service/ssooidc/types"
	"github.com/aws/smithy-go"
)

const (
	clientName      = "scan-server-webgui"
	clientType      = "public"
	deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"
)

// OIDCAPI is the subset of the SSO OIDC service used by the device flow.
type OIDCAPI interface {
	RegisterClient(ctx context.Context, params *ssooidc.RegisterClientInput, optFns ...func(*ssooidc.Options)) (*ssooidc.RegisterClientOutput, error)
	StartDeviceAuthorization(ctx context.Context, params *ssooidc.StartDeviceAuthorizationInput, optFns ...func(*ssooidc.Options)) (*ssooidc.StartDeviceAuthorizationOutput, error)
	CreateToken(ctx context.Context, params *ssooidc.CreateTokenInput, optFns ...func(*ssooidc.Options)) (*ssooidc.CreateTokenOutput, error)
}

// PortalAPI is the subset of the SSO portal service used after login.
type PortalAPI interface {
	ListAccounts(ctx context.Context, params *sso.ListAccountsInput, optFns ...func(*sso.Options)) (*sso.ListAccountsOutput, error)
	ListAccountRoles(ctx context.Context, params *sso.ListAccountRolesInput, optFns ...func(*sso.Options)) (*sso.ListAccountRolesOutput, error)
	GetRoleCredentials(ctx context.Context, params *sso.GetRoleCredentialsInput, optFns ...func(*sso.Options)) (*sso.GetRoleCredentialsOutput, error)
}

// Client wraps the AWS SSO service clients for one region. It carries no
// session state; each call is a single remote exchange and retry policy
// belongs to the caller.
type Client struct {
	region string
	oidc   OIDCAPI
	portal PortalAPI
	now    func() time.Time
}

// NewClient initializes AWS service clients for a specific region
func NewClient(ctx context.Context, region string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &Client{
		region: region,
		oidc:   ssooidc.NewFromConfig(cfg),
		portal: sso.NewFromConfig(cfg),
		now:    time.Now,
	}, nil
}

// NewClientWithAPIs builds a client over explicit API implementations,
// primarily for tests.
func NewClientWithAPIs(region string, oidc OIDCAPI, portal PortalAPI) *Client {
	return &Client{region: region, oidc: oidc, portal: portal, now: time.Now}
}

// Region returns the region the client talks to.
func (c *Client) Region() string {
	return c.region
}

// StartDeviceAuthorization registers a public OIDC client and starts a
// device authorization request for the given start URL.
func (c *Client) StartDeviceAuthorization(ctx context.Context, startURL string) (*Authorization, error) {
	registerOutput, err := c.oidc.RegisterClient(ctx, &ssooidc.RegisterClientInput{
		ClientName: aws.String(clientName),
		ClientType: aws.String(clientType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register OIDC client: %w", err)
	}

	deviceAuthOutput, err := c.oidc.StartDeviceAuthorization(ctx, &ssooidc.StartDeviceAuthorizationInput{
		ClientId:     registerOutput.ClientId,
		ClientSecret: registerOutput.ClientSecret,
		StartUrl:     aws.String(startURL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start device authorization: %w", err)
	}

	return &Authorization{
		ClientID:                aws.ToString(registerOutput.ClientId),
		ClientSecret:            aws.ToString(registerOutput.ClientSecret),
		DeviceCode:              aws.ToString(deviceAuthOutput.DeviceCode),
		UserCode:                aws.ToString(deviceAuthOutput.UserCode),
		VerificationURI:         aws.ToString(deviceAuthOutput.VerificationUri),
		VerificationURIComplete: aws.ToString(deviceAuthOutput.VerificationUriComplete),
		ExpiresAt:               c.now().Add(time.Duration(deviceAuthOutput.ExpiresIn) * time.Second),
		Interval:                deviceAuthOutput.Interval,
		StartURL:                startURL,
		Region:                  c.region,
	}, nil
}

// PollToken performs exactly one token exchange attempt and classifies the
// outcome. Failures are folded into the result rather than returned, so the
// caller always gets a terminal, inspectable status.
func (c *Client) PollToken(ctx context.Context, auth *Authorization) PollResult {
	// The provider-supplied expiry is absolute; a poll after it is doomed.
	if !auth.ExpiresAt.IsZero() && c.now().After(auth.ExpiresAt) {
		return PollResult{Status: PollExpired, Message: "authorization expired, please start again"}
	}

	tokenOutput, err := c.oidc.CreateToken(ctx, &ssooidc.CreateTokenInput{
		ClientId:     aws.String(auth.ClientID),
		ClientSecret: aws.String(auth.ClientSecret),
		DeviceCode:   aws.String(auth.DeviceCode),
		GrantType:    aws.String(deviceGrantType),
	})
	if err != nil {
		return classifyTokenError(err)
	}

	return PollResult{
		Status:      PollSuccess,
		AccessToken: aws.ToString(tokenOutput.AccessToken),
		ExpiresIn:   tokenOutput.ExpiresIn,
	}
}

func classifyTokenError(err error) PollResult {
	var (
		pendingErr  *oidctypes.AuthorizationPendingException
		slowDownErr *oidctypes.SlowDownException
		expiredErr  *oidctypes.ExpiredTokenException
		deniedErr   *oidctypes.AccessDeniedException
	)

	switch {
	case errors.As(err, &pendingErr):
		return PollResult{Status: PollPending, Message: "waiting for user to complete authorization"}
	case errors.As(err, &slowDownErr):
		return PollResult{Status: PollSlowDown, Message: "polling too fast, slow down"}
	case errors.As(err, &expiredErr):
		return PollResult{Status: PollExpired, Message: "authorization expired, please start again"}
	case errors.As(err, &deniedErr):
		return PollResult{Status: PollDenied, Message: "access denied by user"}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return PollResult{Status: PollError, Message: apiErr.ErrorMessage()}
	}
	return PollResult{Status: PollError, Message: err.Error()}
}

// ListAccounts lists the accounts available to the authenticated user.
func (c *Client) ListAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	var accounts []Account
	var nextToken *string

	for {
		resp, err := c.portal.ListAccounts(ctx, &sso.ListAccountsInput{
			AccessToken: aws.String(accessToken),
			NextToken:   nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list accounts: %w", err)
		}

		for _, acc := range resp.AccountList {
			accounts = append(accounts, Account{
				AccountID:   aws.ToString(acc.AccountId),
				AccountName: aws.ToString(acc.AccountName),
				Email:       aws.ToString(acc.EmailAddress),
			})
		}

		nextToken = resp.NextToken
		if nextToken == nil {
			break
		}
	}

	return accounts, nil
}

// ListRoles lists the roles available for a specific account.
func (c *Client) ListRoles(ctx context.Context, accessToken, accountID string) ([]Role, error) {
	var roles []Role
	var nextToken *string

	for {
		resp, err := c.portal.ListAccountRoles(ctx, &sso.ListAccountRolesInput{
			AccessToken: aws.String(accessToken),
			AccountId:   aws.String(accountID),
			NextToken:   nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list roles for account %s: %w", accountID, err)
		}

		for _, role := range resp.RoleList {
			roles = append(roles, Role{
				RoleName:  aws.ToString(role.RoleName),
				AccountID: accountID,
			})
		}

		nextToken = resp.NextToken
		if nextToken == nil {
			break
		}
	}

	return roles, nil
}

// GetRoleCredentials exchanges the access token for temporary credentials
// scoped to one account/role pair.
func (c *Client) GetRoleCredentials(ctx context.Context, accessToken, accountID, roleName string) (*RoleCredentials, error) {
	resp, err := c.portal.GetRoleCredentials(ctx, &sso.GetRoleCredentialsInput{
		AccessToken: aws.String(accessToken),
		AccountId:   aws.String(accountID),
		RoleName:    aws.String(roleName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get role credentials: %w", err)
	}

	return fromRoleCredentials(resp.RoleCredentials), nil
}

func fromRoleCredentials(rc *ssotypes.RoleCredentials) *RoleCredentials {
	if rc == nil {
		return nil
	}
	return &RoleCredentials{
		AccessKeyID:     aws.ToString(rc.AccessKeyId),
		SecretAccessKey: aws.ToString(rc.SecretAccessKey),
		SessionToken:    aws.ToString(rc.SessionToken),
		Expiration:      time.UnixMilli(rc.Expiration),
	}
}
