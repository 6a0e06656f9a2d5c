// Package identity vends temporary AWS credentials from a Cognito
// identity pool so widget processes can sign bot calls without
// long-lived keys.
package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
)

// cognitoAPI is the slice of the Cognito Identity client used here.
type cognitoAPI interface {
	GetId(ctx context.Context, params *cognitoidentity.GetIdInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetIdOutput, error)
	GetCredentialsForIdentity(ctx context.Context, params *cognitoidentity.GetCredentialsForIdentityInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetCredentialsForIdentityOutput, error)
}

// expiryWindow renews credentials slightly before the service-side expiry
// so in-flight requests never sign with stale keys.
const expiryWindow = time.Minute

// PoolProvider implements aws.CredentialsProvider on top of an
// unauthenticated identity pool. The pool identity is minted once and the
// temporary credentials are cached until near expiry.
type PoolProvider struct {
	api    cognitoAPI
	poolID string

	mu         sync.Mutex
	identityID string
	cached     aws.Credentials
}

// NewPoolProvider builds a provider from an AWS config. The config passed
// here must carry anonymous credentials; the pool is what grants access.
func NewPoolProvider(awsCfg aws.Config, poolID string) *PoolProvider {
	if poolID == "" {
		panic("identity: identity pool id is required")
	}
	return &PoolProvider{api: cognitoidentity.NewFromConfig(awsCfg), poolID: poolID}
}

// NewPoolProviderWithAPI allows injecting a fake Cognito client in tests.
func NewPoolProviderWithAPI(api cognitoAPI, poolID string) *PoolProvider {
	if api == nil {
		panic("identity: cognito api is required")
	}
	if poolID == "" {
		panic("identity: identity pool id is required")
	}
	return &PoolProvider{api: api, poolID: poolID}
}

// Retrieve returns cached credentials while they remain valid, otherwise
// performs the GetId/GetCredentialsForIdentity round trip.
func (p *PoolProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached.HasKeys() && !p.cached.Expired() {
		return p.cached, nil
	}

	if p.identityID == "" {
		out, err := p.api.GetId(ctx, &cognitoidentity.GetIdInput{
			IdentityPoolId: aws.String(p.poolID),
		})
		if err != nil {
			return aws.Credentials{}, fmt.Errorf("identity: get id: %w", err)
		}
		p.identityID = aws.ToString(out.IdentityId)
	}

	out, err := p.api.GetCredentialsForIdentity(ctx, &cognitoidentity.GetCredentialsForIdentityInput{
		IdentityId: aws.String(p.identityID),
	})
	if err != nil {
		return aws.Credentials{}, fmt.Errorf("identity: get credentials: %w", err)
	}
	creds := out.Credentials
	if creds == nil || creds.AccessKeyId == nil || creds.SecretKey == nil {
		return aws.Credentials{}, fmt.Errorf("identity: empty credentials for identity %s", p.identityID)
	}

	p.cached = aws.Credentials{
		AccessKeyID:     aws.ToString(creds.AccessKeyId),
		SecretAccessKey: aws.ToString(creds.SecretKey),
		SessionToken:    aws.ToString(creds.SessionToken),
		Source:          "CognitoIdentityPool",
	}
	if creds.Expiration != nil {
		p.cached.CanExpire = true
		p.cached.Expires = creds.Expiration.Add(-expiryWindow)
	}
	return p.cached, nil
}

// IdentityID returns the minted pool identity, or empty before the first
// successful Retrieve.
func (p *PoolProvider) IdentityID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.identityID
}

var _ aws.CredentialsProvider = (*PoolProvider)(nil)
