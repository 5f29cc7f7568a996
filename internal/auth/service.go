package auth

import (
	"context"
	"fmt"
)

// Service ties the credential store, the token codec and the blacklist into
// the issuance/validation/revocation flows the HTTP layer consumes.
type Service struct {
	creds     *CredentialStore
	codec     *TokenCodec
	blacklist Blacklist
}

// NewService constructs the auth service. All collaborators are injected;
// there is no ambient global state.
func NewService(creds *CredentialStore, codec *TokenCodec, blacklist Blacklist) (*Service, error) {
	if creds == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if codec == nil {
		return nil, fmt.Errorf("token codec is required")
	}
	if blacklist == nil {
		return nil, fmt.Errorf("blacklist is required")
	}
	return &Service{creds: creds, codec: codec, blacklist: blacklist}, nil
}

// Register creates a new identity. The role name is validated here so the
// HTTP layer only ever passes strings through.
func (s *Service) Register(_ context.Context, username, password, role string) (Identity, error) {
	parsed, ok := ParseRole(role)
	if !ok {
		return Identity{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	return s.creds.Register(username, password, parsed)
}

// Login verifies credentials and mints a token. Unknown user and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(_ context.Context, username, password string) (string, Claims, error) {
	identity, err := s.creds.Verify(username, password)
	if err != nil {
		return "", Claims{}, err
	}
	token, claims, err := s.codec.Issue(identity)
	if err != nil {
		return "", Claims{}, err
	}
	return token, claims, nil
}

// Logout revokes the caller's current token until its natural expiry. The
// claims were already validated by Authenticate; no raw token is needed.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return ErrInvalidIdentity
	}
	return s.blacklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// Authenticate validates a raw bearer token and consults the blacklist. A
// token is honored only if the signature, issuer, audience and expiry all
// check out and its jti has not been revoked.
func (s *Service) Authenticate(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.codec.Validate(raw)
	if err != nil {
		return nil, err
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("revocation check: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Users lists all registered identities.
func (s *Service) Users(_ context.Context) []Identity {
	return s.creds.List()
}

// UserByID fetches a single identity.
func (s *Service) UserByID(_ context.Context, id string) (Identity, error) {
	return s.creds.GetByID(id)
}
