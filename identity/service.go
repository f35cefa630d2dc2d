package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/iotedge-devcomp/authrecord"
	"github.com/jrsteele09/iotedge-devcomp/internal/config"
	apperrors "github.com/jrsteele09/iotedge-devcomp/internal/errors"
)

const (
	defaultLoginWindow = 15 * time.Minute

	errCodeAccessDenied = "access_denied"
	errCodeDeclined     = "authorization_declined"
	errCodeExpiredToken = "expired_token"
	errCodeBadVerifCode = "bad_verification_code"
)

// Service runs the device-code login against the Microsoft identity platform
// and redeems saved records.
type Service struct {
	config     config.IdentityConfig
	oauth      *oauth2.Config
	authority  string
	httpClient *http.Client
	keySet     oidc.KeySet
	nowTime    func() time.Time // injectable for testing
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithHTTPClient routes every identity request through client.
func WithHTTPClient(client *http.Client) ServiceOption {
	return func(s *Service) {
		s.httpClient = client
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithKeySet replaces the remote signing-key set used to verify ID tokens.
func WithKeySet(keySet oidc.KeySet) ServiceOption {
	return func(s *Service) {
		s.keySet = keySet
	}
}

// NewService builds a Service for the configured tenant and client.
func NewService(cfg config.IdentityConfig, options ...ServiceOption) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("[NewService] config is required")
	}
	if cfg.GetClientID() == "" {
		return nil, errors.New("[NewService] client id is required")
	}
	if cfg.GetTenant() == "" {
		return nil, errors.New("[NewService] tenant is required")
	}

	host := strings.TrimRight(cfg.GetAuthorityHost(), "/")
	tenantURL := host + "/" + cfg.GetTenant() + "/oauth2/v2.0"

	s := &Service{
		config:    cfg,
		authority: strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://"),
		oauth: &oauth2.Config{
			ClientID: cfg.GetClientID(),
			Endpoint: oauth2.Endpoint{
				DeviceAuthURL: tenantURL + "/devicecode",
				TokenURL:      tenantURL + "/token",
				AuthStyle:     oauth2.AuthStyleInParams,
			},
			Scopes: cfg.GetScopes(),
		},
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.keySet == nil {
		s.keySet = oidc.NewRemoteKeySet(s.sessionContext(context.Background()), host+"/common/discovery/v2.0/keys")
	}

	return s, nil
}

// BeginLogin starts a device-code login and returns the prompt to show. The
// prompt expires at the provider's deadline or after the configured login
// timeout, whichever comes first.
func (s *Service) BeginLogin(ctx context.Context) (*PendingLogin, error) {
	auth, err := s.oauth.DeviceAuth(s.clientContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "[identity BeginLogin] device authorization")
	}

	now := s.nowTime()
	expiresAt := auth.Expiry
	if expiresAt.IsZero() {
		expiresAt = now.Add(defaultLoginWindow)
	}
	if timeout := s.config.GetLoginTimeout(); timeout > 0 && now.Add(timeout).Before(expiresAt) {
		expiresAt = now.Add(timeout)
	}
	auth.Expiry = expiresAt

	uri := auth.VerificationURI
	if uri == "" {
		uri = auth.VerificationURIComplete
	}

	log.Info().Str("verification_uri", uri).Time("expires_at", expiresAt).Msg("interactive login started")

	return &PendingLogin{
		Prompt: newPrompt(uri, auth.UserCode, expiresAt),
		auth:   auth,
	}, nil
}

// CompleteLogin blocks until the operator finishes the login in the browser,
// the provider rejects it, or the prompt expires.
func (s *Service) CompleteLogin(ctx context.Context, pending *PendingLogin) (Session, error) {
	if pending == nil || pending.auth == nil {
		return nil, errors.New("[identity CompleteLogin] login was not started with BeginLogin")
	}

	ctx, cancel := context.WithDeadline(ctx, pending.auth.Expiry)
	defer cancel()

	token, err := s.oauth.DeviceAccessToken(s.clientContext(ctx), pending.auth)
	if err != nil {
		return nil, classifyLoginError(ctx, err)
	}

	record, err := s.recordFromToken(ctx, token, nil)
	if err != nil {
		return nil, err
	}

	log.Info().Str("username", record.Username).Str("tenant_id", record.TenantID).Msg("interactive login completed")
	return newTokenSession(s.oauth.TokenSource(s.sessionContext(ctx), token), token, record), nil
}

// Resume redeems the refresh token of a saved record. Any failure is reported
// as ErrStaleRecord so the caller can fall back to an interactive login.
func (s *Service) Resume(ctx context.Context, record *authrecord.Record) (Session, error) {
	if record == nil || record.RefreshToken == "" {
		return nil, apperrors.Wrapf(apperrors.ErrStaleRecord, "[identity Resume] record has no refresh token")
	}
	if record.ClientID != s.oauth.ClientID {
		return nil, apperrors.Wrapf(apperrors.ErrStaleRecord, "[identity Resume] record belongs to client %s", record.ClientID)
	}

	source := s.oauth.TokenSource(s.sessionContext(ctx), &oauth2.Token{RefreshToken: record.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("[identity Resume] %w: %w", apperrors.ErrStaleRecord, err)
	}

	resumed, err := s.recordFromToken(ctx, token, record)
	if err != nil {
		return nil, fmt.Errorf("[identity Resume] %w: %w", apperrors.ErrStaleRecord, err)
	}

	log.Info().Str("username", resumed.Username).Msg("resumed saved session")
	return newTokenSession(source, token, resumed), nil
}

// clientContext attaches the configured HTTP client for x/oauth2 and go-oidc.
func (s *Service) clientContext(ctx context.Context) context.Context {
	if s.httpClient == nil {
		return ctx
	}
	return oidc.ClientContext(context.WithValue(ctx, oauth2.HTTPClient, s.httpClient), s.httpClient)
}

// sessionContext outlives the call that created the session; token sources
// keep using it for refreshes.
func (s *Service) sessionContext(ctx context.Context) context.Context {
	return s.clientContext(context.WithoutCancel(ctx))
}

func classifyLoginError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("[identity CompleteLogin] %w", apperrors.ErrLoginExpired)
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErr.ErrorCode {
		case errCodeAccessDenied, errCodeDeclined:
			return fmt.Errorf("[identity CompleteLogin] %w: %w", apperrors.ErrLoginDeclined, err)
		case errCodeExpiredToken, errCodeBadVerifCode:
			return fmt.Errorf("[identity CompleteLogin] %w: %w", apperrors.ErrLoginExpired, err)
		}
	}
	return errors.Wrap(err, "[identity CompleteLogin] device access token")
}
