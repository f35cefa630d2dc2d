package identity

import (
	"context"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/iotedge-devcomp/authrecord"
)

// Session is an authenticated identity.
type Session interface {
	// Record returns the latest authentication record, including a rotated
	// refresh token
	Record() *authrecord.Record

	// Credential authenticates Azure SDK clients as this identity
	Credential() azcore.TokenCredential

	// OnRotate registers fn to be called whenever the provider rotates the
	// refresh token
	OnRotate(fn func(*authrecord.Record))
}

var (
	_ Session                = (*tokenSession)(nil)
	_ azcore.TokenCredential = (*tokenSession)(nil)
)

// tokenSession adapts an oauth2.TokenSource to azcore.TokenCredential.
type tokenSession struct {
	source   oauth2.TokenSource
	record   authrecord.Record
	onRotate func(*authrecord.Record)
	lock     sync.Mutex
}

func newTokenSession(source oauth2.TokenSource, current *oauth2.Token, record *authrecord.Record) *tokenSession {
	return &tokenSession{
		source: oauth2.ReuseTokenSource(current, source),
		record: *record,
	}
}

func (s *tokenSession) Record() *authrecord.Record {
	s.lock.Lock()
	defer s.lock.Unlock()
	r := s.record
	return &r
}

func (s *tokenSession) Credential() azcore.TokenCredential {
	return s
}

func (s *tokenSession) OnRotate(fn func(*authrecord.Record)) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.onRotate = fn
}

// GetToken implements azcore.TokenCredential. The session holds a token for
// the scopes granted at login; the requested scopes are not renegotiated.
// oauth2 token sources take no context, so ctx only guards the call itself.
func (s *tokenSession) GetToken(ctx context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	if err := ctx.Err(); err != nil {
		return azcore.AccessToken{}, err
	}

	s.lock.Lock()
	token, err := s.source.Token()
	if err != nil {
		s.lock.Unlock()
		return azcore.AccessToken{}, errors.Wrap(err, "[identity GetToken] refresh access token")
	}

	var rotated *authrecord.Record
	onRotate := s.onRotate
	if token.RefreshToken != "" && token.RefreshToken != s.record.RefreshToken {
		s.record.RefreshToken = token.RefreshToken
		r := s.record
		rotated = &r
	}
	s.lock.Unlock()

	if rotated != nil {
		log.Debug().Str("username", rotated.Username).Msg("refresh token rotated")
		if onRotate != nil {
			onRotate(rotated)
		}
	}

	return azcore.AccessToken{Token: token.AccessToken, ExpiresOn: token.Expiry}, nil
}
