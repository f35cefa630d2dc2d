package identityfake

import (
	"context"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/jrsteele09/iotedge-devcomp/authrecord"
	"github.com/jrsteele09/iotedge-devcomp/identity"
)

// FakeAuthenticator stands in for identity.Service. Resume succeeds for any
// record whose refresh token is in ValidRefreshTokens; an interactive login
// always yields LoginRecord unless LoginErr is set.
type FakeAuthenticator struct {
	ValidRefreshTokens map[string]bool
	LoginRecord        *authrecord.Record
	LoginErr           error
	Prompt             identity.Prompt

	resumes int
	begins  int
	last    *Session
	lock    sync.Mutex
}

func NewFakeAuthenticator(loginRecord *authrecord.Record) *FakeAuthenticator {
	return &FakeAuthenticator{
		ValidRefreshTokens: make(map[string]bool),
		LoginRecord:        loginRecord,
		Prompt: identity.Prompt{
			VerificationURI: "https://microsoft.com/devicelogin",
			UserCode:        "FAKE-CODE",
			ExpiresAt:       time.Now().Add(15 * time.Minute),
		},
	}
}

func (fa *FakeAuthenticator) BeginLogin(_ context.Context) (*identity.PendingLogin, error) {
	fa.lock.Lock()
	defer fa.lock.Unlock()
	fa.begins++
	return &identity.PendingLogin{Prompt: fa.Prompt}, nil
}

func (fa *FakeAuthenticator) CompleteLogin(_ context.Context, _ *identity.PendingLogin) (identity.Session, error) {
	fa.lock.Lock()
	defer fa.lock.Unlock()
	if fa.LoginErr != nil {
		return nil, fa.LoginErr
	}
	fa.last = NewSession(fa.LoginRecord)
	return fa.last, nil
}

func (fa *FakeAuthenticator) Resume(_ context.Context, record *authrecord.Record) (identity.Session, error) {
	fa.lock.Lock()
	defer fa.lock.Unlock()
	fa.resumes++
	if record == nil || !fa.ValidRefreshTokens[record.RefreshToken] {
		return nil, errStale
	}
	fa.last = NewSession(record)
	return fa.last, nil
}

// LastSession returns the most recently issued session, or nil.
func (fa *FakeAuthenticator) LastSession() *Session {
	fa.lock.Lock()
	defer fa.lock.Unlock()
	return fa.last
}

// Resumes reports how many resume attempts were made.
func (fa *FakeAuthenticator) Resumes() int {
	fa.lock.Lock()
	defer fa.lock.Unlock()
	return fa.resumes
}

// Logins reports how many interactive logins were started.
func (fa *FakeAuthenticator) Logins() int {
	fa.lock.Lock()
	defer fa.lock.Unlock()
	return fa.begins
}

var _ identity.Session = (*Session)(nil)

// Session is a fixed identity with a static credential. Rotate simulates the
// provider handing out a new refresh token.
type Session struct {
	record   authrecord.Record
	onRotate func(*authrecord.Record)
}

func NewSession(record *authrecord.Record) *Session {
	s := &Session{}
	if record != nil {
		s.record = *record
	}
	return s
}

func (s *Session) Record() *authrecord.Record {
	r := s.record
	return &r
}

func (s *Session) Credential() azcore.TokenCredential {
	return StaticCredential{Token: "fake-access-token"}
}

func (s *Session) OnRotate(fn func(*authrecord.Record)) {
	s.onRotate = fn
}

func (s *Session) Rotate(refreshToken string) {
	s.record.RefreshToken = refreshToken
	if s.onRotate != nil {
		s.onRotate(s.Record())
	}
}

// StaticCredential always returns Token, valid for an hour.
type StaticCredential struct {
	Token string
}

func (c StaticCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: c.Token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}
