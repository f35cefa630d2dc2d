package navigator

import (
	"context"

	"github.com/jrsteele09/iotedge-devcomp/authrecord"
	"github.com/jrsteele09/iotedge-devcomp/cloud"
	"github.com/jrsteele09/iotedge-devcomp/identity"
)

// Navigator is the contract the user interfaces drive. Each List call goes to
// the cloud every time; each Select call clears every level below it.
type Navigator interface {
	// Authorize resumes the saved session or runs an interactive login,
	// handing the prompt to onPrompt before blocking on the operator.
	Authorize(ctx context.Context, onPrompt func(identity.Prompt)) error

	// ResumeSession tries the saved record only. It reports false, without an
	// error, when there is no usable record.
	ResumeSession(ctx context.Context) (bool, error)

	// BeginLogin and CompleteLogin are the two halves of the interactive login.
	BeginLogin(ctx context.Context) (*identity.PendingLogin, error)
	CompleteLogin(ctx context.Context, pending *identity.PendingLogin) error

	ListSubscriptions(ctx context.Context) ([]cloud.Subscription, error)
	SelectSubscription(subscriptionID string) error

	ListResourceGroups(ctx context.Context) ([]string, error)
	SelectResourceGroup(name string) error

	ListIoTHubs(ctx context.Context) ([]string, error)
	SelectIoTHub(ctx context.Context, name string) error

	ListEdgeDevices(ctx context.Context) ([]string, error)

	// Reset drops every selection but keeps the session.
	Reset()

	State() State
}

// Authenticator is the identity provider as seen by the navigator.
// identity.Service satisfies it.
type Authenticator interface {
	BeginLogin(ctx context.Context) (*identity.PendingLogin, error)
	CompleteLogin(ctx context.Context, pending *identity.PendingLogin) (identity.Session, error)
	Resume(ctx context.Context, record *authrecord.Record) (identity.Session, error)
}

var _ Authenticator = (*identity.Service)(nil)
