package navigator

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/iotedge-devcomp/authrecord"
	"github.com/jrsteele09/iotedge-devcomp/cloud"
	"github.com/jrsteele09/iotedge-devcomp/identity"
	apperrors "github.com/jrsteele09/iotedge-devcomp/internal/errors"
	"github.com/jrsteele09/iotedge-devcomp/registry"
)

const (
	defaultOwnerKeyName = "iothubowner"
	defaultHubSuffix    = "azure-devices.net"
)

var _ Navigator = (*AzureNavigator)(nil)

// Deps holds the collaborators of the AzureNavigator.
type Deps struct {
	Records  authrecord.Repo       // Saved authentication record
	Identity Authenticator         // Interactive login and silent resume
	Cloud    cloud.ProviderFactory // Resource listing for a signed-in identity
	Registry registry.Factory      // Device registry of a selected hub
}

// AzureNavigator walks subscription, resource group, IoT hub and edge device
// for one signed-in identity.
type AzureNavigator struct {
	deps         Deps
	ownerKeyName string
	hubSuffix    string
	sessionID    string

	session  identity.Session
	provider cloud.Provider
	scope    cloud.Scope
	registry registry.Registry
	state    State
	lock     sync.Mutex
}

// Option defines a function type to modify the AzureNavigator instance.
type Option func(*options)

type options struct {
	ownerKeyName  string
	hubSuffix     string
	correlationID string
}

// WithOwnerKeyName sets the shared-access policy whose key opens the registry.
func WithOwnerKeyName(name string) Option {
	return func(o *options) {
		o.ownerKeyName = name
	}
}

// WithHubSuffix sets the DNS suffix of IoT hub host names.
func WithHubSuffix(suffix string) Option {
	return func(o *options) {
		o.hubSuffix = suffix
	}
}

// WithCorrelationID sets the session_id logged with every call.
func WithCorrelationID(id string) Option {
	return func(o *options) {
		o.correlationID = id
	}
}

// NewAzureNavigator creates an unauthenticated navigator.
func NewAzureNavigator(deps Deps, opts ...Option) (*AzureNavigator, error) {
	if deps.Records == nil {
		return nil, errors.New("[NewAzureNavigator] Records repo is required")
	}
	if deps.Identity == nil {
		return nil, errors.New("[NewAzureNavigator] Identity is required")
	}
	if deps.Cloud == nil {
		return nil, errors.New("[NewAzureNavigator] Cloud factory is required")
	}
	if deps.Registry == nil {
		return nil, errors.New("[NewAzureNavigator] Registry factory is required")
	}

	o := options{
		ownerKeyName: defaultOwnerKeyName,
		hubSuffix:    defaultHubSuffix,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.correlationID == "" {
		o.correlationID = uuid.NewString()
	}

	return &AzureNavigator{
		deps:         deps,
		ownerKeyName: o.ownerKeyName,
		hubSuffix:    o.hubSuffix,
		sessionID:    o.correlationID,
	}, nil
}

// logger tags the global logger, as configured at the time of the call, with
// the session id.
func (n *AzureNavigator) logger() *zerolog.Logger {
	l := log.With().Str("session_id", n.sessionID).Logger()
	return &l
}

func (n *AzureNavigator) State() State {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.state
}

func (n *AzureNavigator) Authorize(ctx context.Context, onPrompt func(identity.Prompt)) error {
	resumed, err := n.ResumeSession(ctx)
	if err != nil {
		return err
	}
	if resumed {
		return nil
	}

	pending, err := n.BeginLogin(ctx)
	if err != nil {
		return err
	}
	if onPrompt != nil {
		onPrompt(pending.Prompt)
	}
	return n.CompleteLogin(ctx, pending)
}

func (n *AzureNavigator) ResumeSession(ctx context.Context) (bool, error) {
	record, err := n.deps.Records.Load()
	if apperrors.Is(err, apperrors.ErrDeserialization) {
		// Left on disk for inspection; the next login overwrites it.
		n.logger().Warn().Err(err).Str("path", n.deps.Records.Path()).Msg("ignoring unreadable authentication record")
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "[Navigator ResumeSession] load record")
	}
	if record == nil {
		n.logger().Debug().Msg("no saved authentication record")
		return false, nil
	}

	session, err := n.deps.Identity.Resume(ctx, record)
	if err != nil {
		n.logger().Warn().Err(err).Str("username", record.Username).Msg("saved session could not be resumed")
		return false, nil
	}
	if err := n.adopt(session); err != nil {
		return false, err
	}

	// The resume may already have rotated the refresh token.
	if current := session.Record(); !current.Equal(record) {
		n.persist(current)
	}
	n.logger().Info().Str("username", record.Username).Msg("signed in from saved record")
	return true, nil
}

func (n *AzureNavigator) BeginLogin(ctx context.Context) (*identity.PendingLogin, error) {
	pending, err := n.deps.Identity.BeginLogin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Navigator BeginLogin]")
	}
	n.logger().Debug().Time("expires_at", pending.Prompt.ExpiresAt).Msg("login prompt issued")
	return pending, nil
}

func (n *AzureNavigator) CompleteLogin(ctx context.Context, pending *identity.PendingLogin) error {
	session, err := n.deps.Identity.CompleteLogin(ctx, pending)
	if err != nil {
		return errors.Wrap(err, "[Navigator CompleteLogin]")
	}
	if err := n.adopt(session); err != nil {
		return err
	}

	record := session.Record()
	if err := n.deps.Records.Save(record); err != nil {
		return errors.Wrap(err, "[Navigator CompleteLogin] save record")
	}
	n.logger().Info().Str("username", record.Username).Str("path", n.deps.Records.Path()).Msg("authentication record saved")
	return nil
}

// adopt makes session the current identity and drops every selection.
func (n *AzureNavigator) adopt(session identity.Session) error {
	provider, err := n.deps.Cloud(session.Credential())
	if err != nil {
		return errors.Wrap(err, "[Navigator adopt] create resource provider")
	}
	session.OnRotate(n.persist)

	n.lock.Lock()
	defer n.lock.Unlock()
	n.session = session
	n.provider = provider
	n.scope = nil
	n.registry = nil
	n.state = State{Phase: Authenticated, Username: session.Record().Username}
	return nil
}

// persist saves a rotated record. Failures only cost a future silent resume.
func (n *AzureNavigator) persist(record *authrecord.Record) {
	if err := n.deps.Records.Save(record); err != nil {
		n.logger().Warn().Err(err).Str("path", n.deps.Records.Path()).Msg("could not save authentication record")
		return
	}
	n.logger().Debug().Str("username", record.Username).Msg("authentication record updated")
}

func (n *AzureNavigator) Reset() {
	n.lock.Lock()
	defer n.lock.Unlock()
	if n.state.Phase == Unauthenticated {
		return
	}
	n.scope = nil
	n.registry = nil
	n.state = State{Phase: Authenticated, Username: n.state.Username}
}

func (n *AzureNavigator) ListSubscriptions(ctx context.Context) ([]cloud.Subscription, error) {
	n.lock.Lock()
	provider := n.provider
	n.lock.Unlock()
	if provider == nil {
		return nil, apperrors.ErrNotAuthenticated
	}

	subscriptions, err := provider.ListSubscriptions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Navigator ListSubscriptions]")
	}
	n.logger().Debug().Str("level", LevelSubscription.String()).Int("count", len(subscriptions)).Msg("listed")
	return subscriptions, nil
}

// SelectSubscription opens a scope on subscriptionID. An empty id clears the
// subscription and everything below it.
func (n *AzureNavigator) SelectSubscription(subscriptionID string) error {
	n.lock.Lock()
	defer n.lock.Unlock()
	if n.provider == nil {
		return apperrors.ErrNotAuthenticated
	}

	n.scope = nil
	n.registry = nil
	n.state = State{Phase: Authenticated, Username: n.state.Username}
	if subscriptionID == "" {
		return nil
	}

	scope, err := n.provider.ForSubscription(subscriptionID)
	if err != nil {
		return errors.Wrapf(err, "[Navigator SelectSubscription] %s", subscriptionID)
	}
	n.scope = scope
	n.state.SubscriptionID = subscriptionID
	n.state.Phase = SubscriptionSelected
	n.logger().Debug().Str("subscription_id", subscriptionID).Msg("subscription selected")
	return nil
}

func (n *AzureNavigator) ListResourceGroups(ctx context.Context) ([]string, error) {
	n.lock.Lock()
	scope := n.scope
	n.lock.Unlock()
	if scope == nil {
		return nil, apperrors.ErrNoSubscription
	}

	groups, err := scope.ListResourceGroups(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Navigator ListResourceGroups]")
	}
	n.logger().Debug().Str("level", LevelResourceGroup.String()).Int("count", len(groups)).Msg("listed")
	return groups, nil
}

// SelectResourceGroup records name and clears the hub and device levels. An
// empty name leaves those levels disabled.
func (n *AzureNavigator) SelectResourceGroup(name string) error {
	n.lock.Lock()
	defer n.lock.Unlock()
	if n.scope == nil {
		return apperrors.ErrNoSubscription
	}

	n.registry = nil
	n.state.Hub = ""
	n.state.ResourceGroup = name
	n.state.Phase = SubscriptionSelected
	if name != "" {
		n.state.Phase = ResourceGroupSelected
	}
	return nil
}

func (n *AzureNavigator) ListIoTHubs(ctx context.Context) ([]string, error) {
	n.lock.Lock()
	scope, group := n.scope, n.state.ResourceGroup
	n.lock.Unlock()
	if scope == nil || group == "" {
		return nil, apperrors.ErrNoResourceGroup
	}

	hubs, err := scope.ListIoTHubs(ctx, group)
	if err != nil {
		return nil, errors.Wrapf(err, "[Navigator ListIoTHubs] %s", group)
	}
	n.logger().Debug().Str("level", LevelHub.String()).Str("resource_group", group).Int("count", len(hubs)).Msg("listed")
	return hubs, nil
}

// SelectIoTHub resolves the owner key of hub and opens its registry. An empty
// name clears the hub. A hub without the owner key is an error and leaves no
// hub selected.
func (n *AzureNavigator) SelectIoTHub(ctx context.Context, name string) error {
	n.lock.Lock()
	scope, group := n.scope, n.state.ResourceGroup
	if scope == nil || group == "" {
		n.lock.Unlock()
		return apperrors.ErrNoResourceGroup
	}
	n.registry = nil
	n.state.Hub = ""
	n.state.Phase = ResourceGroupSelected
	n.lock.Unlock()

	if name == "" {
		return nil
	}

	keys, err := scope.ListHubKeys(ctx, group, name)
	if err != nil {
		return errors.Wrapf(err, "[Navigator SelectIoTHub] list keys of %s", name)
	}
	cs, err := ResolveConnectionString(keys, name, n.hubSuffix, n.ownerKeyName)
	if err != nil {
		return err
	}
	reg, err := n.deps.Registry(cs)
	if err != nil {
		return errors.Wrapf(err, "[Navigator SelectIoTHub] open registry of %s", name)
	}

	n.lock.Lock()
	defer n.lock.Unlock()
	n.registry = reg
	n.state.Hub = name
	n.state.Phase = HubSelected
	n.logger().Debug().Str("hub", name).Msg("hub selected")
	return nil
}

// ListEdgeDevices returns the IoT Edge devices of the selected hub.
func (n *AzureNavigator) ListEdgeDevices(ctx context.Context) ([]string, error) {
	n.lock.Lock()
	reg, hub := n.registry, n.state.Hub
	n.lock.Unlock()
	if reg == nil {
		return nil, apperrors.ErrNoHub
	}

	edge, err := registry.EdgeDeviceIDs(ctx, reg)
	if err != nil {
		return nil, errors.Wrapf(err, "[Navigator ListEdgeDevices] %s", hub)
	}
	n.logger().Debug().Str("level", LevelDevice.String()).Str("hub", hub).Int("count", len(edge)).Msg("listed")
	return edge, nil
}
