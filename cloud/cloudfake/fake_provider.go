package cloudfake

import (
	"context"
	"sort"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/jrsteele09/iotedge-devcomp/cloud"
	apperrors "github.com/jrsteele09/iotedge-devcomp/internal/errors"
)

var (
	_ cloud.Provider = (*FakeProvider)(nil)
	_ cloud.Scope    = (*fakeScope)(nil)
)

// Tenant is the fake resource tree: subscription -> resource group -> hubs,
// plus the keys of each hub by hub name.
type Tenant struct {
	Subscriptions []cloud.Subscription
	Groups        map[string]map[string][]string // subscription -> group -> hubs
	Keys          map[string][]cloud.SharedAccessKey
}

// FakeProvider serves a Tenant and counts every remote-style call by name.
// Err, when set for an operation name, is returned instead of data.
type FakeProvider struct {
	tenant Tenant
	calls  map[string]int
	Err    map[string]error
	lock   sync.Mutex
}

func NewFakeProvider(tenant Tenant) *FakeProvider {
	return &FakeProvider{
		tenant: tenant,
		calls:  make(map[string]int),
		Err:    make(map[string]error),
	}
}

// Factory returns a cloud.ProviderFactory that always yields fp.
func (fp *FakeProvider) Factory() cloud.ProviderFactory {
	return func(_ azcore.TokenCredential) (cloud.Provider, error) {
		return fp, nil
	}
}

// Calls reports how many times op was invoked.
func (fp *FakeProvider) Calls(op string) int {
	fp.lock.Lock()
	defer fp.lock.Unlock()
	return fp.calls[op]
}

func (fp *FakeProvider) record(op string) error {
	fp.lock.Lock()
	defer fp.lock.Unlock()
	fp.calls[op]++
	return fp.Err[op]
}

func (fp *FakeProvider) ListSubscriptions(_ context.Context) ([]cloud.Subscription, error) {
	if err := fp.record("ListSubscriptions"); err != nil {
		return nil, err
	}
	return append([]cloud.Subscription(nil), fp.tenant.Subscriptions...), nil
}

func (fp *FakeProvider) ForSubscription(subscriptionID string) (cloud.Scope, error) {
	if err := fp.record("ForSubscription"); err != nil {
		return nil, err
	}
	return &fakeScope{provider: fp, subscriptionID: subscriptionID}, nil
}

type fakeScope struct {
	provider       *FakeProvider
	subscriptionID string
}

func (s *fakeScope) ListResourceGroups(_ context.Context) ([]string, error) {
	if err := s.provider.record("ListResourceGroups"); err != nil {
		return nil, err
	}
	groups, ok := s.provider.tenant.Groups[s.subscriptionID]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "subscription %s", s.subscriptionID)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *fakeScope) ListIoTHubs(_ context.Context, resourceGroup string) ([]string, error) {
	if err := s.provider.record("ListIoTHubs"); err != nil {
		return nil, err
	}
	hubs, ok := s.provider.tenant.Groups[s.subscriptionID][resourceGroup]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "resource group %s", resourceGroup)
	}
	return append([]string(nil), hubs...), nil
}

func (s *fakeScope) ListHubKeys(_ context.Context, _ string, hub string) ([]cloud.SharedAccessKey, error) {
	if err := s.provider.record("ListHubKeys"); err != nil {
		return nil, err
	}
	return append([]cloud.SharedAccessKey(nil), s.provider.tenant.Keys[hub]...), nil
}
