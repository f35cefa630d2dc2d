package cloud

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/iothub/armiothub"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/iotedge-devcomp/internal/config"
	"github.com/jrsteele09/iotedge-devcomp/internal/utils"
)

var (
	_ Provider = (*ARMProvider)(nil)
	_ Scope    = (*armScope)(nil)
)

// ARMProvider talks to Azure Resource Manager through the Azure SDK.
type ARMProvider struct {
	credential      azcore.TokenCredential
	options         *arm.ClientOptions
	hubResourceType string
	subscriptions   *armsubscriptions.Client
}

// ARMOption defines a function type to modify the ARMProvider instance.
type ARMOption func(*arm.ClientOptions)

// WithClientOptions replaces the SDK client options. Retries and resource
// provider registration stay disabled regardless.
func WithClientOptions(options arm.ClientOptions) ARMOption {
	return func(o *arm.ClientOptions) {
		*o = options
	}
}

// NewARMProvider creates a Provider for credential.
func NewARMProvider(credential azcore.TokenCredential, cfg config.ResourceConfig, options ...ARMOption) (*ARMProvider, error) {
	if credential == nil {
		return nil, errors.New("[NewARMProvider] credential is required")
	}

	clientOptions := &arm.ClientOptions{}
	for _, opt := range options {
		opt(clientOptions)
	}
	clientOptions.Retry = policy.RetryOptions{MaxRetries: -1}
	clientOptions.DisableRPRegistration = true

	subscriptions, err := armsubscriptions.NewClient(credential, clientOptions)
	if err != nil {
		return nil, errors.Wrap(err, "[NewARMProvider] armsubscriptions.NewClient")
	}

	return &ARMProvider{
		credential:      credential,
		options:         clientOptions,
		hubResourceType: cfg.GetIoTHubResourceType(),
		subscriptions:   subscriptions,
	}, nil
}

// NewARMProviderFactory adapts NewARMProvider to a ProviderFactory.
func NewARMProviderFactory(cfg config.ResourceConfig, options ...ARMOption) ProviderFactory {
	return func(credential azcore.TokenCredential) (Provider, error) {
		return NewARMProvider(credential, cfg, options...)
	}
}

func (p *ARMProvider) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	var subscriptions []Subscription
	pager := p.subscriptions.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "[ARMProvider ListSubscriptions]")
		}
		for _, sub := range utils.Compact(page.Value) {
			subscriptions = append(subscriptions, Subscription{
				Name: utils.Value(sub.DisplayName),
				ID:   utils.Value(sub.SubscriptionID),
			})
		}
	}
	log.Debug().Int("count", len(subscriptions)).Msg("listed subscriptions")
	return subscriptions, nil
}

func (p *ARMProvider) ForSubscription(subscriptionID string) (Scope, error) {
	if subscriptionID == "" {
		return nil, errors.New("[ARMProvider ForSubscription] subscription id is required")
	}

	groups, err := armresources.NewResourceGroupsClient(subscriptionID, p.credential, p.options)
	if err != nil {
		return nil, errors.Wrap(err, "[ARMProvider ForSubscription] armresources.NewResourceGroupsClient")
	}
	resources, err := armresources.NewClient(subscriptionID, p.credential, p.options)
	if err != nil {
		return nil, errors.Wrap(err, "[ARMProvider ForSubscription] armresources.NewClient")
	}
	hubs, err := armiothub.NewResourceClient(subscriptionID, p.credential, p.options)
	if err != nil {
		return nil, errors.Wrap(err, "[ARMProvider ForSubscription] armiothub.NewResourceClient")
	}

	return &armScope{
		subscriptionID:  subscriptionID,
		hubResourceType: p.hubResourceType,
		groups:          groups,
		resources:       resources,
		hubs:            hubs,
	}, nil
}

type armScope struct {
	subscriptionID  string
	hubResourceType string
	groups          *armresources.ResourceGroupsClient
	resources       *armresources.Client
	hubs            *armiothub.ResourceClient
}

func (s *armScope) ListResourceGroups(ctx context.Context) ([]string, error) {
	var names []string
	pager := s.groups.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "[armScope ListResourceGroups] subscription %s", s.subscriptionID)
		}
		for _, group := range utils.Compact(page.Value) {
			names = append(names, utils.Value(group.Name))
		}
	}
	log.Debug().Str("subscription_id", s.subscriptionID).Int("count", len(names)).Msg("listed resource groups")
	return names, nil
}

func (s *armScope) ListIoTHubs(ctx context.Context, resourceGroup string) ([]string, error) {
	filter := fmt.Sprintf("resourceType eq '%s'", s.hubResourceType)

	var names []string
	pager := s.resources.NewListByResourceGroupPager(resourceGroup, &armresources.ClientListByResourceGroupOptions{
		Filter: utils.Ptr(filter),
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "[armScope ListIoTHubs] resource group %s", resourceGroup)
		}
		for _, resource := range utils.Compact(page.Value) {
			names = append(names, utils.Value(resource.Name))
		}
	}
	log.Debug().Str("resource_group", resourceGroup).Int("count", len(names)).Msg("listed IoT hubs")
	return names, nil
}

func (s *armScope) ListHubKeys(ctx context.Context, resourceGroup, hub string) ([]SharedAccessKey, error) {
	var keys []SharedAccessKey
	pager := s.hubs.NewListKeysPager(resourceGroup, hub, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "[armScope ListHubKeys] hub %s", hub)
		}
		for _, rule := range utils.Compact(page.Value) {
			keys = append(keys, SharedAccessKey{
				Name:      utils.Value(rule.KeyName),
				Primary:   utils.Value(rule.PrimaryKey),
				Secondary: utils.Value(rule.SecondaryKey),
			})
		}
	}
	log.Debug().Str("hub", hub).Int("count", len(keys)).Msg("listed hub keys")
	return keys, nil
}
