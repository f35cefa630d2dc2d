package cloud

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// Subscription is an Azure subscription visible to the signed-in identity.
type Subscription struct {
	Name string
	ID   string
}

// SharedAccessKey is one shared-access policy of an IoT hub.
type SharedAccessKey struct {
	Name      string
	Primary   string
	Secondary string
}

// Provider lists what the signed-in identity can see across subscriptions.
type Provider interface {
	ListSubscriptions(ctx context.Context) ([]Subscription, error)

	// ForSubscription returns fresh subscription-scoped handles
	ForSubscription(subscriptionID string) (Scope, error)
}

// Scope lists resources inside one subscription.
type Scope interface {
	ListResourceGroups(ctx context.Context) ([]string, error)
	ListIoTHubs(ctx context.Context, resourceGroup string) ([]string, error)
	ListHubKeys(ctx context.Context, resourceGroup, hub string) ([]SharedAccessKey, error)
}

// ProviderFactory builds a Provider acting as the identity behind credential.
type ProviderFactory func(credential azcore.TokenCredential) (Provider, error)
