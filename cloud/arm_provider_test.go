package cloud_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	azcloud "github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/iotedge-devcomp/cloud"
	"github.com/jrsteele09/iotedge-devcomp/identity/identityfake"
)

type hubTypeConfig struct{}

func (hubTypeConfig) GetIoTHubResourceType() string { return "Microsoft.Devices/IotHubs" }

// armServer answers the handful of ARM routes the provider uses.
func armServer(t *testing.T, calls map[string]int) *httptest.Server {
	t.Helper()

	write := func(w http.ResponseWriter, body any) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer fake-access-token", r.Header.Get("Authorization"))
		path := strings.ToLower(r.URL.Path)

		switch {
		case path == "/subscriptions":
			calls["subscriptions"]++
			write(w, map[string]any{"value": []map[string]any{
				{"subscriptionId": "sub-1", "displayName": "Production"},
				{"subscriptionId": "sub-2", "displayName": "Staging"},
			}})
		case path == "/subscriptions/sub-1/resourcegroups":
			calls["groups"]++
			write(w, map[string]any{"value": []map[string]any{
				{"name": "rg-edge", "location": "westeurope"},
				{"name": "rg-web", "location": "westeurope"},
			}})
		case path == "/subscriptions/sub-1/resourcegroups/rg-edge/resources":
			calls["hubs"]++
			require.Equal(t, "resourceType eq 'Microsoft.Devices/IotHubs'", r.URL.Query().Get("$filter"))
			write(w, map[string]any{"value": []map[string]any{
				{"name": "hub-1", "type": "Microsoft.Devices/IotHubs"},
			}})
		case path == "/subscriptions/sub-1/resourcegroups/rg-edge/providers/microsoft.devices/iothubs/hub-1/listkeys":
			calls["keys"]++
			require.Equal(t, http.MethodPost, r.Method)
			write(w, map[string]any{"value": []map[string]any{
				{"keyName": "iothubowner", "primaryKey": "K1", "secondaryKey": "K1b", "rights": "RegistryWrite, ServiceConnect, DeviceConnect"},
				{"keyName": "service", "primaryKey": "K2", "secondaryKey": "K2b", "rights": "ServiceConnect"},
			}})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestProvider(t *testing.T, server *httptest.Server) *cloud.ARMProvider {
	t.Helper()

	options := arm.ClientOptions{
		ClientOptions: policy.ClientOptions{
			Cloud: azcloud.Configuration{
				ActiveDirectoryAuthorityHost: server.URL,
				Services: map[azcloud.ServiceName]azcloud.ServiceConfiguration{
					azcloud.ResourceManager: {
						Audience: "https://management.azure.com",
						Endpoint: server.URL,
					},
				},
			},
			Transport: server.Client(),
		},
	}

	var credential azcore.TokenCredential = identityfake.StaticCredential{Token: "fake-access-token"}
	provider, err := cloud.NewARMProvider(credential, hubTypeConfig{}, cloud.WithClientOptions(options))
	require.NoError(t, err)
	return provider
}

func TestARMProvider_Walk(t *testing.T) {
	calls := map[string]int{}
	provider := newTestProvider(t, armServer(t, calls))
	ctx := context.Background()

	subs, err := provider.ListSubscriptions(ctx)
	require.NoError(t, err)
	require.Equal(t, []cloud.Subscription{{Name: "Production", ID: "sub-1"}, {Name: "Staging", ID: "sub-2"}}, subs)

	scope, err := provider.ForSubscription("sub-1")
	require.NoError(t, err)

	groups, err := scope.ListResourceGroups(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"rg-edge", "rg-web"}, groups)

	hubs, err := scope.ListIoTHubs(ctx, "rg-edge")
	require.NoError(t, err)
	require.Equal(t, []string{"hub-1"}, hubs)

	keys, err := scope.ListHubKeys(ctx, "rg-edge", "hub-1")
	require.NoError(t, err)
	require.Equal(t, []cloud.SharedAccessKey{
		{Name: "iothubowner", Primary: "K1", Secondary: "K1b"},
		{Name: "service", Primary: "K2", Secondary: "K2b"},
	}, keys)

	require.Equal(t, map[string]int{"subscriptions": 1, "groups": 1, "hubs": 1, "keys": 1}, calls)
}

func TestARMProvider_ErrorsAreNotRetried(t *testing.T) {
	var hits int
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":"ServiceUnavailable","message":"try later"}}`))
	}))
	t.Cleanup(server.Close)

	provider := newTestProvider(t, server)
	_, err := provider.ListSubscriptions(context.Background())

	var respErr *azcore.ResponseError
	require.ErrorAs(t, err, &respErr)
	require.Equal(t, http.StatusServiceUnavailable, respErr.StatusCode)
	require.Equal(t, 1, hits)
}

func TestNewARMProvider_RequiresCredential(t *testing.T) {
	_, err := cloud.NewARMProvider(nil, hubTypeConfig{})
	require.Error(t, err)
}

func TestARMProvider_ForSubscriptionRequiresID(t *testing.T) {
	provider := newTestProvider(t, armServer(t, map[string]int{}))
	_, err := provider.ForSubscription("")
	require.Error(t, err)
}
