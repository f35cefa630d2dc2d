package navigator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/iotedge-devcomp/cloud"
	apperrors "github.com/jrsteele09/iotedge-devcomp/internal/errors"
	"github.com/jrsteele09/iotedge-devcomp/navigator"
)

func TestState_Enabled(t *testing.T) {
	tests := []struct {
		phase   navigator.Phase
		enabled []navigator.Level
	}{
		{navigator.Unauthenticated, nil},
		{navigator.Authenticated, []navigator.Level{navigator.LevelSubscription}},
		{navigator.SubscriptionSelected, []navigator.Level{navigator.LevelSubscription, navigator.LevelResourceGroup}},
		{navigator.ResourceGroupSelected, []navigator.Level{navigator.LevelSubscription, navigator.LevelResourceGroup, navigator.LevelHub}},
		{navigator.HubSelected, navigator.AllLevels},
	}
	for _, tc := range tests {
		t.Run(tc.phase.String(), func(t *testing.T) {
			state := navigator.State{Phase: tc.phase}
			var got []navigator.Level
			for _, l := range navigator.AllLevels {
				if state.Enabled(l) {
					got = append(got, l)
				}
			}
			require.Equal(t, tc.enabled, got)
		})
	}
}

func TestResolveConnectionString(t *testing.T) {
	keys := []cloud.SharedAccessKey{
		{Name: "iothubowner", Primary: "K1"},
		{Name: "other", Primary: "K2"},
	}
	cs, err := navigator.ResolveConnectionString(keys, "hub-1", "azure-devices.net", "iothubowner")
	require.NoError(t, err)
	require.Equal(t, "HostName=hub-1.azure-devices.net;SharedAccessKeyName=iothubowner;SharedAccessKey=K1", cs.String())

	_, err = navigator.ResolveConnectionString(keys[1:], "hub-1", "azure-devices.net", "iothubowner")
	require.ErrorIs(t, err, apperrors.ErrOwnerKeyMissing)

	_, err = navigator.ResolveConnectionString(nil, "hub-1", "azure-devices.net", "iothubowner")
	require.ErrorIs(t, err, apperrors.ErrOwnerKeyMissing)

	// Names must match exactly.
	_, err = navigator.ResolveConnectionString([]cloud.SharedAccessKey{{Name: "IoTHubOwner", Primary: "K3"}}, "hub-1", "azure-devices.net", "iothubowner")
	require.ErrorIs(t, err, apperrors.ErrOwnerKeyMissing)
}
