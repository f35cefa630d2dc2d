package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/iotedge-devcomp/authrecord"
	"github.com/jrsteele09/iotedge-devcomp/authrecord/repofake"
	"github.com/jrsteele09/iotedge-devcomp/cloud"
	"github.com/jrsteele09/iotedge-devcomp/cloud/cloudfake"
	"github.com/jrsteele09/iotedge-devcomp/identity/identityfake"
	apperrors "github.com/jrsteele09/iotedge-devcomp/internal/errors"
	"github.com/jrsteele09/iotedge-devcomp/navigator"
	"github.com/jrsteele09/iotedge-devcomp/registry"
	"github.com/jrsteele09/iotedge-devcomp/registry/registryfake"
)

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown     = tea.KeyMsg{Type: tea.KeyDown}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keyRefresh  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}
)

type testEnv struct {
	cloud *cloudfake.FakeProvider
	nav   *navigator.AzureNavigator
}

func newTestModel(t *testing.T) (Model, *testEnv) {
	record := &authrecord.Record{
		ClientID:      "client",
		HomeAccountID: "oid.tid",
		Username:      "operator@contoso.com",
		Version:       "1.0",
		RefreshToken:  "rt-login",
	}
	provider := cloudfake.NewFakeProvider(cloudfake.Tenant{
		Subscriptions: []cloud.Subscription{{Name: "Development", ID: "sub-1"}},
		Groups: map[string]map[string][]string{
			"sub-1": {"rg-edge": {"hub-1", "hub-nokey"}},
		},
		Keys: map[string][]cloud.SharedAccessKey{
			"hub-1":     {{Name: "iothubowner", Primary: "K1"}},
			"hub-nokey": {{Name: "other", Primary: "K2"}},
		},
	})
	devices := registryfake.NewFakeRegistry(
		registry.Device{DeviceID: "d1", Capabilities: registry.Capabilities{IoTEdge: true}},
		registry.Device{DeviceID: "d2"},
		registry.Device{DeviceID: "d3", Capabilities: registry.Capabilities{IoTEdge: true}},
	)

	nav, err := navigator.NewAzureNavigator(navigator.Deps{
		Records:  repofake.NewFakeRecordRepo(nil),
		Identity: identityfake.NewFakeAuthenticator(record),
		Cloud:    provider.Factory(),
		Registry: devices.Factory(),
	})
	require.NoError(t, err)
	return NewModel(context.Background(), nav), &testEnv{cloud: provider, nav: nav}
}

// drive feeds cmd's message back into the model until no command is left.
func drive(t *testing.T, model Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		updated, next := model.Update(cmd())
		model = updated.(Model)
		cmd = next
	}
	return model
}

func press(t *testing.T, model Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		updated, cmd := model.Update(k)
		model = drive(t, updated.(Model), cmd)
	}
	return model
}

// signedIn runs the login flow up to the subscription list.
func signedIn(t *testing.T) (Model, *testEnv) {
	model, env := newTestModel(t)
	return drive(t, model, model.resume()), env
}

func TestModel_LoginShowsPrompt(t *testing.T) {
	model, _ := newTestModel(t)

	updated, cmd := model.Update(model.resume()())
	model = updated.(Model)
	require.NotNil(t, cmd)

	updated, cmd = model.Update(cmd())
	model = updated.(Model)
	require.NotNil(t, model.prompt)
	require.Equal(t, "Waiting for login", model.busy)
	require.Contains(t, model.View(), "FAKE-CODE")

	model = drive(t, model, cmd)
	require.Nil(t, model.prompt)
	require.Empty(t, model.busy)
	require.Equal(t, "Signed in as operator@contoso.com", model.status)

	subs := model.selectors[navigator.LevelSubscription]
	require.True(t, subs.Enabled)
	require.Equal(t, []Option{{Label: "Development (sub-1)", Value: "sub-1"}}, subs.Options)
	require.False(t, model.selectors[navigator.LevelResourceGroup].Enabled)
}

func TestModel_Cascade(t *testing.T) {
	model, env := signedIn(t)

	model = press(t, model, keyEnter)
	require.Equal(t, navigator.LevelResourceGroup, model.focus)
	require.Equal(t, "sub-1", env.nav.State().SubscriptionID)

	model = press(t, model, keyEnter)
	require.Equal(t, navigator.LevelHub, model.focus)

	model = press(t, model, keyEnter)
	require.Equal(t, navigator.LevelDevice, model.focus)
	require.Equal(t, []Option{{Label: "d1", Value: "d1"}, {Label: "d3", Value: "d3"}}, model.selectors[navigator.LevelDevice].Options)

	// Re-choosing the subscription clears everything under it.
	model = press(t, model, keyShiftTab, keyShiftTab, keyShiftTab)
	require.Equal(t, navigator.LevelSubscription, model.focus)
	model = press(t, model, keyEnter)

	require.True(t, model.selectors[navigator.LevelResourceGroup].Enabled)
	require.Equal(t, -1, model.selectors[navigator.LevelResourceGroup].Chosen)
	require.False(t, model.selectors[navigator.LevelHub].Enabled)
	require.False(t, model.selectors[navigator.LevelDevice].Enabled)
	require.Equal(t, navigator.SubscriptionSelected, env.nav.State().Phase)
	require.Equal(t, 2, env.cloud.Calls("ListResourceGroups"))
}

func TestModel_ClearResourceGroupMakesNoCall(t *testing.T) {
	model, env := signedIn(t)
	model = press(t, model, keyEnter, keyEnter, keyEnter)
	hubLists := env.cloud.Calls("ListIoTHubs")

	model = press(t, model, keyShiftTab, keyShiftTab)
	require.Equal(t, navigator.LevelResourceGroup, model.focus)
	model = press(t, model, keyEsc)

	require.False(t, model.selectors[navigator.LevelHub].Enabled)
	require.False(t, model.selectors[navigator.LevelDevice].Enabled)
	require.Equal(t, navigator.SubscriptionSelected, env.nav.State().Phase)
	require.Equal(t, hubLists, env.cloud.Calls("ListIoTHubs"))
}

func TestModel_RefreshDropsLowerLevels(t *testing.T) {
	model, env := signedIn(t)
	model = press(t, model, keyEnter, keyEnter, keyEnter)
	require.Equal(t, navigator.HubSelected, env.nav.State().Phase)

	model = press(t, model, keyShiftTab, keyShiftTab, keyShiftTab)
	require.Equal(t, navigator.LevelSubscription, model.focus)
	model = press(t, model, keyRefresh)

	require.Equal(t, 2, env.cloud.Calls("ListSubscriptions"))
	require.True(t, model.selectors[navigator.LevelSubscription].Enabled)
	require.Equal(t, -1, model.selectors[navigator.LevelSubscription].Chosen)
	require.False(t, model.selectors[navigator.LevelResourceGroup].Enabled)
	require.False(t, model.selectors[navigator.LevelHub].Enabled)
	require.False(t, model.selectors[navigator.LevelDevice].Enabled)
	require.Equal(t, navigator.Authenticated, env.nav.State().Phase)
	require.Empty(t, env.nav.State().SubscriptionID)
}

func TestModel_MissingOwnerKeyIsFatal(t *testing.T) {
	model, _ := signedIn(t)
	model = press(t, model, keyEnter, keyEnter, keyDown, keyEnter)

	require.ErrorIs(t, model.Err(), apperrors.ErrOwnerKeyMissing)
	require.Contains(t, model.View(), "press any key to exit")

	_, cmd := model.Update(keyDown)
	require.NotNil(t, cmd)
	require.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_ListErrorInStatus(t *testing.T) {
	model, env := signedIn(t)
	env.cloud.Err["ListResourceGroups"] = errors.New("service unavailable")

	model = press(t, model, keyEnter)
	require.Contains(t, model.status, "service unavailable")
	require.False(t, model.selectors[navigator.LevelResourceGroup].Enabled)
	require.NoError(t, model.Err())
}

func TestModel_KeysIgnoredWhileBusy(t *testing.T) {
	model, _ := newTestModel(t)
	require.NotEmpty(t, model.busy)

	updated, cmd := model.Update(keyEnter)
	require.Nil(t, cmd)
	require.Equal(t, -1, updated.(Model).selectors[navigator.LevelSubscription].Chosen)
}

func TestModel_View(t *testing.T) {
	model, _ := signedIn(t)
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	view := updated.(Model).View()

	for _, want := range []string{"Subscription", "Resource group", "IoT hub", "Edge devices", "Development (sub-1)"} {
		require.True(t, strings.Contains(view, want), "view is missing %q", want)
	}
}
