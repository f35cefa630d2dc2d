package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/iotedge-devcomp/authrecord"
	"github.com/jrsteele09/iotedge-devcomp/authrecord/repofake"
	"github.com/jrsteele09/iotedge-devcomp/cloud"
	"github.com/jrsteele09/iotedge-devcomp/cloud/cloudfake"
	"github.com/jrsteele09/iotedge-devcomp/identity/identityfake"
	"github.com/jrsteele09/iotedge-devcomp/internal/config"
	apperrors "github.com/jrsteele09/iotedge-devcomp/internal/errors"
	"github.com/jrsteele09/iotedge-devcomp/navigator"
	"github.com/jrsteele09/iotedge-devcomp/registry"
	"github.com/jrsteele09/iotedge-devcomp/registry/registryfake"
)

type testEnvConfig struct{}

func (testEnvConfig) GetAppName() string  { return "devcomp" }
func (testEnvConfig) GetEnv() string      { return "TEST" }
func (testEnvConfig) GetLogLevel() string { return "warn" }

type testHarness struct {
	repo      *repofake.FakeRecordRepo
	auth      *identityfake.FakeAuthenticator
	devices   *registryfake.FakeRegistry
	overrides config.Overrides
}

func newHarness(saved *authrecord.Record) *testHarness {
	return &testHarness{
		repo: repofake.NewFakeRecordRepo(saved),
		auth: identityfake.NewFakeAuthenticator(&authrecord.Record{
			ClientID:      "client",
			HomeAccountID: "oid.tid",
			Username:      "operator@contoso.com",
			Version:       "1.0",
			RefreshToken:  "rt-login",
		}),
		devices: registryfake.NewFakeRegistry(
			registry.Device{DeviceID: "d1", Capabilities: registry.Capabilities{IoTEdge: true}},
			registry.Device{DeviceID: "d2"},
			registry.Device{DeviceID: "d3", Capabilities: registry.Capabilities{IoTEdge: true}},
		),
	}
}

func (h *testHarness) build(overrides config.Overrides) (*environment, error) {
	h.overrides = overrides
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
	nav, err := navigator.NewAzureNavigator(navigator.Deps{
		Records:  h.repo,
		Identity: h.auth,
		Cloud:    provider.Factory(),
		Registry: h.devices.Factory(),
	})
	if err != nil {
		return nil, err
	}
	return &environment{cfg: testEnvConfig{}, records: h.repo, nav: nav, registry: h.devices.Factory()}, nil
}

func execute(t *testing.T, build environmentBuilder, args ...string) (string, string, error) {
	t.Helper()
	root, closeLogging := newRootCmd(build)
	defer closeLogging()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestLoginCmd(t *testing.T) {
	h := newHarness(nil)

	stdout, stderr, err := execute(t, h.build, "login", "--tenant", "contoso.onmicrosoft.com")
	require.NoError(t, err)
	require.Equal(t, "Signed in as operator@contoso.com\n", stdout)
	require.Contains(t, stderr, "FAKE-CODE")
	require.Equal(t, "contoso.onmicrosoft.com", h.overrides.Tenant)
	require.Equal(t, 1, h.repo.Saves())
}

func TestLoginCmd_ResumesWithoutPrompt(t *testing.T) {
	h := newHarness(&authrecord.Record{
		ClientID:      "client",
		HomeAccountID: "oid.tid",
		Username:      "saved@contoso.com",
		Version:       "1.0",
		RefreshToken:  "rt-saved",
	})
	h.auth.ValidRefreshTokens["rt-saved"] = true

	stdout, stderr, err := execute(t, h.build, "login")
	require.NoError(t, err)
	require.Equal(t, "Signed in as saved@contoso.com\n", stdout)
	require.NotContains(t, stderr, "FAKE-CODE")
	require.Equal(t, 0, h.auth.Logins())
}

func TestLoginCmd_Declined(t *testing.T) {
	h := newHarness(nil)
	h.auth.LoginErr = apperrors.ErrLoginDeclined

	_, _, err := execute(t, h.build, "login")
	require.ErrorIs(t, err, apperrors.ErrLoginDeclined)
}

func TestLogoutCmd(t *testing.T) {
	h := newHarness(&authrecord.Record{ClientID: "client", HomeAccountID: "oid.tid", Version: "1.0"})

	stdout, _, err := execute(t, h.build, "logout")
	require.NoError(t, err)
	require.Equal(t, "Removed memory://record.json\n", stdout)

	record, err := h.repo.Load()
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestListCmds(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"subscriptions", []string{"subscriptions"}, "sub-1\tDevelopment\n"},
		{"groups", []string{"groups", "--subscription", "sub-1"}, "rg-edge\n"},
		{"hubs", []string{"hubs", "-s", "sub-1", "-g", "rg-edge"}, "hub-1\nhub-nokey\n"},
		{"devices", []string{"devices", "-s", "sub-1", "-g", "rg-edge", "--hub", "hub-1"}, "d1\nd3\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stdout, _, err := execute(t, newHarness(nil).build, tc.args...)
			require.NoError(t, err)
			require.Equal(t, tc.want, stdout)
		})
	}
}

func TestListCmds_RequiredFlags(t *testing.T) {
	_, _, err := execute(t, newHarness(nil).build, "hubs", "--subscription", "sub-1")
	require.ErrorContains(t, err, "resource-group")
}

func TestDevicesCmd_MissingOwnerKey(t *testing.T) {
	stdout, _, err := execute(t, newHarness(nil).build, "devices", "-s", "sub-1", "-g", "rg-edge", "--hub", "hub-nokey")
	require.ErrorIs(t, err, apperrors.ErrOwnerKeyMissing)
	require.Empty(t, stdout)
}

func TestDevicesCmd_ConnectionString(t *testing.T) {
	h := newHarness(nil)

	stdout, stderr, err := execute(t, h.build, "devices",
		"--connection-string", "HostName=hub-1.azure-devices.net;SharedAccessKeyName=iothubowner;SharedAccessKey=K1")
	require.NoError(t, err)
	require.Equal(t, "d1\nd3\n", stdout)
	require.NotContains(t, stderr, "FAKE-CODE")
	require.Equal(t, 0, h.auth.Logins())
	require.Equal(t, []registry.ConnectionString{{
		HostName:            "hub-1.azure-devices.net",
		SharedAccessKeyName: "iothubowner",
		SharedAccessKey:     "K1",
	}}, h.devices.Opened())
}

func TestDevicesCmd_InvalidConnectionString(t *testing.T) {
	h := newHarness(nil)

	_, _, err := execute(t, h.build, "devices", "--connection-string", "HostName=hub-1.azure-devices.net")
	require.ErrorIs(t, err, apperrors.ErrInvalidConnectionString)
	require.Empty(t, h.devices.Opened())
}

func TestDevicesCmd_FlagGroups(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"nothing", []string{"devices"}, "at least one of the flags"},
		{"partial scope", []string{"devices", "-s", "sub-1"}, "they must all be set"},
		{"both", []string{"devices", "-s", "sub-1", "-g", "rg-edge", "--hub", "hub-1", "--connection-string", "HostName=h;SharedAccessKeyName=n;SharedAccessKey=k"}, "none of the others"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execute(t, newHarness(nil).build, tc.args...)
			require.ErrorContains(t, err, tc.want)
		})
	}
}

func TestBrowseCmd_Plain(t *testing.T) {
	stdout, stderr, err := execute(t, newHarness(nil).build, "--plain")
	require.NoError(t, err)
	require.Equal(t, "sub-1\tDevelopment\n", stdout)
	require.Contains(t, stderr, "devcomp groups")
}

func TestRootCmd_BuildError(t *testing.T) {
	boom := errors.New("config unreadable")
	_, _, err := execute(t, func(config.Overrides) (*environment, error) { return nil, boom }, "subscriptions")
	require.ErrorIs(t, err, boom)
}

// keepLogging restores the global logger once the test ends.
func keepLogging(t *testing.T) {
	savedLogger, savedLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = savedLogger
		zerolog.SetGlobalLevel(savedLevel)
	})
}

func TestLoginCmd_StaleRecordLoggedToFile(t *testing.T) {
	keepLogging(t)
	h := newHarness(&authrecord.Record{
		ClientID:      "client",
		HomeAccountID: "oid.tid",
		Username:      "saved@contoso.com",
		Version:       "1.0",
		RefreshToken:  "rt-revoked",
	})
	path := filepath.Join(t.TempDir(), "devcomp.log")

	_, stderr, err := execute(t, h.build, "login", "--log-file", path)
	require.NoError(t, err)
	require.NotContains(t, stderr, "could not be resumed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"level":"warn"`)
	require.Contains(t, string(data), "saved session could not be resumed")
	require.Contains(t, string(data), `"session_id"`)
}

func TestRootCmd_ClosesLogFileAfterFailure(t *testing.T) {
	keepLogging(t)
	path := filepath.Join(t.TempDir(), "devcomp.log")

	root, closeLogging := newRootCmd(newHarness(nil).build)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"devices", "-s", "sub-1", "-g", "rg-edge", "--hub", "hub-nokey", "--log-file", path})
	require.ErrorIs(t, root.ExecuteContext(context.Background()), apperrors.ErrOwnerKeyMissing)

	log.Warn().Msg("before close")
	closeLogging()
	log.Warn().Msg("after close")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "before close")
	require.NotContains(t, string(data), "after close")
}

func TestConfigureLogging(t *testing.T) {
	keepLogging(t)

	_, err := configureLogging("loud", "", io.Discard)
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "devcomp.log")
	closeLog, err := configureLogging("info", path, io.Discard)
	require.NoError(t, err)
	log.Info().Str("hub", "hub-1").Msg("hub selected")
	log.Debug().Msg("not written")
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"hub":"hub-1"`)
	require.NotContains(t, string(data), "not written")
}
