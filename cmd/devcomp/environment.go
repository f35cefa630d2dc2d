package main

import (
	"github.com/jrsteele09/iotedge-devcomp/authrecord"
	"github.com/jrsteele09/iotedge-devcomp/cloud"
	"github.com/jrsteele09/iotedge-devcomp/identity"
	"github.com/jrsteele09/iotedge-devcomp/internal/config"
	"github.com/jrsteele09/iotedge-devcomp/navigator"
	"github.com/jrsteele09/iotedge-devcomp/registry"
)

// environment is everything a command needs, assembled from configuration.
type environment struct {
	cfg      config.EnvConfig
	records  authrecord.Repo
	nav      navigator.Navigator
	registry registry.Factory // Opens a hub directly from a connection string.
}

// environmentBuilder lets tests swap the cloud-backed environment for fakes.
type environmentBuilder func(overrides config.Overrides) (*environment, error)

func newEnvironment(overrides config.Overrides) (*environment, error) {
	cfg, err := config.New(overrides)
	if err != nil {
		return nil, err
	}

	records, err := authrecord.NewFileRepo(cfg.GetConfigDir(), cfg.GetRecordFile())
	if err != nil {
		return nil, err
	}

	auth, err := identity.NewService(cfg)
	if err != nil {
		return nil, err
	}

	registries := registry.NewFactory(cfg)
	nav, err := navigator.NewAzureNavigator(navigator.Deps{
		Records:  records,
		Identity: auth,
		Cloud:    cloud.NewARMProviderFactory(cfg),
		Registry: registries,
	},
		navigator.WithOwnerKeyName(cfg.GetOwnerKeyName()),
		navigator.WithHubSuffix(cfg.GetHubSuffix()),
	)
	if err != nil {
		return nil, err
	}

	return &environment{cfg: cfg, records: records, nav: nav, registry: registries}, nil
}
