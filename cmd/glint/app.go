package main

import (
	"github.com/tobyfield/glint/internal/config"
	"github.com/tobyfield/glint/internal/debug"
	"github.com/tobyfield/glint/internal/extract"
	"github.com/tobyfield/glint/internal/resolve"
	"github.com/tobyfield/glint/internal/snapshot"
	"github.com/tobyfield/glint/internal/telemetry"
	"github.com/tobyfield/glint/internal/tracker"
	"github.com/tobyfield/glint/internal/tracker/rest"
)

// app bundles the collaborators a pipeline command needs.
type app struct {
	cfg    *config.Config
	client tracker.Client
	cache  *snapshot.Cache
	model  *extract.Client
}

// newApp wires config, tracker client, snapshot cache and (optionally)
// the extraction client.
func newApp(needExtract bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireTracker(); err != nil {
		return nil, err
	}

	rc := rest.NewClient(cfg.TrackerAPIKey)
	if cfg.TrackerEndpoint != "" {
		rc = rc.WithEndpoint(cfg.TrackerEndpoint)
	}
	client := telemetry.WrapTracker(rc)

	cache := snapshot.NewCache(client, cfg.CacheTTL)
	if path, err := snapshot.DefaultStorePath(); err == nil {
		cache = cache.WithStore(&snapshot.Store{Path: path})
	} else {
		debug.Logf("snapshot persistence disabled: %v\n", err)
	}

	a := &app{cfg: cfg, client: client, cache: cache}

	if needExtract {
		model, err := extract.New(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, &config.Error{Key: "anthropic.api_key", Reason: err.Error()}
		}
		a.model = model.WithModel(cfg.Model)
	}
	return a, nil
}

func (a *app) resolveOptions() resolve.Options {
	return resolve.Options{
		DefaultTeamKey:  a.cfg.DefaultTeam,
		DefaultPriority: a.cfg.DefaultPriority,
	}
}

// promptSnapshot returns the snapshot to embed in extraction prompts, or
// nil when workspace context is disabled.
func (a *app) promptSnapshot(snap *snapshot.Snapshot) *snapshot.Snapshot {
	if !a.cfg.EnableContext {
		return nil
	}
	return snap
}
