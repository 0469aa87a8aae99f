// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/partfinder/internal/aggregate"
	"github.com/pdiddy/partfinder/internal/datasheet"
	"github.com/pdiddy/partfinder/internal/distributor"
	"github.com/pdiddy/partfinder/internal/finder"
	"github.com/pdiddy/partfinder/internal/generate"
	"github.com/pdiddy/partfinder/internal/httputil"
	"github.com/pdiddy/partfinder/internal/partsdb"
	"github.com/pdiddy/partfinder/internal/prompt"
	"github.com/pdiddy/partfinder/internal/render"
	"github.com/pdiddy/partfinder/internal/search"
	"github.com/pdiddy/partfinder/pkg/types"
)

// buildService wires every adapter from cfg. Missing optional credentials
// leave the matching adapter degraded; a missing generation key leaves the
// service unconfigured so requests fail with finder.ErrNotConfigured.
func buildService(ctx context.Context, cfg types.Config, logger *zap.Logger) (*finder.Service, error) {
	backend, err := search.New(cfg.Search, httputil.NewClient(cfg.Search.HTTPConfig))
	if err != nil {
		return nil, err
	}
	adapters := aggregate.Adapters{
		Search:      search.NewProvider(backend, cfg.Search.MaxResults),
		Distributor: distributor.New(httputil.NewClient(cfg.Distributor.HTTPConfig), cfg.Distributor, logger),
	}

	if cfg.Datasheet.Enabled {
		conv, err := datasheet.NewConverter(ctx, cfg.Datasheet)
		if err != nil {
			logger.Warn("datasheet converter unavailable, using native", zap.String("converter", string(cfg.Datasheet.Converter)), zap.Error(err))
			conv = nil
		}
		adapters.Datasheet = datasheet.New(httputil.NewClient(cfg.Datasheet.HTTPConfig), cfg.Datasheet, conv, logger)
	}

	if cfg.PartsDB.Configured() {
		db, err := partsdb.New(ctx, cfg.PartsDB, logger)
		if err != nil {
			return nil, err
		}
		adapters.PartsDatabase = db
	}

	builder, err := prompt.NewBuilder(cfg.Generation.Policy)
	if err != nil {
		return nil, err
	}

	var gen generate.Generator
	g, err := generate.New(ctx, cfg.Generation, httputil.NewClient(types.HTTPConfig{Timeout: cfg.Generation.Timeout}))
	switch {
	case errors.Is(err, generate.ErrNotConfigured):
		logger.Warn("no generation API key configured; alternatives and compare will fail", zap.String("provider", string(cfg.Generation.Provider)))
	case err != nil:
		return nil, fmt.Errorf("creating generation client: %w", err)
	default:
		gen = g
	}

	logger.Debug("service wired",
		zap.String("search", backend.Name()),
		zap.Bool("datasheet", adapters.Datasheet != nil),
		zap.Bool("parts_database", adapters.PartsDatabase != nil),
		zap.String("policy", builder.Policy().Name),
	)

	agg := aggregate.New(adapters, aggregate.OptionsFromConfig(cfg), logger)
	return finder.New(agg, builder, gen, render.New(), finder.OptionsFromConfig(cfg), logger), nil
}
