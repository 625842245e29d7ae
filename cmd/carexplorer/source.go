package main

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/WessleyAI/car-explorer/data"
	"github.com/WessleyAI/car-explorer/engine/catalog"
	"github.com/WessleyAI/car-explorer/internal/config"
)

// openSource builds the configured catalog source. The returned func releases
// whatever the source holds open.
func openSource(ctx context.Context, cfg config.Config) (catalog.Source, func(), error) {
	switch cfg.Catalog.Source {
	case config.SourceFile:
		return catalog.FileSource{Path: cfg.Catalog.Path}, func() {}, nil
	case config.SourceHTTP:
		return catalog.NewHTTPSource(cfg.Catalog.URL), func() {}, nil
	case config.SourceNeo4j:
		driver, err := dialNeo4j(ctx, cfg.Neo4j)
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewNeo4jSource(catalog.NewGraphRepo(driver)), func() { driver.Close(context.Background()) }, nil
	default:
		return catalog.BytesSource{Label: "embedded", Data: data.Cars}, func() {}, nil
	}
}

func dialNeo4j(ctx context.Context, cfg config.Neo4jConfig) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URL, neo4j.BasicAuth(cfg.User, cfg.Pass, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connect %s: %w", cfg.URL, err)
	}
	return driver, nil
}

// loadCatalog loads one snapshot from the configured source.
func loadCatalog(ctx context.Context, cfg config.Config) (*catalog.Store, error) {
	src, release, err := openSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer release()
	return catalog.Load(ctx, src)
}
