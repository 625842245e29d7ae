package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/WessleyAI/car-explorer/engine/catalog"
	"github.com/WessleyAI/car-explorer/internal/config"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write the configured catalog into Neo4j as :Car nodes",
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}
}

var errSeedFromGraph = errors.New("seed: catalog.source is neo4j; choose the catalog to copy with --catalog-source")

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Catalog.Source == config.SourceNeo4j {
		return errSeedFromGraph
	}
	log := newLogger(os.Stderr, cfg.LogLevel)

	ctx := cmd.Context()
	store, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	driver, err := dialNeo4j(ctx, cfg.Neo4j)
	if err != nil {
		return err
	}
	defer driver.Close(context.Background())

	n, err := catalog.Seed(ctx, catalog.NewGraphRepo(driver), store.All())
	if err != nil {
		log.Error("seed interrupted", "written", n, "err", err)
		return err
	}
	log.Info("catalog seeded", "source", store.Source(), "cars", n, "neo4j", cfg.Neo4j.URL)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d cars from %s\n", n, store.Source())
	return err
}
