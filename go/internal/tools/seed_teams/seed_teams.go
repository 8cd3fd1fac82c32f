package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/matchcontrol/go/internal/dbconfig"
	"github.com/mcdev12/matchcontrol/go/internal/kvstore"
	"github.com/mcdev12/matchcontrol/go/internal/models"
	"github.com/mcdev12/matchcontrol/go/internal/teams"
)

type seedFile struct {
	Teams []seedTeam `yaml:"teams"`
}

type seedTeam struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Leader string `yaml:"leader"`
	Logo   string `yaml:"logo"`
	Points int    `yaml:"points"`
}

func main() {
	path := os.Getenv("SEED_FILE")
	if path == "" {
		path = "go/internal/assets/teams.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read seed file: %v\n", err)
		os.Exit(1)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal seed file: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	store, err := kvstore.NewPostgres(ctx, stdlib.OpenDBFromPool(pool))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	app := teams.NewApp(teams.NewRepository(store))

	var (
		total    = len(seed.Teams)
		inserted int
		skipped  int
		errs     int
	)

	for _, t := range seed.Teams {
		if _, err := app.GetTeam(ctx, t.ID); err == nil {
			skipped++
			continue
		}

		_, err := app.AddTeam(ctx, teams.AddTeamRequest{
			ID:     t.ID,
			Name:   t.Name,
			Leader: t.Leader,
			Logo:   t.Logo,
			Points: models.Points(t.Points),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error adding team %s: %v\n", t.ID, err)
			errs++
			continue
		}
		inserted++
	}

	fmt.Printf(
		"Teams seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}
