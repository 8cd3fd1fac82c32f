package teams

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/matchcontrol/go/internal/kvstore"
	"github.com/mcdev12/matchcontrol/go/internal/models"
)

// TeamsRepository defines what the app layer needs from the repository
type TeamsRepository interface {
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	ListAllTeams(ctx context.Context) ([]models.Team, error)
	PutTeam(ctx context.Context, team models.Team) error
	UpdatePoints(ctx context.Context, id string, points int) error
	DeleteTeam(ctx context.Context, id string) error
}

// App handles teams business logic
type App struct {
	repo TeamsRepository
}

// NewApp creates a new teams App
func NewApp(repo TeamsRepository) *App {
	return &App{
		repo: repo,
	}
}

// AddTeam stores a team with defaults for missing fields
func (a *App) AddTeam(ctx context.Context, req AddTeamRequest) (*models.Team, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" || strings.Contains(id, "/") {
		return nil, ErrInvalidTeam
	}

	team := models.Team{
		ID:     id,
		Name:   req.Name,
		Leader: req.Leader,
		Logo:   req.Logo,
		Points: req.Points,
	}
	if err := a.repo.PutTeam(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to add team: %w", err)
	}

	log.Info().Str("team_id", id).Str("name", team.Name).Msg("team added")
	return &team, nil
}

// GetTeam retrieves a team by ID
func (a *App) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidTeam
	}
	return a.repo.GetTeam(ctx, id)
}

// ListTeams retrieves all teams
func (a *App) ListTeams(ctx context.Context) ([]models.Team, error) {
	return a.repo.ListAllTeams(ctx)
}

// SearchTeams returns teams whose name or leader fuzzily matches query, best first.
// An empty query returns every team.
func (a *App) SearchTeams(ctx context.Context, query string) ([]models.Team, error) {
	all, err := a.repo.ListAllTeams(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return all, nil
	}

	best := make(map[int]int)
	rank := func(targets []string) {
		for _, r := range fuzzy.RankFindNormalizedFold(query, targets) {
			if d, ok := best[r.OriginalIndex]; !ok || r.Distance < d {
				best[r.OriginalIndex] = r.Distance
			}
		}
	}

	names := make([]string, len(all))
	leaders := make([]string, len(all))
	for i, t := range all {
		names[i] = t.Name
		leaders[i] = t.Leader
	}
	rank(names)
	rank(leaders)

	indexes := make([]int, 0, len(best))
	for i := range best {
		indexes = append(indexes, i)
	}
	sort.Slice(indexes, func(i, j int) bool {
		di, dj := best[indexes[i]], best[indexes[j]]
		if di != dj {
			return di < dj
		}
		return indexes[i] < indexes[j]
	})

	out := make([]models.Team, len(indexes))
	for i, idx := range indexes {
		out[i] = all[idx]
	}
	return out, nil
}

// DeleteTeam deletes a team by ID
func (a *App) DeleteTeam(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidTeam
	}
	if err := a.repo.DeleteTeam(ctx, id); err != nil {
		return err
	}

	log.Info().Str("team_id", id).Msg("team deleted")
	return nil
}

// AddPoints adds points to a team's stored total and returns the new total. A team
// without a record starts from zero.
func (a *App) AddPoints(ctx context.Context, id string, points int) (int, error) {
	current := 0
	team, err := a.repo.GetTeam(ctx, id)
	switch {
	case err == nil:
		current = int(team.Points)
	case errors.Is(err, kvstore.ErrNotFound):
	default:
		log.Warn().Err(err).Str("team_id", id).Msg("failed to read team points, starting from zero")
	}

	total := current + points
	if err := a.repo.UpdatePoints(ctx, id, total); err != nil {
		return 0, err
	}
	return total, nil
}
