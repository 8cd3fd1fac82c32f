package teams

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/mcdev12/matchcontrol/go/internal/kvstore"
	"github.com/mcdev12/matchcontrol/go/internal/models"
)

const teamsRoot = "teams"

// Repository implements team data access over the key-value store.
type Repository struct {
	store kvstore.Store
}

// NewRepository creates a new teams repository
func NewRepository(store kvstore.Store) *Repository {
	return &Repository{
		store: store,
	}
}

// GetTeam retrieves a team by ID. Missing teams wrap kvstore.ErrNotFound.
func (r *Repository) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	raw, err := r.store.Get(ctx, kvstore.Join(teamsRoot, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	team, err := decodeTeam(id, raw)
	if err != nil {
		return nil, err
	}
	return team, nil
}

// ListAllTeams retrieves all teams ordered by ID
func (r *Repository) ListAllTeams(ctx context.Context) ([]models.Team, error) {
	children, err := r.store.Children(ctx, teamsRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to list all teams: %w", err)
	}

	teams := make([]models.Team, 0, len(children))
	for id, raw := range children {
		team, err := decodeTeam(id, raw)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *team)
	}
	sortTeams(teams)

	return teams, nil
}

// PutTeam stores a team, replacing any existing record
func (r *Repository) PutTeam(ctx context.Context, team models.Team) error {
	if err := r.store.Set(ctx, kvstore.Join(teamsRoot, team.ID), team); err != nil {
		return fmt.Errorf("failed to put team: %w", err)
	}
	return nil
}

// UpdatePoints overwrites a team's point total
func (r *Repository) UpdatePoints(ctx context.Context, id string, points int) error {
	fields := map[string]any{"points": points}
	if err := r.store.Update(ctx, kvstore.Join(teamsRoot, id), fields); err != nil {
		return fmt.Errorf("failed to update team points: %w", err)
	}
	return nil
}

// DeleteTeam deletes a team by ID
func (r *Repository) DeleteTeam(ctx context.Context, id string) error {
	if err := r.store.Remove(ctx, kvstore.Join(teamsRoot, id)); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

func decodeTeam(id string, raw json.RawMessage) (*models.Team, error) {
	var team models.Team
	if err := json.Unmarshal(raw, &team); err != nil {
		return nil, fmt.Errorf("failed to decode team %s: %w", id, err)
	}
	team.ID = id
	return &team, nil
}

// sortTeams orders numeric ids numerically, then everything else lexically.
func sortTeams(teams []models.Team) {
	sort.Slice(teams, func(i, j int) bool {
		a, aErr := strconv.Atoi(teams[i].ID)
		b, bErr := strconv.Atoi(teams[j].ID)
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return teams[i].ID < teams[j].ID
		}
	})
}
