package games

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/matchcontrol/go/internal/kvstore"
	"github.com/mcdev12/matchcontrol/go/internal/models"
)

const gamesRoot = "games"

// Repository stores match outcomes at games/<matchId-1>.
type Repository struct {
	store kvstore.Store
}

// NewRepository creates a new games repository
func NewRepository(store kvstore.Store) *Repository {
	return &Repository{
		store: store,
	}
}

// SaveGame writes a record, replacing any previous outcome of the same match.
func (r *Repository) SaveGame(ctx context.Context, record models.GameRecord) error {
	id, err := strconv.Atoi(record.GameID)
	if err != nil || id < 1 {
		return fmt.Errorf("invalid game id %q", record.GameID)
	}

	if err := r.store.Set(ctx, kvstore.Join(gamesRoot, strconv.Itoa(id-1)), record); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}

	log.Info().
		Str("game_id", record.GameID).
		Str("winner_id", record.WinnerID).
		Bool("is_draw", record.IsDraw).
		Msg("game saved")
	return nil
}

// ListGames returns every stored record keyed by its slot.
func (r *Repository) ListGames(ctx context.Context) (map[string]models.GameRecord, error) {
	children, err := r.store.Children(ctx, gamesRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	games := make(map[string]models.GameRecord, len(children))
	for key, raw := range children {
		var rec models.GameRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Warn().Err(err).Str("slot", key).Msg("skipping unreadable game record")
			continue
		}
		games[key] = rec
	}
	return games, nil
}

// SortedKeys returns the slots of games in numeric order.
func SortedKeys(games map[string]models.GameRecord) []string {
	keys := make([]string, 0, len(games))
	for k := range games {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aErr := strconv.Atoi(keys[i])
		b, bErr := strconv.Atoi(keys[j])
		if aErr == nil && bErr == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}

// CountGames returns the number of stored records.
func (r *Repository) CountGames(ctx context.Context) (int, error) {
	children, err := r.store.Children(ctx, gamesRoot)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return len(children), nil
}
