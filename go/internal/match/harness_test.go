package match

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/matchcontrol/go/internal/models"
)

var errTeamMissing = errors.New("team not found")

type fakeTeams struct {
	mu     sync.Mutex
	teams  map[string]models.Team
	awards map[string]int
	err    error
}

func newFakeTeams(teams ...models.Team) *fakeTeams {
	f := &fakeTeams{teams: make(map[string]models.Team), awards: make(map[string]int)}
	for _, t := range teams {
		f.teams[t.ID] = t
	}
	return f
}

func (f *fakeTeams) GetTeam(_ context.Context, id string) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.teams[id]
	if !ok {
		return nil, errTeamMissing
	}
	return &t, nil
}

func (f *fakeTeams) AddPoints(_ context.Context, id string, points int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return 0, f.err
	}
	f.awards[id] += points
	return f.awards[id], nil
}

func (f *fakeTeams) awarded(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.awards[id]
}

type fakeGames struct {
	mu      sync.Mutex
	records []models.GameRecord
	err     error
}

func (f *fakeGames) SaveGame(_ context.Context, record models.GameRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeGames) saved() []models.GameRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.GameRecord(nil), f.records...)
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []StateChange
}

func (r *recordingPublisher) Publish(change StateChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
}

func (r *recordingPublisher) values(field string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []any
	for _, c := range r.changes {
		if c.Field == field {
			out = append(out, c.Value)
		}
	}
	return out
}

func (r *recordingPublisher) count(field string, value any) int {
	n := 0
	for _, v := range r.values(field) {
		if v == value {
			n++
		}
	}
	return n
}

type harness struct {
	t       *testing.T
	ctx     context.Context
	clock   fakeClock
	session *Session
	teams   *fakeTeams
	games   *fakeGames
	pub     *recordingPublisher
}

func newHarness(t *testing.T, teams ...models.Team) *harness {
	t.Helper()

	h := &harness{
		t:     t,
		ctx:   context.Background(),
		clock: clockwork.NewFakeClock(),
		teams: newFakeTeams(teams...),
		games: &fakeGames{},
		pub:   &recordingPublisher{},
	}
	h.session = NewSession(h.teams, h.games, Options{
		Clock:     h.clock,
		Publisher: h.pub,
		Settings:  DefaultSettings(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = h.session.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

func (h *harness) main() CountdownState {
	h.t.Helper()
	main, _, err := h.session.Countdowns(h.ctx)
	require.NoError(h.t, err)
	return main
}

func (h *harness) pit() CountdownState {
	h.t.Helper()
	_, pit, err := h.session.Countdowns(h.ctx)
	require.NoError(h.t, err)
	return pit
}

func (h *harness) status() StatusView {
	h.t.Helper()
	view, err := h.session.Status(h.ctx)
	require.NoError(h.t, err)
	return view
}

// tick advances one second and waits until the main countdown shows remaining.
func (h *harness) tickMainTo(remaining int) {
	h.t.Helper()
	h.clock.Advance(h.session.Settings().TickInterval)
	require.Eventually(h.t, func() bool { return h.main().Remaining == remaining }, waitFor, pollAt)
}

func (h *harness) configure(id int, participants ...string) MatchConfig {
	h.t.Helper()
	cfg, err := h.session.ConfigureMatch(h.ctx, MatchRequest{
		MatchID:        id,
		MatchName:      "Round",
		ParticipantIDs: participants,
	})
	require.NoError(h.t, err)
	return cfg
}

func roster() []models.Team {
	return []models.Team{
		{ID: "7", Name: "Falcons", Leader: "Ana", Logo: "falcons.png"},
		{ID: "9", Name: "Otters", Leader: "Ben", Logo: "otters.png"},
		{ID: "11", Name: "Lynx", Leader: "Cai", Logo: "lynx.png"},
	}
}
