package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/matchcontrol/go/internal/match"
	"github.com/mcdev12/matchcontrol/go/internal/models"
	"github.com/mcdev12/matchcontrol/go/internal/teams"
)

// Session is the live match the control surface drives.
type Session interface {
	SetMainTarget(ctx context.Context, seconds int) error
	SetPitTarget(ctx context.Context, seconds int) error
	SetPitOpenThreshold(ctx context.Context, seconds int) error
	StartMain(ctx context.Context) error
	StopMain(ctx context.Context) error
	ResetMain(ctx context.Context) error
	StartPit(ctx context.Context) error
	StopPit(ctx context.Context) error
	ResetPit(ctx context.Context) error

	ConfigureMatch(ctx context.Context, req match.MatchRequest) (match.MatchConfig, error)
	SubmitScores(ctx context.Context, scores []string) (*match.ScoreReport, error)
	GameDetails(ctx context.Context) (match.GameDetails, error)
	TimerStatus(ctx context.Context) (match.TimerStatus, error)

	SetActive(ctx context.Context) (match.StatusView, error)
	SetShown(ctx context.Context) (match.StatusView, error)
	SetDeactive(ctx context.Context) (match.StatusView, error)
	ScheduleActivation(ctx context.Context, d time.Duration) (match.StatusView, error)
	ActivateDraw(ctx context.Context) (match.StatusView, error)
	DeactivateDraw(ctx context.Context) (match.StatusView, error)
	DeactivateDrawAndStatus(ctx context.Context) (match.StatusView, error)
	Status(ctx context.Context) (match.StatusView, error)
}

// TeamService manages the team directory.
type TeamService interface {
	AddTeam(ctx context.Context, req teams.AddTeamRequest) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	SearchTeams(ctx context.Context, query string) ([]models.Team, error)
	DeleteTeam(ctx context.Context, id string) error
}

// GameService reads stored game records.
type GameService interface {
	ListGames(ctx context.Context) (map[string]models.GameRecord, error)
	CountGames(ctx context.Context) (int, error)
}

// StateReader reads mirrored state fields back from the store.
type StateReader interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
}

// LogoUploader forwards an image to the image host.
type LogoUploader interface {
	Upload(ctx context.Context, filename string, image io.Reader) (json.RawMessage, error)
}

// RequestObserver is told the outcome of every request.
type RequestObserver interface {
	ObserveRequest(route string, code int)
}

// Handler serves the operator control surface.
type Handler struct {
	session  Session
	teams    TeamService
	games    GameService
	state    StateReader
	uploader LogoUploader
	observer RequestObserver
}

// Deps groups the collaborators of a Handler. Uploader and Observer are optional.
type Deps struct {
	Session  Session
	Teams    TeamService
	Games    GameService
	State    StateReader
	Uploader LogoUploader
	Observer RequestObserver
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		session:  deps.Session,
		teams:    deps.Teams,
		games:    deps.Games,
		state:    deps.State,
		uploader: deps.Uploader,
		observer: deps.Observer,
	}
}

// RegisterRoutes registers every control route with mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	routes := map[string]http.HandlerFunc{
		"POST /setMain":    h.handleSetMain,
		"POST /setPit":     h.handleSetPit,
		"POST /setPitOpen": h.handleSetPitOpen,
		"POST /startMain":  h.timerAction(h.session.StartMain),
		"POST /startPit":   h.timerAction(h.session.StartPit),
		"POST /stopMain":   h.timerAction(h.session.StopMain),
		"POST /stopPit":    h.timerAction(h.session.StopPit),
		"PUT /resetMain":   h.timerAction(h.session.ResetMain),
		"PUT /resetPit":    h.timerAction(h.session.ResetPit),
		"GET /timerstatus": h.handleTimerStatus,
		"GET /pitstatus":   h.handlePitStatus,

		"POST /setGameDetails": h.handleSetGameDetails,
		"GET /getGameDetails":  h.handleGetGameDetails,
		"POST /saveGame":       h.handleSaveGame,
		"GET /nextGameId":      h.handleNextGameID,
		"GET /games":           h.handleListGames,

		"GET /teams":              h.handleListTeams,
		"POST /addTeam":           h.handleAddTeam,
		"DELETE /deleteTeam/{id}": h.handleDeleteTeam,
		"POST /api/upload-logo":   h.handleUploadLogo,

		"POST /setGameStatusActive":          h.statusAction(h.session.SetActive, "Game status set to ACTIVE"),
		"POST /setGameStatusShown":           h.statusAction(h.session.SetShown, "Game status set to SHOWN"),
		"POST /setGameStatusDeactive":        h.statusAction(h.session.SetDeactive, "Game status set to DEACTIVE"),
		"POST /activateGameStatus":           h.statusAction(h.session.SetActive, "Game status activated (legacy)"),
		"POST /deactivateGameStatus":         h.statusAction(h.session.SetDeactive, "Game status deactivated (legacy)"),
		"POST /scheduleGameStatusActivation": h.handleScheduleActivation,
		"GET /gameStatus":                    h.handleGameStatus,
		"POST /activateDraw":                 h.drawAction(h.session.ActivateDraw, "Draw activated"),
		"POST /deactivateDraw":               h.drawAction(h.session.DeactivateDraw, "Draw deactivated"),
		"GET /drawStatus":                    h.handleDrawStatus,
		"POST /deactivateDrawAndGameStatus":  h.handleDeactivateDrawAndStatus,
	}

	for pattern, fn := range routes {
		mux.Handle(pattern, h.observe(pattern, fn))
	}
}

func (h *Handler) observe(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		if h.observer != nil {
			h.observer.ObserveRequest(route, rec.status)
		}
		log.Debug().
			Str("route", route).
			Int("status", rec.status).
			Msg("request handled")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// message is the body most mutating routes reply with.
type message struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decodeBody decodes a JSON request body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	return err
}

// sessionFailed replies for errors from the session loop itself.
func sessionFailed(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("session unavailable")
	writeError(w, http.StatusServiceUnavailable, err)
}
