package teams

import (
	"errors"

	"github.com/mcdev12/matchcontrol/go/internal/models"
)

// ErrInvalidTeam is returned for team requests without an id.
var ErrInvalidTeam = errors.New("invalid team data")

// AddTeamRequest is the data needed to store a team. Missing fields default to empty
// strings and zero points.
type AddTeamRequest struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Leader string        `json:"leader"`
	Logo   string        `json:"logo"`
	Points models.Points `json:"points"`
}

