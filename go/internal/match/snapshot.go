package match

import "strconv"

// Snapshot is the composed state sampled for display clients each second.
// Match fields are blank while the status is deactive.
type Snapshot struct {
	MainTime   string `json:"mainTime"`
	PitTime    string `json:"pitTime"`
	GameStatus string `json:"gameStatus"`
	IsDraw     bool   `json:"isDraw"`
	GameID     string `json:"gameId"`
	GameName   string `json:"gameName"`
	Team1ID    string `json:"team1Id"`
	Team2ID    string `json:"team2Id"`
	Team3ID    string `json:"team3Id"`
	WinnerID   string `json:"winnerId"`
}

// GameIDSnapshot carries the id of the match on air, "0" while deactive.
type GameIDSnapshot struct {
	GameID string `json:"gameId"`
}

// TeamSlot is one participant position of the game details view.
type TeamSlot struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Leader string `json:"leader"`
	Score  string `json:"score"`
	Logo   string `json:"logo"`
}

// GameDetails is the match configuration as shown to the control panel.
type GameDetails struct {
	GameID   int      `json:"gameId"`
	GameName string   `json:"gameName"`
	Team1    TeamSlot `json:"team1"`
	Team2    TeamSlot `json:"team2"`
	Team3    TeamSlot `json:"team3"`
}

// TimerStatus reports whether the main countdown is actually counting.
type TimerStatus struct {
	MainRunning bool `json:"mainRunning"`
}

// StatusView is the status and draw flag after a transition.
type StatusView struct {
	GameStatus GameStatus `json:"gameStatus"`
	IsDraw     bool       `json:"isDraw"`
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		MainTime:   strconv.Itoa(s.main.Remaining()),
		PitTime:    strconv.Itoa(s.pit.Remaining()),
		GameStatus: string(s.status.Status()),
		IsDraw:     s.status.Draw(),
	}
	if s.status.Status() == StatusDeactive {
		return snap
	}

	cfg := s.coord.Config()
	snap.GameID = strconv.Itoa(cfg.MatchID)
	snap.GameName = cfg.MatchName
	snap.Team1ID = participantAt(cfg, 0).ID
	snap.Team2ID = participantAt(cfg, 1).ID
	snap.Team3ID = participantAt(cfg, 2).ID
	snap.WinnerID = s.coord.WinnerID()
	if snap.WinnerID == "" {
		snap.WinnerID = "0"
	}
	return snap
}

func (s *Session) gameIDSnapshot() GameIDSnapshot {
	if s.status.Status() == StatusDeactive {
		return GameIDSnapshot{GameID: "0"}
	}
	return GameIDSnapshot{GameID: strconv.Itoa(s.coord.Config().MatchID)}
}

func (s *Session) gameDetails() GameDetails {
	if s.status.Status() == StatusDeactive {
		return GameDetails{}
	}

	cfg := s.coord.Config()
	return GameDetails{
		GameID:   cfg.MatchID,
		GameName: cfg.MatchName,
		Team1:    slotOf(participantAt(cfg, 0)),
		Team2:    slotOf(participantAt(cfg, 1)),
		Team3:    slotOf(participantAt(cfg, 2)),
	}
}

func participantAt(cfg MatchConfig, i int) Participant {
	if i < len(cfg.Participants) {
		return cfg.Participants[i]
	}
	return Participant{}
}

func slotOf(p Participant) TeamSlot {
	return TeamSlot{ID: p.ID, Name: p.Name, Leader: p.Leader, Logo: p.Logo}
}
