package models

// GameRecord is the stored outcome of a match at games/<matchId-1>.
type GameRecord struct {
	GameID     string `json:"gameid"`
	GameName   string `json:"gameName"`
	Team1Name  string `json:"team1name"`
	Team1Score string `json:"team1score"`
	Team2Name  string `json:"team2name"`
	Team2Score string `json:"team2score"`
	Team3Name  string `json:"team3name,omitempty"`
	Team3Score string `json:"team3score,omitempty"`
	WinnerID   string `json:"winnerId"`
	IsDraw     bool   `json:"isDraw"`
}
