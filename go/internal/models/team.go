package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Team is a participant record stored at teams/<id>.
type Team struct {
	ID     string `json:"-"`
	Name   string `json:"name"`
	Leader string `json:"leader"`
	Logo   string `json:"logo"`
	Points Points `json:"points"`
}

// Points is a team's score total. Records written by older tooling store it as a
// string, so both forms decode; anything unparseable counts as zero.
type Points int

func (p *Points) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}

	if n, err := strconv.Atoi(raw); err == nil {
		*p = Points(n)
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*p = Points(int(f))
		return nil
	}
	*p = 0
	return nil
}
