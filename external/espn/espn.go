package espn

type teamsEnvelope struct {
	Sports []struct {
		Leagues []struct {
			Teams []struct {
				Team struct {
					ID           string `json:"id"`
					DisplayName  string `json:"displayName"`
					Abbreviation string `json:"abbreviation"`
				} `json:"team"`
			} `json:"teams"`
		} `json:"leagues"`
	} `json:"sports"`
}

type rosterEnvelope struct {
	Athletes []rosterPositionGroup `json:"athletes"`
}

type rosterPositionGroup struct {
	Position string       `json:"position"`
	Items    []rosterItem `json:"items"`
}

type rosterItem struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Position    struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"position"`
}

type seasonStatsEnvelope struct {
	Splits struct {
		Categories []statCategory `json:"categories"`
	} `json:"splits"`
}

type statCategory struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	Stats       []statItem `json:"stats"`
}

type statItem struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type gamelogEnvelope struct {
	Labels      []string                `json:"labels"`
	Events      map[string]gamelogEvent `json:"events"`
	SeasonTypes []gamelogSeasonType     `json:"seasonTypes"`
}

type gamelogEvent struct {
	ID       string `json:"id"`
	Week     int    `json:"week"`
	GameDate string `json:"gameDate"`
}

type gamelogSeasonType struct {
	Categories []struct {
		Events []gamelogEventStats `json:"events"`
	} `json:"categories"`
}

type gamelogEventStats struct {
	EventID string   `json:"eventId"`
	Stats   []string `json:"stats"`
}
