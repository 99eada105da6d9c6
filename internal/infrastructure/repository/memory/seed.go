package memory

import "github.com/gridironlab/statline/internal/domain/roster"

func SeedRoster() []roster.Player {
	return []roster.Player{
		{ID: "3139477", Name: "Patrick Mahomes", Position: roster.PositionQuarterback, TeamID: "12", TeamName: "Kansas City Chiefs"},
		{ID: "4241479", Name: "Isiah Pacheco", Position: roster.PositionRunningBack, TeamID: "12", TeamName: "Kansas City Chiefs"},
		{ID: "15847", Name: "Travis Kelce", Position: roster.PositionTightEnd, TeamID: "12", TeamName: "Kansas City Chiefs"},
		{ID: "4362628", Name: "Ja'Marr Chase", Position: roster.PositionWideReceiver, TeamID: "4", TeamName: "Cincinnati Bengals"},
		{ID: "3915511", Name: "Joe Burrow", Position: roster.PositionQuarterback, TeamID: "4", TeamName: "Cincinnati Bengals"},
		{ID: "4379399", Name: "Bijan Robinson", Position: roster.PositionRunningBack, TeamID: "1", TeamName: "Atlanta Falcons"},
		{ID: "4374302", Name: "Drake London", Position: roster.PositionWideReceiver, TeamID: "1", TeamName: "Atlanta Falcons"},
		{ID: "4430807", Name: "Jahmyr Gibbs", Position: roster.PositionRunningBack, TeamID: "8", TeamName: "Detroit Lions"},
		{ID: "4046692", Name: "Amon-Ra St. Brown", Position: roster.PositionWideReceiver, TeamID: "8", TeamName: "Detroit Lions"},
		{ID: "4360438", Name: "Sam LaPorta", Position: roster.PositionTightEnd, TeamID: "8", TeamName: "Detroit Lions"},
	}
}
