package roster

import "fmt"

// Position represents the offensive position groups the ingest
// pipeline tracks.
type Position string

const (
	PositionQuarterback  Position = "QB"
	PositionRunningBack  Position = "RB"
	PositionWideReceiver Position = "WR"
	PositionTightEnd     Position = "TE"
)

var AllPositions = map[Position]struct{}{
	PositionQuarterback:  {},
	PositionRunningBack:  {},
	PositionWideReceiver: {},
	PositionTightEnd:     {},
}

// Player is one active offensive player on a team roster.
type Player struct {
	ID       string
	Name     string
	Position Position
	TeamID   string
	TeamName string
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("invalid player position: %s", p.Position)
	}
	if p.TeamID == "" {
		return fmt.Errorf("player team id is required")
	}

	return nil
}

// StatCategories maps a position to the stat groups its season lines
// feed. Quarterbacks carry passing plus rushing; every other tracked
// position carries rushing plus receiving.
func (p Player) StatCategories() []string {
	if p.Position == PositionQuarterback {
		return []string{"rushing", "passing"}
	}
	return []string{"rushing", "receiving"}
}
