package statfeed

// Entity is a single fetchable subject: a player, a team, or a game.
// CategoryHint carries the metadata classification uses to route the
// fetched record into destination groups, e.g. a player position.
type Entity struct {
	ID           string
	Name         string
	CategoryHint string
}

// CategoryTag names a destination group for extracted records, e.g.
// "rushing" or "receiving". One entity may land in several groups.
type CategoryTag string
