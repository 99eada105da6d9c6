package roster

import "context"

// Repository describes roster persistence needs from use cases.
type Repository interface {
	ListActive(ctx context.Context) ([]Player, error)
	ListActiveByPositions(ctx context.Context, positions []Position) ([]Player, error)
	ReplaceActive(ctx context.Context, players []Player) error
}
