package tree

import (
	"context"
	"errors"

	"github.com/ammiranda/forest_service/repository"

	"go.uber.org/zap"
)

// MoveNodeAndSubtree re-parents sourceID under newParentID, carrying its
// whole subtree. A nil newParentID makes the source a root. Only the source
// row changes; descendants keep pointing at their own parents.
//
// Preconditions are checked in order inside one transaction: the source
// exists, it is not its own new parent, the new parent is not one of its
// descendants (and exists), and the move is not a no-op.
func (e *Engine) MoveNodeAndSubtree(ctx context.Context, sourceID int64, newParentID *int64) (*repository.Node, error) {
	if newParentID != nil && *newParentID <= 0 {
		return nil, ErrInvalidParent
	}

	var moved *repository.Node
	err := e.store.RunInTx(ctx, func(s repository.Store) error {
		source, err := s.GetNode(ctx, sourceID)
		if errors.Is(err, repository.ErrNodeNotFound) {
			return ErrSourceNotFound
		}
		if err != nil {
			return err
		}

		if newParentID != nil {
			if IsSameNode(sourceID, *newParentID) {
				return ErrSelfMove
			}

			descendants, err := collectDescendants(ctx, s, sourceID)
			if err != nil {
				return err
			}
			for _, d := range descendants {
				if d.ID == *newParentID {
					return ErrDescendantMove
				}
			}

			exists, err := s.NodeExists(ctx, *newParentID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrParentNotFound
			}
		}

		if sameParent(source.ParentID, newParentID) {
			return ErrNoOpMove
		}

		if err := s.UpdateParent(ctx, sourceID, newParentID); err != nil {
			return err
		}
		moved, err = s.GetNode(ctx, sourceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("subtree moved",
		zap.Int64("id", sourceID),
		zap.Int64p("newParentId", newParentID),
	)
	return moved, nil
}
