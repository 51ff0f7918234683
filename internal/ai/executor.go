package ai

import (
	"context"
	"log"

	"collabboard-backend/internal/model"
	"collabboard-backend/internal/store"
)

// Executor replays model-requested actions through the object sync layer.
// Actions are partitioned into creations, updates, and deletions, and the
// batches run sequentially in that order so an update or delete referencing
// an object created in the same turn resolves against it. Already-applied
// batches are not rolled back when a later batch fails.
type Executor struct {
	store *store.Store
}

// NewExecutor Executor 생성
func NewExecutor(s *store.Store) *Executor {
	return &Executor{store: s}
}

// ExecResult summarizes what an action batch did.
type ExecResult struct {
	CreatedIDs []string `json:"createdIds"`
	Updated    int      `json:"updated"`
	Deleted    int      `json:"deleted"`
	Skipped    int      `json:"skipped"`
}

// Apply executes the actions against one board on behalf of the user.
// Actions that fail to decode, or that reference ids unknown to the board,
// are skipped and logged rather than failing the whole command.
func (e *Executor) Apply(ctx context.Context, boardID string, userID int64, actions []Action) (ExecResult, error) {
	var result ExecResult

	var creates []model.BoardObject
	var updates []store.FieldUpdate
	var deletes []string

	for _, action := range actions {
		mutation, err := Decode(action)
		if err != nil {
			log.Printf("[Board %s] Skipping AI action %q: %v", boardID, action.Name, err)
			result.Skipped++
			continue
		}
		switch {
		case mutation.Create != nil:
			creates = append(creates, *mutation.Create)
		case mutation.Update != nil:
			updates = append(updates, store.FieldUpdate{
				ID:     mutation.Update.ObjectID,
				Fields: mutation.Update.Fields,
			})
		case mutation.DeleteID != "":
			deletes = append(deletes, mutation.DeleteID)
		}
	}

	// Id checks below must see persisted objects, not just what this process
	// has already cached.
	if len(updates) > 0 || len(deletes) > 0 {
		if _, err := e.store.Objects(ctx, boardID); err != nil {
			return result, err
		}
	}

	if len(creates) > 0 {
		ids, err := e.store.CreateMany(ctx, boardID, creates, userID)
		if err != nil {
			return result, err
		}
		result.CreatedIDs = ids
	}

	if len(updates) > 0 {
		kept := make([]store.FieldUpdate, 0, len(updates))
		for _, update := range updates {
			if _, ok := e.store.Get(boardID, update.ID); !ok {
				log.Printf("[Board %s] Skipping AI update for unknown object %s", boardID, update.ID)
				result.Skipped++
				continue
			}
			kept = append(kept, update)
		}
		if len(kept) > 0 {
			if err := e.store.UpdateMany(ctx, boardID, kept); err != nil {
				return result, err
			}
			result.Updated = len(kept)
		}
	}

	if len(deletes) > 0 {
		kept := make([]string, 0, len(deletes))
		for _, id := range deletes {
			if _, ok := e.store.Get(boardID, id); !ok {
				log.Printf("[Board %s] Skipping AI delete for unknown object %s", boardID, id)
				result.Skipped++
				continue
			}
			kept = append(kept, id)
		}
		if len(kept) > 0 {
			if err := e.store.DeleteMany(ctx, boardID, kept); err != nil {
				return result, err
			}
			result.Deleted = len(kept)
		}
	}

	return result, nil
}
