package store

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"collabboard-backend/internal/model"
)

var (
	ErrInvalidObjectType = errors.New("invalid object type")
	ErrOddPoints         = errors.New("points must contain an even number of coordinates")
	ErrInvalidPoints     = errors.New("points must be an array of numbers")
)

// subscriberBuffer bounds the per-subscriber change queue. A subscriber that
// cannot keep up loses diffs (logged); it will resync on its next snapshot.
const subscriberBuffer = 256

// Change is one incremental batch delivered to subscribers, in apply order.
// The last delivered write for an id wins; there is no client-side merging.
type Change struct {
	Added    []model.BoardObject `json:"added,omitempty"`
	Modified []model.BoardObject `json:"modified,omitempty"`
	Removed  []string            `json:"removed,omitempty"`
}

// Subscription is a live feed of one board's changes.
type Subscription struct {
	C chan Change

	store   *Store
	boardID string
	id      int
	once    sync.Once
}

// Close unregisters the subscription. The channel stops receiving afterwards.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.store.unsubscribe(s.boardID, s.id)
	})
}

type boardCache struct {
	objects map[string]*model.BoardObject
	subs    map[int]*Subscription
	loaded  bool
}

// Store maintains a locally-cached, persistently-authoritative mapping from
// object id to BoardObject per board, and fans out changes to subscribers.
// Writes go to the repository first; the cache and subscribers only observe
// committed state. Conflicts are last-write-wins per object — there is no
// transactional read-modify-write.
type Store struct {
	repo    Repository
	mu      sync.RWMutex
	boards  map[string]*boardCache
	nextSub int
	now     func() time.Time
}

// New Store 생성
func New(repo Repository) *Store {
	return &Store{
		repo:   repo,
		boards: make(map[string]*boardCache),
		now:    time.Now,
	}
}

func (s *Store) board(boardID string) *boardCache {
	if b, ok := s.boards[boardID]; ok {
		return b
	}
	b := &boardCache{
		objects: make(map[string]*model.BoardObject),
		subs:    make(map[int]*Subscription),
	}
	s.boards[boardID] = b
	return b
}

// ensureLoaded populates the cache from the repository on first access.
func (s *Store) ensureLoaded(ctx context.Context, boardID string) (*boardCache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.board(boardID)
	if b.loaded {
		return b, nil
	}

	objects, err := s.repo.LoadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	for i := range objects {
		obj := objects[i]
		b.objects[obj.ID] = &obj
	}
	b.loaded = true
	return b, nil
}

// Subscribe opens a live feed for the board and returns the current snapshot
// plus a channel of incremental changes.
func (s *Store) Subscribe(ctx context.Context, boardID string) (*Subscription, []model.BoardObject, error) {
	if _, err := s.ensureLoaded(ctx, boardID); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.board(boardID)
	s.nextSub++
	sub := &Subscription{
		C:       make(chan Change, subscriberBuffer),
		store:   s,
		boardID: boardID,
		id:      s.nextSub,
	}
	b.subs[sub.id] = sub

	return sub, snapshotLocked(b), nil
}

func (s *Store) unsubscribe(boardID string, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.boards[boardID]; ok {
		delete(b.subs, id)
	}
}

// Objects returns the current snapshot of a board's objects.
func (s *Store) Objects(ctx context.Context, boardID string) ([]model.BoardObject, error) {
	if _, err := s.ensureLoaded(ctx, boardID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotLocked(s.board(boardID)), nil
}

// Get returns one cached object by id.
func (s *Store) Get(boardID, id string) (model.BoardObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boards[boardID]
	if !ok {
		return model.BoardObject{}, false
	}
	obj, ok := b.objects[id]
	if !ok {
		return model.BoardObject{}, false
	}
	return *obj, true
}

func snapshotLocked(b *boardCache) []model.BoardObject {
	objects := make([]model.BoardObject, 0, len(b.objects))
	for _, obj := range b.objects {
		objects = append(objects, *obj)
	}
	sort.Slice(objects, func(i, j int) bool {
		if objects[i].CreatedAt.Equal(objects[j].CreatedAt) {
			return objects[i].ID < objects[j].ID
		}
		return objects[i].CreatedAt.Before(objects[j].CreatedAt)
	})
	return objects
}

// prepare fills omitted fields with fixed defaults and stamps ownership.
// A caller-supplied id is kept; otherwise a fresh one is generated.
func (s *Store) prepare(boardID string, partial model.BoardObject, userID int64, now time.Time) (*model.BoardObject, error) {
	if !partial.Type.Valid() {
		return nil, ErrInvalidObjectType
	}
	if len(partial.Points)%2 != 0 {
		return nil, ErrOddPoints
	}

	obj := partial
	obj.BoardID = boardID
	if obj.ID == "" {
		obj.ID = uuid.NewString()
	}
	if obj.Width == 0 {
		obj.Width = model.DefaultObjectWidth
	}
	if obj.Height == 0 {
		obj.Height = model.DefaultObjectHeight
	}
	if obj.Color == "" {
		obj.Color = model.DefaultColor(obj.Type)
	}
	if obj.FontSize == 0 {
		obj.FontSize = model.DefaultFontSize
	}
	obj.CreatedBy = userID
	obj.CreatedAt = now
	obj.UpdatedAt = now
	return &obj, nil
}

// Create writes a single object and returns its id.
func (s *Store) Create(ctx context.Context, boardID string, partial model.BoardObject, userID int64) (string, error) {
	obj, err := s.prepare(boardID, partial, userID, s.now())
	if err != nil {
		return "", err
	}

	if err := s.repo.Insert(ctx, obj); err != nil {
		return "", err
	}

	s.apply(boardID, Change{Added: []model.BoardObject{*obj}})
	return obj.ID, nil
}

// CreateMany writes all objects as one atomic batch and returns the ids in
// input order. Other subscribers observe all of them or none.
func (s *Store) CreateMany(ctx context.Context, boardID string, partials []model.BoardObject, userID int64) ([]string, error) {
	if len(partials) == 0 {
		return nil, nil
	}

	now := s.now()
	objs := make([]*model.BoardObject, 0, len(partials))
	for _, partial := range partials {
		obj, err := s.prepare(boardID, partial, userID, now)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}

	if err := s.repo.InsertBatch(ctx, objs); err != nil {
		return nil, err
	}

	change := Change{Added: make([]model.BoardObject, 0, len(objs))}
	ids := make([]string, 0, len(objs))
	for _, obj := range objs {
		change.Added = append(change.Added, *obj)
		ids = append(ids, obj.ID)
	}
	s.apply(boardID, change)
	return ids, nil
}

// Update merges the named fields into one object and stamps updatedAt.
// Updating an unknown id is a no-op, matching the remote-store behavior the
// rest of the system relies on.
func (s *Store) Update(ctx context.Context, boardID, id string, fields map[string]interface{}) error {
	return s.UpdateMany(ctx, boardID, []FieldUpdate{{ID: id, Fields: fields}})
}

// UpdateMany applies partial merges across distinct ids as one atomic batch.
func (s *Store) UpdateMany(ctx context.Context, boardID string, entries []FieldUpdate) error {
	if len(entries) == 0 {
		return nil
	}

	now := s.now()
	stamped := make([]FieldUpdate, 0, len(entries))
	for _, entry := range entries {
		fields := make(map[string]interface{}, len(entry.Fields)+1)
		for k, v := range entry.Fields {
			fields[k] = v
		}
		if raw, ok := fields["points"]; ok {
			pts, ok := model.ToPoints(raw)
			if !ok {
				return ErrInvalidPoints
			}
			if len(pts)%2 != 0 {
				return ErrOddPoints
			}
			fields["points"] = pts
		}
		fields["updatedAt"] = now
		stamped = append(stamped, FieldUpdate{ID: entry.ID, Fields: fields})
	}

	if err := s.repo.UpdateFieldsBatch(ctx, boardID, stamped); err != nil {
		return err
	}

	s.mu.Lock()
	b := s.board(boardID)
	change := Change{}
	for _, entry := range stamped {
		obj, ok := b.objects[entry.ID]
		if !ok {
			continue
		}
		model.ApplyUpdate(obj, entry.Fields)
		change.Modified = append(change.Modified, *obj)
	}
	if len(change.Modified) > 0 {
		broadcast(boardID, b, change)
	}
	s.mu.Unlock()

	return nil
}

// Delete removes one object.
func (s *Store) Delete(ctx context.Context, boardID, id string) error {
	return s.DeleteMany(ctx, boardID, []string{id})
}

// DeleteMany removes objects as one atomic batch.
func (s *Store) DeleteMany(ctx context.Context, boardID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if err := s.repo.DeleteBatch(ctx, boardID, ids); err != nil {
		return err
	}

	s.mu.Lock()
	b := s.board(boardID)
	change := Change{}
	for _, id := range ids {
		if _, ok := b.objects[id]; ok {
			delete(b.objects, id)
			change.Removed = append(change.Removed, id)
		}
	}
	if len(change.Removed) > 0 {
		broadcast(boardID, b, change)
	}
	s.mu.Unlock()

	return nil
}

// apply mutates the cache with committed additions and notifies subscribers.
func (s *Store) apply(boardID string, change Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.board(boardID)
	for i := range change.Added {
		obj := change.Added[i]
		b.objects[obj.ID] = &obj
	}
	broadcast(boardID, b, change)
}

// broadcast must run with mu held so delivery order matches apply order;
// a send outside the lock could deliver a stale snapshot after a newer one.
// Sends never block: a subscriber with a full buffer loses the change.
func broadcast(boardID string, b *boardCache, change Change) {
	for _, sub := range b.subs {
		select {
		case sub.C <- change:
		default:
			log.Printf("[Store %s] Subscriber buffer full, dropping change", boardID)
		}
	}
}

// IsGeometryField reports whether a field belongs to the debounced geometry
// path (drag/resize/rotate). Content fields write through immediately.
func IsGeometryField(name string) bool {
	switch name {
	case "x", "y", "width", "height", "rotation":
		return true
	}
	return false
}
