package policy

import (
	"fmt"

	"hqts/hqerr"
)

// Store is the multi-indexed policy tree (spec §5): a primary arena keyed
// by ID plus three non-unique secondary indices (by parent, by priority
// level, by name), maintained together on every mutation. Per spec §5 the
// Store is owned exclusively by the pipeline's single processing thread —
// it carries no internal lock. FlowClassifier, by contrast, is used
// concurrently from multiple ingest paths and does lock internally; see
// the classifier package.
type Store struct {
	byID       map[ID]*ShapingPolicy
	byParent   map[ID][]ID
	byPriority map[Priority][]ID
	byName     map[string][]ID
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		byID:       make(map[ID]*ShapingPolicy),
		byParent:   make(map[ID][]ID),
		byPriority: make(map[Priority][]ID),
		byName:     make(map[string][]ID),
	}
}

// Insert adds p to the store, indexing it by parent, priority, and name.
// Fails if p.ID already exists, or if p.ParentID is non-zero and does not
// name an existing policy (spec §3: parent_id must reference a valid
// policy or be the root sentinel).
func (s *Store) Insert(p *ShapingPolicy) error {
	if _, exists := s.byID[p.ID]; exists {
		return fmt.Errorf("policy: %w: id %d already present", hqerr.ErrConfigInvalid, p.ID)
	}
	if p.ParentID != NoParentID {
		if _, ok := s.byID[p.ParentID]; !ok {
			return fmt.Errorf("policy: %w: parent id %d does not exist", hqerr.ErrConfigInvalid, p.ParentID)
		}
	}
	s.byID[p.ID] = p
	s.byParent[p.ParentID] = append(s.byParent[p.ParentID], p.ID)
	s.byPriority[p.PriorityLevel] = append(s.byPriority[p.PriorityLevel], p.ID)
	s.byName[p.Name] = append(s.byName[p.Name], p.ID)
	return nil
}

// Get returns the policy with the given id.
func (s *Store) Get(id ID) (*ShapingPolicy, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// Modify atomically applies fn to the policy identified by id and
// reconciles the secondary indices if ParentID, PriorityLevel, or Name
// changed as a result. This is the only sanctioned way to mutate a stored
// policy's indexed fields; mutating a *ShapingPolicy obtained from Get
// directly leaves the indices stale. If fn moves the policy to a parent
// that does not exist, ParentID, PriorityLevel, and Name are restored and
// an error is returned; other fields fn changed keep their new values.
func (s *Store) Modify(id ID, fn func(*ShapingPolicy)) error {
	p, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("policy: %w: id %d not found", hqerr.ErrLookup, id)
	}
	beforeParent, beforePriority, beforeName := p.ParentID, p.PriorityLevel, p.Name

	fn(p)

	if p.ParentID != beforeParent {
		if p.ParentID != NoParentID {
			if _, ok := s.byID[p.ParentID]; !ok {
				newParent := p.ParentID
				p.ParentID, p.PriorityLevel, p.Name = beforeParent, beforePriority, beforeName
				return fmt.Errorf("policy: %w: new parent id %d does not exist", hqerr.ErrConfigInvalid, newParent)
			}
		}
		s.byParent[beforeParent] = removeID(s.byParent[beforeParent], id)
		s.byParent[p.ParentID] = append(s.byParent[p.ParentID], id)
	}
	if p.PriorityLevel != beforePriority {
		s.byPriority[beforePriority] = removeID(s.byPriority[beforePriority], id)
		s.byPriority[p.PriorityLevel] = append(s.byPriority[p.PriorityLevel], id)
	}
	if p.Name != beforeName {
		s.byName[beforeName] = removeID(s.byName[beforeName], id)
		s.byName[p.Name] = append(s.byName[p.Name], id)
	}
	return nil
}

// Remove deletes the policy identified by id from the store and all
// secondary indices. Does not reparent or remove children, and does not
// refuse to remove a policy that has children; ChildrenOf reports them.
func (s *Store) Remove(id ID) error {
	p, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("policy: %w: id %d not found", hqerr.ErrLookup, id)
	}
	delete(s.byID, id)
	s.byParent[p.ParentID] = removeID(s.byParent[p.ParentID], id)
	s.byPriority[p.PriorityLevel] = removeID(s.byPriority[p.PriorityLevel], id)
	s.byName[p.Name] = removeID(s.byName[p.Name], id)
	return nil
}

// ChildrenOf returns the ids of policies whose ParentID is id. Computed
// from the by-parent secondary index rather than stored denormalized on
// the parent, so it can never go stale.
func (s *Store) ChildrenOf(id ID) []ID {
	children := s.byParent[id]
	out := make([]ID, len(children))
	copy(out, children)
	return out
}

// ByPriority returns the ids of policies at the given priority level.
func (s *Store) ByPriority(p Priority) []ID {
	ids := s.byPriority[p]
	out := make([]ID, len(ids))
	copy(out, ids)
	return out
}

// ByName returns the ids of policies with the given name. Names are not
// required to be unique.
func (s *Store) ByName(name string) []ID {
	ids := s.byName[name]
	out := make([]ID, len(ids))
	copy(out, ids)
	return out
}

// Len returns the number of policies currently stored.
func (s *Store) Len() int { return len(s.byID) }

func removeID(ids []ID, target ID) []ID {
	for i, id := range ids {
		if id == target {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
