package policy

import (
	"errors"
	"testing"

	"hqts/hqerr"
	"hqts/internal/require"
)

func TestInsertRejectsDuplicateID(t *testing.T) {
	s := NewStore()
	p1 := New(1, NoParentID, "root", 1000, 2000, 100, 200, StrictPriority, 1, 0)
	require.NoError(t, s.Insert(p1))

	p2 := New(1, NoParentID, "dup", 1000, 2000, 100, 200, StrictPriority, 1, 0)
	err := s.Insert(p2)
	require.Error(t, err)
	if !errors.Is(err, hqerr.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestInsertRejectsUnknownParent(t *testing.T) {
	s := NewStore()
	p := New(1, ID(99), "orphan", 1000, 2000, 100, 200, WRR, 1, 0)
	err := s.Insert(p)
	require.Error(t, err)
	if !errors.Is(err, hqerr.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestChildrenOfTracksParent(t *testing.T) {
	s := NewStore()
	root := New(1, NoParentID, "root", 1000, 2000, 100, 200, DRR, 1, 0)
	require.NoError(t, s.Insert(root))

	c1 := New(2, 1, "child-a", 500, 1000, 50, 100, DRR, 1, 1)
	c2 := New(3, 1, "child-b", 500, 1000, 50, 100, DRR, 1, 1)
	require.NoError(t, s.Insert(c1))
	require.NoError(t, s.Insert(c2))

	children := s.ChildrenOf(1)
	require.Equal(t, 2, len(children))
}

func TestModifyReconcilesIndices(t *testing.T) {
	s := NewStore()
	root := New(1, NoParentID, "root", 1000, 2000, 100, 200, HFSC, 1, 0)
	other := New(2, NoParentID, "other-root", 1000, 2000, 100, 200, HFSC, 1, 0)
	child := New(3, 1, "child", 500, 1000, 50, 100, HFSC, 1, 3)
	require.NoError(t, s.Insert(root))
	require.NoError(t, s.Insert(other))
	require.NoError(t, s.Insert(child))

	err := s.Modify(3, func(p *ShapingPolicy) {
		p.ParentID = 2
		p.PriorityLevel = 5
		p.Name = "renamed"
	})
	require.NoError(t, err)

	require.Equal(t, 0, len(s.ChildrenOf(1)))
	require.Equal(t, 1, len(s.ChildrenOf(2)))
	require.Equal(t, 0, len(s.ByPriority(3)))
	require.Equal(t, 1, len(s.ByPriority(5)))
	require.Equal(t, 0, len(s.ByName("child")))
	require.Equal(t, 1, len(s.ByName("renamed")))
}

func TestModifyRejectsMoveToUnknownParent(t *testing.T) {
	s := NewStore()
	root := New(1, NoParentID, "root", 1000, 2000, 100, 200, HFSC, 1, 0)
	require.NoError(t, s.Insert(root))

	err := s.Modify(1, func(p *ShapingPolicy) {
		p.ParentID = 42
	})
	require.Error(t, err)

	p, _ := s.Get(1)
	require.Equal(t, NoParentID, p.ParentID)
}

func TestRemoveClearsIndices(t *testing.T) {
	s := NewStore()
	root := New(1, NoParentID, "root", 1000, 2000, 100, 200, StrictPriority, 1, 2)
	require.NoError(t, s.Insert(root))
	require.NoError(t, s.Remove(1))

	_, ok := s.Get(1)
	require.False(t, ok)
	require.Equal(t, 0, len(s.ByPriority(2)))
	require.Equal(t, 0, len(s.ByName("root")))
	require.Equal(t, 0, s.Len())
}

func TestGetMissing(t *testing.T) {
	s := NewStore()
	_, ok := s.Get(123)
	require.False(t, ok)
}
