package activity

import (
	"context"
	"errors"

	"geodir-backend/internal/domain"

	"gorm.io/gorm"
)

// ErrCyclicHierarchy reports a cycle in the activity forest. The schema does
// not mechanically forbid cycles, so traversal detects them instead of
// looping; it signals a data-integrity violation upstream.
var ErrCyclicHierarchy = errors.New("cyclic activity hierarchy")

// DefaultMaxDepth bounds traversal when the caller does not override it.
// Depth 1 is the root itself.
const DefaultMaxDepth = 3

// Ref identifies exactly one activity by id and/or exact name.
type Ref struct {
	ID   *uint
	Name string
}

// IsZero reports whether the ref carries no criteria at all.
func (r Ref) IsZero() bool {
	return r.ID == nil && r.Name == ""
}

// Resolver expands an activity into its descendant closure.
type Resolver struct {
	DB *gorm.DB
}

// DescendantClosure returns the root activity matching ref plus all of its
// transitive descendants, at most maxDepth generations deep (root = depth 1).
// maxDepth <= 0 applies DefaultMaxDepth. A ref matching nothing yields an
// empty slice, not an error.
//
// The whole activity table is loaded once into an id-indexed arena with a
// parent->children adjacency, then walked breadth-first with a visited set.
// Each activity has at most one parent, so a revisited id can only mean a
// cycle and the walk fails with ErrCyclicHierarchy.
func (r *Resolver) DescendantClosure(ctx context.Context, ref Ref, maxDepth int) ([]domain.Activity, error) {
	if ref.IsZero() {
		return []domain.Activity{}, nil
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	var all []domain.Activity
	if err := r.DB.WithContext(ctx).Find(&all).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]*domain.Activity, len(all))
	children := make(map[uint][]uint, len(all))
	var rootID uint
	found := false
	for i := range all {
		a := &all[i]
		byID[a.ID] = a
		if a.ParentID != nil {
			children[*a.ParentID] = append(children[*a.ParentID], a.ID)
		}
		if !found && ref.matches(a) {
			rootID = a.ID
			found = true
		}
	}
	if !found {
		return []domain.Activity{}, nil
	}

	closure := []domain.Activity{*byID[rootID]}
	visited := map[uint]bool{rootID: true}
	frontier := []uint{rootID}
	for depth := 1; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []uint
		for _, id := range frontier {
			for _, childID := range children[id] {
				if visited[childID] {
					return nil, ErrCyclicHierarchy
				}
				visited[childID] = true
				closure = append(closure, *byID[childID])
				next = append(next, childID)
			}
		}
		frontier = next
	}

	// A branch cut off by maxDepth may still hide a cycle further down.
	if err := detectResidualCycle(rootID, children); err != nil {
		return nil, err
	}
	return closure, nil
}

// detectResidualCycle walks the unbounded adjacency from root purely over ids
// so a cycle deeper than maxDepth still fails fast instead of surfacing later.
func detectResidualCycle(rootID uint, children map[uint][]uint) error {
	seen := map[uint]bool{rootID: true}
	stack := []uint{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, childID := range children[id] {
			if seen[childID] {
				return ErrCyclicHierarchy
			}
			seen[childID] = true
			stack = append(stack, childID)
		}
	}
	return nil
}

func (r Ref) matches(a *domain.Activity) bool {
	if r.ID != nil && a.ID != *r.ID {
		return false
	}
	if r.Name != "" && a.Name != r.Name {
		return false
	}
	return true
}
