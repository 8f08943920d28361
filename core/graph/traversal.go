package graph

import (
	"context"

	"github.com/radekw/apollo/model"
)

// GraphDB defines the interface for knowledge graph operations
type GraphDB interface {
	GetEntity(ctx context.Context, id int64) (*model.ResolvedEntity, error)
	GetRelationships(ctx context.Context, entityID int64, predicates []model.Predicate) ([]*model.RelationshipTriple, error)
}

// TraversalResult contains an entity and its distance from the source
type TraversalResult struct {
	Entity   *model.ResolvedEntity
	Distance int
	Path     []int64 // Path from source to this entity
}

// BFS performs breadth-first search from a source entity. Relationships
// are followed subject to object; with followInbound they are also
// followed object to subject.
func BFS(ctx context.Context, db GraphDB, sourceID int64, maxHops int, predicates []model.Predicate, followInbound bool) ([]*TraversalResult, error) {
	visited := make(map[int64]bool)
	queue := []TraversalResult{{
		Entity:   nil,
		Distance: 0,
		Path:     []int64{sourceID},
	}}

	// Get source entity
	sourceEntity, err := db.GetEntity(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	queue[0].Entity = sourceEntity

	var results []*TraversalResult
	visited[sourceID] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		results = append(results, &current)

		// Stop if we've reached max hops
		if current.Distance >= maxHops {
			continue
		}

		// Get relationships of the current entity
		relationships, err := db.GetRelationships(ctx, current.Entity.ID, predicates)
		if err != nil {
			return nil, err
		}

		// Process each relationship
		for _, relationship := range relationships {
			targetID, ok := neighborOf(relationship, current.Entity.ID, followInbound)
			if !ok {
				continue
			}

			// Skip if already visited
			if visited[targetID] {
				continue
			}

			// Get target entity
			targetEntity, err := db.GetEntity(ctx, targetID)
			if err != nil {
				continue // Skip if entity not found
			}

			visited[targetID] = true

			// Create new path
			newPath := make([]int64, len(current.Path))
			copy(newPath, current.Path)
			newPath = append(newPath, targetID)

			queue = append(queue, TraversalResult{
				Entity:   targetEntity,
				Distance: current.Distance + 1,
				Path:     newPath,
			})
		}
	}

	return results, nil
}

// DFS performs depth-first search from a source entity
func DFS(ctx context.Context, db GraphDB, sourceID int64, maxHops int, predicates []model.Predicate, followInbound bool) ([]*TraversalResult, error) {
	visited := make(map[int64]bool)
	var results []*TraversalResult

	// Get source entity
	sourceEntity, err := db.GetEntity(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	// Start recursive DFS
	dfsRecursive(ctx, db, sourceEntity, 0, maxHops, []int64{sourceID}, predicates, followInbound, visited, &results)

	return results, nil
}

// dfsRecursive is the recursive helper for DFS
func dfsRecursive(
	ctx context.Context,
	db GraphDB,
	current *model.ResolvedEntity,
	distance int,
	maxHops int,
	path []int64,
	predicates []model.Predicate,
	followInbound bool,
	visited map[int64]bool,
	results *[]*TraversalResult,
) {
	// Mark as visited
	visited[current.ID] = true

	// Add to results
	pathCopy := make([]int64, len(path))
	copy(pathCopy, path)
	*results = append(*results, &TraversalResult{
		Entity:   current,
		Distance: distance,
		Path:     pathCopy,
	})

	// Stop if we've reached max hops
	if distance >= maxHops {
		return
	}

	// Get relationships of the current entity
	relationships, err := db.GetRelationships(ctx, current.ID, predicates)
	if err != nil {
		return
	}

	// Process each relationship
	for _, relationship := range relationships {
		targetID, ok := neighborOf(relationship, current.ID, followInbound)
		if !ok {
			continue
		}

		// Skip if already visited
		if visited[targetID] {
			continue
		}

		// Get target entity
		targetEntity, err := db.GetEntity(ctx, targetID)
		if err != nil {
			continue // Skip if entity not found
		}

		// Create new path
		newPath := make([]int64, len(path))
		copy(newPath, path)
		newPath = append(newPath, targetID)

		// Recurse
		dfsRecursive(ctx, db, targetEntity, distance+1, maxHops, newPath, predicates, followInbound, visited, results)
	}
}

// neighborOf returns the other endpoint of a relationship seen from the
// given entity. Relationships without persisted endpoints are skipped.
func neighborOf(relationship *model.RelationshipTriple, from int64, followInbound bool) (int64, bool) {
	if relationship.SubjectID == 0 || relationship.ObjectID == 0 {
		return 0, false
	}
	if relationship.SubjectID == from {
		return relationship.ObjectID, true
	}
	if followInbound && relationship.ObjectID == from {
		return relationship.SubjectID, true
	}
	return 0, false
}

// GetNeighbors retrieves immediate neighbors (1-hop) of an entity
func GetNeighbors(ctx context.Context, db GraphDB, entityID int64, predicates []model.Predicate, followInbound bool) ([]*model.ResolvedEntity, error) {
	results, err := BFS(ctx, db, entityID, 1, predicates, followInbound)
	if err != nil {
		return nil, err
	}

	// Skip the source entity itself (first result)
	neighbors := make([]*model.ResolvedEntity, 0, len(results)-1)
	for i := 1; i < len(results); i++ {
		neighbors = append(neighbors, results[i].Entity)
	}

	return neighbors, nil
}
