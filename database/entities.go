package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/radekw/apollo/helper"
	"github.com/radekw/apollo/model"
	loadSql "github.com/radekw/apollo/sql"
)

// EntitiesDBHandlerFunctions defines the interface for Entities database operations.
type EntitiesDBHandlerFunctions interface {
	InsertEntity(entity *model.ResolvedEntity, embedding []float32) error
	InsertEntityTx(tx *sql.Tx, entity *model.ResolvedEntity, embedding []float32) error
	SelectEntity(id int64) (*model.ResolvedEntity, error)
	SelectEntityByName(name string, entityType model.EntityType) (*model.ResolvedEntity, error)
	SelectEntitiesByType(entityType model.EntityType, limit int) ([]*model.ResolvedEntity, error)
	SelectEntitiesBySimilarity(embedding []float32, limit int) ([]*EntitySimilarity, error)
	SelectEntitiesBySearch(searchTerm string, limit int) ([]*model.ResolvedEntity, error)
	DeleteEntity(id int64) error
}

// EntitySimilarity pairs an entity with its cosine similarity to a
// query embedding.
type EntitySimilarity struct {
	Entity     *model.ResolvedEntity
	Similarity float64
}

// EntitiesDBHandler handles entity-related database operations
type EntitiesDBHandler struct {
	db *helper.Database
}

// NewEntitiesDBHandler creates a new entities database handler.
// It initializes the database connection and loads entity-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEntitiesDBHandler(db *helper.Database, force bool) (*EntitiesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	entitiesDbHandler := &EntitiesDBHandler{
		db: db,
	}

	err := loadSql.LoadEntitiesSql(entitiesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	err = entitiesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EntitiesDBHandler")

	return entitiesDbHandler, nil
}

// CreateTable creates the 'entities' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *EntitiesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_entities();`)
	if err != nil {
		log.Panicf("error initializing entities table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table entities")

	return nil
}

// InsertEntity inserts a new entity or merges it into an existing one
// with the same name and type. The embedding may be nil; a stored
// embedding is never overwritten. The entity's ID, mention count and
// persisted citation are written back on return.
func (h *EntitiesDBHandler) InsertEntity(entity *model.ResolvedEntity, embedding []float32) error {
	mentionCount := entity.MentionCount
	if mentionCount < 1 {
		mentionCount = len(entity.Spans)
	}

	var embeddingValue any
	if embedding != nil {
		embeddingValue = pgvector.NewVector(embedding)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_entity($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entity.CanonicalName,
		entity.Type,
		mentionCount,
		entity.Confidence,
		embeddingValue,
		entity.Citation.DocumentRID,
		entity.Citation.SentenceIndex,
		entity.Citation.Start,
		entity.Citation.End,
	)

	err := row.Scan(
		&entity.ID,
		&entity.CanonicalName,
		&entity.Type,
		&entity.MentionCount,
		&entity.Confidence,
		&entity.Citation.DocumentRID,
		&entity.Citation.SentenceIndex,
		&entity.Citation.Start,
		&entity.Citation.End,
		&entity.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// InsertEntityTx inserts an entity using the given transaction
func (h *EntitiesDBHandler) InsertEntityTx(tx *sql.Tx, entity *model.ResolvedEntity, embedding []float32) error {
	mentionCount := entity.MentionCount
	if mentionCount < 1 {
		mentionCount = len(entity.Spans)
	}

	var embeddingValue any
	if embedding != nil {
		embeddingValue = pgvector.NewVector(embedding)
	}

	row := tx.QueryRow(
		`SELECT * FROM insert_entity($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entity.CanonicalName,
		entity.Type,
		mentionCount,
		entity.Confidence,
		embeddingValue,
		entity.Citation.DocumentRID,
		entity.Citation.SentenceIndex,
		entity.Citation.Start,
		entity.Citation.End,
	)

	err := row.Scan(
		&entity.ID,
		&entity.CanonicalName,
		&entity.Type,
		&entity.MentionCount,
		&entity.Confidence,
		&entity.Citation.DocumentRID,
		&entity.Citation.SentenceIndex,
		&entity.Citation.Start,
		&entity.Citation.End,
		&entity.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectEntity retrieves an entity by ID
func (h *EntitiesDBHandler) SelectEntity(id int64) (*model.ResolvedEntity, error) {
	entity := &model.ResolvedEntity{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_entity($1)`,
		id,
	)

	err := row.Scan(
		&entity.ID,
		&entity.CanonicalName,
		&entity.Type,
		&entity.MentionCount,
		&entity.Confidence,
		&entity.Citation.DocumentRID,
		&entity.Citation.SentenceIndex,
		&entity.Citation.Start,
		&entity.Citation.End,
		&entity.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// SelectEntityByName retrieves an entity by canonical name and type
func (h *EntitiesDBHandler) SelectEntityByName(name string, entityType model.EntityType) (*model.ResolvedEntity, error) {
	entity := &model.ResolvedEntity{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_entity_by_name($1, $2)`,
		name,
		entityType,
	)

	err := row.Scan(
		&entity.ID,
		&entity.CanonicalName,
		&entity.Type,
		&entity.MentionCount,
		&entity.Confidence,
		&entity.Citation.DocumentRID,
		&entity.Citation.SentenceIndex,
		&entity.Citation.Start,
		&entity.Citation.End,
		&entity.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// SelectEntitiesByType retrieves entities by type, most mentioned first
func (h *EntitiesDBHandler) SelectEntitiesByType(entityType model.EntityType, limit int) ([]*model.ResolvedEntity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_entities_by_type($1, $2)`,
		entityType,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var entities []*model.ResolvedEntity
	for rows.Next() {
		entity := &model.ResolvedEntity{}
		err := rows.Scan(
			&entity.ID,
			&entity.CanonicalName,
			&entity.Type,
			&entity.MentionCount,
			&entity.Confidence,
			&entity.Citation.DocumentRID,
			&entity.Citation.SentenceIndex,
			&entity.Citation.Start,
			&entity.Citation.End,
			&entity.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entities = append(entities, entity)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}

// SelectEntitiesBySimilarity retrieves the entities whose name
// embeddings are closest to the query embedding, most similar first.
// Entities without a stored embedding are skipped.
func (h *EntitiesDBHandler) SelectEntitiesBySimilarity(embedding []float32, limit int) ([]*EntitySimilarity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_entities_by_similarity($1, $2)`,
		pgvector.NewVector(embedding),
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []*EntitySimilarity
	for rows.Next() {
		result := &EntitySimilarity{Entity: &model.ResolvedEntity{}}
		err := rows.Scan(
			&result.Entity.ID,
			&result.Entity.CanonicalName,
			&result.Entity.Type,
			&result.Entity.MentionCount,
			&result.Entity.Confidence,
			&result.Entity.Citation.DocumentRID,
			&result.Entity.Citation.SentenceIndex,
			&result.Entity.Citation.Start,
			&result.Entity.Citation.End,
			&result.Entity.CreatedAt,
			&result.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		results = append(results, result)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// SelectEntitiesBySearch searches entities by name pattern
func (h *EntitiesDBHandler) SelectEntitiesBySearch(searchTerm string, limit int) ([]*model.ResolvedEntity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM search_entities($1, $2)`,
		searchTerm,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var entities []*model.ResolvedEntity
	for rows.Next() {
		entity := &model.ResolvedEntity{}
		err := rows.Scan(
			&entity.ID,
			&entity.CanonicalName,
			&entity.Type,
			&entity.MentionCount,
			&entity.Confidence,
			&entity.Citation.DocumentRID,
			&entity.Citation.SentenceIndex,
			&entity.Citation.Start,
			&entity.Citation.End,
			&entity.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entities = append(entities, entity)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}

// DeleteEntity deletes an entity by ID
func (h *EntitiesDBHandler) DeleteEntity(id int64) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_entity($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
