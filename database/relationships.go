package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/radekw/apollo/helper"
	"github.com/radekw/apollo/model"
	loadSql "github.com/radekw/apollo/sql"
)

// RelationshipsDBHandlerFunctions defines the interface for Relationships database operations.
type RelationshipsDBHandlerFunctions interface {
	InsertRelationship(relationship *model.RelationshipTriple) error
	InsertRelationshipTx(tx *sql.Tx, relationship *model.RelationshipTriple) error
	SelectRelationshipsByEntity(entityID int64) ([]*model.RelationshipTriple, error)
	SelectRelationshipsByDocument(documentRID uuid.UUID) ([]*model.RelationshipTriple, error)
	DeleteRelationship(id int64) error
}

// RelationshipsDBHandler handles relationship-related database operations
type RelationshipsDBHandler struct {
	db *helper.Database
}

// NewRelationshipsDBHandler creates a new relationships database handler.
// It initializes the database connection and loads relationship-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewRelationshipsDBHandler(db *helper.Database, force bool) (*RelationshipsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	relationshipsDbHandler := &RelationshipsDBHandler{
		db: db,
	}

	err := loadSql.LoadRelationshipsSql(relationshipsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load relationships sql", err)
	}

	err = relationshipsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RelationshipsDBHandler")

	return relationshipsDbHandler, nil
}

// CreateTable creates the 'relationships' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *RelationshipsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_relationships();`)
	if err != nil {
		log.Panicf("error initializing relationships table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table relationships")

	return nil
}

// InsertRelationship inserts a new relationship triple. The triple must
// carry the persisted IDs of both endpoints in SubjectID and ObjectID.
// A re-inserted triple keeps the higher confidence and its citation.
func (h *RelationshipsDBHandler) InsertRelationship(relationship *model.RelationshipTriple) error {
	if relationship.SubjectID == 0 || relationship.ObjectID == 0 {
		return helper.NewError("relationship validation", fmt.Errorf("relationship %v has unresolved endpoints", relationship.Predicate))
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_relationship($1, $2, $3, $4, $5, $6, $7, $8)`,
		relationship.SubjectID,
		relationship.Predicate,
		relationship.ObjectID,
		relationship.Confidence,
		relationship.Citation.DocumentRID,
		relationship.Citation.SentenceIndex,
		relationship.Citation.Start,
		relationship.Citation.End,
	)

	err := row.Scan(
		&relationship.ID,
		&relationship.SubjectID,
		&relationship.Predicate,
		&relationship.ObjectID,
		&relationship.Confidence,
		&relationship.Citation.DocumentRID,
		&relationship.Citation.SentenceIndex,
		&relationship.Citation.Start,
		&relationship.Citation.End,
		&relationship.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// InsertRelationshipTx inserts a relationship triple using the given
// transaction
func (h *RelationshipsDBHandler) InsertRelationshipTx(tx *sql.Tx, relationship *model.RelationshipTriple) error {
	if relationship.SubjectID == 0 || relationship.ObjectID == 0 {
		return helper.NewError("relationship validation", fmt.Errorf("relationship %v has unresolved endpoints", relationship.Predicate))
	}

	row := tx.QueryRow(
		`SELECT * FROM insert_relationship($1, $2, $3, $4, $5, $6, $7, $8)`,
		relationship.SubjectID,
		relationship.Predicate,
		relationship.ObjectID,
		relationship.Confidence,
		relationship.Citation.DocumentRID,
		relationship.Citation.SentenceIndex,
		relationship.Citation.Start,
		relationship.Citation.End,
	)

	err := row.Scan(
		&relationship.ID,
		&relationship.SubjectID,
		&relationship.Predicate,
		&relationship.ObjectID,
		&relationship.Confidence,
		&relationship.Citation.DocumentRID,
		&relationship.Citation.SentenceIndex,
		&relationship.Citation.Start,
		&relationship.Citation.End,
		&relationship.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectRelationshipsByEntity retrieves all relationships an entity
// participates in, as subject or object
func (h *RelationshipsDBHandler) SelectRelationshipsByEntity(entityID int64) ([]*model.RelationshipTriple, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_relationships_by_entity($1)`,
		entityID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var relationships []*model.RelationshipTriple
	for rows.Next() {
		relationship := &model.RelationshipTriple{}
		err := rows.Scan(
			&relationship.ID,
			&relationship.SubjectID,
			&relationship.Predicate,
			&relationship.ObjectID,
			&relationship.Confidence,
			&relationship.Citation.DocumentRID,
			&relationship.Citation.SentenceIndex,
			&relationship.Citation.Start,
			&relationship.Citation.End,
			&relationship.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		relationships = append(relationships, relationship)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return relationships, nil
}

// SelectRelationshipsByDocument retrieves all relationships extracted
// from a document in citation order
func (h *RelationshipsDBHandler) SelectRelationshipsByDocument(documentRID uuid.UUID) ([]*model.RelationshipTriple, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_relationships_by_document($1)`,
		documentRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var relationships []*model.RelationshipTriple
	for rows.Next() {
		relationship := &model.RelationshipTriple{}
		err := rows.Scan(
			&relationship.ID,
			&relationship.SubjectID,
			&relationship.Predicate,
			&relationship.ObjectID,
			&relationship.Confidence,
			&relationship.Citation.DocumentRID,
			&relationship.Citation.SentenceIndex,
			&relationship.Citation.Start,
			&relationship.Citation.End,
			&relationship.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		relationships = append(relationships, relationship)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return relationships, nil
}

// DeleteRelationship deletes a relationship by ID
func (h *RelationshipsDBHandler) DeleteRelationship(id int64) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_relationship($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
