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

// AliasesDBHandlerFunctions defines the interface for Aliases database operations.
type AliasesDBHandlerFunctions interface {
	InsertAlias(alias *model.Alias) error
	InsertAliasTx(tx *sql.Tx, alias *model.Alias) error
	SelectAliasesByEntity(entityID int64) ([]*model.Alias, error)
	SelectAliasesByDocument(documentRID uuid.UUID) ([]*model.Alias, error)
	DeleteAlias(id int64) error
}

// AliasesDBHandler handles alias-related database operations
type AliasesDBHandler struct {
	db *helper.Database
}

// NewAliasesDBHandler creates a new aliases database handler.
// It initializes the database connection and loads alias-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewAliasesDBHandler(db *helper.Database, force bool) (*AliasesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	aliasesDbHandler := &AliasesDBHandler{
		db: db,
	}

	err := loadSql.LoadAliasesSql(aliasesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load aliases sql", err)
	}

	err = aliasesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized AliasesDBHandler")

	return aliasesDbHandler, nil
}

// CreateTable creates the 'aliases' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *AliasesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_aliases();`)
	if err != nil {
		log.Panicf("error initializing aliases table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table aliases")

	return nil
}

// InsertAlias inserts a new alias for an entity. The alias must carry
// its host entity's persisted ID in EntityID. A re-inserted alias keeps
// its first citation.
func (h *AliasesDBHandler) InsertAlias(alias *model.Alias) error {
	if alias.EntityID == 0 {
		return helper.NewError("alias validation", fmt.Errorf("alias %v has no entity id", alias.Alias))
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_alias($1, $2, $3, $4, $5, $6)`,
		alias.EntityID,
		alias.Alias,
		alias.Citation.DocumentRID,
		alias.Citation.SentenceIndex,
		alias.Citation.Start,
		alias.Citation.End,
	)

	err := row.Scan(
		&alias.ID,
		&alias.EntityID,
		&alias.Alias,
		&alias.Citation.DocumentRID,
		&alias.Citation.SentenceIndex,
		&alias.Citation.Start,
		&alias.Citation.End,
		&alias.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// InsertAliasTx inserts an alias using the given transaction
func (h *AliasesDBHandler) InsertAliasTx(tx *sql.Tx, alias *model.Alias) error {
	if alias.EntityID == 0 {
		return helper.NewError("alias validation", fmt.Errorf("alias %v has no entity id", alias.Alias))
	}

	row := tx.QueryRow(
		`SELECT * FROM insert_alias($1, $2, $3, $4, $5, $6)`,
		alias.EntityID,
		alias.Alias,
		alias.Citation.DocumentRID,
		alias.Citation.SentenceIndex,
		alias.Citation.Start,
		alias.Citation.End,
	)

	err := row.Scan(
		&alias.ID,
		&alias.EntityID,
		&alias.Alias,
		&alias.Citation.DocumentRID,
		&alias.Citation.SentenceIndex,
		&alias.Citation.Start,
		&alias.Citation.End,
		&alias.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectAliasesByEntity retrieves all aliases of an entity
func (h *AliasesDBHandler) SelectAliasesByEntity(entityID int64) ([]*model.Alias, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_aliases_by_entity($1)`,
		entityID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var aliases []*model.Alias
	for rows.Next() {
		alias := &model.Alias{}
		err := rows.Scan(
			&alias.ID,
			&alias.EntityID,
			&alias.Alias,
			&alias.Citation.DocumentRID,
			&alias.Citation.SentenceIndex,
			&alias.Citation.Start,
			&alias.Citation.End,
			&alias.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		aliases = append(aliases, alias)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return aliases, nil
}

// SelectAliasesByDocument retrieves all aliases discovered in a document
func (h *AliasesDBHandler) SelectAliasesByDocument(documentRID uuid.UUID) ([]*model.Alias, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_aliases_by_document($1)`,
		documentRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var aliases []*model.Alias
	for rows.Next() {
		alias := &model.Alias{}
		err := rows.Scan(
			&alias.ID,
			&alias.EntityID,
			&alias.Alias,
			&alias.Citation.DocumentRID,
			&alias.Citation.SentenceIndex,
			&alias.Citation.Start,
			&alias.Citation.End,
			&alias.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		aliases = append(aliases, alias)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return aliases, nil
}

// DeleteAlias deletes an alias by ID
func (h *AliasesDBHandler) DeleteAlias(id int64) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_alias($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
