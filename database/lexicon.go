package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/radekw/apollo/helper"
	"github.com/radekw/apollo/model"
	"github.com/radekw/apollo/sql"
)

// LexiconDBHandlerFunctions defines the interface for Lexicon database operations.
type LexiconDBHandlerFunctions interface {
	InsertLexiconEntry(entry *model.LexiconEntry) error
	ImportLexiconEntries(entries []*model.LexiconEntry) (int, error)
	SelectAllLexiconEntries() ([]*model.LexiconEntry, error)
	SelectLexiconEntriesByType(entityType model.EntityType) ([]*model.LexiconEntry, error)
	DeleteLexiconEntry(id int64) error
}

// LexiconDBHandler handles lexicon-related database operations
type LexiconDBHandler struct {
	db *helper.Database
}

// NewLexiconDBHandler creates a new lexicon database handler.
// It initializes the database connection and loads lexicon-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewLexiconDBHandler(db *helper.Database, force bool) (*LexiconDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	lexiconDbHandler := &LexiconDBHandler{
		db: db,
	}

	err := sql.LoadLexiconSql(lexiconDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load lexicon sql", err)
	}

	err = lexiconDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized LexiconDBHandler")

	return lexiconDbHandler, nil
}

// CreateTable creates the 'lexicon' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *LexiconDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_lexicon();`)
	if err != nil {
		log.Panicf("error initializing lexicon table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table lexicon")

	return nil
}

// InsertLexiconEntry inserts a new lexicon entry or refreshes the
// canonical name of an existing one with the same surface and type
func (h *LexiconDBHandler) InsertLexiconEntry(entry *model.LexiconEntry) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_lexicon_entry($1, $2, $3)`,
		entry.Surface,
		entry.CanonicalName,
		entry.Type,
	)

	err := row.Scan(
		&entry.ID,
		&entry.Surface,
		&entry.CanonicalName,
		&entry.Type,
		&entry.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// ImportLexiconEntries inserts a batch of lexicon entries inside one
// transaction and returns the number of entries imported
func (h *LexiconDBHandler) ImportLexiconEntries(entries []*model.LexiconEntry) (int, error) {
	tx, err := h.db.Instance.Begin()
	if err != nil {
		return 0, helper.NewError("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	imported := 0
	for _, entry := range entries {
		row := tx.QueryRow(
			`SELECT * FROM insert_lexicon_entry($1, $2, $3)`,
			entry.Surface,
			entry.CanonicalName,
			entry.Type,
		)

		err := row.Scan(
			&entry.ID,
			&entry.Surface,
			&entry.CanonicalName,
			&entry.Type,
			&entry.CreatedAt,
		)
		if err != nil {
			return 0, helper.NewError("scan", err)
		}

		imported++
	}

	err = tx.Commit()
	if err != nil {
		return 0, helper.NewError("commit transaction", err)
	}

	return imported, nil
}

// SelectAllLexiconEntries retrieves all lexicon entries
func (h *LexiconDBHandler) SelectAllLexiconEntries() ([]*model.LexiconEntry, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_all_lexicon_entries()`,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var entries []*model.LexiconEntry
	for rows.Next() {
		entry := &model.LexiconEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.Surface,
			&entry.CanonicalName,
			&entry.Type,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entries = append(entries, entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entries, nil
}

// SelectLexiconEntriesByType retrieves lexicon entries of one type
func (h *LexiconDBHandler) SelectLexiconEntriesByType(entityType model.EntityType) ([]*model.LexiconEntry, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_lexicon_entries_by_type($1)`,
		entityType,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var entries []*model.LexiconEntry
	for rows.Next() {
		entry := &model.LexiconEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.Surface,
			&entry.CanonicalName,
			&entry.Type,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entries = append(entries, entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entries, nil
}

// DeleteLexiconEntry deletes a lexicon entry by ID
func (h *LexiconDBHandler) DeleteLexiconEntry(id int64) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_lexicon_entry($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
