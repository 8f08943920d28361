package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/radekw/apollo/helper"
	"github.com/radekw/apollo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// insertTestEntity creates an entity for aliases and relationships to
// reference.
func insertTestEntity(t *testing.T, database *helper.Database, name string, entityType model.EntityType, documentRID uuid.UUID) *model.ResolvedEntity {
	t.Helper()

	entitiesDbHandler, err := NewEntitiesDBHandler(database, false)
	require.NoError(t, err)

	entity := &model.ResolvedEntity{
		CanonicalName: name,
		Type:          entityType,
		Spans:         []model.Span{{Start: 0, End: len(name)}},
		Confidence:    1.0,
		Citation: model.Citation{
			DocumentRID:   documentRID,
			SentenceIndex: 0,
			Span:          model.Span{Start: 0, End: len(name)},
		},
	}
	err = entitiesDbHandler.InsertEntity(entity, nil)
	require.NoError(t, err)

	return entity
}

func TestAliasesNewAliasesDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewAliasesDBHandler", func(t *testing.T) {
		// Aliases reference entities, which reference documents
		_, err := NewDocumentsDBHandler(database, true)
		require.NoError(t, err)
		_, err = NewEntitiesDBHandler(database, true)
		require.NoError(t, err)

		aliasesDbHandler, err := NewAliasesDBHandler(database, true)
		assert.NoError(t, err, "Expected NewAliasesDBHandler to not return an error")
		require.NotNil(t, aliasesDbHandler, "Expected NewAliasesDBHandler to return a non-nil instance")
		require.NotNil(t, aliasesDbHandler.db, "Expected NewAliasesDBHandler to have a non-nil database instance")
	})

	t.Run("Invalid call NewAliasesDBHandler with nil database", func(t *testing.T) {
		_, err := NewAliasesDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating AliasesDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestAliasesInsert(t *testing.T) {
	database := initDB(t)

	_, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err)
	_, err = NewEntitiesDBHandler(database, true)
	require.NoError(t, err)
	aliasesDbHandler, err := NewAliasesDBHandler(database, true)
	require.NoError(t, err)

	documentRID := insertTestDocument(t, database)
	entity := insertTestEntity(t, database, "Alzheimer's Disease", model.EntityTypeDisease, documentRID)

	t.Run("Insert alias", func(t *testing.T) {
		alias := &model.Alias{
			EntityID:      entity.ID,
			CanonicalName: entity.CanonicalName,
			EntityType:    entity.Type,
			Alias:         "AD",
			Citation: model.Citation{
				DocumentRID:   documentRID,
				SentenceIndex: 0,
				Span:          model.Span{Start: 21, End: 23},
			},
		}

		err := aliasesDbHandler.InsertAlias(alias)
		assert.NoError(t, err, "Expected InsertAlias to not return an error")
		assert.NotZero(t, alias.ID, "Expected inserted alias to have an ID")

		// Cleanup
		aliasesDbHandler.DeleteAlias(alias.ID)
	})

	t.Run("Insert alias twice keeps first citation", func(t *testing.T) {
		first := &model.Alias{
			EntityID: entity.ID,
			Alias:    "AD",
			Citation: model.Citation{DocumentRID: documentRID, SentenceIndex: 0, Span: model.Span{Start: 21, End: 23}},
		}
		err := aliasesDbHandler.InsertAlias(first)
		require.NoError(t, err)

		second := &model.Alias{
			EntityID: entity.ID,
			Alias:    "AD",
			Citation: model.Citation{DocumentRID: documentRID, SentenceIndex: 3, Span: model.Span{Start: 100, End: 102}},
		}
		err = aliasesDbHandler.InsertAlias(second)
		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID, "Expected same alias row")
		assert.Equal(t, 0, second.Citation.SentenceIndex, "Expected the first citation to be kept")

		// Cleanup
		aliasesDbHandler.DeleteAlias(first.ID)
	})

	t.Run("Insert alias without entity ID fails", func(t *testing.T) {
		alias := &model.Alias{
			Alias:    "AD",
			Citation: model.Citation{DocumentRID: documentRID, SentenceIndex: 0, Span: model.Span{Start: 21, End: 23}},
		}
		err := aliasesDbHandler.InsertAlias(alias)
		assert.Error(t, err, "Expected error for alias without entity id")
		assert.Contains(t, err.Error(), "no entity id")
	})
}

func TestAliasesGet(t *testing.T) {
	database := initDB(t)

	_, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err)
	_, err = NewEntitiesDBHandler(database, true)
	require.NoError(t, err)
	aliasesDbHandler, err := NewAliasesDBHandler(database, true)
	require.NoError(t, err)

	documentRID := insertTestDocument(t, database)
	entity := insertTestEntity(t, database, "mild cognitive impairment", model.EntityTypeSyndrome, documentRID)

	aliases := []string{"MCI", "aMCI"}
	for i, a := range aliases {
		alias := &model.Alias{
			EntityID: entity.ID,
			Alias:    a,
			Citation: model.Citation{DocumentRID: documentRID, SentenceIndex: i, Span: model.Span{Start: i * 10, End: i*10 + len(a)}},
		}
		err = aliasesDbHandler.InsertAlias(alias)
		require.NoError(t, err)
	}

	t.Run("Select aliases by entity", func(t *testing.T) {
		retrieved, err := aliasesDbHandler.SelectAliasesByEntity(entity.ID)
		assert.NoError(t, err)
		require.Len(t, retrieved, 2)
		assert.Equal(t, "MCI", retrieved[0].Alias, "Expected aliases in alphabetical order")
		assert.Equal(t, "aMCI", retrieved[1].Alias)
	})

	t.Run("Select aliases by document", func(t *testing.T) {
		retrieved, err := aliasesDbHandler.SelectAliasesByDocument(documentRID)
		assert.NoError(t, err)
		require.Len(t, retrieved, 2)
		assert.Equal(t, 0, retrieved[0].Citation.SentenceIndex, "Expected aliases in citation order")
	})

	t.Run("Select aliases of unknown entity is empty", func(t *testing.T) {
		retrieved, err := aliasesDbHandler.SelectAliasesByEntity(999999)
		assert.NoError(t, err)
		assert.Empty(t, retrieved)
	})
}

func TestAliasesDeleteCascade(t *testing.T) {
	database := initDB(t)

	_, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err)
	entitiesDbHandler, err := NewEntitiesDBHandler(database, true)
	require.NoError(t, err)
	aliasesDbHandler, err := NewAliasesDBHandler(database, true)
	require.NoError(t, err)

	documentRID := insertTestDocument(t, database)
	entity := insertTestEntity(t, database, "frontotemporal dementia", model.EntityTypeDisease, documentRID)

	alias := &model.Alias{
		EntityID: entity.ID,
		Alias:    "FTD",
		Citation: model.Citation{DocumentRID: documentRID, SentenceIndex: 0, Span: model.Span{Start: 25, End: 28}},
	}
	err = aliasesDbHandler.InsertAlias(alias)
	require.NoError(t, err)

	// Deleting the entity removes its aliases
	err = entitiesDbHandler.DeleteEntity(entity.ID)
	require.NoError(t, err)

	retrieved, err := aliasesDbHandler.SelectAliasesByEntity(entity.ID)
	assert.NoError(t, err)
	assert.Empty(t, retrieved, "Expected aliases to cascade on entity deletion")
}
