package apollo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/radekw/apollo/core/extract"
	"github.com/radekw/apollo/helper"
	"github.com/radekw/apollo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEmbedder creates a simple deterministic embedder for testing
func testEmbedder() extract.EmbedFunc {
	return func(text string) ([]float32, error) {
		embedding := make([]float32, 384)
		if len(text) > 0 {
			embedding[int(text[0])%384] = 1.0
		}
		return embedding, nil
	}
}

// testLexicon is a small curated lexicon covering the entity types the
// extraction tests rely on.
func testLexicon() []*model.LexiconEntry {
	return []*model.LexiconEntry{
		{Surface: "alzheimer's disease", CanonicalName: "Alzheimer's Disease", Type: model.EntityTypeDisease},
		{Surface: "amyloid beta", CanonicalName: "amyloid beta", Type: model.EntityTypeProtein},
		{Surface: "hippocampus", CanonicalName: "hippocampus", Type: model.EntityTypeBrainRegion},
		{Surface: "memory loss", CanonicalName: "memory loss", Type: model.EntityTypeSymptom},
	}
}

func initApollo(t *testing.T) *Apollo {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")

	a, err := NewApollo(dbConfig)
	require.NoError(t, err, "failed to create apollo")
	require.NotNil(t, a, "expected apollo to be non-nil")

	t.Cleanup(func() {
		a.Close()
	})

	return a
}

// initApolloWithExtractor imports the test lexicon and attaches a
// lexicon-only extraction engine.
func initApolloWithExtractor(t *testing.T) *Apollo {
	a := initApollo(t)

	_, err := a.ImportLexicon(testLexicon())
	require.NoError(t, err, "failed to import lexicon")

	config := model.DefaultExtractorConfig()
	config.UseRecognizer = false
	err = a.UseDefaultExtractor(config)
	require.NoError(t, err, "failed to set up extractor")

	return a
}

func TestNewApollo(t *testing.T) {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err)

	t.Run("Valid call NewApollo", func(t *testing.T) {
		a, err := NewApollo(dbConfig)
		require.NoError(t, err, "Expected NewApollo to not return an error")
		require.NotNil(t, a, "Expected NewApollo to return a non-nil instance")
		assert.NotNil(t, a.DB, "Expected apollo to have a database instance")
		assert.NotNil(t, a.Documents, "Expected apollo to have documents handler")
		assert.NotNil(t, a.Entities, "Expected apollo to have entities handler")
		assert.NotNil(t, a.Aliases, "Expected apollo to have aliases handler")
		assert.NotNil(t, a.Relationships, "Expected apollo to have relationships handler")
		assert.NotNil(t, a.Lexicon, "Expected apollo to have lexicon handler")
		assert.Nil(t, a.Extractor, "Expected extractor to be nil initially")
		assert.Nil(t, a.Embedder, "Expected embedder to be nil initially")

		// Cleanup
		err = a.Close()
		assert.NoError(t, err, "Expected Close to not return an error")
	})

	t.Run("Apollo with nil database handles Close gracefully", func(t *testing.T) {
		a := &Apollo{}

		err := a.Close()
		assert.NoError(t, err, "Expected Close to handle nil DB gracefully")
	})
}

func TestImportLexiconAndBuildIndex(t *testing.T) {
	a := initApollo(t)

	imported, err := a.ImportLexicon(testLexicon())
	assert.NoError(t, err, "Expected ImportLexicon to not return an error")
	assert.Equal(t, 4, imported, "Expected all entries to be imported")

	index, err := a.BuildIndexFromDatabase()
	assert.NoError(t, err, "Expected BuildIndexFromDatabase to not return an error")
	assert.Equal(t, 4, index.Len(), "Expected index to hold all imported entries")

	// Re-import does not duplicate
	imported, err = a.ImportLexicon(testLexicon())
	assert.NoError(t, err)
	assert.Equal(t, 4, imported)

	index, err = a.BuildIndexFromDatabase()
	assert.NoError(t, err)
	assert.Equal(t, 4, index.Len(), "Expected index size to be unchanged after re-import")
}

func TestUseDefaultExtractor(t *testing.T) {
	a := initApollo(t)

	_, err := a.ImportLexicon(testLexicon())
	require.NoError(t, err)

	config := model.DefaultExtractorConfig()
	config.UseRecognizer = false

	err = a.UseDefaultExtractor(config)
	assert.NoError(t, err, "Expected UseDefaultExtractor to not return an error")
	assert.NotNil(t, a.Extractor, "Expected extractor to be set")
}

func TestExtractDocument(t *testing.T) {
	a := initApolloWithExtractor(t)

	t.Run("Extract entities, aliases and relationships", func(t *testing.T) {
		doc := &model.Document{
			Title: "Test Article",
			Content: "Alzheimer's disease (AD) is a progressive neurodegenerative disorder. " +
				"Alzheimer's disease is characterized by amyloid beta. " +
				"Amyloid beta is found in the hippocampus.",
		}

		batch, err := a.ExtractDocument(doc)
		require.NoError(t, err, "Expected ExtractDocument to not return an error")
		require.NotNil(t, batch)
		assert.NotEqual(t, uuid.Nil, batch.DocumentRID, "Expected an ephemeral RID for an unstored document")

		require.Len(t, batch.Entities, 3, "Expected disease, protein and brain region")
		assert.Equal(t, "Alzheimer's Disease", batch.Entities[0].CanonicalName)
		assert.Len(t, batch.Entities[0].Spans, 2, "Expected both disease mentions grouped")

		require.Len(t, batch.Aliases, 1)
		assert.Equal(t, "AD", batch.Aliases[0].Alias)
		assert.Equal(t, "Alzheimer's Disease", batch.Aliases[0].CanonicalName)

		require.Len(t, batch.Relationships, 2)
		assert.Equal(t, model.PredicateHasBiomarker, batch.Relationships[0].Predicate)
		assert.Equal(t, "Alzheimer's Disease", batch.Relationships[0].Subject)
		assert.Equal(t, "amyloid beta", batch.Relationships[0].Object)
		assert.Equal(t, model.PredicateFoundIn, batch.Relationships[1].Predicate)
		assert.Equal(t, "amyloid beta", batch.Relationships[1].Subject)
		assert.Equal(t, "hippocampus", batch.Relationships[1].Object)
		assert.InDelta(t, 0.9, batch.Relationships[0].Confidence, 0.0001, "Expected confidence 1.0 * 1.0 * trigger weight")
	})

	t.Run("Extraction is deterministic", func(t *testing.T) {
		doc := &model.Document{
			RID:     uuid.New(),
			Title:   "Test Article",
			Content: "Amyloid beta is found in the hippocampus. Memory loss accompanies Alzheimer's disease.",
		}

		first, err := a.ExtractDocument(doc)
		require.NoError(t, err)
		second, err := a.ExtractDocument(doc)
		require.NoError(t, err)

		assert.Equal(t, first.Entities, second.Entities, "Expected identical entities on repeat runs")
		assert.Equal(t, first.Aliases, second.Aliases, "Expected identical aliases on repeat runs")
		assert.Equal(t, first.Relationships, second.Relationships, "Expected identical relationships on repeat runs")
	})

	t.Run("Co-occurrence without trigger yields no relationship", func(t *testing.T) {
		doc := &model.Document{
			Title:   "Test Article",
			Content: "The study measured amyloid beta and examined the hippocampus separately.",
		}

		batch, err := a.ExtractDocument(doc)
		require.NoError(t, err)
		assert.Len(t, batch.Entities, 2)
		assert.Empty(t, batch.Relationships, "Expected silence without a trigger pattern")
	})

	t.Run("Error when extractor not set", func(t *testing.T) {
		aNoExtractor := initApollo(t)

		doc := &model.Document{Title: "Test", Content: "Some content."}
		_, err := aNoExtractor.ExtractDocument(doc)
		assert.Error(t, err, "Expected error when extractor not set")
		assert.Contains(t, err.Error(), "extractor not set", "Expected specific error message")
	})

	t.Run("Error when content is empty", func(t *testing.T) {
		doc := &model.Document{Title: "Test", Content: ""}
		_, err := a.ExtractDocument(doc)
		assert.Error(t, err, "Expected error when content is empty")
		assert.Contains(t, err.Error(), "content is empty", "Expected specific error message")
	})
}

func TestProcessAndStoreArticle(t *testing.T) {
	a := initApolloWithExtractor(t)

	t.Run("Process and store article successfully", func(t *testing.T) {
		doc := &model.Document{
			Title:   "Biomarkers in early dementia",
			Authors: "Mueller J",
			DOI:     "10.1000/test.2024.002",
			Source:  "test",
			Content: "Alzheimer's disease (AD) is a progressive neurodegenerative disorder. " +
				"Alzheimer's disease is characterized by amyloid beta. " +
				"Amyloid beta is found in the hippocampus.",
			Metadata: model.Metadata{"section": "abstract"},
		}

		batch, err := a.ProcessAndStoreArticle(doc)
		require.NoError(t, err, "Expected ProcessAndStoreArticle to not return an error")
		require.NotNil(t, batch)
		assert.NotEqual(t, uuid.Nil, doc.RID, "Expected document RID to be set")
		assert.Equal(t, "", doc.Content, "Expected content to be cleared after processing")
		assert.Equal(t, doc.RID, batch.DocumentRID, "Expected batch to cite the stored document")

		// Entities are persisted with accumulated mention counts
		entity, err := a.Entities.SelectEntityByName("Alzheimer's Disease", model.EntityTypeDisease)
		require.NoError(t, err)
		assert.Equal(t, 2, entity.MentionCount)
		assert.Equal(t, doc.RID, entity.Citation.DocumentRID)
		assert.Equal(t, 0, entity.Citation.SentenceIndex, "Expected the first mention as citation")

		// Aliases are persisted against the entity
		aliases, err := a.Aliases.SelectAliasesByDocument(doc.RID)
		require.NoError(t, err)
		require.Len(t, aliases, 1)
		assert.Equal(t, "AD", aliases[0].Alias)
		assert.Equal(t, entity.ID, aliases[0].EntityID)

		// Relationships are persisted with resolved endpoints
		relationships, err := a.Relationships.SelectRelationshipsByDocument(doc.RID)
		require.NoError(t, err)
		require.Len(t, relationships, 2)
		assert.Equal(t, entity.ID, relationships[0].SubjectID)
		assert.Equal(t, string(model.PredicateHasBiomarker), string(relationships[0].Predicate))

		// Cleanup
		a.Documents.DeleteDocument(doc.RID)
		for _, e := range batch.Entities {
			a.Entities.DeleteEntity(e.ID)
		}
	})

	t.Run("Stored entities get embeddings when embedder is set", func(t *testing.T) {
		a.Embedder = testEmbedder()
		defer func() { a.Embedder = nil }()

		doc := &model.Document{
			Title:   "Embedded entities",
			Source:  "test",
			Content: "Amyloid beta is found in the hippocampus.",
		}

		batch, err := a.ProcessAndStoreArticle(doc)
		require.NoError(t, err)

		results, err := a.SearchEntitiesBySimilarity("amyloid", 10)
		assert.NoError(t, err)
		require.NotEmpty(t, results, "Expected embedded entities to be searchable")
		assert.Equal(t, "amyloid beta", results[0].Entity.CanonicalName)
		assert.InDelta(t, 1.0, results[0].Similarity, 0.001)

		// Cleanup
		a.Documents.DeleteDocument(doc.RID)
		for _, e := range batch.Entities {
			a.Entities.DeleteEntity(e.ID)
		}
	})

	t.Run("Error when extractor not set", func(t *testing.T) {
		aNoExtractor := initApollo(t)

		doc := &model.Document{Title: "Test", Content: "Some content."}
		_, err := aNoExtractor.ProcessAndStoreArticle(doc)
		assert.Error(t, err, "Expected error when extractor not set")
		assert.Contains(t, err.Error(), "extractor not set", "Expected specific error message")
	})

	t.Run("Error when content is empty", func(t *testing.T) {
		doc := &model.Document{Title: "Test", Content: ""}
		_, err := a.ProcessAndStoreArticle(doc)
		assert.Error(t, err, "Expected error when content is empty")
		assert.Contains(t, err.Error(), "content is empty", "Expected specific error message")
	})
}

func TestSearchEntitiesBySimilarityRequiresEmbedder(t *testing.T) {
	a := initApollo(t)

	_, err := a.SearchEntitiesBySimilarity("query", 10)
	assert.Error(t, err, "Expected error without an embedder")
	assert.Contains(t, err.Error(), "embedder not set", "Expected specific error message")
}

func TestEntityNeighborhood(t *testing.T) {
	a := initApolloWithExtractor(t)

	content := "Alzheimer's disease is characterized by amyloid beta. Amyloid beta is found in the hippocampus."
	doc := &model.Document{Title: "Neighborhood Article", Source: "test", Content: content}

	_, err := a.ProcessAndStoreArticle(doc)
	require.NoError(t, err)

	disease, err := a.Entities.SelectEntityByName("Alzheimer's Disease", model.EntityTypeDisease)
	require.NoError(t, err)

	t.Run("Walks the stored graph across predicates", func(t *testing.T) {
		results, err := a.EntityNeighborhood(context.Background(), disease.ID, 2, nil)

		require.NoError(t, err)
		require.Len(t, results, 3, "Expected disease, protein and region")
		assert.Equal(t, "Alzheimer's Disease", results[0].Entity.CanonicalName)
		assert.Equal(t, 0, results[0].Distance)
		assert.Equal(t, "amyloid beta", results[1].Entity.CanonicalName)
		assert.Equal(t, 1, results[1].Distance)
		assert.Equal(t, "hippocampus", results[2].Entity.CanonicalName)
		assert.Equal(t, 2, results[2].Distance)
		assert.Len(t, results[2].Path, 3)
	})

	t.Run("Predicate filter cuts the walk short", func(t *testing.T) {
		results, err := a.EntityNeighborhood(context.Background(), disease.ID, 2, []model.Predicate{model.PredicateHasBiomarker})

		require.NoError(t, err)
		require.Len(t, results, 2, "Expected the FOUND_IN hop to be filtered out")
	})

	t.Run("Unknown entity", func(t *testing.T) {
		_, err := a.EntityNeighborhood(context.Background(), 999999, 1, nil)
		assert.Error(t, err, "Expected error for a missing source entity")
	})
}

func TestStoreBatchRollsBackOnFailure(t *testing.T) {
	a := initApollo(t)

	doc := &model.Document{Title: "Rollback Article", Source: "test"}
	err := a.Documents.InsertDocument(doc)
	require.NoError(t, err)

	span := model.Span{Start: 0, End: 26}
	batch := &model.Batch{
		DocumentRID: doc.RID,
		Entities: []*model.ResolvedEntity{
			{
				CanonicalName: "posterior cingulate cortex",
				Type:          model.EntityTypeBrainRegion,
				Spans:         []model.Span{span},
				Confidence:    1.0,
				Citation:      model.Citation{DocumentRID: doc.RID, SentenceIndex: 0, Span: span},
			},
		},
		Relationships: []*model.RelationshipTriple{
			{
				Subject:     "unresolved subject",
				SubjectType: model.EntityTypeProtein,
				Predicate:   model.PredicateFoundIn,
				Object:      "posterior cingulate cortex",
				ObjectType:  model.EntityTypeBrainRegion,
				Confidence:  0.9,
				Evidence:    []model.Span{span},
				Citation:    model.Citation{DocumentRID: doc.RID, SentenceIndex: 0, Span: span},
			},
		},
	}

	err = a.storeBatch(batch)
	require.Error(t, err, "Expected storeBatch to fail on the unresolved relationship subject")

	_, err = a.Entities.SelectEntityByName("posterior cingulate cortex", model.EntityTypeBrainRegion)
	assert.Error(t, err, "Expected the entity insert to be rolled back with the failed batch")
}
