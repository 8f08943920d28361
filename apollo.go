package apollo

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/radekw/apollo/core/extract"
	"github.com/radekw/apollo/core/graph"
	"github.com/radekw/apollo/core/lexicon"
	"github.com/radekw/apollo/database"
	"github.com/radekw/apollo/helper"
	"github.com/radekw/apollo/model"
	loadSql "github.com/radekw/apollo/sql"
)

// Apollo provides a unified interface to the extraction engine and all
// database handlers
type Apollo struct {
	DB            *helper.Database
	Documents     *database.DocumentsDBHandler
	Entities      *database.EntitiesDBHandler
	Aliases       *database.AliasesDBHandler
	Relationships *database.RelationshipsDBHandler
	Lexicon       *database.LexiconDBHandler
	Extractor     *extract.Extractor // Optional extraction engine
	Embedder      extract.EmbedFunc  // Optional name embedder for similarity search
	// Logging
	log *slog.Logger
}

// NewApollo creates a new Apollo instance with all handlers initialized
func NewApollo(config *helper.DatabaseConfiguration) (*Apollo, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("apollo", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (documents first, then
	// entities, then the tables referencing entities)
	// force=false to not reload if functions already exist
	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	entities, err := database.NewEntitiesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create entities handler", err)
	}

	aliases, err := database.NewAliasesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create aliases handler", err)
	}

	relationships, err := database.NewRelationshipsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create relationships handler", err)
	}

	lexiconHandler, err := database.NewLexiconDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create lexicon handler", err)
	}

	return &Apollo{
		DB:            db,
		Documents:     documents,
		Entities:      entities,
		Aliases:       aliases,
		Relationships: relationships,
		Lexicon:       lexiconHandler,
		log:           logger,
	}, nil
}

// Close closes the database connection
func (a *Apollo) Close() error {
	if a.DB != nil && a.DB.Instance != nil {
		return a.DB.Instance.Close()
	}
	return nil
}

// SetExtractor sets the extraction engine for document processing
func (a *Apollo) SetExtractor(extractor *extract.Extractor) {
	a.Extractor = extractor
}

// ImportLexicon imports curated lexicon entries into the database and
// returns the number of entries imported. Re-imported surfaces refresh
// their canonical name instead of duplicating.
func (a *Apollo) ImportLexicon(entries []*model.LexiconEntry) (int, error) {
	imported, err := a.Lexicon.ImportLexiconEntries(entries)
	if err != nil {
		return 0, helper.NewError("import lexicon", err)
	}

	a.log.Info("Imported lexicon entries", slog.Int("count", imported))

	return imported, nil
}

// BuildIndexFromDatabase loads all stored lexicon entries and builds
// the in-memory matching index from them
func (a *Apollo) BuildIndexFromDatabase() (*lexicon.Index, error) {
	stored, err := a.Lexicon.SelectAllLexiconEntries()
	if err != nil {
		return nil, helper.NewError("load lexicon", err)
	}

	entries := make([]model.LexiconEntry, 0, len(stored))
	for _, entry := range stored {
		entries = append(entries, *entry)
	}

	index := lexicon.NewIndex(entries)

	a.log.Info("Built lexicon index", slog.Int("entries", index.Len()))

	return index, nil
}

// UseDefaultExtractor sets up the extraction engine with the lexicon
// index built from the database. With config.UseRecognizer true the
// statistical token classification model is downloaded and attached;
// when its setup fails, extraction degrades to lexicon-only instead of
// failing.
func (a *Apollo) UseDefaultExtractor(config model.ExtractorConfig) error {
	index, err := a.BuildIndexFromDatabase()
	if err != nil {
		return err
	}

	var recognizer extract.Recognizer
	if config.UseRecognizer {
		hugotRecognizer, err := extract.NewHugotRecognizer(config.Device)
		if err != nil {
			a.log.Warn("Statistical recognizer setup failed, continuing lexicon-only", slog.Any("error", err))
		} else {
			recognizer = hugotRecognizer
		}
	}

	a.Extractor = extract.NewExtractor(index, recognizer, config, a.log)
	return nil
}

// UseNameEmbedder attaches the sentence transformer name embedder, so
// stored entities get an embedding for similarity search
func (a *Apollo) UseNameEmbedder() error {
	embedder, err := extract.NewNameEmbedder()
	if err != nil {
		return helper.NewError("create name embedder", err)
	}

	a.Embedder = embedder
	return nil
}

// ExtractDocument runs the extraction engine over a document's content
// without touching the database. The returned batch cites the
// document's RID; an ephemeral RID is generated when the document has
// none yet.
func (a *Apollo) ExtractDocument(doc *model.Document) (*model.Batch, error) {
	if a.Extractor == nil {
		return nil, helper.NewError("extract document", fmt.Errorf("extractor not set, use UseDefaultExtractor() first"))
	}

	if doc.Content == "" {
		return nil, helper.NewError("extract document", fmt.Errorf("document content is empty"))
	}

	documentRID := doc.RID
	if documentRID == uuid.Nil {
		documentRID = uuid.New()
	}

	sentences := extract.SplitSentences(doc.Content)

	return a.Extractor.Process(documentRID, sentences)
}

// ProcessAndStoreArticle processes a document by:
// 1. Inserting the document metadata (without content)
// 2. Extracting entities, aliases and relationships from the content
// 3. Storing the extracted batch with citations back to the document
// The document's Content field is used for extraction but not stored in
// the database. Returns the stored batch and any error encountered.
func (a *Apollo) ProcessAndStoreArticle(doc *model.Document) (*model.Batch, error) {
	if a.Extractor == nil {
		return nil, helper.NewError("process article", fmt.Errorf("extractor not set, use UseDefaultExtractor() first"))
	}

	if doc.Content == "" {
		return nil, helper.NewError("process article", fmt.Errorf("document content is empty"))
	}

	// Store content temporarily and clear it before DB insert
	content := doc.Content
	doc.Content = ""

	// Insert document metadata
	if err := a.Documents.InsertDocument(doc); err != nil {
		return nil, helper.NewError("insert document", err)
	}

	a.log.Info("Inserted document", slog.String("document_rid", doc.RID.String()), slog.String("title", doc.Title))

	sentences := extract.SplitSentences(content)

	batch, err := a.Extractor.Process(doc.RID, sentences)
	if err != nil {
		return nil, helper.NewError("extract batch", err)
	}

	a.log.Info("Extracted batch",
		slog.String("document_rid", doc.RID.String()),
		slog.Int("entities", len(batch.Entities)),
		slog.Int("aliases", len(batch.Aliases)),
		slog.Int("relationships", len(batch.Relationships)),
	)

	if err := a.storeBatch(batch); err != nil {
		return nil, err
	}

	return batch, nil
}

// storeBatch persists an extracted batch inside one transaction:
// entities first, then aliases and relationships referencing them by
// the persisted IDs. A mid-batch failure rolls back the whole batch.
func (a *Apollo) storeBatch(batch *model.Batch) error {
	// entityKey matches the grouping identity of the extraction engine
	entityIDs := map[string]int64{}
	entityKey := func(name string, entityType model.EntityType) string {
		return name + "\x00" + string(entityType)
	}

	var embeddings [][]float32
	if a.Embedder != nil {
		var err error
		embeddings, err = extract.EmbedEntities(a.Embedder, batch.Entities)
		if err != nil {
			return helper.NewError("embed entity names", err)
		}
	}

	tx, err := a.DB.Instance.Begin()
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, entity := range batch.Entities {
		var embedding []float32
		if embeddings != nil {
			embedding = embeddings[i]
		}

		if err := a.Entities.InsertEntityTx(tx, entity, embedding); err != nil {
			return helper.NewError(fmt.Sprintf("insert entity %q", entity.CanonicalName), err)
		}
		entityIDs[entityKey(entity.CanonicalName, entity.Type)] = entity.ID
	}

	for _, alias := range batch.Aliases {
		id, ok := entityIDs[entityKey(alias.CanonicalName, alias.EntityType)]
		if !ok {
			return helper.NewError("store batch", fmt.Errorf("alias %q references unknown entity %q", alias.Alias, alias.CanonicalName))
		}
		alias.EntityID = id

		if err := a.Aliases.InsertAliasTx(tx, alias); err != nil {
			return helper.NewError(fmt.Sprintf("insert alias %q", alias.Alias), err)
		}
	}

	for _, relationship := range batch.Relationships {
		subjectID, ok := entityIDs[entityKey(relationship.Subject, relationship.SubjectType)]
		if !ok {
			return helper.NewError("store batch", fmt.Errorf("relationship subject %q is unknown", relationship.Subject))
		}
		objectID, ok := entityIDs[entityKey(relationship.Object, relationship.ObjectType)]
		if !ok {
			return helper.NewError("store batch", fmt.Errorf("relationship object %q is unknown", relationship.Object))
		}
		relationship.SubjectID = subjectID
		relationship.ObjectID = objectID

		if err := a.Relationships.InsertRelationshipTx(tx, relationship); err != nil {
			return helper.NewError(fmt.Sprintf("insert relationship %s", relationship.Predicate), err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit transaction", err)
	}

	return nil
}

// SearchEntitiesBySimilarity embeds the query with the attached name
// embedder and retrieves the closest stored entities
func (a *Apollo) SearchEntitiesBySimilarity(query string, limit int) ([]*database.EntitySimilarity, error) {
	if a.Embedder == nil {
		return nil, helper.NewError("similarity search", fmt.Errorf("embedder not set, use UseNameEmbedder() first"))
	}

	embedding, err := a.Embedder(query)
	if err != nil {
		return nil, helper.NewError("generate embedding", err)
	}

	return a.Entities.SelectEntitiesBySimilarity(embedding, limit)
}

// knowledgeGraph adapts the entity and relationship handlers to the
// graph.GraphDB interface.
type knowledgeGraph struct {
	entities      *database.EntitiesDBHandler
	relationships *database.RelationshipsDBHandler
}

func (g *knowledgeGraph) GetEntity(ctx context.Context, id int64) (*model.ResolvedEntity, error) {
	return g.entities.SelectEntity(id)
}

func (g *knowledgeGraph) GetRelationships(ctx context.Context, entityID int64, predicates []model.Predicate) ([]*model.RelationshipTriple, error) {
	relationships, err := g.relationships.SelectRelationshipsByEntity(entityID)
	if err != nil {
		return nil, err
	}
	if len(predicates) == 0 {
		return relationships, nil
	}

	var filtered []*model.RelationshipTriple
	for _, relationship := range relationships {
		for _, predicate := range predicates {
			if relationship.Predicate == predicate {
				filtered = append(filtered, relationship)
				break
			}
		}
	}
	return filtered, nil
}

// EntityNeighborhood walks the stored knowledge graph breadth-first
// from an entity, following relationships in both directions, and
// returns every entity within maxHops with its distance and path.
// predicates restricts the traversal to the given relationship types;
// nil follows all of them.
func (a *Apollo) EntityNeighborhood(ctx context.Context, entityID int64, maxHops int, predicates []model.Predicate) ([]*graph.TraversalResult, error) {
	db := &knowledgeGraph{entities: a.Entities, relationships: a.Relationships}
	return graph.BFS(ctx, db, entityID, maxHops, predicates, true)
}
