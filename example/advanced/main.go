package main

import (
	"context"
	"fmt"
	"log"

	apollo "github.com/radekw/apollo"
	"github.com/radekw/apollo/helper"
	"github.com/radekw/apollo/model"
)

const sampleContent1 = `Alzheimer's disease (AD) is the most common cause of dementia.
Alzheimer's disease is characterized by amyloid beta and tau.
Tau is found in the hippocampus of affected patients.
Patients with AD frequently present with memory loss.`

const sampleContent2 = `Frontotemporal dementia differs from Alzheimer's disease in onset and course.
Alzheimer's disease is characterized by amyloid beta.
Memory loss appears later in frontotemporal dementia than in Alzheimer's disease.`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	a, err := apollo.NewApollo(dbConfig)
	if err != nil {
		log.Fatalf("Failed to create apollo: %v", err)
	}
	defer a.Close()

	// Load the curated lexicon
	entries := []*model.LexiconEntry{
		{Surface: "alzheimer's disease", CanonicalName: "Alzheimer's Disease", Type: model.EntityTypeDisease},
		{Surface: "frontotemporal dementia", CanonicalName: "Frontotemporal Dementia", Type: model.EntityTypeDisease},
		{Surface: "amyloid beta", CanonicalName: "amyloid beta", Type: model.EntityTypeProtein},
		{Surface: "tau", CanonicalName: "tau", Type: model.EntityTypeProtein},
		{Surface: "hippocampus", CanonicalName: "hippocampus", Type: model.EntityTypeBrainRegion},
		{Surface: "memory loss", CanonicalName: "memory loss", Type: model.EntityTypeSymptom},
	}

	if _, err := a.ImportLexicon(entries); err != nil {
		log.Fatalf("Failed to import lexicon: %v", err)
	}

	// Set up the full extraction engine (lexicon + statistical model)
	// and the canonical name embedder for similarity search
	config := model.DefaultExtractorConfig()
	if err := a.UseDefaultExtractor(config); err != nil {
		log.Fatalf("Failed to set up extractor: %v", err)
	}
	if err := a.UseNameEmbedder(); err != nil {
		log.Fatalf("Failed to set up embedder: %v", err)
	}

	// Process multiple articles into the same store
	doc1 := &model.Document{
		Title:   "Biomarkers of Alzheimer's Disease",
		Source:  "advanced_example",
		DOI:     "10.1000/apollo.example.1",
		Content: sampleContent1,
	}

	doc2 := &model.Document{
		Title:   "Differentiating Frontotemporal Dementia",
		Source:  "advanced_example",
		DOI:     "10.1000/apollo.example.2",
		Content: sampleContent2,
	}

	for _, doc := range []*model.Document{doc1, doc2} {
		batch, err := a.ProcessAndStoreArticle(doc)
		if err != nil {
			log.Fatalf("Failed to process article: %v", err)
		}
		fmt.Printf("Processed %q: %d entities, %d aliases, %d relationships\n",
			doc.Title, len(batch.Entities), len(batch.Aliases), len(batch.Relationships))
	}

	// Mention counts accumulate across documents, the first citation wins
	entity, err := a.Entities.SelectEntityByName("Alzheimer's Disease", model.EntityTypeDisease)
	if err != nil {
		log.Fatalf("Failed to select entity: %v", err)
	}
	fmt.Printf("\nAlzheimer's Disease: %d mentions across documents, first cited in sentence %d of document %s\n",
		entity.MentionCount, entity.Citation.SentenceIndex, entity.Citation.DocumentRID)

	// Everything known about the entity, highest confidence first
	relationships, err := a.Relationships.SelectRelationshipsByEntity(entity.ID)
	if err != nil {
		log.Fatalf("Failed to select relationships: %v", err)
	}
	fmt.Printf("Alzheimer's Disease participates in %d relationships\n", len(relationships))

	// Similarity search over embedded canonical names
	results, err := a.SearchEntitiesBySimilarity("amyloid", 3)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	fmt.Println("\nEntities similar to \"amyloid\":")
	for _, result := range results {
		fmt.Printf("  %s (%s), similarity %.4f\n", result.Entity.CanonicalName, result.Entity.Type, result.Similarity)
	}

	fmt.Println("\nAdvanced example completed successfully!")
}
