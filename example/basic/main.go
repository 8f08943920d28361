package main

import (
	"context"
	"fmt"
	"log"

	apollo "github.com/radekw/apollo"
	"github.com/radekw/apollo/helper"
	"github.com/radekw/apollo/model"
)

const sampleContent = `Alzheimer's disease (AD) is a progressive neurodegenerative disorder.
Alzheimer's disease is characterized by amyloid beta.
Amyloid beta is found in the hippocampus.
Patients with AD frequently present with memory loss.`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
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

	// Load a small curated lexicon
	entries := []*model.LexiconEntry{
		{Surface: "alzheimer's disease", CanonicalName: "Alzheimer's Disease", Type: model.EntityTypeDisease},
		{Surface: "amyloid beta", CanonicalName: "amyloid beta", Type: model.EntityTypeProtein},
		{Surface: "hippocampus", CanonicalName: "hippocampus", Type: model.EntityTypeBrainRegion},
		{Surface: "memory loss", CanonicalName: "memory loss", Type: model.EntityTypeSymptom},
	}

	count, err := a.ImportLexicon(entries)
	if err != nil {
		log.Fatalf("Failed to import lexicon: %v", err)
	}
	fmt.Printf("Imported %d lexicon entries\n", count)

	// Set up lexicon-only extraction (no statistical model)
	config := model.DefaultExtractorConfig()
	config.UseRecognizer = false
	if err := a.UseDefaultExtractor(config); err != nil {
		log.Fatalf("Failed to set up extractor: %v", err)
	}

	// Create document with content
	doc := &model.Document{
		Title:   "Amyloid Beta in Alzheimer's Disease",
		Source:  "basic_example",
		Content: sampleContent,
	}

	// Extract and store everything in one call
	fmt.Println("Processing article...")
	batch, err := a.ProcessAndStoreArticle(doc)
	if err != nil {
		log.Fatalf("Failed to process article: %v", err)
	}
	fmt.Printf("Document stored with ID: %s\n", doc.RID)
	fmt.Printf("Extracted %d entities, %d aliases, %d relationships\n",
		len(batch.Entities), len(batch.Aliases), len(batch.Relationships))

	// Show the extracted entities with their citations
	fmt.Println("\nEntities:")
	for _, entity := range batch.Entities {
		fmt.Printf("  %s (%s), %d mentions, first seen in sentence %d\n",
			entity.CanonicalName, entity.Type, len(entity.Spans), entity.Citation.SentenceIndex)
	}

	// Show the detected aliases
	fmt.Println("\nAliases:")
	for _, alias := range batch.Aliases {
		fmt.Printf("  %s -> %s\n", alias.Alias, alias.CanonicalName)
	}

	fmt.Println("\nRelationships:")
	for _, relationship := range batch.Relationships {
		fmt.Printf("  %s -[%s]-> %s (confidence %.2f, sentence %d)\n",
			relationship.Subject, relationship.Predicate, relationship.Object,
			relationship.Confidence, relationship.Citation.SentenceIndex)
	}

	// Query the stored triples back out of the database in citation order
	stored, err := a.Relationships.SelectRelationshipsByDocument(doc.RID)
	if err != nil {
		log.Fatalf("Failed to select relationships: %v", err)
	}
	fmt.Printf("\n%d relationships stored for document %s\n", len(stored), doc.RID)

	fmt.Println("\nBasic example completed successfully!")
}
