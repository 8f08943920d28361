package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apollo "github.com/radekw/apollo"
	"github.com/radekw/apollo/model"
)

var lexiconCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "Manage the curated entity lexicon",
}

var lexiconImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a curated entity list into the lexicon",
	Long: `Import reads a curated entity list and inserts it into the lexicon.
Each line holds a surface form, optionally followed by a tab and the
canonical name it resolves to. Lines without a canonical name resolve
to themselves. Empty lines and lines starting with # are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeLabel, _ := cmd.Flags().GetString("type")
		if typeLabel == "" {
			return fmt.Errorf("--type is required")
		}

		entityType := model.EntityTypeFromLabel(typeLabel)
		if entityType == model.EntityTypeOther && !strings.EqualFold(typeLabel, "other") {
			return fmt.Errorf("unknown entity type %s", typeLabel)
		}

		entries, err := readLexiconFile(args[0], entityType)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("no entries found in %s", args[0])
		}

		dbConfig, err := databaseConfiguration()
		if err != nil {
			return err
		}

		a, err := apollo.NewApollo(dbConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.ImportLexicon(entries)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "imported %d %s entries from %s\n", count, entityType, args[0])
		return nil
	},
}

var lexiconListCmd = &cobra.Command{
	Use:   "list",
	Short: "List lexicon entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		typeLabel, _ := cmd.Flags().GetString("type")

		dbConfig, err := databaseConfiguration()
		if err != nil {
			return err
		}

		a, err := apollo.NewApollo(dbConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		var entries []*model.LexiconEntry
		if typeLabel == "" {
			entries, err = a.Lexicon.SelectAllLexiconEntries()
		} else {
			entries, err = a.Lexicon.SelectLexiconEntriesByType(model.EntityTypeFromLabel(typeLabel))
		}
		if err != nil {
			return err
		}

		for _, entry := range entries {
			fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", entry.Surface, entry.CanonicalName, entry.Type)
		}
		return nil
	},
}

func init() {
	lexiconImportCmd.Flags().String("type", "", "entity type of the list (disease, symptom, protein, brain_region, biomarker, syndrome, acronym)")
	lexiconListCmd.Flags().String("type", "", "only list entries of this entity type")

	lexiconCmd.AddCommand(lexiconImportCmd)
	lexiconCmd.AddCommand(lexiconListCmd)
	rootCmd.AddCommand(lexiconCmd)
}

// readLexiconFile parses a curated list file into lexicon entries.
func readLexiconFile(path string, entityType model.EntityType) ([]*model.LexiconEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []*model.LexiconEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		surface, canonical, found := strings.Cut(line, "\t")
		surface = strings.TrimSpace(surface)
		canonical = strings.TrimSpace(canonical)
		if !found || canonical == "" {
			canonical = surface
		}

		entries = append(entries, &model.LexiconEntry{
			Surface:       surface,
			CanonicalName: canonical,
			Type:          entityType,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
