package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apollo "github.com/radekw/apollo"
	"github.com/radekw/apollo/model"
)

// doiPattern matches a DOI anywhere in the article head.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[-._;()/:a-zA-Z0-9]+`)

var processCmd = &cobra.Command{
	Use:   "process [files or directories...]",
	Short: "Extract and store knowledge from cleaned article text",
	Long: `Process reads cleaned .txt article files, splits them into sentences,
extracts entities, aliases and relationships and stores them in
postgres with citations back to each file.

Directories are walked for .txt files. Title and DOI are taken from the
head of each file when present.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noModel, _ := cmd.Flags().GetBool("no-model")
		cpu, _ := cmd.Flags().GetBool("cpu")
		embed, _ := cmd.Flags().GetBool("embed")

		files, err := collectTextFiles(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no .txt files found in %v", args)
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

		extractorConfig := model.DefaultExtractorConfig()
		extractorConfig.UseRecognizer = !noModel
		if cpu {
			extractorConfig.Device = model.DeviceCPU
		} else if viper.GetString("device") == "gpu" {
			extractorConfig.Device = model.DeviceGPU
		}

		if err := a.UseDefaultExtractor(extractorConfig); err != nil {
			return err
		}

		if embed {
			if err := a.UseNameEmbedder(); err != nil {
				return err
			}
		}

		for _, file := range files {
			doc, err := model.NewDocumentFromFile(file, model.Metadata{})
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}

			title, doi := parseArticleHead(doc.Content)
			if title != "" {
				doc.Title = title
			}
			doc.DOI = doi

			batch, err := a.ProcessAndStoreArticle(doc)
			if err != nil {
				return fmt.Errorf("processing %s: %w", file, err)
			}

			fmt.Fprintf(os.Stdout, "%s: %d entities, %d aliases, %d relationships (document %s)\n",
				filepath.Base(file), len(batch.Entities), len(batch.Aliases), len(batch.Relationships), doc.RID)
		}

		return nil
	},
}

func init() {
	processCmd.Flags().Bool("no-model", false, "skip the statistical recognizer, extract lexicon-only")
	processCmd.Flags().Bool("cpu", false, "force CPU inference")
	processCmd.Flags().Bool("embed", false, "embed canonical entity names for similarity search")

	rootCmd.AddCommand(processCmd)
}

// collectTextFiles expands the arguments into a list of .txt files,
// walking directories.
func collectTextFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, entry os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.IsDir() && strings.EqualFold(filepath.Ext(path), ".txt") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// parseArticleHead pulls a title and DOI out of the first lines of a
// cleaned article. The first non-empty line is the title; the DOI is
// matched anywhere in the head.
func parseArticleHead(content string) (string, string) {
	head := content
	if len(head) > 2000 {
		head = head[:2000]
	}

	var title string
	for _, line := range strings.Split(head, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			title = line
			break
		}
	}

	doi := doiPattern.FindString(head)

	return title, doi
}
