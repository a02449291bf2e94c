package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canhta/CareCircle/pkg/carecircle"
	"github.com/canhta/CareCircle/pkg/carecircle/config"
	"github.com/canhta/CareCircle/pkg/carecircle/internalerr"
	"github.com/canhta/CareCircle/pkg/carecircle/store"
	"github.com/canhta/CareCircle/pkg/carecircle/store/sqlite"
)

// SearchResult is one row of search output.
type SearchResult struct {
	ContentID string   `json:"content_id"`
	Title     string   `json:"title"`
	SourceURL string   `json:"source_url"`
	Specialty string   `json:"medical_specialty"`
	Quality   float64  `json:"quality_score"`
	Chunks    int      `json:"chunk_count"`
	Matched   []string `json:"matched_terms"`
}

func searchCmd(a *app) *cobra.Command {
	var (
		storePath  string
		limit      int
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search stored items by keyword",
		Long: `Searches the SQLite store. The keyword is expanded with its lexicon
variants, so "cao huyết áp" also finds items indexed under "tăng huyết áp".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if storePath == "" {
				storePath = a.cfg.Store.Path
			}
			if storePath == "" {
				return fmt.Errorf("no store configured (set --store or store.path): %w", internalerr.ErrInvalidConfig)
			}

			comp, err := config.NewLoader(a.cfg.Dictionaries).Load()
			if err != nil {
				return err
			}

			st, err := sqlite.OpenSQLite(cmd.Context(), storePath)
			if err != nil {
				return err
			}
			defer st.Close()

			results, err := search(cmd, st, comp.Lexicon.Variants(args[0]), limit)
			if err != nil {
				return err
			}

			if outputJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			if len(results) == 0 {
				fmt.Fprintln(a.stdout, "No results found.")
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(a.stdout, "%d. [%.2f] %s\n", i+1, r.Quality, r.Title)
				fmt.Fprintf(a.stdout, "   %s (%s, %d chunks, matched: %s)\n",
					r.SourceURL, r.Specialty, r.Chunks, strings.Join(r.Matched, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "SQLite store path; overrides config")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")

	return cmd
}

// search runs one store query per variant and merges the hits.
func search(cmd *cobra.Command, st store.Store, variants []string, limit int) ([]SearchResult, error) {
	byID := make(map[string]carecircle.ProcessedItem)
	matched := make(map[string][]string)

	for _, v := range variants {
		items, err := st.SearchByKeyword(cmd.Context(), v, limit)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			byID[item.ContentID] = item
			matched[item.ContentID] = append(matched[item.ContentID], v)
		}
	}

	items := make([]carecircle.ProcessedItem, 0, len(byID))
	for _, item := range byID {
		items = append(items, item)
	}
	store.SortByQuality(items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	results := make([]SearchResult, len(items))
	for i, item := range items {
		results[i] = SearchResult{
			ContentID: item.ContentID,
			Title:     item.Title,
			SourceURL: item.SourceURL,
			Specialty: item.MedicalSpecialty,
			Quality:   item.QualityScore,
			Chunks:    item.ChunkCount,
			Matched:   matched[item.ContentID],
		}
	}
	return results, nil
}
