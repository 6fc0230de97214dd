package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/malramsay64/decimator/internal/catalog"
	"github.com/malramsay64/decimator/internal/models"
)

var (
	listDirs    []string
	listFlags   []string
	listRatings []int
	listSort    string
	listJSON    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog pictures",
	Long: `Display pictures in the catalog, optionally filtered and sorted.

Filters combine with AND; repeating a filter flag matches any of its
values. The default ordering is capture time, oldest first.

Example:
  decimator list                             # Everything, oldest first
  decimator list --flag Pick --flag Unset    # Not yet rejected
  decimator list --rating 4 --rating 5       # The best shots
  decimator list --directory ~/photos/2024 --sort filename-asc`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringSliceVarP(&listDirs, "directory", "d", nil, "Filter by directory (repeatable)")
	listCmd.Flags().StringSliceVarP(&listFlags, "flag", "f", nil, "Filter by flag: Pick, Reject, Unset (repeatable)")
	listCmd.Flags().IntSliceVarP(&listRatings, "rating", "r", nil, "Filter by rating 0-5 (repeatable)")
	listCmd.Flags().StringVar(&listSort, "sort", "capture-asc", "Sort order: capture-asc, capture-desc, filename-asc, filename-desc")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	sort, err := catalog.ParseSort(listSort)
	if err != nil {
		return err
	}

	filter := catalog.Filter{Directories: listDirs}
	for _, f := range listFlags {
		flag, err := canonicalFlag(f)
		if err != nil {
			return err
		}
		filter.Flags = append(filter.Flags, flag)
	}
	for _, r := range listRatings {
		rating, err := models.NewRating(r)
		if err != nil {
			return err
		}
		filter.Ratings = append(filter.Ratings, rating)
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	pics, err := cat.Query(filter, sort)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pics)
	}

	if len(pics) == 0 {
		fmt.Println("No pictures found.")
		fmt.Println("Run 'decimator import <directory>' to add photographs.")
		return nil
	}

	fmt.Printf("%-36s  %-19s  %-6s  %-6s  %s\n", "ID", "Captured", "Rating", "Flag", "File")
	fmt.Println(strings.Repeat("-", 100))
	for _, pic := range pics {
		captured := "-"
		if pic.CaptureTime != nil {
			captured = pic.CaptureTime.Format("2006-01-02 15:04:05")
		}
		rating := "-"
		if pic.Rating != nil {
			rating = fmt.Sprintf("%d", int(*pic.Rating))
		}
		name := pic.Filename
		if pic.RawFilename != "" {
			name += " (+RAW)"
		}
		fmt.Printf("%-36s  %-19s  %-6s  %-6s  %s\n", pic.ID, captured, rating, pic.Flag, name)
	}
	fmt.Printf("\n%d pictures\n", len(pics))

	return nil
}
