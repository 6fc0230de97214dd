package cmd

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/malramsay64/decimator/internal/catalog"
	"github.com/malramsay64/decimator/internal/match"
)

var similarThreshold int

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Find visually similar pictures in the catalog",
	Long: `Group catalog pictures that look alike, even when their bytes differ.

Perceptual hashes connect re-exports, resized copies and burst-shot
near-duplicates that exact content hashing treats as distinct files.
Lower thresholds are stricter.

Example:
  decimator similar
  decimator similar --threshold 5`,
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().IntVar(&similarThreshold, "threshold", -1, "Hamming distance threshold 0-64 (default from config)")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	threshold := cfg.Match.Threshold
	if similarThreshold >= 0 {
		threshold = similarThreshold
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	pics, err := cat.Query(catalog.Filter{}, catalog.SortFilenameAsc)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(pics) < 2 {
		fmt.Println("Not enough pictures to compare.")
		return nil
	}

	// Hash in parallel; files that no longer decode are skipped.
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		items []match.Item
	)
	work := make(chan int, len(pics))
	for i := range pics {
		work <- i
	}
	close(work)

	for w := 0; w < cfg.Import.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				pic := pics[i]
				phash, err := match.PerceptualHash(pic.Path())
				if err != nil {
					slog.Debug("skipping undecodable picture", "path", pic.Path(), "error", err)
					continue
				}
				mu.Lock()
				items = append(items, match.Item{ID: pic.ID, Path: pic.Path(), PHash: phash})
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	groups := match.NewMatcher(threshold).Groups(items)
	if len(groups) == 0 {
		fmt.Println("No similar pictures found.")
		return nil
	}

	for i, group := range groups {
		fmt.Printf("Group #%d (%d pictures)\n", i+1, len(group.Items))
		for _, it := range group.Items {
			fmt.Printf("  %s  %s\n", it.ID, it.Path)
		}
		fmt.Println()
	}
	fmt.Printf("%d groups of similar pictures\n", len(groups))

	return nil
}
