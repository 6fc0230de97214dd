package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/malramsay64/decimator/internal/catalog"
	"github.com/malramsay64/decimator/internal/decode"
	"github.com/malramsay64/decimator/internal/texture"
)

var thumbsDirs []string

var thumbsCmd = &cobra.Command{
	Use:   "thumbs",
	Short: "Warm the thumbnail cache for the catalog",
	Long: `Decode thumbnails for catalog pictures into the texture cache.

Decoding up front means the first scroll through a large grid hits
warm cache entries instead of paying codec latency per cell. The cache
is bounded; once it fills, the least recently decoded thumbnails are
evicted in favour of new ones.

Example:
  decimator thumbs
  decimator thumbs --directory ~/photos/2024`,
	RunE: runThumbs,
}

func init() {
	thumbsCmd.Flags().StringSliceVarP(&thumbsDirs, "directory", "d", nil, "Limit to pictures in these directories (repeatable)")
	rootCmd.AddCommand(thumbsCmd)
}

func runThumbs(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	pics, err := cat.Query(catalog.Filter{Directories: thumbsDirs}, catalog.SortCaptureTimeAsc)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(pics) == 0 {
		fmt.Println("No pictures found.")
		return nil
	}

	cache := texture.NewCache(cfg.Cache.Capacity)
	decoded, failed := 0, 0
	for _, pic := range pics {
		_, err := cache.GetOrDecode(pic.ID, texture.TierThumbnail, decode.ForTier(pic.Path(), texture.TierThumbnail))
		if err != nil {
			// A corrupt file only costs its own thumbnail.
			failed++
			continue
		}
		decoded++
	}

	fmt.Printf("Decoded %d thumbnails (%d failed, cache holds %d of %d)\n",
		decoded, failed, cache.Len(), cache.Capacity())

	return nil
}
