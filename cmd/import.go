package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/malramsay64/decimator/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <directory>...",
	Short: "Import photographs into the catalog",
	Long: `Import all photographs under the given directories, recursively.

Each file's content is hashed so renamed or moved copies of photos
already in the catalog are recognised and skipped. RAW files are paired
with their JPEG sibling when both share a base filename.

Example:
  decimator import ~/photos/shoot-2024
  decimator import /mnt/card/DCIM --workers 16`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	dirs := make([]string, len(args))
	for i, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("failed to resolve path: %w", err)
		}
		dirs[i] = abs
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	lastLine := ""
	im := importer.New(cat,
		importer.WithWorkers(cfg.Import.Workers),
		importer.WithLogger(slog.Default()),
		importer.WithProgress(func(done, total int, current string) {
			if lastLine != "" {
				fmt.Print("\r" + strings.Repeat(" ", len(lastLine)) + "\r")
			}
			shortPath := current
			if len(shortPath) > 50 {
				shortPath = "..." + shortPath[len(shortPath)-47:]
			}
			lastLine = fmt.Sprintf("Progress: %d/%d  %s", done, total, shortPath)
			fmt.Print(lastLine)
		}),
	)

	report, err := im.Import(dirs)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if lastLine != "" {
		fmt.Print("\r" + strings.Repeat(" ", len(lastLine)) + "\r")
	}

	fmt.Println("=== Import Complete ===")
	fmt.Printf("Imported:           %d\n", report.Imported)
	fmt.Printf("Skipped duplicates: %d\n", report.Skipped)
	fmt.Printf("Failed:             %d\n", report.Failed)

	for _, f := range report.Failures {
		fmt.Printf("  %s: %s\n", f.Path, f.Reason)
	}

	return nil
}
