package cmd

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/malramsay64/decimator/internal/models"
)

var rateCmd = &cobra.Command{
	Use:   "rate <id> <stars>",
	Short: "Rate a picture from 0 to 5 stars",
	Args:  cobra.ExactArgs(2),
	RunE:  runRate,
}

func init() {
	rootCmd.AddCommand(rateCmd)
}

func runRate(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid picture id %q: %w", args[0], err)
	}

	stars, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid star count %q: %w", args[1], err)
	}
	rating, err := models.NewRating(stars)
	if err != nil {
		return err
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.UpdateRating(id, rating); err != nil {
		return err
	}

	fmt.Printf("Rated %s: %d stars\n", id, stars)
	return nil
}
