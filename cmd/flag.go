package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/malramsay64/decimator/internal/models"
)

var flagCmd = &cobra.Command{
	Use:   "flag <id> <pick|reject|unset>",
	Short: "Record a culling decision for a picture",
	Args:  cobra.ExactArgs(2),
	RunE:  runFlag,
}

func init() {
	rootCmd.AddCommand(flagCmd)
}

func runFlag(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid picture id %q: %w", args[0], err)
	}

	flag, err := canonicalFlag(args[1])
	if err != nil {
		return err
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.UpdateFlag(id, flag); err != nil {
		return err
	}

	fmt.Printf("Flagged %s: %s\n", id, flag)
	return nil
}

// canonicalFlag accepts any casing of the flag names.
func canonicalFlag(s string) (models.Flag, error) {
	switch strings.ToLower(s) {
	case "pick":
		return models.FlagPick, nil
	case "reject":
		return models.FlagReject, nil
	case "unset":
		return models.FlagUnset, nil
	}
	return models.FlagUnset, fmt.Errorf("unknown flag %q (expected pick, reject or unset)", s)
}
