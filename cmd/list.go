package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiddoHope/steadysocial-sub000/internal/config"
	"github.com/kiddoHope/steadysocial-sub000/internal/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List locally available models",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := models.NewStore(config.ModelsDir())
		entries := store.List()
		if len(entries) == 0 {
			fmt.Printf("No models in %s. Use 'steadysocial pull <url>' to download one.\n", config.ModelsDir())
			return nil
		}

		for _, m := range entries {
			fmt.Printf("%-50s %10s\n", m.Name, formatSize(m.Size))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
