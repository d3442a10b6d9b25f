package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kiddoHope/steadysocial-sub000/internal/config"
	"github.com/kiddoHope/steadysocial-sub000/internal/models"
)

var pullCmd = &cobra.Command{
	Use:   "pull <url>",
	Short: "Download a GGUF model from a URL",
	Long: `Download a GGUF model file from a direct URL.

Example:
  steadysocial pull https://huggingface.co/bartowski/Qwen2.5-3B-Instruct-GGUF/resolve/main/Qwen2.5-3B-Instruct-Q4_K_M.gguf

Set HF_TOKEN for gated models.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("models-dir")
		if dir == "" {
			dir = config.ModelsDir()
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create models dir: %w", err)
		}

		fmt.Printf("Downloading to %s...\n", dir)
		path, err := models.Download(args[0], dir, func(downloaded, total int64) {
			if total > 0 {
				pct := float64(downloaded) / float64(total) * 100
				fmt.Printf("\r  %.1f%% (%s / %s)", pct, formatSize(downloaded), formatSize(total))
			} else {
				fmt.Printf("\r  %s downloaded", formatSize(downloaded))
			}
		})
		if err != nil {
			return err
		}

		fmt.Printf("\n\nSaved to %s\n", path)
		return nil
	},
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func init() {
	pullCmd.Flags().String("models-dir", "", "directory to download into")
	rootCmd.AddCommand(pullCmd)
}
