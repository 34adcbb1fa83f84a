package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sublate/internal/config"
	"sublate/internal/fileutil"
	"sublate/internal/language"
	"sublate/internal/queue"
)

var mediaFileExtensions = map[string]struct{}{
	".mp4":  {},
	".mkv":  {},
	".avi":  {},
	".mov":  {},
	".wav":  {},
	".mp3":  {},
	".flac": {},
	".m4a":  {},
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var originFlag string
	var targetFlag string
	var correctFlag bool
	var embedFlag string

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Queue a media file for subtitle generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}

			ext := strings.ToLower(filepath.Ext(info.Name()))
			if _, ok := mediaFileExtensions[ext]; !ok {
				return fmt.Errorf("unsupported file extension %q", ext)
			}

			var origin string
			if trimmed := strings.ToLower(strings.TrimSpace(originFlag)); trimmed != "" && trimmed != "auto" {
				var err error
				origin, err = language.Normalize(originFlag)
				if err != nil {
					return fmt.Errorf("origin language: %w", err)
				}
			}
			target, err := language.Normalize(targetFlag)
			if err != nil {
				return fmt.Errorf("target language: %w", err)
			}
			embed, ok := queue.ParseEmbedMode(embedFlag)
			if !ok {
				return fmt.Errorf("unsupported embed mode %q (use none, soft, or hard)", embedFlag)
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				fileName, err := stageInput(cfg, absPath)
				if err != nil {
					return err
				}

				job, err := store.Add(cmd.Context(), fileName, origin, target, correctFlag, embed)
				if err != nil {
					return err
				}
				displayOrigin := origin
				if displayOrigin == "" {
					displayOrigin = "auto"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job #%d (%s, %s -> %s)\n", job.ID, fileName, displayOrigin, target)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&originFlag, "origin", "auto", "Spoken language of the media (auto to detect)")
	cmd.Flags().StringVar(&targetFlag, "target", "en", "Language to translate subtitles into")
	cmd.Flags().BoolVar(&correctFlag, "correct", false, "Run transcript correction before translation")
	cmd.Flags().StringVar(&embedFlag, "embed", "none", "Embed subtitles into the video: none, soft, or hard")
	return cmd
}

// stageInput makes sure the file lives in the configured input directory and
// returns its name relative to that directory. Files already inside the input
// directory are referenced in place; anything else gets copied in.
func stageInput(cfg *config.Config, absPath string) (string, error) {
	rel, err := filepath.Rel(cfg.Paths.InputDir, absPath)
	if err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		return rel, nil
	}

	name := filepath.Base(absPath)
	destination := filepath.Join(cfg.Paths.InputDir, name)
	if _, err := os.Stat(destination); err == nil {
		return "", fmt.Errorf("input file %s already exists; remove it or rename the source", destination)
	}

	if err := fileutil.CopyFileVerified(absPath, destination); err != nil {
		return "", fmt.Errorf("copy into input directory: %w", err)
	}
	return name, nil
}
