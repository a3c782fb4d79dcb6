package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/entrypoint"
	"github.com/edoomio/studio/internal/utils"
)

// ParseLocale maps a --locale value to a render locale. Empty means DE.
func ParseLocale(v string) (entities.RenderLocale, error) {
	switch l := entities.RenderLocale(strings.ToUpper(strings.TrimSpace(v))); l {
	case "":
		return entities.RenderLocaleDE, nil
	case entities.RenderLocaleDE, entities.RenderLocaleCH, entities.RenderLocaleNeutral:
		return l, nil
	default:
		return "", fmt.Errorf("unknown locale %q (want DE, CH or NEUTRAL)", v)
	}
}

func newRenderCommand() *cobra.Command {
	var (
		locale    string
		solutions bool
		out       string
	)
	cmd := &cobra.Command{
		Use:   "render <worksheetID>",
		Short: "Render a worksheet to PDF without going through the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := ParseLocale(locale)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *entrypoint.App) error {
				w, err := app.Worksheets.GetByID(args[0])
				if err != nil {
					return fmt.Errorf("load worksheet %s: %w", args[0], err)
				}

				job, err := app.Rendering.Request(ctx, w, "", loc, solutions)
				if err != nil {
					return err
				}
				if job.Status != entities.RenderStatusDone {
					if err := app.Rendering.Run(ctx, job.ID); err != nil {
						return err
					}
					if job, err = app.RenderJobs.GetByID(job.ID); err != nil {
						return err
					}
				}

				path := out
				if path == "" {
					path = utils.PDFFilename(w.Title, string(loc), solutions)
				}
				if err := writeJob(ctx, app, job, path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "DE", "Spelling variant: DE, CH or NEUTRAL")
	cmd.Flags().BoolVar(&solutions, "solutions", false, "Render the answer key")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default derived from the worksheet title)")
	return cmd
}

func writeJob(ctx context.Context, app *entrypoint.App, job *entities.RenderJob, path string) error {
	rc, err := app.Rendering.Open(ctx, job)
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
