package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edoomio/studio/internal/entrypoint"
)

func newTranslationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translations",
		Short: "Push, pull or inspect course translations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "push <courseID>",
			Short: "Send a course's base language strings to i18nexus",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, func(ctx context.Context, app *entrypoint.App) error {
					c, err := app.Courses.GetByID(args[0])
					if err != nil {
						return fmt.Errorf("load course %s: %w", args[0], err)
					}
					res, err := app.Translation.Push(ctx, c)
					app.Audit.LogTranslation("", c.ID, "push", "Pushed course strings from the command line", nil, err)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), res)
				})
			},
		},
		&cobra.Command{
			Use:   "pull <courseID>",
			Short: "Fetch translated bundles for a course and store them",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, func(ctx context.Context, app *entrypoint.App) error {
					c, err := app.Courses.GetByID(args[0])
					if err != nil {
						return fmt.Errorf("load course %s: %w", args[0], err)
					}
					res, err := app.Translation.Pull(ctx, c)
					app.Audit.LogTranslation("", c.ID, "pull", "Pulled course translations from the command line", nil, err)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), res)
				})
			},
		},
		&cobra.Command{
			Use:   "status <courseID>",
			Short: "Show which languages a course has been translated into",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, func(_ context.Context, app *entrypoint.App) error {
					c, err := app.Courses.GetByID(args[0])
					if err != nil {
						return fmt.Errorf("load course %s: %w", args[0], err)
					}
					st, err := app.Translation.Status(c)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), st)
				})
			},
		},
	)
	return cmd
}
