package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edoomio/studio/internal/course"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/entrypoint"
	"github.com/edoomio/studio/internal/logger"
)

// StructureStore loads every course and writes back migrated structures.
type StructureStore interface {
	ListAll() ([]entities.Course, error)
	SaveStructure(id string, structure []byte) error
}

// MigrationReport summarizes one migrate-structures run.
type MigrationReport struct {
	Scanned    int      `json:"scanned"`
	Migrated   []string `json:"migrated"`
	Unreadable []string `json:"unreadable,omitempty"`
	DryRun     bool     `json:"dryRun"`
}

// MigrateStructures rewrites legacy lesson worksheet links of every course as
// linked-blocks blocks. Unreadable structures are reported and left untouched.
func MigrateStructures(store StructureStore, dryRun bool, log *logger.Logger) (*MigrationReport, error) {
	list, err := store.ListAll()
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	report := &MigrationReport{Scanned: len(list), Migrated: []string{}, DryRun: dryRun}
	for i := range list {
		c := &list[i]
		s, err := course.Parse(c.Structure)
		if err != nil {
			log.Warn("Skipping unreadable course structure", "course_id", c.ID, "error", err)
			report.Unreadable = append(report.Unreadable, c.ID)
			continue
		}
		if !course.NormalizeStructure(s) {
			continue
		}
		report.Migrated = append(report.Migrated, c.ID)
		if dryRun {
			continue
		}

		raw, err := s.Marshal()
		if err != nil {
			return report, fmt.Errorf("encode structure of %s: %w", c.ID, err)
		}
		if err := store.SaveStructure(c.ID, raw); err != nil {
			return report, fmt.Errorf("save structure of %s: %w", c.ID, err)
		}
		log.Info("Migrated course structure", "course_id", c.ID)
	}
	return report, nil
}

func newMigrateStructuresCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate-structures",
		Short: "Move legacy lesson worksheet links into linked-blocks blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(_ context.Context, app *entrypoint.App) error {
				report, err := MigrateStructures(app.Courses, dryRun, app.Log)
				if report != nil {
					if perr := printJSON(cmd.OutOrStdout(), report); perr != nil && err == nil {
						err = perr
					}
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report which courses would change without saving")
	return cmd
}
