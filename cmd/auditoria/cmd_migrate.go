package main

import (
	"fmt"

	"github.com/celerix-dev/auditoria/internal/app"
	"github.com/celerix-dev/auditoria/internal/rowstore"
	"github.com/spf13/cobra"
)

func runMigrate(cmd *cobra.Command, args []string) error {
	if migrateTo == cfg.Backend {
		return fmt.Errorf("source and destination are both %q", migrateTo)
	}

	src, err := app.OpenBackend(cfg, cfg.Backend, log)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := app.OpenBackend(cfg, migrateTo, log)
	if err != nil {
		return err
	}
	defer dst.Close()

	locations := []string{location}
	if location == "" {
		if locations, err = rowstore.StoredLocations(src.Rows); err != nil {
			return err
		}
	}
	if len(locations) == 0 {
		fmt.Println("Nothing to migrate.")
		return nil
	}

	ok, err := confirm(fmt.Sprintf("Copiar %d PDVs de %s para %s?", len(locations), cfg.Backend, migrateTo))
	if err != nil || !ok {
		return err
	}

	copied, err := rowstore.Migrate(cmd.Context(), src.Rows, dst.Rows, locations)
	for _, loc := range locations {
		if n, found := copied[loc]; found {
			fmt.Printf("%-20s %d\n", loc, n)
		}
	}
	if err != nil {
		return err
	}
	fmt.Println("Migration complete.")
	return nil
}
