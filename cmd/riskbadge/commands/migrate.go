package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/riskbadge/internal/store"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "DB 스키마 마이그레이션",
	Long: `migrations/ 의 SQL을 순서대로 적용합니다.

이미 적용된 파일(schema_migrations)은 건너뜁니다.

Example:
  go run ./cmd/riskbadge migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	applied, err := store.Migrate(ctx, a.db)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if len(applied) == 0 {
		fmt.Println("✅ Schema is up to date")
		return nil
	}

	fmt.Println("✅ Applied migrations:")
	for _, name := range applied {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}
