package migration

import (
	"fmt"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module runs the embedded migrations against the application database
// before anything else in the graph starts depending on the schema.
var Module = fx.Module("migration",
	fx.Invoke(runOnStartup),
)

func runOnStartup(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql handle: %w", err)
	}
	if err := RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("apply schema migrations: %w", err)
	}
	return nil
}
