package database

import (
	"github.com/phuslu/log"
	"gorm.io/gorm"
)

// cleanupDuplicateCardViews removes duplicate card_views rows before the unique
// index on card_uuid is created. Runs BEFORE AutoMigrate.
func cleanupDuplicateCardViews(db *gorm.DB) error {
	if !db.Migrator().HasTable("card_views") {
		return nil
	}
	if !db.Migrator().HasColumn("card_views", "card_uuid") {
		return nil
	}

	// Keep the most recently viewed row per card
	result := db.Exec(`
		DELETE FROM card_views
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY card_uuid ORDER BY last_viewed_at DESC, id DESC) AS rn
				FROM card_views
			) WHERE rn = 1
		)
	`)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Info().Int64("rows", result.RowsAffected).Msg("Cleaned up duplicate card_views entries")
	}
	return nil
}

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	return dropEmptySnapshots(db)
}

// dropEmptySnapshots removes snapshot rows that cannot be decoded back into a
// card detail
func dropEmptySnapshots(db *gorm.DB) error {
	result := db.Exec(`DELETE FROM card_snapshots WHERE payload IS NULL OR length(payload) = 0`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Info().Int64("rows", result.RowsAffected).Msg("Removed empty card snapshots")
	}
	return nil
}
