package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aivory/fitstudio/database/models"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// migrateCmd 数据库迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tools",
	Long:  `Migrate data from one database to another (e.g., SQLite to PostgreSQL).`,
}

// migrateRunCmd 执行迁移命令
var migrateRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run database migration",
	Long: `Run database migration from source to target database.

Examples:
  # Migrate from SQLite to PostgreSQL
  fitstudio migrate run --from-sqlite ./data.db --to-postgres "host=localhost user=postgres password=secret dbname=fitstudio port=5432"

  # Stop on the first conflicting row
  fitstudio migrate run --from-sqlite ./data.db --to-postgres "..." --on-conflict=error`,
	Run: func(cmd *cobra.Command, args []string) {
		fromSQLite, _ := cmd.Flags().GetString("from-sqlite")
		toPostgres, _ := cmd.Flags().GetString("to-postgres")
		skipConfirm, _ := cmd.Flags().GetBool("yes")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		onConflict, _ := cmd.Flags().GetString("on-conflict")

		if err := runMigration(fromSQLite, toPostgres, skipConfirm, batchSize, onConflict); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateRunCmd)

	migrateRunCmd.Flags().String("from-sqlite", "", "Source SQLite file path")
	migrateRunCmd.Flags().String("to-postgres", "", "Target PostgreSQL connection string")
	migrateRunCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	migrateRunCmd.Flags().Int("batch-size", 100, "Batch size for data migration")
	migrateRunCmd.Flags().String("on-conflict", "skip", "Conflict resolution strategy: skip (default) or error")
}

// migrateStats 迁移统计
type migrateStats struct {
	migrated map[string]int
	skipped  int
	errors   []string
}

// runMigration 执行数据库迁移
func runMigration(fromSQLite, toPostgres string, skipConfirm bool, batchSize int, onConflict string) error {
	if onConflict != "skip" && onConflict != "error" {
		return fmt.Errorf("invalid on-conflict strategy: %s (must be skip or error)", onConflict)
	}
	if fromSQLite == "" || toPostgres == "" {
		return fmt.Errorf("both --from-sqlite and --to-postgres are required")
	}

	log.Printf("Migrating from sqlite (%s) to postgres", fromSQLite)
	log.Printf("Conflict strategy: %s", onConflict)

	sourceDB, err := openMigrationDB(sqlite.Open(fromSQLite))
	if err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	defer closeMigrationDB(sourceDB)

	targetDB, err := openMigrationDB(postgres.Open(toPostgres))
	if err != nil {
		return fmt.Errorf("failed to connect to target database: %w", err)
	}
	defer closeMigrationDB(targetDB)

	if !skipConfirm {
		fmt.Println("\nWarning: This will migrate all data from source to target database.")
		fmt.Print("Do you want to continue? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Migration cancelled.")
			return nil
		}
	}

	// 自动迁移目标数据库结构
	log.Println("Migrating database schema...")
	if err := targetDB.AutoMigrate(
		&models.User{},
		&models.Image{},
		&models.HistoryEntry{},
		&models.HistoryImage{},
		&models.CreditTransaction{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	stats := &migrateStats{migrated: make(map[string]int)}
	ctx := context.Background()

	// 外键约束要求按依赖顺序迁移
	if err := migrateTable[models.User](ctx, "users", sourceDB, targetDB, stats, batchSize, onConflict); err != nil {
		return err
	}
	if err := migrateTable[models.Image](ctx, "images", sourceDB, targetDB, stats, batchSize, onConflict); err != nil {
		return err
	}
	if err := migrateTable[models.HistoryEntry](ctx, "history_entries", sourceDB, targetDB, stats, batchSize, onConflict); err != nil {
		return err
	}
	if err := migrateTable[models.CreditTransaction](ctx, "credit_transactions", sourceDB, targetDB, stats, batchSize, onConflict); err != nil {
		return err
	}
	if err := migrateHistoryImages(ctx, sourceDB, targetDB, stats, onConflict); err != nil {
		return err
	}

	printMigrateStats(stats)

	if len(stats.errors) > 0 {
		return fmt.Errorf("migration completed with %d errors", len(stats.errors))
	}

	log.Println("Migration completed successfully!")
	return nil
}

// migrateTable 按批迁移一张以字符串 ID 为主键的表
func migrateTable[T any](ctx context.Context, table string, sourceDB, targetDB *gorm.DB, stats *migrateStats, batchSize int, onConflict string) error {
	var offset int
	for {
		var rows []T
		if err := sourceDB.WithContext(ctx).Limit(batchSize).Offset(offset).Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to read %s: %w", table, err)
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			result := targetDB.WithContext(ctx).Create(&row)
			if result.Error == nil {
				stats.migrated[table]++
				continue
			}
			if onConflict == "error" {
				return fmt.Errorf("failed to migrate %s row: %w", table, result.Error)
			}
			stats.skipped++
		}

		offset += batchSize
	}

	log.Printf("Migrated %d %s", stats.migrated[table], table)
	return nil
}

// migrateHistoryImages 迁移复合主键的历史-图片关联
func migrateHistoryImages(ctx context.Context, sourceDB, targetDB *gorm.DB, stats *migrateStats, onConflict string) error {
	var relations []models.HistoryImage
	if err := sourceDB.WithContext(ctx).Find(&relations).Error; err != nil {
		return fmt.Errorf("failed to read history_images: %w", err)
	}

	for _, rel := range relations {
		result := targetDB.WithContext(ctx).Create(&rel)
		if result.Error == nil {
			stats.migrated["history_images"]++
			continue
		}
		if onConflict == "error" {
			return fmt.Errorf("failed to migrate history_images row (%s, %s): %w", rel.HistoryID, rel.ImageID, result.Error)
		}
		stats.skipped++
	}

	log.Printf("Migrated %d history_images", stats.migrated["history_images"])
	return nil
}

// openMigrationDB 打开迁移用数据库连接
func openMigrationDB(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func closeMigrationDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// printMigrateStats 打印迁移统计
func printMigrateStats(stats *migrateStats) {
	fmt.Println()
	fmt.Println("========================================")
	fmt.Println("       Migration Statistics")
	fmt.Println("========================================")
	for _, table := range []string{"users", "images", "history_entries", "credit_transactions", "history_images"} {
		fmt.Printf("%-22s %d\n", table+":", stats.migrated[table])
	}
	fmt.Printf("%-22s %d\n", "skipped:", stats.skipped)
	fmt.Println("========================================")

	if len(stats.errors) > 0 {
		fmt.Println("\nErrors encountered:")
		for _, err := range stats.errors {
			fmt.Printf("  - %s\n", err)
		}
	}
}
