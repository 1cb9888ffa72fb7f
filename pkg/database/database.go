package database

import (
	"courseware_backend/internal/config"
	"courseware_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table owned by the engine.
func Models() []interface{} {
	return []interface{}{
		&model.CoursewareNode{},
		&model.Scenario{},
		&model.Attempt{},
		&model.Progress{},
		&model.StudentScope{},
		&model.StudentScopeEntry{},
		&model.CompetencyDocument{},
		&model.DocumentItem{},
		&model.ItemAssociation{},
		&model.CompetencyMet{},
		&model.CoursewareHistory{},
		&model.EvaluationRecord{},
	}
}

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)
		return postgres.Open(dsn), nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = "courseware.db"
		}
		return sqlite.Open(path), nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// InitDB opens the configured database. Schema changes are applied by
// Migrate, run from the migrate command or at server start.
func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	log.Println("Database migration completed")
	return nil
}
