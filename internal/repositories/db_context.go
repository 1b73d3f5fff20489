package repositories

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/velocityhr/scheduler/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	err := c.DB.AutoMigrate(entities.HR{})
	if err != nil {
		return fmt.Errorf("failed to migrate HR entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Job{})
	if err != nil {
		return fmt.Errorf("failed to migrate Job entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Applicant{})
	if err != nil {
		return fmt.Errorf("failed to migrate Applicant entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Schedule{})
	if err != nil {
		return fmt.Errorf("failed to migrate Schedule entity: %w", err)
	}

	//one application per email per job, mirroring the production schema
	if err = c.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_applicant_job_email ON applicants (job_id, email);").
		Error; err != nil {
		return fmt.Errorf("failed to create applicant index: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
