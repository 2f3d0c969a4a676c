package automation

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/scenewatch/vision-backend/internal/shared"
)

// DBStore persists actions and rules through gorm. It backs the in-memory
// Store across restarts; the seed file only populates an empty database.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Migrate() error {
	return s.db.AutoMigrate(&Action{}, &Rule{})
}

func (s *DBStore) SaveRule(ctx context.Context, r Rule) error {
	return s.db.WithContext(ctx).Create(&r).Error
}

func (s *DBStore) DeleteRule(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&Rule{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Load returns the persisted config, or (nil, nil) when the database holds
// no actions yet and should be seeded.
func (s *DBStore) Load(ctx context.Context) (*Config, error) {
	var actions []Action
	if err := s.db.WithContext(ctx).Order("id").Find(&actions).Error; err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, nil
	}

	var rules []Rule
	if err := s.db.WithContext(ctx).Order("id").Find(&rules).Error; err != nil {
		return nil, err
	}

	return &Config{Actions: actions, Rules: rules}, nil
}

// Seed writes a full config into an empty database. Existing rows win; a
// concurrent seed from another replica is tolerated.
func (s *DBStore) Seed(ctx context.Context, cfg Config) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range cfg.Actions {
			if err := tx.Create(&a).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
		}
		for _, r := range cfg.Rules {
			if err := tx.Create(&r).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
		}
		return nil
	})
}
