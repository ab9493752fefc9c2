package archive

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ashwinrao/auction-arena/internal/domain"
)

var ErrNotArchived = errors.New("auction not archived")

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&domain.ArchivedAuction{}); err != nil {
		return nil, err
	}
	return db, nil
}

type postgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Save(ctx context.Context, rec *domain.ArchivedAuction) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *postgresRepository) GetByCode(ctx context.Context, code string) (*domain.ArchivedAuction, error) {
	var rec domain.ArchivedAuction
	err := r.db.WithContext(ctx).First(&rec, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotArchived
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *postgresRepository) List(ctx context.Context, limit, offset int) ([]*domain.ArchivedAuction, error) {
	var recs []*domain.ArchivedAuction
	err := r.db.WithContext(ctx).
		Order("completed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}
