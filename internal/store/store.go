package store

import (
	"github.com/productimporter/catalogctl/internal/store/model"
	"gorm.io/gorm"
)

type Store interface {
	Job() Job
	Close() error
}

type DataStore struct {
	db  *gorm.DB
	job Job
}

// NewStore migrates the schema and returns the store backed by db.
func NewStore(db *gorm.DB) (Store, error) {
	if err := db.AutoMigrate(&model.Job{}); err != nil {
		return nil, err
	}
	return &DataStore{
		db:  db,
		job: NewJobStore(db),
	}, nil
}

func (s *DataStore) Job() Job {
	return s.job
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
