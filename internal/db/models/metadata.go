package models

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Metadata is the registry of the models backed by a database table.
type Metadata struct {
	mu     sync.RWMutex
	models []any
}

// NewMetadata returns a registry holding models.
func NewMetadata(models ...any) *Metadata {
	m := &Metadata{}
	m.Register(models...)

	return m
}

// Register adds models, e.g. &User{}.
func (m *Metadata) Register(models ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.models = append(m.models, models...)
}

// Models returns a copy of the registered models.
func (m *Metadata) Models() []any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]any, len(m.models))
	copy(out, m.models)

	return out
}

// CreateAll creates the tables, columns and indexes of every registered model
// that do not exist yet. Existing tables are left untouched.
func (m *Metadata) CreateAll(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("db is nil")
	}

	if err := db.WithContext(ctx).AutoMigrate(m.Models()...); err != nil {
		return errors.Wrap(err, "failed to create database tables")
	}

	return nil
}

// Schema binds Metadata to a database connection.
type Schema struct {
	DB       *gorm.DB
	Metadata *Metadata
}

// CreateTables creates all tables declared in the metadata.
func (s Schema) CreateTables(ctx context.Context) error {
	return s.Metadata.CreateAll(ctx, s.DB)
}

// All returns the models of the application. Append new models here.
func All() []any {
	return []any{}
}
