package core

import (
	"context"

	"github.com/JonMunkholm/datalens/internal/store"
)

// Analyze runs one analysis action against the current dataset.
func (s *Service) Analyze(ctx context.Context, action, column string) (any, error) {
	ds := s.slot.Load()
	if ds == nil {
		return nil, ErrNoDataset
	}
	return s.analyzer.Run(ctx, ds, action, column)
}

// ExecuteSQL runs a user statement against the row store as given.
func (s *Service) ExecuteSQL(ctx context.Context, sql string) (*store.ExecResult, error) {
	if !s.sqlEnabled {
		return nil, ErrSQLDisabled
	}
	if s.store == nil {
		return nil, ErrNoRowStore
	}
	return s.store.Execute(ctx, sql)
}
