package core

import (
	"context"

	"github.com/JonMunkholm/datalens/internal/dataset"
)

// Options configures a Service.
type Options struct {
	Analyzer Analyzer

	// Store is the row mirror. nil disables mirroring and SQL execution.
	Store RowStore

	// MaxFileSize caps uploads in bytes (<= 0 disables the cap).
	MaxFileSize int64

	// SQLEnabled gates ExecuteSQL.
	SQLEnabled bool
}

// Service owns the current dataset and coordinates loading, analysis and
// the row mirror.
type Service struct {
	analyzer    Analyzer
	store       RowStore
	maxFileSize int64
	sqlEnabled  bool

	slot dataset.Slot
}

// NewService creates a Service from opts.
func NewService(opts Options) *Service {
	return &Service{
		analyzer:    opts.Analyzer,
		store:       opts.Store,
		maxFileSize: opts.MaxFileSize,
		sqlEnabled:  opts.SQLEnabled,
	}
}

// Dataset returns the current dataset version, or nil before the first upload.
func (s *Service) Dataset() *dataset.Dataset {
	return s.slot.Load()
}

// HasRowStore reports whether a row store is configured.
func (s *Service) HasRowStore() bool {
	return s.store != nil
}

// Health reports the service status and the reachability of the row store.
func (s *Service) Health(ctx context.Context) HealthStatus {
	h := HealthStatus{Status: "healthy", Database: "disabled"}
	if s.store == nil {
		return h
	}
	sel, err := s.store.Ping(ctx)
	if err != nil {
		h.Database = "disconnected: " + err.Error()
		return h
	}
	h.Database = "connected (" + sel.Engine + ")"
	return h
}
