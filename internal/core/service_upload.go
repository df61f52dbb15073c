package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/datalens/internal/dataset"
	"github.com/JonMunkholm/datalens/internal/logging"
)

// UploadMessage is the message returned for every successful upload.
const UploadMessage = "Dataset uploaded successfully"

// UploadDataset parses r, makes it the current dataset and, when mirror is
// set and a row store is configured, replaces the mirror table's rows.
//
// A failed load leaves the current dataset untouched. A failed mirror never
// fails the upload; it is reported in DBStatus.
func (s *Service) UploadDataset(ctx context.Context, filename string, r io.Reader, mirror bool) (*UploadResult, error) {
	log := logging.WithFields(ctx, "filename", filename, "client_ip", ClientIPFromContext(ctx))
	log.Info("uploading file")

	ds, err := dataset.Load(r, filename, s.maxFileSize)
	if err != nil {
		log.Warn("upload rejected", "error", err)
		if isLoadRequestError(err) {
			return nil, err
		}
		return nil, &LoadError{Err: err}
	}
	s.slot.Store(ds)

	rows, cols := ds.Shape()
	log.Info("dataset loaded", "dataset_id", ds.ID, "rows", rows, "columns", cols)

	res := &UploadResult{
		Message:   UploadMessage,
		Shape:     [2]int{rows, cols},
		Columns:   ds.Columns(),
		Dtypes:    ds.Dtypes(),
		DatasetID: ds.ID,
	}
	if mirror {
		s.mirror(ctx, ds, res)
	}
	return res, nil
}

func (s *Service) mirror(ctx context.Context, ds *dataset.Dataset, res *UploadResult) {
	res.Mirrored = true
	res.Success = true

	if s.store == nil {
		res.DBStatus = "Row store disabled"
		return
	}

	m, err := s.store.Mirror(ctx, ds)
	if err != nil {
		res.DBStatus = "Database save failed: " + err.Error()
		logging.FromContext(ctx).Error("mirror failed", "dataset_id", ds.ID, "error", err, "code", MapError(err).Code)
		return
	}

	res.RowsInserted = m.Rows
	res.DBStatus = fmt.Sprintf("Data saved to %s database (%d rows)", m.Engine, m.Rows)
	if m.Fallback {
		res.DBStatus += " (fallback)"
	}
}

func isLoadRequestError(err error) bool {
	return errors.Is(err, dataset.ErrNoFile) ||
		errors.Is(err, dataset.ErrUnsupportedFormat) ||
		errors.Is(err, dataset.ErrFileTooLarge)
}
