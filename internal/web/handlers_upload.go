package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/datalens/internal/core"
	"github.com/JonMunkholm/datalens/internal/dataset"
)

// multipartMemory is how much of a multipart body is held in memory before
// the rest spills to temp files.
const multipartMemory = 32 << 20

// multipartOverhead is slack over the file size cap for form framing.
const multipartOverhead = 1 << 20

type uploadResponse struct {
	Message   string            `json:"message"`
	Shape     [2]int            `json:"shape"`
	Columns   []string          `json:"columns"`
	Dtypes    map[string]string `json:"dtypes"`
	DatasetID string            `json:"datasetId"`
}

type datasetUploadResponse struct {
	uploadResponse
	Success      bool   `json:"success"`
	RowsInserted int    `json:"rowsInserted"`
	DBStatus     string `json:"dbStatus"`
}

// handleUpload loads the file as the current dataset.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	res, ok := s.upload(w, r, false)
	if !ok {
		return
	}
	writeJSON(w, newUploadResponse(res))
}

// handleUploadDataset loads the file and mirrors its rows into the row store.
func (s *Server) handleUploadDataset(w http.ResponseWriter, r *http.Request) {
	res, ok := s.upload(w, r, s.cfg.SQL.RowStoreEnabled)
	if !ok {
		return
	}
	writeJSON(w, datasetUploadResponse{
		uploadResponse: newUploadResponse(res),
		Success:        true,
		RowsInserted:   res.RowsInserted,
		DBStatus:       dbStatus(res),
	})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request, mirror bool) (*core.UploadResult, bool) {
	if maxSize := s.cfg.Upload.MaxFileSize; maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, dataset.ErrFileTooLarge)
			return nil, false
		}
		s.respondError(w, r, dataset.ErrNoFile)
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, dataset.ErrNoFile)
		return nil, false
	}
	defer file.Close()

	res, err := s.service.UploadDataset(r.Context(), header.Filename, file, mirror)
	if err != nil {
		s.respondError(w, r, err)
		return nil, false
	}
	return res, true
}

func newUploadResponse(res *core.UploadResult) uploadResponse {
	return uploadResponse{
		Message:   res.Message,
		Shape:     res.Shape,
		Columns:   res.Columns,
		Dtypes:    res.Dtypes,
		DatasetID: res.DatasetID,
	}
}

func dbStatus(res *core.UploadResult) string {
	if !res.Mirrored {
		return "Row store disabled"
	}
	return res.DBStatus
}
