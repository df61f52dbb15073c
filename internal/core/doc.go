// Package core coordinates the upload, analysis and SQL operations behind the
// HTTP layer.
//
// A Service owns the current dataset in a dataset.Slot. Each upload builds a
// new immutable Dataset and swaps it in; readers take one snapshot per call,
// so a request never observes two versions.
//
// # Row mirror
//
// When a RowStore is configured, UploadDataset can replace the rows of the
// uploaded_data table with the dataset's name/age/city projection. Mirror
// failures are reported in UploadResult.DBStatus and never fail the upload.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with support codes by
// [MapError]:
//
//   - DS001-DS003: dataset errors (no dataset, unsupported format, missing column)
//   - AN001-AN005: analysis errors
//   - DB001-DB009: row store errors
//   - FILE001-FILE004: upload file errors
//   - RATE001, RND001: throttling
package core
