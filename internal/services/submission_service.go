// submission_service.go
//
// Schema-driven form validation and submission service for jam-build
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jam-build-formsdb.
// jam-build-formsdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jam-build-formsdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jam-build-formsdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/localnerve/jam-build-formsdb/internal/form"
	"github.com/localnerve/jam-build-formsdb/internal/log"
	"github.com/localnerve/jam-build-formsdb/internal/metrics"
	"github.com/localnerve/jam-build-formsdb/internal/models"
	"github.com/localnerve/jam-build-formsdb/internal/storage/filestore"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/hints"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ErrSubmissionNotFound is returned when no submission with the id belongs to
// the page.
var ErrSubmissionNotFound = errors.New("submission not found")

// FileStore is the part of the file storage the writer needs.
type FileStore interface {
	Save(r io.Reader, storagePath string) (*filestore.SaveResult, error)
	Delete(storagePath string) error
}

// SubmitInput is one raw submission as received by the transport.
type SubmitInput struct {
	Values   form.Values
	Files    form.Files
	Identity *form.Identity
	IP       string
	Meta     map[string]any
}

// Submit looks up the active page, validates the input against it and writes
// the submission. Errors are form.ErrSchemaNotFound,
// form.ErrAuthenticationRequired, *form.ValidationError or *form.StorageError.
func Submit(ctx context.Context, db *gorm.DB, store FileStore, slug string, in SubmitInput) (*models.Submission, error) {
	stored, err := GetActivePage(db.WithContext(ctx), slug)
	if err != nil {
		if errors.Is(err, form.ErrSchemaNotFound) {
			metrics.Submission(slug, metrics.OutcomeNotFound)
			return nil, err
		}
		// the slug was never matched to a page
		metrics.Submission(metrics.UnknownPage, metrics.OutcomeFailed)
		return nil, &form.StorageError{Op: "load page", Err: err}
	}
	page := ToFormPage(*stored)

	record, err := form.ValidateSubmission(page, in.Values, in.Files, in.Identity)
	if err != nil {
		outcome := metrics.OutcomeInvalid
		if errors.Is(err, form.ErrAuthenticationRequired) {
			outcome = metrics.OutcomeUnauthenticated
		}
		metrics.Submission(slug, outcome)
		return nil, err
	}

	sub, err := WriteSubmission(ctx, db, store, page, record, in.Files.ForPage(page), in.Identity, in.IP, in.Meta)
	if err != nil {
		metrics.Submission(slug, metrics.OutcomeFailed)
		return nil, err
	}

	var bytes int64
	for _, f := range sub.Files {
		bytes += f.Size
	}
	metrics.Submission(slug, metrics.OutcomeAccepted)
	metrics.StoredFiles(len(sub.Files), bytes)
	return sub, nil
}

// WriteSubmission persists a validated record and its files as one unit: the
// submission row, every stored file with its SubmissionFile row, and the
// record with file fields replaced by their stored paths. On any failure the
// transaction is rolled back, files already written are removed and a
// *form.StorageError is returned.
func WriteSubmission(
	ctx context.Context,
	db *gorm.DB,
	store FileStore,
	page form.Page,
	record form.Record,
	files form.Files,
	who *form.Identity,
	ip string,
	meta map[string]any,
) (*models.Submission, error) {
	sub := &models.Submission{
		Data:      models.JSONRecord(record),
		IPAddress: ip,
		Meta:      datatypes.JSONMap(meta),
	}
	if page.ID != 0 {
		pageID := page.ID
		sub.PageID = &pageID
	}
	if who != nil && who.UserID != "" {
		userID := who.UserID
		sub.UserID = &userID
	}

	var written []string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Files", "Page").Create(sub).Error; err != nil {
			return &form.StorageError{Op: "create submission", Err: err}
		}

		data := make(form.Record, len(record))
		for k, v := range record {
			data[k] = v
		}

		for _, f := range page.Fields {
			uploads := files[f.Name]
			if len(uploads) == 0 {
				continue
			}

			paths := make([]string, 0, len(uploads))
			for _, u := range uploads {
				sf, err := storeUpload(tx, store, sub.ID, f.Name, u)
				if sf != nil {
					written = append(written, sf.Path)
				}
				if err != nil {
					return err
				}
				sub.Files = append(sub.Files, *sf)
				paths = append(paths, sf.Path)
			}
			data[f.Name] = FoldFilePaths(data[f.Name], paths)
		}

		if len(sub.Files) > 0 {
			sub.Data = models.JSONRecord(data)
			if err := tx.Model(&models.Submission{}).
				Where("id = ?", sub.ID).
				Update("data", sub.Data).Error; err != nil {
				return &form.StorageError{Op: "update submission data", Err: err}
			}
		}
		return nil
	})

	if err != nil {
		for _, p := range written {
			if derr := store.Delete(p); derr != nil {
				log.Errorf("failed to remove %s after aborted submission: %v", p, derr)
			}
		}
		var serr *form.StorageError
		if !errors.As(err, &serr) {
			err = &form.StorageError{Op: "commit submission", Err: err}
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"page":       page.Slug,
		"submission": sub.ID,
		"files":      len(sub.Files),
	}).Info("submission stored")
	return sub, nil
}

// storeUpload saves one file and records it. The returned row is non-nil once
// the file exists in the store, even when recording it failed.
func storeUpload(tx *gorm.DB, store FileStore, submissionID uint64, field string, u form.Upload) (*models.SubmissionFile, error) {
	rc, err := u.Open()
	if err != nil {
		return nil, &form.StorageError{Op: "open upload " + u.Filename, Err: err}
	}
	defer rc.Close()

	res, err := store.Save(rc, FilePath(submissionID, field, u.Filename))
	if err != nil {
		return nil, &form.StorageError{Op: "save file " + u.Filename, Err: err}
	}

	sf := &models.SubmissionFile{
		SubmissionID: submissionID,
		FieldName:    field,
		Path:         res.StoragePath,
		OriginalName: u.Filename,
		ContentType:  u.ContentType,
		Size:         res.Size,
		Checksum:     res.Checksum,
	}
	if err := tx.Create(sf).Error; err != nil {
		return sf, &form.StorageError{Op: "record file " + u.Filename, Err: err}
	}
	return sf, nil
}

// FilePath is where an upload is stored: submissions/{id}/{field}/{name},
// with the name reduced to its base and spaces replaced by underscores.
func FilePath(submissionID uint64, field, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		name = "upload"
	}
	name = strings.ReplaceAll(name, " ", "_")
	return fmt.Sprintf("submissions/%d/%s/%s", submissionID, field, name)
}

// FoldFilePaths merges stored paths into a record value. One path becomes a
// string, several a list. When the existing value holds real content (not the
// validator's FileRefs placeholder) the paths are appended to it.
func FoldFilePaths(existing any, paths []string) any {
	if len(paths) == 0 {
		return existing
	}

	switch v := existing.(type) {
	case string:
		if v != "" {
			return append([]string{v}, paths...)
		}
	case []string:
		if len(v) > 0 {
			return append(append([]string{}, v...), paths...)
		}
	case []any:
		if len(v) > 0 {
			out := make([]any, 0, len(v)+len(paths))
			out = append(out, v...)
			for _, p := range paths {
				out = append(out, p)
			}
			return out
		}
	}

	if len(paths) == 1 {
		return paths[0]
	}
	return paths
}

func boundedLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// ListSubmissions returns a page's submissions, most recent first, with their
// files. The page may be inactive.
func ListSubmissions(db *gorm.DB, slug string, limit, offset int) ([]models.Submission, error) {
	page, err := GetPage(db, slug)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	query := db.Model(&models.Submission{})
	if db.Dialector.Name() == "mysql" {
		query = query.Clauses(hints.UseIndex("idx_submission_page_created"))
	}

	var subs []models.Submission
	err = query.
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("page_id = ?", page.ID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(boundedLimit(limit)).
		Offset(offset).
		Find(&subs).Error
	return subs, err
}

// GetSubmission returns one submission of the page.
func GetSubmission(db *gorm.DB, slug string, id uint64) (*models.Submission, error) {
	page, err := GetPage(db, slug)
	if err != nil {
		return nil, err
	}

	var sub models.Submission
	err = db.
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("page_id = ? AND id = ?", page.ID, id).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
