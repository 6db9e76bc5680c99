// submission.go
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

package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is one accepted entry of a page. PageID becomes NULL when the
// page is deleted; the submission itself is kept.
type Submission struct {
	ID        uint64            `gorm:"primaryKey;autoIncrement"`
	PageID    *uint64           `gorm:"index:idx_submission_page_created,priority:1"`
	Page      *Page             `gorm:"constraint:OnDelete:SET NULL;"`
	UserID    *string           `gorm:"size:64;index"`
	Data      JSONRecord        `gorm:"not null"`
	IPAddress string            `gorm:"size:45"`
	Meta      datatypes.JSONMap `gorm:"column:meta"`
	CreatedAt time.Time         `gorm:"index:idx_submission_page_created,priority:2"`
	Files     []SubmissionFile  `gorm:"constraint:OnDelete:CASCADE;"`
}

// SubmissionFile records a stored upload. Path is the store-relative handle.
type SubmissionFile struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	SubmissionID uint64    `gorm:"not null;index"`
	FieldName    string    `gorm:"size:150;not null"`
	Path         string    `gorm:"size:512;not null"`
	OriginalName string    `gorm:"size:255"`
	ContentType  string    `gorm:"size:255"`
	Size         int64     `gorm:"not null"`
	Checksum     string    `gorm:"size:64"`
	UploadedAt   time.Time `gorm:"autoCreateTime"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (SubmissionFile) TableName() string {
	return "submission_files"
}
