// page.go
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

// Page is a stored form schema, addressed by its slug.
type Page struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	Slug          string `gorm:"uniqueIndex;size:200;not null"`
	Title         string `gorm:"size:255;not null"`
	Description   string `gorm:"type:text"`
	IsActive      bool   `gorm:"not null"`
	RequiresLogin bool   `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Fields        []Field `gorm:"constraint:OnDelete:CASCADE;"`
}

// Field is one input of a page. Names are unique within their page.
type Field struct {
	ID           uint64            `gorm:"primaryKey;autoIncrement"`
	PageID       uint64            `gorm:"not null;uniqueIndex:idx_field_page_name,priority:1"`
	Name         string            `gorm:"size:150;not null;uniqueIndex:idx_field_page_name,priority:2"`
	Label        string            `gorm:"size:255"`
	Type         string            `gorm:"size:32;not null"`
	Placeholder  string            `gorm:"size:255"`
	DefaultValue string            `gorm:"size:255"`
	HelpText     string            `gorm:"type:text"`
	Required     bool              `gorm:"not null"`
	SortOrder    int               `gorm:"not null;default:0"`
	Validation   datatypes.JSONMap `gorm:"column:validation"`
	Options      []FieldOption     `gorm:"constraint:OnDelete:CASCADE;"`
}

// FieldOption is an allowed value of a select, radio or checkboxes field.
type FieldOption struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	FieldID   uint64 `gorm:"not null;index"`
	Value     string `gorm:"size:255;not null"`
	Label     string `gorm:"size:255"`
	SortOrder int    `gorm:"not null;default:0"`
}

func (Page) TableName() string {
	return "pages"
}

func (Field) TableName() string {
	return "fields"
}

func (FieldOption) TableName() string {
	return "field_options"
}
