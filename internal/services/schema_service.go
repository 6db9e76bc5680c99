// schema_service.go
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
	"errors"
	"fmt"

	"github.com/localnerve/jam-build-formsdb/internal/form"
	"github.com/localnerve/jam-build-formsdb/internal/log"
	"github.com/localnerve/jam-build-formsdb/internal/models"
	"gorm.io/gorm"
)

func orderedFields(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}

func loadPage(db *gorm.DB, slug string, activeOnly bool) (*models.Page, error) {
	query := db.
		Preload("Fields", orderedFields).
		Preload("Fields.Options", orderedFields).
		Where("slug = ?", slug)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var page models.Page
	if err := query.First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, form.ErrSchemaNotFound
		}
		return nil, err
	}
	return &page, nil
}

// GetActivePage loads a page that accepts submissions, with its fields and
// options in display order. Unknown and inactive pages are ErrSchemaNotFound.
func GetActivePage(db *gorm.DB, slug string) (*models.Page, error) {
	return loadPage(db, slug, true)
}

// GetPage loads a page regardless of its active flag.
func GetPage(db *gorm.DB, slug string) (*models.Page, error) {
	return loadPage(db, slug, false)
}

// ListActivePages returns the active pages without their fields.
func ListActivePages(db *gorm.DB) ([]models.Page, error) {
	var pages []models.Page
	err := db.Where("is_active = ?", true).Order("title ASC, id ASC").Find(&pages).Error
	return pages, err
}

// ToFormPage converts a stored page into the validator's schema. A malformed
// validation map is logged and its rules are not applied.
func ToFormPage(p models.Page) form.Page {
	out := form.Page{
		ID:            p.ID,
		Slug:          p.Slug,
		Title:         p.Title,
		Description:   p.Description,
		RequiresLogin: p.RequiresLogin,
		Fields:        make([]form.Field, len(p.Fields)),
	}

	for i, f := range p.Fields {
		rules, err := form.ParseRules(f.Validation)
		if err != nil {
			log.Warnf("page %s field %s: skipping malformed rules: %v", p.Slug, f.Name, err)
		}
		options := make([]form.Option, len(f.Options))
		for j, o := range f.Options {
			options[j] = form.Option{Value: o.Value, Label: o.Label}
		}
		out.Fields[i] = form.Field{
			Name:     f.Name,
			Label:    f.Label,
			Type:     form.FieldType(f.Type),
			Required: f.Required,
			Rules:    rules,
			Options:  options,
		}
	}
	return out
}

// SavePage creates the page, or replaces the stored page with the same slug
// along with all of its fields and options. Existing submissions keep pointing
// at the page.
func SavePage(db *gorm.DB, page *models.Page) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.Page
		err := tx.Where("slug = ?", page.Slug).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(page).Error
		}
		if err != nil {
			return err
		}

		if err := deleteFields(tx, existing.ID); err != nil {
			return err
		}

		fields := page.Fields
		page.ID = existing.ID
		page.CreatedAt = existing.CreatedAt
		if err := tx.Omit("Fields").Save(page).Error; err != nil {
			return fmt.Errorf("failed to update page %s: %w", page.Slug, err)
		}

		for i := range fields {
			fields[i].ID = 0
			fields[i].PageID = page.ID
			for j := range fields[i].Options {
				fields[i].Options[j].ID = 0
				fields[i].Options[j].FieldID = 0
			}
		}
		if len(fields) > 0 {
			if err := tx.Create(&fields).Error; err != nil {
				return fmt.Errorf("failed to create fields of %s: %w", page.Slug, err)
			}
		}
		page.Fields = fields
		return nil
	})
}

// DeletePage removes a page with its fields and options. Submissions of the
// page are kept with a NULL page reference.
func DeletePage(db *gorm.DB, slug string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var page models.Page
		if err := tx.Where("slug = ?", slug).First(&page).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return form.ErrSchemaNotFound
			}
			return err
		}

		if err := tx.Model(&models.Submission{}).
			Where("page_id = ?", page.ID).
			Update("page_id", nil).Error; err != nil {
			return err
		}
		if err := deleteFields(tx, page.ID); err != nil {
			return err
		}
		return tx.Delete(&page).Error
	})
}

func deleteFields(tx *gorm.DB, pageID uint64) error {
	fieldIDs := tx.Model(&models.Field{}).Select("id").Where("page_id = ?", pageID)
	if err := tx.Where("field_id IN (?)", fieldIDs).Delete(&models.FieldOption{}).Error; err != nil {
		return err
	}
	return tx.Where("page_id = ?", pageID).Delete(&models.Field{}).Error
}
