// pages.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-formsdb/internal/models"
	"github.com/localnerve/jam-build-formsdb/internal/services"
	"gorm.io/gorm"
)

// PageHandler serves page schemas.
type PageHandler struct {
	DB *gorm.DB
}

type PageSummary struct {
	ID            uint64 `json:"id"`
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	RequiresLogin bool   `json:"requires_login"`
}

type PageSchema struct {
	PageSummary
	Fields []FieldSchema `json:"fields"`
}

type FieldSchema struct {
	Name        string         `json:"name"`
	Label       string         `json:"label"`
	Type        string         `json:"type"`
	Required    bool           `json:"required"`
	Placeholder string         `json:"placeholder,omitempty"`
	Default     string         `json:"default,omitempty"`
	HelpText    string         `json:"help_text,omitempty"`
	Validation  map[string]any `json:"validation,omitempty"`
	Options     []OptionSchema `json:"options,omitempty"`
}

type OptionSchema struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func summarize(p models.Page) PageSummary {
	return PageSummary{
		ID:            p.ID,
		Slug:          p.Slug,
		Title:         p.Title,
		Description:   p.Description,
		RequiresLogin: p.RequiresLogin,
	}
}

func toPageSchema(p models.Page) PageSchema {
	out := PageSchema{PageSummary: summarize(p), Fields: make([]FieldSchema, len(p.Fields))}
	for i, f := range p.Fields {
		fs := FieldSchema{
			Name:        f.Name,
			Label:       f.Label,
			Type:        f.Type,
			Required:    f.Required,
			Placeholder: f.Placeholder,
			Default:     f.DefaultValue,
			HelpText:    f.HelpText,
			Validation:  f.Validation,
		}
		for _, o := range f.Options {
			fs.Options = append(fs.Options, OptionSchema{Value: o.Value, Label: o.Label})
		}
		out.Fields[i] = fs
	}
	return out
}

// ListPages handles GET /api/pages
// @Summary List pages
// @Description List the pages that accept submissions
// @Tags Pages
// @Produce json
// @Success 200 {array} PageSummary
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /pages [get]
func (h *PageHandler) ListPages(c *fiber.Ctx) error {
	pages, err := services.ListActivePages(h.DB.WithContext(c.UserContext()))
	if err != nil {
		return respondError(c, err)
	}

	out := make([]PageSummary, len(pages))
	for i, p := range pages {
		out[i] = summarize(p)
	}
	return c.JSON(out)
}

// GetPage handles GET /api/pages/:slug
// @Summary Get a page schema
// @Description Get the fields of an active page in display order
// @Tags Pages
// @Produce json
// @Param slug path string true "Page slug"
// @Success 200 {object} PageSchema
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /pages/{slug} [get]
func (h *PageHandler) GetPage(c *fiber.Ctx) error {
	page, err := services.GetActivePage(h.DB.WithContext(c.UserContext()), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toPageSchema(*page))
}

// DeletePage handles DELETE /api/admin/pages/:slug
// @Summary Delete a page
// @Description Delete a page with its fields; its submissions are kept
// @Tags Admin
// @Produce json
// @Param slug path string true "Page slug"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/pages/{slug} [delete]
func (h *PageHandler) DeletePage(c *fiber.Ctx) error {
	if err := services.DeletePage(h.DB.WithContext(c.UserContext()), c.Params("slug")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
