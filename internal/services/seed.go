// seed.go
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
	"io"
	"regexp"

	"github.com/localnerve/jam-build-formsdb/internal/form"
	"github.com/localnerve/jam-build-formsdb/internal/log"
	"github.com/localnerve/jam-build-formsdb/internal/models"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	slugPattern      = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	fieldNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

type seedDocument struct {
	Pages []seedPage `yaml:"pages"`
}

type seedPage struct {
	Slug          string      `yaml:"slug"`
	Title         string      `yaml:"title"`
	Description   string      `yaml:"description"`
	Active        *bool       `yaml:"active"`
	RequiresLogin bool        `yaml:"requires_login"`
	Fields        []seedField `yaml:"fields"`
}

type seedField struct {
	Name        string         `yaml:"name"`
	Label       string         `yaml:"label"`
	Type        string         `yaml:"type"`
	Placeholder string         `yaml:"placeholder"`
	Default     string         `yaml:"default"`
	HelpText    string         `yaml:"help_text"`
	Required    bool           `yaml:"required"`
	Validation  map[string]any `yaml:"validation"`
	Options     []seedOption   `yaml:"options"`
}

type seedOption struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// LoadSeed reads page schemas from a YAML document. Pages are active unless
// they say otherwise; field and option order follows the document.
func LoadSeed(r io.Reader) ([]models.Page, error) {
	var doc seedDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("seed document is empty")
		}
		return nil, fmt.Errorf("failed to parse seed document: %w", err)
	}

	slugs := make(map[string]struct{}, len(doc.Pages))
	pages := make([]models.Page, 0, len(doc.Pages))
	for _, sp := range doc.Pages {
		if !slugPattern.MatchString(sp.Slug) {
			return nil, fmt.Errorf("page %q: invalid slug", sp.Slug)
		}
		if _, dup := slugs[sp.Slug]; dup {
			return nil, fmt.Errorf("page %q: duplicate slug", sp.Slug)
		}
		slugs[sp.Slug] = struct{}{}

		page, err := seedToPage(sp)
		if err != nil {
			return nil, fmt.Errorf("page %q: %w", sp.Slug, err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func seedToPage(sp seedPage) (models.Page, error) {
	page := models.Page{
		Slug:          sp.Slug,
		Title:         sp.Title,
		Description:   sp.Description,
		IsActive:      sp.Active == nil || *sp.Active,
		RequiresLogin: sp.RequiresLogin,
	}
	if page.Title == "" {
		page.Title = sp.Slug
	}

	names := make(map[string]struct{}, len(sp.Fields))
	for i, sf := range sp.Fields {
		if !fieldNamePattern.MatchString(sf.Name) {
			return page, fmt.Errorf("field %q: invalid name", sf.Name)
		}
		if _, dup := names[sf.Name]; dup {
			return page, fmt.Errorf("field %q: duplicate name", sf.Name)
		}
		names[sf.Name] = struct{}{}

		ft := form.FieldType(sf.Type)
		if !ft.Valid() {
			return page, fmt.Errorf("field %q: unknown type %q", sf.Name, sf.Type)
		}
		rules, err := form.ParseRules(sf.Validation)
		if err != nil {
			return page, fmt.Errorf("field %q: %w", sf.Name, err)
		}
		if rules.Regex != "" {
			if _, err := regexp.Compile(rules.Regex); err != nil {
				return page, fmt.Errorf("field %q: %w", sf.Name, err)
			}
		}
		if len(sf.Options) > 0 && !ft.IsChoice() {
			return page, fmt.Errorf("field %q: options on a %s field", sf.Name, ft)
		}

		field := models.Field{
			Name:         sf.Name,
			Label:        sf.Label,
			Type:         sf.Type,
			Placeholder:  sf.Placeholder,
			DefaultValue: sf.Default,
			HelpText:     sf.HelpText,
			Required:     sf.Required,
			SortOrder:    i,
		}
		if len(sf.Validation) > 0 {
			field.Validation = datatypes.JSONMap(sf.Validation)
		}
		for j, so := range sf.Options {
			label := so.Label
			if label == "" {
				label = so.Value
			}
			field.Options = append(field.Options, models.FieldOption{
				Value:     so.Value,
				Label:     label,
				SortOrder: j,
			})
		}
		page.Fields = append(page.Fields, field)
	}
	return page, nil
}

// ApplySeed saves every page, replacing stored pages with the same slug.
func ApplySeed(db *gorm.DB, pages []models.Page) error {
	for i := range pages {
		if err := SavePage(db, &pages[i]); err != nil {
			return fmt.Errorf("failed to save page %s: %w", pages[i].Slug, err)
		}
		log.Infof("Seeded page %s (%d fields)", pages[i].Slug, len(pages[i].Fields))
	}
	return nil
}
