// schema.go
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

// Package form holds the in-memory page schema and the validation engine that
// turns an untyped submission into a typed record or a per-field error set.
// Nothing in this package does I/O.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FieldType is the closed set of input kinds a Field may declare.
type FieldType string

const (
	TypeText       FieldType = "text"
	TypeTextarea   FieldType = "textarea"
	TypeEmail      FieldType = "email"
	TypePassword   FieldType = "password"
	TypeNumber     FieldType = "number"
	TypeDate       FieldType = "date"
	TypeCheckbox   FieldType = "checkbox"
	TypeCheckboxes FieldType = "checkboxes"
	TypeRadio      FieldType = "radio"
	TypeSelect     FieldType = "select"
	TypeFile       FieldType = "file"
	TypeHidden     FieldType = "hidden"
)

// FieldTypes lists every FieldType in declaration order.
var FieldTypes = []FieldType{
	TypeText, TypeTextarea, TypeEmail, TypePassword, TypeNumber, TypeDate,
	TypeCheckbox, TypeCheckboxes, TypeRadio, TypeSelect, TypeFile, TypeHidden,
}

func (t FieldType) Valid() bool {
	_, ok := validators[t]
	return ok
}

// IsChoice reports whether values are drawn from the field's options.
func (t FieldType) IsChoice() bool {
	return t == TypeSelect || t == TypeRadio || t == TypeCheckboxes
}

// Page is a form schema as seen by the validator. It is built once per request
// and never mutated afterwards.
type Page struct {
	ID            uint64
	Slug          string
	Title         string
	Description   string
	RequiresLogin bool
	Fields        []Field
}

// Field returns the field with the given name.
func (p Page) Field(name string) (Field, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

type Field struct {
	Name     string
	Label    string
	Type     FieldType
	Required bool
	Rules    Rules
	Options  []Option
}

// HasOption reports whether value is one of the field's option values.
func (f Field) HasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

type Option struct {
	Value string
	Label string
}

// Rules are the optional per-field validation rules. Nil pointers mean the
// rule is not set.
type Rules struct {
	MinLength *int
	MaxLength *int
	Min       *float64
	Max       *float64
	Regex     string
}

// ParseRules reads rules out of the JSON map stored with a field. Numbers may
// arrive as JSON numbers or numeric strings; unknown keys are ignored. A
// malformed rule is reported in the error and left unset; the rules that did
// parse are still returned.
func ParseRules(raw map[string]any) (Rules, error) {
	var r Rules
	var errs []error
	for key, v := range raw {
		if v == nil {
			continue
		}
		switch key {
		case "min_length", "max_length":
			n, err := toFloat(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("rule %s: %w", key, err))
				continue
			}
			i := int(n)
			if key == "min_length" {
				r.MinLength = &i
			} else {
				r.MaxLength = &i
			}
		case "min", "max":
			n, err := toFloat(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("rule %s: %w", key, err))
				continue
			}
			if key == "min" {
				r.Min = &n
			} else {
				r.Max = &n
			}
		case "regex":
			s, ok := v.(string)
			if !ok {
				errs = append(errs, fmt.Errorf("rule regex: expected string, got %T", v))
				continue
			}
			r.Regex = s
		}
	}
	return r, errors.Join(errs...)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case interface{ Float64() (float64, error) }: // json.Number from either codec
		return n.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}
