// json_test.go
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
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func TestJSONRecordValue(t *testing.T) {
	var empty JSONRecord
	v, err := empty.Value()
	if err != nil || v != "{}" {
		t.Errorf("Expected {} for nil record, got %v %v", v, err)
	}

	v, err = JSONRecord{"age": int64(41), "note": nil}.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != `{"age":41,"note":null}` {
		t.Errorf("Unexpected encoding %v", v)
	}
}

func TestJSONRecordScanKeepsIntegers(t *testing.T) {
	var r JSONRecord
	if err := r.Scan([]byte(`{"id":9007199254740993,"score":12.5,"tags":["a"]}`)); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if r["id"] != json.Number("9007199254740993") {
		t.Errorf("Expected exact integer, got %#v", r["id"])
	}
	if r["score"] != json.Number("12.5") {
		t.Errorf("Expected 12.5, got %#v", r["score"])
	}

	if err := r.Scan(`{"x":1}`); err != nil || len(r) != 1 {
		t.Errorf("Expected string scan to work, got %v %v", r, err)
	}

	if err := r.Scan(nil); err != nil || len(r) != 0 {
		t.Errorf("Expected empty record for NULL, got %v %v", r, err)
	}

	if err := r.Scan(42); err == nil {
		t.Error("Expected error for unsupported type")
	}
}

func TestJSONColumnsFollowDialect(t *testing.T) {
	s, err := schema.Parse(&Submission{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	fs, err := schema.Parse(&Field{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// a fixed column type would override the per-dialect type below
	for _, f := range []*schema.Field{s.LookUpField("meta"), fs.LookUpField("validation")} {
		if f == nil {
			t.Fatal("Expected meta and validation columns")
		}
		if typ := f.TagSettings["TYPE"]; typ != "" {
			t.Errorf("Expected no fixed type on %s, got %q", f.DBName, typ)
		}
	}

	db := &gorm.DB{Config: &gorm.Config{Dialector: sqlserver.Open("")}}
	if got := (datatypes.JSONMap{}).GormDBDataType(db, nil); got != "NVARCHAR(MAX)" {
		t.Errorf("Expected NVARCHAR(MAX) on sqlserver, got %q", got)
	}
	if got := (JSONRecord{}).GormDBDataType(db, nil); got != "NVARCHAR(MAX)" {
		t.Errorf("Expected NVARCHAR(MAX) for the record on sqlserver, got %q", got)
	}
}
