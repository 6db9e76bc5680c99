// flex_test.go
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

package types

import (
	"reflect"
	"testing"

	"github.com/goccy/go-json"
)

func TestFlexListOfFlexString(t *testing.T) {
	body := `{"name":"Ann","age":12.50,"skills":["go",7,true],"remote":false}`

	var got map[string]FlexList[FlexString]
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	want := map[string]FlexList[FlexString]{
		"name":   {"Ann"},
		"age":    {"12.50"},
		"skills": {"go", "7", "true"},
		"remote": {"false"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %#v, got %#v", want, got)
	}
}

func TestFlexStringRejectsObjects(t *testing.T) {
	var s FlexString
	if err := json.Unmarshal([]byte(`{"a":1}`), &s); err == nil {
		t.Error("Expected error for object")
	}
	var l FlexList[FlexString]
	if err := json.Unmarshal([]byte(`[["nested"]]`), &l); err == nil {
		t.Error("Expected error for nested array")
	}
}

func TestFlexStringMarshal(t *testing.T) {
	b, err := json.Marshal(FlexString("x"))
	if err != nil || string(b) != `"x"` {
		t.Errorf("Unexpected marshal result %s %v", b, err)
	}
}
