// submission_test.go
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

package form

import (
	"errors"
	"reflect"
	"testing"
)

func contactPage() Page {
	return Page{
		Slug:  "contact",
		Title: "Contact",
		Fields: []Field{
			{Name: "name", Type: TypeText, Required: true, Rules: Rules{MaxLength: intp(100)}},
			{Name: "email", Type: TypeEmail, Required: true},
			{Name: "age", Type: TypeNumber, Rules: Rules{Min: floatp(0), Max: floatp(150)}},
			{Name: "resume", Type: TypeFile, Required: true},
		},
	}
}

func TestValidateSubmissionCollectsAllErrors(t *testing.T) {
	_, err := ValidateSubmission(contactPage(), Values{
		"name":  {"Ann"},
		"email": {"bad"},
	}, nil, nil)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}

	want := map[string][]string{
		"email":  {"enter a valid email address"},
		"resume": {"this file field is required"},
	}
	if !reflect.DeepEqual(verr.Errors, want) {
		t.Errorf("Expected %v, got %v", want, verr.Errors)
	}
}

func TestValidateSubmissionBuildsRecord(t *testing.T) {
	record, err := ValidateSubmission(contactPage(), Values{
		"name":  {"Ann"},
		"email": {"ann@example.com"},
		"age":   {"41"},
		"extra": {"dropped"},
	}, Files{"resume": {upload("cv.pdf", "%PDF")}}, nil)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	want := Record{
		"name":   "Ann",
		"email":  "ann@example.com",
		"age":    int64(41),
		"resume": FileRefs{"cv.pdf"},
	}
	if !reflect.DeepEqual(record, want) {
		t.Errorf("Expected %#v, got %#v", want, record)
	}
}

func TestValidateSubmissionOptionalAbsentIsNil(t *testing.T) {
	page := Page{Fields: []Field{{Name: "note", Type: TypeText}}}
	record, err := ValidateSubmission(page, Values{}, nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	v, ok := record["note"]
	if !ok || v != nil {
		t.Errorf("Expected note present with nil value, got %v (present=%v)", v, ok)
	}
}

func TestValidateSubmissionRequiresLogin(t *testing.T) {
	page := contactPage()
	page.RequiresLogin = true

	// authentication is checked before any field
	_, err := ValidateSubmission(page, Values{}, nil, nil)
	if !errors.Is(err, ErrAuthenticationRequired) {
		t.Fatalf("Expected ErrAuthenticationRequired, got %v", err)
	}

	_, err = ValidateSubmission(page, Values{}, nil, &Identity{UserID: "u1"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected field validation for identified user, got %v", err)
	}
}

func TestFilesForPage(t *testing.T) {
	files := Files{
		"resume": {upload("cv.pdf", "x")},
		"other":  {upload("evil.sh", "y")},
	}
	kept := files.ForPage(contactPage())
	if len(kept) != 1 || len(kept["resume"]) != 1 {
		t.Errorf("Expected only resume uploads, got %v", kept)
	}
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	err := &ValidationError{Errors: map[string][]string{
		"b": {"second"},
		"a": {"first"},
	}}
	if got := err.Error(); got != "validation failed: a: first, b: second" {
		t.Errorf("Unexpected message %q", got)
	}
}

func TestIdentityHasRole(t *testing.T) {
	var anon *Identity
	if anon.HasRole("admin") {
		t.Error("Expected nil identity to have no roles")
	}
	who := &Identity{Roles: []string{"user", "admin"}}
	if !who.HasRole("admin") || who.HasRole("root") {
		t.Error("Unexpected role check result")
	}
}
