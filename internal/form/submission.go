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

package form

// ValidateSubmission checks a raw submission against every field of the page.
// It returns the typed record, ErrAuthenticationRequired when the page is
// login-gated and who is nil, or a *ValidationError holding all field errors.
// Keys that are not fields of the page are dropped.
func ValidateSubmission(page Page, values Values, files Files, who *Identity) (Record, error) {
	if page.RequiresLogin && who == nil {
		return nil, ErrAuthenticationRequired
	}

	record := make(Record, len(page.Fields))
	errs := make(map[string][]string)
	for _, f := range page.Fields {
		value, msgs := ValidateField(f, values[f.Name], files[f.Name])
		if len(msgs) > 0 {
			errs[f.Name] = msgs
			continue
		}
		record[f.Name] = value
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return record, nil
}
