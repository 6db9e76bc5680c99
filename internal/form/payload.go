// payload.go
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
	"io"
	"mime/multipart"
	"slices"
)

// Values is the raw submitted data: every key may carry several values, as
// multipart and urlencoded bodies allow.
type Values map[string][]string

// Files groups uploads by the field name they were submitted under.
type Files map[string][]Upload

// ForPage keeps only the uploads submitted under a field of the page.
func (fs Files) ForPage(page Page) Files {
	out := make(Files, len(fs))
	for _, f := range page.Fields {
		if uploads := fs[f.Name]; len(uploads) > 0 {
			out[f.Name] = uploads
		}
	}
	return out
}

// Upload is one submitted file. Open may be called more than once.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// UploadFromHeader adapts a parsed multipart file.
func UploadFromHeader(fh *multipart.FileHeader) Upload {
	return Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// Record maps field names to validated values. A value is one of nil, string,
// int64, float64, bool, []string or FileRefs.
type Record map[string]any

// FileRefs is the validated value of a file field: the original names of the
// uploads. The writer replaces it with stored paths.
type FileRefs []string

// Identity is an authenticated submitter. A nil *Identity is anonymous.
type Identity struct {
	UserID string
	Email  string
	Roles  []string
}

func (i *Identity) HasRole(role string) bool {
	return i != nil && slices.Contains(i.Roles, role)
}
