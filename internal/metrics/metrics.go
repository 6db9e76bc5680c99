// metrics.go
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

// Package metrics registers the service's domain counters with the default
// prometheus registry; fiberprometheus serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes.
const (
	OutcomeAccepted        = "accepted"
	OutcomeInvalid         = "invalid"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeNotFound        = "not_found"
	OutcomeFailed          = "failed"
)

var (
	// SubmissionsTotal counts submit attempts by page and outcome. Unknown
	// slugs are counted under page "unknown".
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formsdb_submissions_total",
			Help: "Form submissions by page and outcome",
		},
		[]string{"page", "outcome"},
	)

	StoredFilesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "formsdb_stored_files_total",
			Help: "Uploaded files committed with a submission",
		},
	)

	StoredBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "formsdb_stored_bytes_total",
			Help: "Bytes of uploaded files committed with a submission",
		},
	)
)

// UnknownPage labels attempts whose slug did not resolve to a page.
const UnknownPage = "unknown"

// Submission records one submit attempt.
func Submission(page, outcome string) {
	if outcome == OutcomeNotFound {
		page = UnknownPage
	}
	SubmissionsTotal.WithLabelValues(page, outcome).Inc()
}

// StoredFiles records files that became visible with a committed submission.
func StoredFiles(count int, bytes int64) {
	StoredFilesTotal.Add(float64(count))
	StoredBytesTotal.Add(float64(bytes))
}
