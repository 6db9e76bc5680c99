// routes.go
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
	"github.com/localnerve/jam-build-formsdb/internal/middleware"
	"github.com/localnerve/jam-build-formsdb/internal/services"
	"gorm.io/gorm"
)

// Register mounts the API under /api. sessions may be nil when no Authorizer
// is configured.
func Register(app *fiber.App, db *gorm.DB, store services.FileStore, sessions services.SessionValidator) {
	pages := &PageHandler{DB: db}
	submissions := &SubmissionHandler{DB: db, Store: store}

	api := app.Group("/api", middleware.RequestID(), middleware.Identify(sessions))

	api.Get("/pages", pages.ListPages)
	api.Get("/pages/:slug", pages.GetPage)
	api.Post("/pages/:slug/submit", submissions.Submit)

	admin := api.Group("/admin", middleware.AuthAdmin(sessions))
	admin.Get("/pages/:slug/submissions", submissions.ListSubmissions)
	admin.Get("/pages/:slug/submissions/:id", submissions.GetSubmission)
	admin.Delete("/pages/:slug", pages.DeletePage)
}
