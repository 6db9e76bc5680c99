// common.go
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
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-formsdb/internal/form"
	"github.com/localnerve/jam-build-formsdb/internal/log"
	"github.com/localnerve/jam-build-formsdb/internal/services"
	"github.com/localnerve/jam-build-formsdb/internal/types"
	"github.com/localnerve/jam-build-formsdb/internal/utils"
)

// clientIP is the first X-Forwarded-For entry, else the peer address.
func clientIP(c *fiber.Ctx) string {
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return c.IP()
}

// respondError maps service errors onto the error envelope.
func respondError(c *fiber.Ctx, err error) error {
	slug := c.Params("slug")

	var verr *form.ValidationError
	var serr *form.StorageError
	switch {
	case errors.Is(err, form.ErrSchemaNotFound):
		return utils.NotFoundResponse(c, fmt.Sprintf("Page '%s' not found", slug), "form.page.notfound")
	case errors.Is(err, services.ErrSubmissionNotFound):
		return utils.NotFoundResponse(c, fmt.Sprintf("Submission '%s' not found", c.Params("id")), "form.submission.notfound")
	case errors.Is(err, form.ErrAuthenticationRequired):
		return utils.ErrorResponse(c, "Authentication required", fiber.StatusUnauthorized, "form.authentication")
	case errors.As(err, &verr):
		return utils.ValidationErrorResponse(c, verr.Errors)
	case errors.As(err, &serr):
		log.Errorf("page %s: %v", slug, err)
		return utils.ErrorResponse(c, "Submission could not be stored", fiber.StatusInternalServerError, "form.storage")
	}

	log.Errorf("%s %s: %v", c.Method(), c.OriginalURL(), err)
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "form.internal")
}

// ErrorHandler answers errors returned from handlers and middleware with the
// error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var cerr *types.CustomError
	if errors.As(err, &cerr) {
		if len(cerr.Errors) > 0 {
			return utils.ValidationErrorResponse(c, cerr.Errors)
		}
		return utils.ErrorResponse(c, cerr.Message, cerr.Code, cerr.Type)
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		errorType := "http"
		if ferr.Code == fiber.StatusRequestEntityTooLarge {
			errorType = "form.request.size"
		}
		return utils.ErrorResponse(c, ferr.Message, ferr.Code, errorType)
	}

	return respondError(c, err)
}

// NotFound answers requests that matched no route.
func NotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, "[404] Resource Not Found", "http")
}
