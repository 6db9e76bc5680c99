// submissions.go
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
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-formsdb/internal/form"
	"github.com/localnerve/jam-build-formsdb/internal/middleware"
	"github.com/localnerve/jam-build-formsdb/internal/models"
	"github.com/localnerve/jam-build-formsdb/internal/services"
	"github.com/localnerve/jam-build-formsdb/internal/types"
	"gorm.io/gorm"
)

// SubmissionHandler accepts submissions and serves them to admins.
type SubmissionHandler struct {
	DB    *gorm.DB
	Store services.FileStore
}

type SubmissionResponse struct {
	ID        uint64         `json:"id"`
	Page      string         `json:"page,omitempty"`
	UserID    *string        `json:"user_id,omitempty"`
	Data      map[string]any `json:"data"`
	IPAddress string         `json:"ip_address,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Files     []FileResponse `json:"files"`
}

type FileResponse struct {
	Field        string    `json:"field"`
	Path         string    `json:"path"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type,omitempty"`
	Size         int64     `json:"size"`
	Checksum     string    `json:"checksum"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// SubmitResponse is the answer to an accepted submission.
type SubmitResponse struct {
	OK        bool           `json:"ok"`
	ID        uint64         `json:"id"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

func toSubmissionResponse(s models.Submission, slug string) SubmissionResponse {
	out := SubmissionResponse{
		ID:        s.ID,
		Page:      slug,
		UserID:    s.UserID,
		Data:      s.Data,
		IPAddress: s.IPAddress,
		Meta:      s.Meta,
		CreatedAt: s.CreatedAt,
		Files:     make([]FileResponse, len(s.Files)),
	}
	for i, f := range s.Files {
		out.Files[i] = FileResponse{
			Field:        f.FieldName,
			Path:         f.Path,
			OriginalName: f.OriginalName,
			ContentType:  f.ContentType,
			Size:         f.Size,
			Checksum:     f.Checksum,
			UploadedAt:   f.UploadedAt,
		}
	}
	return out
}

// parseSubmission reads values and files from a multipart, urlencoded or
// JSON body.
func parseSubmission(c *fiber.Ctx) (form.Values, form.Files, error) {
	values := form.Values{}
	files := form.Files{}

	contentType := strings.ToLower(string(c.Request().Header.ContentType()))
	switch {
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		mf, err := c.MultipartForm()
		if err != nil {
			return nil, nil, badRequest("Invalid multipart body: " + err.Error())
		}
		for name, vs := range mf.Value {
			values[name] = append(values[name], vs...)
		}
		for name, headers := range mf.File {
			for _, fh := range headers {
				files[name] = append(files[name], form.UploadFromHeader(fh))
			}
		}

	case strings.HasPrefix(contentType, fiber.MIMEApplicationForm):
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			name := string(key)
			values[name] = append(values[name], string(value))
		})

	case strings.HasPrefix(contentType, fiber.MIMEApplicationJSON):
		var body map[string]types.FlexList[types.FlexString]
		if err := c.BodyParser(&body); err != nil {
			return nil, nil, badRequest("Invalid JSON body: " + err.Error())
		}
		for name, list := range body {
			for _, v := range list {
				values[name] = append(values[name], v.String())
			}
		}

	default:
		if len(c.Body()) > 0 {
			return nil, nil, &types.CustomError{
				Code:    fiber.StatusUnsupportedMediaType,
				Message: "Unsupported content type " + contentType,
				Type:    "form.request",
			}
		}
	}
	return values, files, nil
}

func badRequest(message string) error {
	return &types.CustomError{Code: fiber.StatusBadRequest, Message: message, Type: "form.request"}
}

// Submit handles POST /api/pages/:slug/submit
// @Summary Submit a page
// @Description Validate and store a submission. Accepts multipart (with files), urlencoded or JSON bodies.
// @Tags Pages
// @Accept mpfd,x-www-form-urlencoded,json
// @Produce json
// @Param slug path string true "Page slug"
// @Success 201 {object} SubmitResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /pages/{slug}/submit [post]
func (h *SubmissionHandler) Submit(c *fiber.Ctx) error {
	values, files, err := parseSubmission(c)
	if err != nil {
		return err
	}

	meta := map[string]any{"user_agent": c.Get(fiber.HeaderUserAgent)}
	if id := middleware.GetRequestID(c); id != "" {
		meta["request_id"] = id
	}

	sub, err := services.Submit(c.UserContext(), h.DB, h.Store, c.Params("slug"), services.SubmitInput{
		Values:   values,
		Files:    files,
		Identity: middleware.Identity(c),
		IP:       clientIP(c),
		Meta:     meta,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(SubmitResponse{
		OK:        true,
		ID:        sub.ID,
		Data:      sub.Data,
		CreatedAt: sub.CreatedAt,
	})
}

// ListSubmissions handles GET /api/admin/pages/:slug/submissions
// @Summary List submissions
// @Description List a page's submissions, most recent first
// @Tags Admin
// @Produce json
// @Param slug path string true "Page slug"
// @Param limit query int false "Page size (default 50, max 500)"
// @Param offset query int false "Rows to skip"
// @Success 200 {array} SubmissionResponse
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/pages/{slug}/submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *fiber.Ctx) error {
	slug := c.Params("slug")
	subs, err := services.ListSubmissions(h.DB.WithContext(c.UserContext()), slug, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return respondError(c, err)
	}

	out := make([]SubmissionResponse, len(subs))
	for i, s := range subs {
		out[i] = toSubmissionResponse(s, slug)
	}
	return c.JSON(out)
}

// GetSubmission handles GET /api/admin/pages/:slug/submissions/:id
// @Summary Get a submission
// @Tags Admin
// @Produce json
// @Param slug path string true "Page slug"
// @Param id path int true "Submission id"
// @Success 200 {object} SubmissionResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/pages/{slug}/submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest("Invalid submission id")
	}

	slug := c.Params("slug")
	sub, err := services.GetSubmission(h.DB.WithContext(c.UserContext()), slug, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSubmissionResponse(*sub, slug))
}
