// auth.go
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

package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-formsdb/internal/form"
	"github.com/localnerve/jam-build-formsdb/internal/log"
	"github.com/localnerve/jam-build-formsdb/internal/services"
	"github.com/localnerve/jam-build-formsdb/internal/types"
)

const (
	// SessionCookie is the Authorizer session cookie name.
	SessionCookie = "cookie_session"
	identityKey   = "identity"
)

// initializer is implemented by validators that connect lazily.
type initializer interface {
	Init(protocol, host string) error
}

// Identity returns the identity resolved for the request, or nil.
func Identity(c *fiber.Ctx) *form.Identity {
	who, _ := c.Locals(identityKey).(*form.Identity)
	return who
}

func resolve(c *fiber.Ctx, v services.SessionValidator, roles []string) (*form.Identity, error) {
	if lazy, ok := v.(initializer); ok {
		if err := lazy.Init(c.Protocol(), c.Hostname()); err != nil {
			return nil, err
		}
	}
	return v.ValidateSession(c.Cookies(SessionCookie), roles)
}

// Identify resolves the session cookie, when present, to an identity. Requests
// without a valid session continue anonymously. A nil validator disables it.
func Identify(v services.SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if v == nil || c.Cookies(SessionCookie) == "" {
			return c.Next()
		}

		who, err := resolve(c, v, nil)
		if err != nil {
			log.Debugf("Continuing anonymously: %v", err)
			return c.Next()
		}
		c.Locals(identityKey, who)
		return c.Next()
	}
}

// AuthAdmin only lets sessions with the admin role through. Without a
// validator every request is refused.
func AuthAdmin(v services.SessionValidator) fiber.Handler {
	const errorType = "form.authorization.admin"

	return func(c *fiber.Ctx) error {
		if v == nil {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "Authorization is not configured",
				Type:    errorType,
			}
		}
		if c.Cookies(SessionCookie) == "" {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "Authorizer cookie \"" + SessionCookie + "\" not found",
				Type:    errorType,
			}
		}

		who, err := resolve(c, v, []string{"admin"})
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "Invalid session: " + err.Error(),
				Type:    errorType,
			}
		}

		c.Locals(identityKey, who)
		return c.Next()
	}
}
