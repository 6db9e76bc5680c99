// auth_service.go
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

package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/localnerve/authorizer-go"
	"github.com/localnerve/jam-build-formsdb/internal/config"
	"github.com/localnerve/jam-build-formsdb/internal/form"
	"github.com/localnerve/jam-build-formsdb/internal/log"
	"github.com/localnerve/jam-build-formsdb/internal/utils"
)

// ErrInvalidSession means the session cookie did not validate.
var ErrInvalidSession = errors.New("session is not valid")

// SessionValidator resolves a session cookie to the submitter's identity.
// When roles are given the session must carry one of them.
type SessionValidator interface {
	ValidateSession(cookie string, roles []string) (*form.Identity, error)
}

var (
	authMu     sync.Mutex
	authClient *authorizer.AuthorizerClient
)

// IsAuthorizerInitialized returns true if the Authorizer client is initialized
func IsAuthorizerInitialized() bool {
	authMu.Lock()
	defer authMu.Unlock()
	return authClient != nil
}

// InitAuthorizer creates the shared Authorizer client. The redirect URL is
// taken from the first request that needs it. A failed attempt leaves the
// client unset, so the next request tries again.
func InitAuthorizer(cfg *config.Config, requestProtocol, requestHost string) error {
	authMu.Lock()
	defer authMu.Unlock()
	if authClient != nil {
		return nil
	}

	if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
		return fmt.Errorf("authorizer ping failed: %w", err)
	}

	redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
	log.Infof("Initializing Authorizer: authorizerURL=%s, clientID=%s, redirectURL=%s",
		cfg.AuthzURL, cfg.AuthzClientID, redirectURL)

	client, err := authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create authorizer client: %w", err)
	}
	authClient = client
	return nil
}

func currentClient() *authorizer.AuthorizerClient {
	authMu.Lock()
	defer authMu.Unlock()
	return authClient
}

// Authorizer validates sessions against the configured Authorizer service.
type Authorizer struct {
	cfg *config.Config
}

func NewAuthorizer(cfg *config.Config) *Authorizer {
	return &Authorizer{cfg: cfg}
}

// Init connects the shared client on first use.
func (a *Authorizer) Init(protocol, host string) error {
	return InitAuthorizer(a.cfg, protocol, host)
}

func (a *Authorizer) ValidateSession(cookie string, roles []string) (*form.Identity, error) {
	client := currentClient()
	if client == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	rolePtrs := make([]*string, len(roles))
	for i := range roles {
		rolePtrs[i] = &roles[i]
	}

	res, err := client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolePtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid {
		return nil, ErrInvalidSession
	}
	return identityFromUser(res.User)
}

// identityFromUser reads the id, email and roles of the Authorizer user by
// their JSON names.
func identityFromUser(user any) (*form.Identity, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}

	var u struct {
		ID    string    `json:"id"`
		Email *string   `json:"email"`
		Roles []*string `json:"roles"`
	}
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("session user has no id")
	}

	who := &form.Identity{UserID: u.ID}
	if u.Email != nil {
		who.Email = *u.Email
	}
	for _, r := range u.Roles {
		if r != nil {
			who.Roles = append(who.Roles, *r)
		}
	}
	return who, nil
}
