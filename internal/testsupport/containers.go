// containers.go
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

package testsupport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/localnerve/jam-build-formsdb/internal/config"
	"github.com/localnerve/jam-build-formsdb/internal/log"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// ContainerOptions describes the database (and optional Authorizer) to start.
type ContainerOptions struct {
	DBType       string
	DBImage      string
	DBPort       string
	Database     string
	User         string
	Password     string
	RootPassword string

	AuthzImage       string
	AuthzPort        string
	AuthzClientID    string
	AuthzAdminSecret string
	AuthzDatabase    string
}

// OptionsFromEnv reads container options from the environment, with defaults
// for a local MariaDB.
func OptionsFromEnv() ContainerOptions {
	return ContainerOptions{
		DBType:           envOr("DB_TYPE", "mariadb"),
		DBImage:          envOr("DB_IMAGE", "mariadb:11"),
		DBPort:           envOr("DB_PORT", "3306"),
		Database:         envOr("DB_DATABASE", "formsdb"),
		User:             envOr("DB_USER", "formsdb"),
		Password:         envOr("DB_PASSWORD", "formsdb"),
		RootPassword:     envOr("DB_ROOT_PASSWORD", "root"),
		AuthzImage:       os.Getenv("AUTHZ_IMAGE"),
		AuthzPort:        envOr("AUTHZ_PORT", "8080"),
		AuthzClientID:    os.Getenv("AUTHZ_CLIENT_ID"),
		AuthzAdminSecret: os.Getenv("AUTHZ_ADMIN_SECRET"),
		AuthzDatabase:    envOr("AUTHZ_DATABASE", "authorizer"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Containers are the running test containers. Terminate removes them.
type Containers struct {
	opts       ContainerOptions
	dbPort     nat.Port
	authzPort  nat.Port
	Network    *testcontainers.DockerNetwork
	DB         testcontainers.Container
	Authorizer testcontainers.Container
}

// StartContainers starts the database and, when an Authorizer image is
// configured, the Authorizer on a shared network.
func StartContainers(ctx context.Context, opts ContainerOptions) (*Containers, error) {
	tc := &Containers{opts: opts}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	tc.Network = nw

	tc.dbPort, err = nat.NewPort("tcp", opts.DBPort)
	if err != nil {
		tc.Terminate(ctx)
		return nil, fmt.Errorf("invalid DB port %q: %w", opts.DBPort, err)
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        opts.DBImage,
			ExposedPorts: []string{string(tc.dbPort)},
			Env:          dbInitEnv(opts),
			WaitingFor:   wait.ForListeningPort(tc.dbPort).WithStartupTimeout(90 * time.Second),
			Networks:     []string{nw.Name},
			NetworkAliases: map[string][]string{
				nw.Name: {"db"},
			},
			HostConfigModifier: func(hc *container.HostConfig) {
				hc.Tmpfs = map[string]string{dataDir(opts.DBType): "rw"}
			},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(ctx)
		return nil, fmt.Errorf("failed to start database: %w", err)
	}
	tc.DB = dbContainer

	if isMySQL(opts.DBType) {
		if err := tc.initMySQL(ctx); err != nil {
			tc.Terminate(ctx)
			return nil, err
		}
	}

	if opts.AuthzImage != "" {
		if err := tc.startAuthorizer(ctx, nw.Name); err != nil {
			tc.Terminate(ctx)
			return nil, err
		}
	}

	log.Infof("Test containers started (%s)", opts.DBType)
	return tc, nil
}

func (tc *Containers) startAuthorizer(ctx context.Context, networkName string) error {
	opts := tc.opts
	var err error
	tc.authzPort, err = nat.NewPort("tcp", opts.AuthzPort)
	if err != nil {
		return fmt.Errorf("invalid Authorizer port %q: %w", opts.AuthzPort, err)
	}

	authzDB := fmt.Sprintf("root:%s@tcp(db:%s)/%s", opts.RootPassword, opts.DBPort, opts.AuthzDatabase)
	authz, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        opts.AuthzImage,
			ExposedPorts: []string{string(tc.authzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     opts.AuthzClientID,
				"PORT":          opts.AuthzPort,
				"DATABASE_TYPE": opts.DBType,
				"DATABASE_NAME": opts.AuthzDatabase,
				"DATABASE_URL":  authzDB,
				"ADMIN_SECRET":  opts.AuthzAdminSecret,
				"ROLES":         "admin,user",
				"DEFAULT_ROLES": "user",
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:   []string{networkName},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start Authorizer: %w", err)
	}
	tc.Authorizer = authz
	return nil
}

// Config returns a service configuration that reaches the containers from
// the host.
func (tc *Containers) Config(ctx context.Context, uploadDir string) (*config.Config, error) {
	host, err := tc.DB.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := tc.DB.MappedPort(ctx, tc.dbPort)
	if err != nil {
		return nil, err
	}

	cfg := &config.Config{
		Port:              "0",
		DBType:            tc.opts.DBType,
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        tc.opts.Database,
		DBUser:            tc.opts.User,
		DBPassword:        tc.opts.Password,
		DBConnectionLimit: 5,
		UploadDir:         uploadDir,
		MaxUploadMB:       25,
		LogLevel:          "info",
	}

	if tc.Authorizer != nil {
		authzHost, err := tc.Authorizer.Host(ctx)
		if err != nil {
			return nil, err
		}
		authzPort, err := tc.Authorizer.MappedPort(ctx, tc.authzPort)
		if err != nil {
			return nil, err
		}
		cfg.AuthzURL = fmt.Sprintf("http://%s:%s", authzHost, authzPort.Port())
		cfg.AuthzClientID = tc.opts.AuthzClientID
	}
	return cfg, nil
}

// Terminate stops every started container and removes the network.
func (tc *Containers) Terminate(ctx context.Context) error {
	var errs []error
	if tc.Authorizer != nil {
		errs = append(errs, tc.Authorizer.Terminate(ctx))
	}
	if tc.DB != nil {
		errs = append(errs, tc.DB.Terminate(ctx))
	}
	if tc.Network != nil {
		errs = append(errs, tc.Network.Remove(ctx))
	}
	err := errors.Join(errs...)
	if err != nil {
		log.Warnf("Failed to clean up test containers: %v", err)
	}
	return err
}

func (tc *Containers) initMySQL(ctx context.Context) error {
	host, err := tc.DB.Host(ctx)
	if err != nil {
		return err
	}
	port, err := tc.DB.MappedPort(ctx, tc.dbPort)
	if err != nil {
		return err
	}

	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", tc.opts.RootPassword, host, port.Port()))
	if err != nil {
		return fmt.Errorf("failed to connect for setup: %w", err)
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		return fmt.Errorf("database not ready after 30 seconds: %w", err)
	}

	stmts := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", tc.opts.AuthzDatabase),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s`.authorizer_users (id CHAR(36) NOT NULL PRIMARY KEY)", tc.opts.AuthzDatabase),
		fmt.Sprintf("GRANT ALL PRIVILEGES ON `%s`.* TO '%s'@'%%'", tc.opts.Database, tc.opts.User),
		"FLUSH PRIVILEGES",
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("setup statement failed (%s): %w", stmt, err)
		}
	}
	return nil
}

func dbInitEnv(opts ContainerOptions) map[string]string {
	switch opts.DBType {
	case "postgres", "postgresql":
		return map[string]string{
			"POSTGRES_PASSWORD": opts.Password,
			"POSTGRES_USER":     opts.User,
			"POSTGRES_DB":       opts.Database,
		}
	default:
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": opts.RootPassword,
			"MYSQL_DATABASE":      opts.Database,
			"MYSQL_USER":          opts.User,
			"MYSQL_PASSWORD":      opts.Password,
		}
	}
}

func dataDir(dbType string) string {
	if dbType == "postgres" || dbType == "postgresql" {
		return "/var/lib/postgresql/data"
	}
	return "/var/lib/mysql"
}

func isMySQL(dbType string) bool {
	return dbType == "mysql" || dbType == "mariadb"
}
