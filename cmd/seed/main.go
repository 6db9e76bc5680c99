// main.go
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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/localnerve/jam-build-formsdb/data"
	"github.com/localnerve/jam-build-formsdb/internal/config"
	"github.com/localnerve/jam-build-formsdb/internal/database"
	"github.com/localnerve/jam-build-formsdb/internal/log"
	"github.com/localnerve/jam-build-formsdb/internal/services"
)

func main() {
	var showHelp, dryRun bool
	var pagesFile, envFilename string
	flag.BoolVar(&showHelp, "h", false, "show help")
	flag.BoolVar(&dryRun, "n", false, "validate the page schemas without writing them")
	flag.StringVar(&pagesFile, "f", "", "path to a pages YAML file")
	flag.StringVar(&envFilename, "e", "", "path to the .env file")
	flag.Parse()

	usage := `
Create or replace page schemas from a YAML document.

Usage:

seed [-h] [-n] [-f PAGES_FILE] [-e ENV_FILE_PATH]

PAGES_FILE: pages YAML, the built-in sample pages when omitted
ENV_FILE_PATH: path to the .env file

example
  seed -f /path/to/pages.yaml -e /path/to/.env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	var src io.Reader = strings.NewReader(data.SamplePages)
	if pagesFile != "" {
		f, err := os.Open(pagesFile)
		if err != nil {
			log.Fatalf("Failed to open %s: %v", pagesFile, err)
		}
		defer f.Close()
		src = f
	}

	pages, err := services.LoadSeed(src)
	if err != nil {
		log.Fatalf("Invalid page schemas: %v", err)
	}
	if dryRun {
		for _, p := range pages {
			fmt.Printf("%s: %d fields\n", p.Slug, len(p.Fields))
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.SetLevel(log.ParseLevel(cfg.LogLevel))

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := services.ApplySeed(db, pages); err != nil {
		log.Fatalf("Failed to seed pages: %v", err)
	}
	log.Infof("Seeded %d pages", len(pages))
}
