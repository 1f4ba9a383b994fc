// Command seed imports a JSON data export into the configured store and/or
// sets the admin password. It uses the same environment as the API server.
package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/portfolio-site/portfolio-api/internal/auth"
	"github.com/portfolio-site/portfolio-api/internal/config"
	"github.com/portfolio-site/portfolio-api/internal/portfolio/repository"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
)

func main() {
	file := flag.String("file", "", "JSON file with {content, submissions} to import")
	password := flag.String("password", "", "new admin password (defaults to ADMIN_PASSWORD when importing into an empty store)")
	force := flag.Bool("force", false, "overwrite an existing document")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if *file == "" && *password == "" {
		logger.Fatalf("nothing to do: pass -file and/or -password")
	}

	opts := seedOptions{force: *force, now: time.Now()}
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			logger.Fatalf("open %s: %v", *file, err)
		}
		opts.data, err = readExport(f)
		_ = f.Close()
		if err != nil {
			logger.Fatalf("%v", err)
		}
	}

	pw := *password
	if pw == "" && *file != "" {
		pw = cfg.Admin.BootstrapPassword
	}
	if pw != "" {
		if v := auth.PolicyViolations(pw); len(v) > 0 {
			logger.Fatalf("password rejected: %s", strings.Join(v, "; "))
		}
		opts.hash, err = auth.NewPasswords(auth.DefaultCost).Hash(pw)
		if err != nil {
			logger.Fatalf("%v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open store: %v", err)
	}
	defer closeStore()

	doc, err := seed(ctx, store, opts)
	if err != nil {
		logger.Fatalf("seed failed: %v", err)
	}
	logger.Infof("seeded %s store: %d submissions, password set=%v", cfg.Store.Driver, len(doc.Submissions), opts.hash != "")
}
