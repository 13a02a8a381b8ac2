// Package main runs the receipt reimbursement portal.
package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/archive"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/asset"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/cache"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/config"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/mirror"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/ocr"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/server"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/session"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/store"
)

func main() {
	env := config.MustLoad()
	ctx := context.Background()

	db, err := store.Open(env.DatabaseURL, env.SQLitePath)
	if err != nil {
		log.Fatal(err)
	}
	users := &store.UserRepo{DB: db}
	receipts := &store.ReceiptRepo{DB: db}

	assets, err := asset.NewCloudinary(env.CloudinaryURL, env.AssetFolder)
	if err != nil {
		log.Fatal(err)
	}

	app := &server.App{
		Users:    users,
		Receipts: receipts,
		Mirror: &mirror.Mirror{
			Assets:  assets,
			Records: receipts,
			Folder:  env.AssetFolder,
		},
		Signer:        session.New(env.SessionSecret),
		SessionMaxAge: env.SessionMaxAge,
		MaxUploadSize: env.MaxUploadSize,
	}

	if env.RedisAddr != "" {
		listings, err := cache.NewListings(ctx, env.RedisAddr, env.RedisPassword, env.RedisDB)
		if err != nil {
			log.Fatal(err)
		}
		app.Cache = listings
	}

	if env.ArchiveBucket != "" {
		arch, err := archive.New(ctx, env.Region, env.ArchiveBucket)
		if err != nil {
			log.Fatal(err)
		}
		app.Archive = arch
	}

	if env.OCRProvider == "vision" {
		app.OCR = ocr.NewVision(env.OCRCredsJSON)
	}

	f := fiber.New(fiber.Config{BodyLimit: int(env.MaxUploadSize) + 1<<20})
	app.Routes(f)

	log.Printf("starting server on port %s...", env.Port)
	if err := f.Listen(":" + env.Port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
