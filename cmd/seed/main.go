package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"pos-service/internal/auth"
	"pos-service/internal/config"
	"pos-service/internal/domain"
	dbinfra "pos-service/internal/infra/mysql"
	"pos-service/internal/logger"
	repo "pos-service/internal/repository/mysql"
	"pos-service/internal/services"
)

type seedItem struct {
	name  string
	price int64
}

type seedCategory struct {
	name  string
	kind  domain.CategoryType
	items []seedItem
}

var defaultMenu = []seedCategory{
	{
		name: "Meals",
		kind: domain.CategoryFood,
		items: []seedItem{
			{"Nasi Goreng Kanz", 35000},
			{"Nasi Goreng Kampung", 35000},
			{"Mie Tek-tek", 25000},
			{"Ayam Geprek", 35000},
			{"Iga Bakar", 60000},
		},
	},
	{
		name: "Drinks & Dessert",
		kind: domain.CategoryDrink,
		items: []seedItem{
			{"Kopi Susu Gula Aren", 25000},
			{"Matcha Lovely", 30000},
			{"Vanilla Cookies Cream", 30000},
			{"Ice Tea", 10000},
		},
	},
}

func main() {
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of the printed development tokens")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "text").WithError(err).Fatal("config")
	}
	log := logger.Component(logger.New(cfg.LogLevel, cfg.LogFormat), "seed")

	db, err := dbinfra.Open(dbinfra.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseDSN})
	if err != nil {
		log.WithError(err).Fatal("db: connect")
	}

	ctx := context.Background()
	menu := services.NewMenuService(repo.NewStore(db), log)

	existing, err := menu.ListCatalog(ctx)
	if err != nil {
		log.WithError(err).Fatal("read catalog")
	}
	if len(existing) > 0 {
		log.WithField("categories", len(existing)).Info("catalog already seeded, skipping menu")
	} else {
		for _, sc := range defaultMenu {
			cat, err := menu.CreateCategory(ctx, sc.name, string(sc.kind))
			if err != nil {
				log.WithError(err).WithField("category", sc.name).Fatal("create category")
			}
			for _, si := range sc.items {
				if _, err := menu.CreateItem(ctx, si.name, si.price, cat.ID); err != nil {
					log.WithError(err).WithField("item", si.name).Fatal("create menu item")
				}
			}
			log.WithField("category", cat.Name).WithField("items", len(sc.items)).Info("seeded category")
		}
	}

	for _, role := range domain.Roles {
		tok, err := auth.GenerateToken(cfg.JWTSecret, "dev-"+string(role), role, *tokenTTL)
		if err != nil {
			log.WithError(err).Fatal("generate token")
		}
		fmt.Printf("%-8s %s\n", role, tok)
	}
}
