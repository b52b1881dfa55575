// Command seeder loads a JSON catalog file (units with tariff rows, add-on
// services) into MySQL. Entries are imported concurrently.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"pinecove/internal/adapters/observability"
	redisad "pinecove/internal/adapters/redis"
	"pinecove/internal/app"
	"pinecove/internal/domain"
	"pinecove/internal/shared"
	mysqlrepo "pinecove/internal/storage/mysql"
)

type seedTariff struct {
	WeekdayType   string `json:"weekday_type"`
	Price         int64  `json:"price"`
	ExtraBedPrice int64  `json:"extra_bed_price"`
}

type seedUnit struct {
	Name               string       `json:"name"`
	Type               string       `json:"type"`
	ShortDescription   *string      `json:"short_description"`
	FullDescription    *string      `json:"full_description"`
	Image              *string      `json:"image"`
	Capacity           int          `json:"capacity"`
	Count              int          `json:"count"`
	ExtraBedsAvailable int          `json:"extra_beds_available"`
	CheckInTime        string       `json:"check_in_time"`
	CheckOutTime       string       `json:"check_out_time"`
	Prices             []seedTariff `json:"prices"`
}

type seedServicePrice struct {
	Name          *string  `json:"name"`
	WeekdayType   string   `json:"weekday_type"`
	DurationHours *float64 `json:"duration_hours"`
	Price         int64    `json:"price"`
}

type seedService struct {
	Name              string             `json:"name"`
	ShortDescription  *string            `json:"short_description"`
	FullDescription   *string            `json:"full_description"`
	Image             *string            `json:"image"`
	IsFree            bool               `json:"is_free"`
	AgreementRequired bool               `json:"is_agreement_required"`
	Prices            []seedServicePrice `json:"prices"`
}

type seedFile struct {
	Units    []seedUnit    `json:"units"`
	Services []seedService `json:"services"`
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("file", cfg.SeedFile).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	raw, err := os.ReadFile(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("read seed file failed")
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatal().Err(err).Msg("parse seed file failed")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	catalog := app.NewCatalogService(repo, cache, cfg.CacheTTL)

	sem := semaphore.NewWeighted(int64(cfg.SeedWorkers))
	var wg sync.WaitGroup

	for _, su := range seed.Units {
		su := su

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			created, err := catalog.CreateUnit(ctx, toDomainUnit(su))
			if err != nil {
				log.Warn().Str("name", su.Name).Err(err).Msg("seed unit failed")
				return
			}
			log.Info().Int64("id", created.ID).Str("name", created.Name).Msg("seed unit ok")
		}()
	}

	for _, ss := range seed.Services {
		ss := ss

		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			created, err := catalog.CreateService(ctx, toDomainService(ss))
			if err != nil {
				log.Warn().Str("name", ss.Name).Err(err).Msg("seed service failed")
				return
			}
			log.Info().Int64("id", created.ID).Str("name", created.Name).Msg("seed service ok")
		}()
	}

	wg.Wait()
	log.Info().Msg("seeding completed")
}

func toDomainUnit(su seedUnit) domain.Unit {
	if su.CheckInTime == "" {
		su.CheckInTime = "15:00"
	}
	if su.CheckOutTime == "" {
		su.CheckOutTime = "12:00"
	}
	u := domain.Unit{
		Name:               su.Name,
		Kind:               domain.UnitKind(su.Type),
		ShortDescription:   su.ShortDescription,
		FullDescription:    su.FullDescription,
		Image:              su.Image,
		Capacity:           su.Capacity,
		InstanceCount:      su.Count,
		ExtraBedsAvailable: su.ExtraBedsAvailable,
		CheckInTime:        su.CheckInTime,
		CheckOutTime:       su.CheckOutTime,
	}
	for _, p := range su.Prices {
		u.Tariffs = append(u.Tariffs, domain.TariffRow{
			Category:      domain.DayCategory(p.WeekdayType),
			BasePrice:     domain.Money(p.Price),
			ExtraBedPrice: domain.Money(p.ExtraBedPrice),
		})
	}
	return u
}

func toDomainService(ss seedService) domain.Service {
	s := domain.Service{
		Name:              ss.Name,
		ShortDescription:  ss.ShortDescription,
		FullDescription:   ss.FullDescription,
		Image:             ss.Image,
		IsFree:            ss.IsFree,
		AgreementRequired: ss.AgreementRequired,
	}
	for _, p := range ss.Prices {
		s.Prices = append(s.Prices, domain.ServicePrice{
			Name:          p.Name,
			Category:      domain.DayCategory(p.WeekdayType),
			DurationHours: p.DurationHours,
			Price:         domain.Money(p.Price),
		})
	}
	return s
}
