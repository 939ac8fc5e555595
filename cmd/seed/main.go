// Seeds the agency registry with the city's starting roster. Safe to run
// repeatedly; agencies already present are skipped.
package main

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
)

var seedAgencies = []domain.Agency{
	{Name: "Sanitation Department", ContactEmail: "sanitation@city.gov", Categories: []string{"sanitation", "waste"}},
	{Name: "Road Maintenance", ContactEmail: "roads@city.gov", Categories: []string{"roads", "potholes"}},
	{Name: "Public Utilities", ContactEmail: "utilities@city.gov", Categories: []string{"water", "electricity"}},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	repo := repository.NewAgencyRepository(pg.PoolHandle())
	for _, agency := range seedAgencies {
		existing, err := repo.GetByContactEmail(ctx, agency.ContactEmail)
		if err == nil {
			logger.Info("agency already present",
				zap.Int64("agency_id", existing.ID),
				zap.String("name", existing.Name))
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			logger.Fatal("failed to check agency", zap.Error(err))
		}

		toCreate := agency
		if err := repo.Create(ctx, &toCreate); err != nil {
			logger.Fatal("failed to seed agency", zap.String("name", agency.Name), zap.Error(err))
		}
		logger.Info("agency seeded",
			zap.Int64("agency_id", toCreate.ID),
			zap.String("name", toCreate.Name))
	}
}
