package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goinvest/internal/adapter/repository/memory"
	"github.com/iho/goinvest/internal/domain"
)

// seedFile is the fixture format accepted by SEED_FILE. Investments,
// projections and schedules are owned by other services, so the memory
// driver needs them loaded up front.
type seedFile struct {
	Investments []seedInvestment `json:"investments"`
	Projections []seedProjection `json:"projections"`
	Schedules   []seedSchedule   `json:"schedules"`
}

type seedInvestment struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	ClientID           string `json:"client_id"`
	ActiveProjectionID string `json:"active_projection_id"`
	RequestID          string `json:"request_id"`
}

type seedProjection struct {
	ID                 string          `json:"id"`
	ProductType        string          `json:"product_type"`
	Capital            decimal.Decimal `json:"capital"`
	Term               int             `json:"term"`
	NominalRate        decimal.Decimal `json:"nominal_rate"`
	TotalYield         decimal.Decimal `json:"total_yield"`
	TotalOperatingCost decimal.Decimal `json:"total_operating_cost"`
	PayoffValue        decimal.Decimal `json:"payoff_value"`
}

type seedSchedule struct {
	ID           string       `json:"id"`
	ProjectionID string       `json:"projection_id"`
	Active       bool         `json:"active"`
	Periods      []seedPeriod `json:"periods"`
}

type seedPeriod struct {
	Index           int             `json:"index"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Rate            decimal.Decimal `json:"rate"`
	Capital         decimal.Decimal `json:"capital"`
	Yield           decimal.Decimal `json:"yield"`
	OperatingCost   decimal.Decimal `json:"operating_cost"`
	AccumulatedRent decimal.Decimal `json:"accumulated_rent"`
	EndingCapital   decimal.Decimal `json:"ending_capital"`
}

func loadSeedFile(ctx context.Context, store *memory.Store, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return applySeed(ctx, store, seed, time.Now().UTC())
}

func applySeed(ctx context.Context, store *memory.Store, seed seedFile, now time.Time) error {
	for _, p := range seed.Projections {
		if p.ID == "" {
			return fmt.Errorf("projection without id: %w", domain.ErrMissingID)
		}
		if err := store.SeedProjection(ctx, &domain.Projection{
			ID:                 p.ID,
			ProductType:        p.ProductType,
			Capital:            p.Capital,
			Term:               p.Term,
			NominalRate:        p.NominalRate,
			TotalYield:         p.TotalYield,
			TotalOperatingCost: p.TotalOperatingCost,
			PayoffValue:        p.PayoffValue,
			CreatedAt:          now,
		}); err != nil {
			return err
		}
	}

	for _, s := range seed.Schedules {
		if s.ID == "" || s.ProjectionID == "" {
			return fmt.Errorf("schedule %q needs id and projection_id: %w", s.ID, domain.ErrMissingID)
		}
		periods := make([]domain.SchedulePeriod, 0, len(s.Periods))
		for _, p := range s.Periods {
			periods = append(periods, domain.SchedulePeriod(p))
		}
		if err := store.SeedSchedule(ctx, &domain.Schedule{
			ID:           s.ID,
			ProjectionID: s.ProjectionID,
			Active:       s.Active,
			Periods:      periods,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			return err
		}
	}

	for _, inv := range seed.Investments {
		if inv.ID == "" {
			return fmt.Errorf("investment without id: %w", domain.ErrMissingID)
		}
		if err := store.SeedInvestment(ctx, &domain.Investment{
			ID:                 inv.ID,
			Name:               inv.Name,
			ClientID:           inv.ClientID,
			ActiveProjectionID: inv.ActiveProjectionID,
			RequestID:          inv.RequestID,
			CreatedBy:          domain.SystemActor,
			UpdatedBy:          domain.SystemActor,
			CreatedAt:          now,
			UpdatedAt:          now,
		}); err != nil {
			return err
		}
	}

	return nil
}
