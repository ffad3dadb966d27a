// seed creates the schema, a first admin user and, optionally, loads the items master and the
// roof type codes from CSV files exported from the office spreadsheets (Windows-1252 or UTF-8).
//
// Usage: go run ./cmd/seed -admin admin -password secret [-items items.csv] [-roof-types roof_types.csv]
//
// items.csv: item_code,description,uom
// roof_types.csv: roof_type,cost_code (file order is the match order)
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/roofing-ops/internal/application/dto"
	"github.com/jhoicas/roofing-ops/internal/application/usecase"
	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/infrastructure/postgres"
	"github.com/jhoicas/roofing-ops/pkg/config"
	"github.com/jhoicas/roofing-ops/pkg/logger"
)

func main() {
	admin := flag.String("admin", "", "admin username to create")
	password := flag.String("password", "", "admin password")
	itemsPath := flag.String("items", "", "items master CSV")
	roofTypesPath := flag.String("roof-types", "", "roof type codes CSV")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info", App: "seed"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}

	if *admin != "" {
		_, err := usecase.NewUserUseCase(postgres.NewUserRepository(pool)).Create(ctx, dto.CreateUserRequest{
			Username: *admin, Password: *password, Role: entity.RoleAdmin,
		})
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			log.Warn().Str("username", *admin).Msg("admin already exists")
		case err != nil:
			log.Fatal().Err(err).Msg("create admin")
		default:
			log.Info().Str("username", *admin).Msg("admin created")
		}
	}

	if *itemsPath != "" {
		items := usecase.NewItemUseCase(postgres.NewItemRepository(pool))
		n, err := load(*itemsPath, 3, func(rec []string) error {
			_, err := items.Create(ctx, dto.ItemRequest{ItemCode: rec[0], Description: rec[1], UOM: rec[2]})
			return err
		})
		if err != nil {
			log.Fatal().Err(err).Msg("load items")
		}
		log.Info().Int("rows", n).Msg("items loaded")
	}

	if *roofTypesPath != "" {
		roofTypes := usecase.NewRoofTypeUseCase(postgres.NewRoofTypeRepository(pool))
		n, err := load(*roofTypesPath, 2, func(rec []string) error {
			_, err := roofTypes.Create(ctx, dto.RoofTypeRequest{RoofType: rec[0], CostCode: rec[1]})
			return err
		})
		if err != nil {
			log.Fatal().Err(err).Msg("load roof types")
		}
		log.Info().Int("rows", n).Msg("roof types loaded")
	}
}

// load feeds every CSV record with at least cols fields to fn. A header row is skipped and rows
// that already exist are ignored. It returns how many rows were inserted.
func load(path string, cols int, fn func([]string) error) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var r io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	inserted := 0
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return inserted, nil
		}
		if err != nil {
			return inserted, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if len(rec) < cols {
			return inserted, fmt.Errorf("%s:%d: expected %d columns, got %d", path, line, cols, len(rec))
		}
		if line == 1 && isHeader(rec[0]) {
			continue
		}
		if err := fn(rec[:cols]); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				continue
			}
			return inserted, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		inserted++
	}
}

func isHeader(first string) bool {
	first = strings.ToLower(strings.TrimSpace(first))
	return first == "item_code" || first == "roof_type"
}
