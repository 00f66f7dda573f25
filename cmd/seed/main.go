// seed carga usuarios y productos desde exports CSV usando los mismos casos de uso que la API.
//
// Uso: go run ./cmd/seed -users usuarios.csv -products productos.csv -encoding windows1252 -actor-rfid <tag>
// Las cantidades iniciales se registran como cargas del operador -actor-rfid, así quedan en el histórico.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-bridge/internal/application/auth"
	"github.com/jhoicas/almacen-bridge/internal/application/inventory"
	"github.com/jhoicas/almacen-bridge/internal/application/usecase"
	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/infrastructure/postgres"
	"github.com/jhoicas/almacen-bridge/pkg/config"
	"github.com/jhoicas/almacen-bridge/pkg/logger"
)

func main() {
	usersPath := flag.String("users", "", "CSV de usuarios (username,password,rfid_tag,roles)")
	productsPath := flag.String("products", "", "CSV de productos (name,barcode,category_id,rfid_tag,quantity,shelf_id)")
	encoding := flag.String("encoding", "utf8", "codificación de los CSV: utf8, latin1, windows1252")
	actorRFID := flag.String("actor-rfid", "", "RFID del operador que registra las existencias iniciales")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "seed"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.NewMigrator(pool).Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("migración del esquema")
	}

	users := postgres.NewUserRepository(pool)
	products := postgres.NewProductRepository(pool)
	categories := postgres.NewCategoryRepository(pool)
	authUC := auth.NewAuthUseCase(users, auth.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration}, log.Zerolog())
	engine := inventory.NewEngine(postgres.NewTxRunner(pool), products, postgres.NewTransactionRepository(pool),
		postgres.NewCabinetRepository(pool), authUC, log.Zerolog())

	s := seeder{
		users:     usecase.NewUserUseCase(users),
		products:  usecase.NewProductUseCase(products, categories),
		engine:    engine,
		actorRFID: *actorRFID,
		log:       log.Zerolog(),
	}
	if *usersPath != "" {
		if err := s.seedUsers(ctx, *usersPath, *encoding); err != nil {
			log.Fatal().Err(err).Str("file", *usersPath).Msg("carga de usuarios")
		}
	}
	if *productsPath != "" {
		if err := s.seedProducts(ctx, *productsPath, *encoding); err != nil {
			log.Fatal().Err(err).Str("file", *productsPath).Msg("carga de productos")
		}
	}
}

type seeder struct {
	users     *usecase.UserUseCase
	products  *usecase.ProductUseCase
	engine    *inventory.Engine
	actorRFID string
	log       zerolog.Logger
}

func (s seeder) seedUsers(ctx context.Context, path, encoding string) error {
	recs, err := openRecords(path, encoding)
	if err != nil {
		return err
	}
	created := 0
	for i, rec := range recs {
		_, err := s.users.Create(ctx, userRow(rec))
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			s.log.Info().Int("line", i+2).Str("username", rec["username"]).Msg("usuario ya existe, se omite")
		case err != nil:
			return fmt.Errorf("línea %d: %w", i+2, err)
		default:
			created++
		}
	}
	s.log.Info().Int("created", created).Int("rows", len(recs)).Msg("usuarios cargados")
	return nil
}

func (s seeder) seedProducts(ctx context.Context, path, encoding string) error {
	recs, err := openRecords(path, encoding)
	if err != nil {
		return err
	}
	created := 0
	for i, rec := range recs {
		row, err := productRow(rec)
		if err != nil {
			return fmt.Errorf("línea %d: %w", i+2, err)
		}
		p, err := s.products.Create(ctx, row.Product)
		if errors.Is(err, domain.ErrDuplicate) {
			s.log.Info().Int("line", i+2).Str("rfid_tag", row.Product.RFIDTag).Msg("producto ya existe, se omite")
			continue
		}
		if err != nil {
			return fmt.Errorf("línea %d: %w", i+2, err)
		}
		created++
		if row.Quantity == 0 {
			continue
		}
		if s.actorRFID == "" {
			return fmt.Errorf("línea %d: quantity > 0 requiere -actor-rfid", i+2)
		}
		if _, err := s.engine.Load(ctx, inventory.LoadInput{
			ProductID: p.ID,
			Quantity:  row.Quantity,
			ShelfID:   row.ShelfID,
			ActorRFID: s.actorRFID,
		}); err != nil {
			return fmt.Errorf("línea %d: carga inicial: %w", i+2, err)
		}
	}
	s.log.Info().Int("created", created).Int("rows", len(recs)).Msg("productos cargados")
	return nil
}

func openRecords(path, encoding string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readRecords(f, encoding)
}
