// @title        Almacén Bridge API
// @version      1.0
// @description  Puente entre el PLC (OPC UA), la imagen de proceso local y el inventario del almacén.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	_ "github.com/jhoicas/almacen-bridge/docs"
	"github.com/jhoicas/almacen-bridge/internal/application/auth"
	"github.com/jhoicas/almacen-bridge/internal/application/backup"
	"github.com/jhoicas/almacen-bridge/internal/application/inventory"
	"github.com/jhoicas/almacen-bridge/internal/application/plc"
	"github.com/jhoicas/almacen-bridge/internal/application/processimage"
	"github.com/jhoicas/almacen-bridge/internal/application/usecase"
	"github.com/jhoicas/almacen-bridge/internal/domain/repository"
	infrakafka "github.com/jhoicas/almacen-bridge/internal/infrastructure/kafka"
	"github.com/jhoicas/almacen-bridge/internal/infrastructure/memstore"
	infraopcua "github.com/jhoicas/almacen-bridge/internal/infrastructure/opcua"
	infrapdf "github.com/jhoicas/almacen-bridge/internal/infrastructure/pdf"
	"github.com/jhoicas/almacen-bridge/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/almacen-bridge/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/almacen-bridge/internal/interfaces/http"
	"github.com/jhoicas/almacen-bridge/pkg/config"
	"github.com/jhoicas/almacen-bridge/pkg/logger"
	"github.com/jhoicas/almacen-bridge/pkg/retry"
)

const namespaceURI = "urn:almacen-bridge:warehouse"

// storage repositorios y servicios de persistencia según DB_DRIVER.
type storage struct {
	users        repository.UserRepository
	products     repository.ProductRepository
	categories   repository.CategoryRepository
	cabinets     repository.CabinetRepository
	transactions repository.TransactionRepository
	txRunner     inventory.TxRunner
	dumper       backup.Dumper
	migrator     httpRouter.SchemaMigrator
	close        func()
}

func openStorage(ctx context.Context, cfg config.DBConfig) (*storage, error) {
	if cfg.Driver == config.DriverMemory {
		store := memstore.New()
		return &storage{
			users:        store.Users(),
			products:     store.Products(),
			categories:   store.Categories(),
			cabinets:     store.Cabinets(),
			transactions: store.Transactions(),
			txRunner:     memstore.NewTxRunner(store),
			dumper:       store,
			migrator:     store,
			close:        func() {},
		}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &storage{
		users:        postgres.NewUserRepository(pool),
		products:     postgres.NewProductRepository(pool),
		categories:   postgres.NewCategoryRepository(pool),
		cabinets:     postgres.NewCabinetRepository(pool),
		transactions: postgres.NewTransactionRepository(pool),
		txRunner:     postgres.NewTxRunner(pool),
		dumper:       postgres.NewDumper(pool),
		migrator:     postgres.NewMigrator(pool),
		close:        pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("db_driver", cfg.DB.Driver).
		Str("plc_endpoint", cfg.PLC.Endpoint).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al almacén de datos")
	}
	defer store.close()
	if err := store.migrator.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("migración del esquema")
	}

	// Enlace PLC
	dialer := infraopcua.NewDialer(cfg.PLC.Endpoint, cfg.PLC.RequestTimeout, cfg.PLC.RequestTimeout)
	link := plc.NewLinkManager(dialer, plc.Config{
		Retries:        cfg.PLC.Retries,
		RetryDelay:     cfg.PLC.RetryDelay,
		RequestTimeout: cfg.PLC.RequestTimeout,
		Namespace:      int(cfg.PLC.Namespace),
	}, log.Component("plc"))

	// Imagen de proceso, con espejo en Redis si está configurado
	var imageOpts []processimage.Option
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, imagen de proceso solo en memoria")
		} else {
			defer rdb.Close()
			imageOpts = append(imageOpts, processimage.WithMirror(infraredis.NewMirror(rdb, infraredis.DefaultKey)))
		}
	}
	image := processimage.New(log.Component("process_image"), imageOpts...)
	if err := image.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("no se pudo restaurar la imagen de proceso")
	}

	// Casos de uso
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Zerolog())

	engineOpts := []inventory.Option{inventory.WithRenderer(infrapdf.NewMovementReport(cfg.App.Name))}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := infrakafka.NewPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic,
			retry.Policy{Attempts: 3, Delay: 2 * time.Second, Multiplier: 2}, log.Component("kafka"))
		if err != nil {
			log.Warn().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("Kafka no disponible, movimientos sin publicar")
		} else {
			defer publisher.Close()
			engineOpts = append(engineOpts, inventory.WithPublisher(publisher))
		}
	}
	engine := inventory.NewEngine(store.txRunner, store.products, store.transactions, store.cabinets,
		authUC, log.Zerolog(), engineOpts...)

	backups := backup.NewService(store.dumper, backup.Config{Dir: cfg.Backup.Dir, Keep: cfg.Backup.Keep}, log.Zerolog())

	// Jobs en segundo plano: se detienen al cancelar ctx
	var jobs sync.WaitGroup
	runJob(&jobs, func() { backup.NewScheduler(backups, cfg.Backup.Interval, log.Zerolog()).Run(ctx) })
	runJob(&jobs, func() { processimage.NewSyncer(image, link, cfg.PLC.SyncInterval, log.Zerolog()).Run(ctx) })

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: link.MaxLatency() + 5*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	httpRouter.Middleware(app, log.Zerolog())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Almacén Bridge API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName: cfg.App.Name,
		Image:   image,
		Link:    link,
		NodeSet: func() ([]byte, error) {
			return infraopcua.SnapshotNodeSet(namespaceURI, image.Snapshot())
		},
		Engine:     engine,
		AuthUC:     authUC,
		UserUC:     usecase.NewUserUseCase(store.users),
		ProductUC:  usecase.NewProductUseCase(store.products, store.categories),
		CategoryUC: usecase.NewCategoryUseCase(store.categories),
		CabinetUC:  usecase.NewCabinetUseCase(store.cabinets, store.categories),
		Backups:    backups,
		Migrator:   store.migrator,
		JWTSecret:  cfg.JWT.Secret,
		Log:        log.Zerolog(),
	})

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Listen(cfg.HTTP.Addr())
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
		stop()
	}

	if err := shutdown(app, &jobs, 10*time.Second, log.Zerolog()); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	log.Info().Msg("aplicación detenida")
}

func runJob(wg *sync.WaitGroup, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn()
	}()
}

// shutdown cierra el servidor HTTP y espera a los jobs, con un tope de timeout.
func shutdown(app *fiber.App, jobs *sync.WaitGroup, timeout time.Duration, log zerolog.Logger) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http: %w", err))
	}

	done := make(chan struct{})
	go func() {
		jobs.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Debug().Msg("jobs en segundo plano detenidos")
	case <-shutdownCtx.Done():
		errs = append(errs, fmt.Errorf("jobs: %w", shutdownCtx.Err()))
	}
	return errors.Join(errs...)
}
