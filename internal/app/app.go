package app

import (
	"context"
	"log"
	"log/slog"

	"github.com/porchrate/core/internal/config"
	http_admin "github.com/porchrate/core/internal/delivery/http/admin"
	http_house "github.com/porchrate/core/internal/delivery/http/house"
	http_init "github.com/porchrate/core/internal/delivery/http/init"
	http_metrics "github.com/porchrate/core/internal/delivery/http/metrics"
	http_admin_middleware "github.com/porchrate/core/internal/delivery/http/middleware/admin"
	http_rating "github.com/porchrate/core/internal/delivery/http/rating"
	http_theme "github.com/porchrate/core/internal/delivery/http/theme"
	ws_mapfeed "github.com/porchrate/core/internal/delivery/ws/mapfeed"
	"github.com/porchrate/core/internal/infra/memory"
	infra_pg_collection "github.com/porchrate/core/internal/infra/postgres/collection"
	infra_pg_init "github.com/porchrate/core/internal/infra/postgres/init"
	infra_redis_collection "github.com/porchrate/core/internal/infra/redis/collection"
	infra_redis_dupindex "github.com/porchrate/core/internal/infra/redis/dupindex"
	infra_redis_init "github.com/porchrate/core/internal/infra/redis/init"
	"github.com/porchrate/core/internal/storage/collection"
	storage_house "github.com/porchrate/core/internal/storage/house"
	storage_rating "github.com/porchrate/core/internal/storage/rating"
	usecase_house "github.com/porchrate/core/internal/usecase/house"
	usecase_rating "github.com/porchrate/core/internal/usecase/rating"
)

func Go(cfg *config.Config) {
	logger := slog.Default()

	var (
		store collection.Store
		index storage_rating.DuplicateIndex
	)

	switch cfg.Storage.Backend {
	case "memory":
		store = memory.New()
		index = memory.NewDupIndex()

	case "redis":
		redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
		store = infra_redis_collection.New(redisConn, "porchrate")
		index = infra_redis_dupindex.New(redisConn, "rated")

	default:
		pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)
		pgStore := infra_pg_collection.New(pgConn)
		if err := pgStore.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("failed to ensure collections schema: %v", err)
		}
		store = pgStore

		redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
		index = infra_redis_dupindex.New(redisConn, "rated")
	}

	houseStorage := storage_house.New(store,
		storage_house.WithCollisionRadius(cfg.Houses.MatchRadiusMeters))
	ratingStorage := storage_rating.New(store, index)

	houseUC := usecase_house.New(houseStorage, cfg.Houses.MatchRadiusMeters)

	hub := ws_mapfeed.NewHub(logger)
	ratingUC := usecase_rating.New(ratingStorage, houseUC,
		usecase_rating.WithNotifier(hub))

	adminMiddleware := http_admin_middleware.New(cfg.Admin.Code)

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_rating.New(ratingUC, adminMiddleware))
	controllerPool.Add(http_house.New(houseUC))
	controllerPool.Add(http_theme.New())
	controllerPool.Add(http_admin.New(cfg.Admin.Code, ratingUC, adminMiddleware))
	controllerPool.AddRoot(ws_mapfeed.NewController(hub))
	controllerPool.AddRoot(http_metrics.New())

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Port)
}
