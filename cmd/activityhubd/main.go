package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"activityhub-backend/lib/blobstore"
	"activityhub-backend/lib/configutil"
	"activityhub-backend/lib/kvstore"
	"activityhub-backend/lib/scrapers/activityportal"
	"activityhub-backend/lib/serviceutil"
	"activityhub-backend/lib/telemetry"
	"activityhub-backend/services/activities"

	"github.com/go-chi/chi/v5"
)

type PortalConfig struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	// portal identifier the staff aggregate is fetched under
	StaffId string `json:"staff_id"`
}

type CacheConfig struct {
	Dir                    string `json:"dir"`
	RangeStart             int    `json:"range_start"`
	RangeEnd               int    `json:"range_end"`
	StaleAfterMinutes      int    `json:"stale_after_minutes"`
	StaffStaleAfterMinutes int    `json:"staff_stale_after_minutes"`
	Workers                int    `json:"workers"`
}

type S3Config struct {
	blobstore.S3Options
	// object key prefix for offloaded photos
	AssetPrefix string `json:"asset_prefix"`
}

type Config struct {
	Port     int                       `json:"port"`
	Portal   PortalConfig              `json:"portal"`
	Cache    CacheConfig               `json:"cache"`
	S3       S3Config                  `json:"s3"`
	Schedule activities.ScheduleConfig `json:"schedule"`
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	ctx := serviceutil.SignalContext()
	initTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	// secrets come from the environment in deployments, the config
	// file values are for local development
	configutil.EnvString(&cfg.Portal.Username, "PORTAL_USERNAME")
	configutil.EnvString(&cfg.Portal.Password, "PORTAL_PASSWORD")
	configutil.EnvInt(&cfg.Port, "PORT")
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = "data/cache"
	}
	if cfg.Cache.RangeStart == 0 {
		cfg.Cache.RangeStart = 1
	}
	if cfg.Cache.RangeEnd == 0 {
		cfg.Cache.RangeEnd = 400
	}

	portal, err := activityportal.NewClient(activityportal.ClientOptions{
		BaseUrl: cfg.Portal.BaseUrl,
	})
	if err != nil {
		serviceutil.Fatal("init portal client", err)
	}

	kv, err := kvstore.OpenBadger(cfg.Cache.Dir)
	if err != nil {
		serviceutil.Fatal("open cache", err)
	}
	defer kv.Close()

	var blob blobstore.Store
	if cfg.S3.Bucket != "" {
		s3Store, err := blobstore.NewS3Store(ctx, cfg.S3.S3Options)
		if err != nil {
			serviceutil.Fatal("init s3", err)
		}
		blob = s3Store
	} else {
		slog.WarnContext(ctx, "no s3 bucket configured, photo offloading disabled")
	}

	service := activities.NewService(activities.ServiceOptions{
		KV:              kv,
		Portal:          portal,
		Blob:            blob,
		Username:        cfg.Portal.Username,
		Password:        cfg.Portal.Password,
		RangeStart:      cfg.Cache.RangeStart,
		RangeEnd:        cfg.Cache.RangeEnd,
		StaffID:         cfg.Portal.StaffId,
		StaleAfter:      time.Duration(cfg.Cache.StaleAfterMinutes) * time.Minute,
		StaffStaleAfter: time.Duration(cfg.Cache.StaffStaleAfterMinutes) * time.Minute,
		Workers:         int64(cfg.Cache.Workers),
		AssetPrefix:     cfg.S3.AssetPrefix,
	})

	scheduler, err := activities.NewScheduler(service, cfg.Schedule)
	if err != nil {
		serviceutil.Fatal("init scheduler", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// fill the cache on startup without blocking the api
	go func() {
		err := service.PopulateAll(context.Background())
		if err != nil {
			slog.Error("initial populate", "err", err)
		}
		err = service.RefreshStaffIfDue(context.Background(), false)
		if err != nil {
			slog.Error("initial staff refresh", "err", err)
		}
	}()

	router := chi.NewRouter()
	router.Mount("/v1", service.Routes())

	go serviceutil.StartHttpServer(cfg.Port, router)
	<-ctx.Done()
}
