package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/cnec/gradeengine/internal/adapters/repository"
	"github.com/cnec/gradeengine/internal/config"
	"github.com/cnec/gradeengine/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestOpenStore(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("When the memory driver is selected", func() {
			store, err := openStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer store.Close()

			convey.Convey("Then a memory store is returned", func() {
				_, ok := store.(*repository.MemoryStore)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the sqlite driver is selected", func() {
			cfg.StoreDriver = config.StoreSQLite
			cfg.StoreDSN = filepath.Join(t.TempDir(), "grades.db")
			store, err := openStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer store.Close()

			convey.Convey("Then a migrated sqlite store is returned", func() {
				_, ok := store.(*repository.SQLStore)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(store.Count(ctx), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestHandler(t *testing.T) {
	convey.Convey("Given the assembled handler", t, func() {
		ctx := context.Background()
		cfg := config.New()
		store, err := openStore(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		svc := newService(cfg, store, logger.Discard())
		defer svc.Close(ctx)
		h := newHandler(ctx, cfg, svc)

		for _, path := range []string{"/grades/levels", "/badges", "/stats", "/healthz", "/api-docs", "/openapi.yaml"} {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		}
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a configuration on an ephemeral port", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"
		cfg.WorkerCount = 1

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.Convey("Then run shuts down cleanly", func() {
				convey.So(run(ctx, cfg, logger.Discard()), convey.ShouldBeNil)
			})
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)

		svc := newService(config.New(), repository.NewMemoryStore(ctx, repository.WithMetricsUpdateInterval(0)), logger.Discard())
		defer svc.Close(context.Background())
		convey.So(func() { updateServiceMetrics(ctx, svc) }, convey.ShouldNotPanic)
	})
}
