package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	backupinadapter "studyhub/internal/modules/backup/adapter/in"
	backupoutadapter "studyhub/internal/modules/backup/adapter/out"
	backupin "studyhub/internal/modules/backup/port/in"
	backupservice "studyhub/internal/modules/backup/service"
	backupusecase "studyhub/internal/modules/backup/usecase"
	mirroroutadapter "studyhub/internal/modules/mirror/adapter/out"
	mirrorout "studyhub/internal/modules/mirror/port/out"
	mirrorservice "studyhub/internal/modules/mirror/service"
	mirrorusecase "studyhub/internal/modules/mirror/usecase"
	progressin "studyhub/internal/modules/progress/port/in"
	progressusecase "studyhub/internal/modules/progress/usecase"
	recordinadapter "studyhub/internal/modules/record/adapter/in"
	recordoutadapter "studyhub/internal/modules/record/adapter/out"
	recordin "studyhub/internal/modules/record/port/in"
	recordservice "studyhub/internal/modules/record/service"
	recordusecase "studyhub/internal/modules/record/usecase"
	syncinadapter "studyhub/internal/modules/sync/adapter/in"
	syncoutadapter "studyhub/internal/modules/sync/adapter/out"
	syncin "studyhub/internal/modules/sync/port/in"
	syncout "studyhub/internal/modules/sync/port/out"
	syncservice "studyhub/internal/modules/sync/service"
	syncusecase "studyhub/internal/modules/sync/usecase"
	timerinadapter "studyhub/internal/modules/timer/adapter/in"
	timeroutadapter "studyhub/internal/modules/timer/adapter/out"
	"studyhub/internal/modules/timer/domain"
	timerin "studyhub/internal/modules/timer/port/in"
	timerservice "studyhub/internal/modules/timer/service"
	timerusecase "studyhub/internal/modules/timer/usecase"
	"studyhub/internal/platform/clock"
	"studyhub/internal/platform/config"
	"studyhub/internal/platform/events"
	"studyhub/internal/platform/id"
	"studyhub/internal/platform/kv"
	"studyhub/internal/platform/logging"
	uiapp "studyhub/internal/ui/app"
)

// drainTimeout bounds how long Close waits for in-flight mirror pushes.
const drainTimeout = 3 * time.Second

type App struct {
	Config config.Config
	Logger *slog.Logger
	Bus    *events.Bus

	RecordCLI recordinadapter.CLIHandler
	TimerCLI  timerinadapter.CLIHandler
	SyncCLI   syncinadapter.CLIHandler
	BackupCLI backupinadapter.CLIHandler
	Progress  progressin.Usecase

	records recordin.Usecase
	timer   timerin.Usecase
	sync    syncin.Usecase
	backup  backupin.Usecase
	closers []io.Closer
}

func New(cfg config.Config) (*App, error) {
	logger, logCloser := logging.New(cfg.Log)
	app := &App{Config: cfg, Logger: logger, Bus: events.NewBus(), closers: []io.Closer{logCloser}}
	if err := app.wire(); err != nil {
		_ = app.closeAll()
		return nil, err
	}
	return app, nil
}

func (a *App) wire() error {
	cfg := a.Config
	clk := clock.SystemClock{}
	ids := id.UUID{}
	prefs := kv.NewFileStore(cfg.KVPath)

	engine, err := recordoutadapter.NewSQLiteEngine(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	a.closers = append(a.closers, engine)
	recordSvc := recordservice.NewRecordService(engine)
	a.records = recordusecase.NewInteractor(recordSvc, clk, ids, cfg.Location)

	api, err := a.documentAPI()
	if err != nil {
		return err
	}
	mirror := mirrorusecase.NewInteractor(
		mirrorservice.NewMirrorService(api, mirroroutadapter.NewKVIdentityStore(prefs), a.Bus, a.Logger),
		a.Logger,
	)

	var outbox syncout.Outbox
	if cfg.Sync.Outbox {
		outbox = syncoutadapter.NewFileOutbox(cfg.Sync.OutboxPath)
	}
	syncSvc := syncservice.NewSyncService(a.records, mirror, outbox, a.Bus, clk, a.Logger)
	recordSvc.SetObserver(syncSvc)
	a.sync = syncusecase.NewInteractor(syncSvc, mirror, a.Logger)

	states := timeroutadapter.NewKVStateStore(prefs)
	timerSvc := timerservice.NewTimerService(clk, ids, states, a.records, a.Bus, a.Logger, timerservice.Options{
		Targets: domain.Targets{
			Pomodoro:   cfg.Timer.Pomodoro,
			ShortBreak: cfg.Timer.ShortBreak,
			LongBreak:  cfg.Timer.LongBreak,
		},
		MinSession: cfg.Timer.MinSession,
		Location:   cfg.Location,
	})
	a.timer = timerusecase.NewInteractor(timerSvc, states, timeroutadapter.NewFileWatcher(prefs.Path()), ids)

	a.Progress = progressusecase.NewInteractor(a.records, prefs, clk, cfg.Location)

	codec := backupservice.NewBackupService(a.records, prefs, clk, a.Logger,
		timeroutadapter.StateKey, mirroroutadapter.IdentityKey)
	a.backup = backupusecase.NewInteractor(codec, backupoutadapter.NewJournalVault())

	a.RecordCLI = recordinadapter.NewCLIHandler(a.records)
	a.TimerCLI = timerinadapter.NewCLIHandler(a.timer)
	a.SyncCLI = syncinadapter.NewCLIHandler(a.sync)
	a.BackupCLI = backupinadapter.NewCLIHandler(a.backup)
	return nil
}

// documentAPI returns nil for the local-only setup; the mirror client then
// reports every call as not signed in.
func (a *App) documentAPI() (mirrorout.DocumentAPI, error) {
	remote := a.Config.Remote
	switch remote.Kind {
	case config.RemoteHTTP:
		return mirroroutadapter.NewHTTPDocumentAPI(nil, remote.BaseURL, remote.Timeout), nil
	case config.RemoteRedis:
		api, err := mirroroutadapter.NewRedisDocumentAPI(remote.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis mirror: %w", err)
		}
		a.closers = append(a.closers, api)
		return api, nil
	default:
		return nil, nil
	}
}

// Close waits briefly for queued mirror pushes, then releases every
// resource in reverse order of acquisition.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	var errs []error
	if a.sync != nil {
		if err := a.sync.Drain(ctx); err != nil {
			a.Logger.Warn("mirror pushes still pending at exit", "err", err)
		}
	}
	if err := a.closeAll(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunTUI(ctx context.Context, app *App) error {
	changes, err := app.timer.Watch(ctx)
	if err != nil {
		app.Logger.Warn("timer file watch unavailable", "err", err)
		changes = nil
	}
	return uiapp.Run(ctx, uiapp.Ports{
		Timer:    app.timer,
		Progress: app.Progress,
		Records:  app.records,
		Sync:     app.sync,
		Backup:   app.backup,
	}, app.Bus, changes)
}
