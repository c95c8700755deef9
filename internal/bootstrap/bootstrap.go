package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	playbackoutadapter "keyloop/internal/modules/playback/adapter/out"
	playbackout "keyloop/internal/modules/playback/port/out"
	playbackservice "keyloop/internal/modules/playback/service"
	playbackusecase "keyloop/internal/modules/playback/usecase"
	practiceinadapter "keyloop/internal/modules/practice/adapter/in"
	practiceoutadapter "keyloop/internal/modules/practice/adapter/out"
	practicedto "keyloop/internal/modules/practice/dto"
	practicein "keyloop/internal/modules/practice/port/in"
	practiceservice "keyloop/internal/modules/practice/service"
	practiceusecase "keyloop/internal/modules/practice/usecase"
	progressinadapter "keyloop/internal/modules/progress/adapter/in"
	progressoutadapter "keyloop/internal/modules/progress/adapter/out"
	progressdto "keyloop/internal/modules/progress/dto"
	progressin "keyloop/internal/modules/progress/port/in"
	progressservice "keyloop/internal/modules/progress/service"
	progressusecase "keyloop/internal/modules/progress/usecase"
	scoreinadapter "keyloop/internal/modules/score/adapter/in"
	scoreoutadapter "keyloop/internal/modules/score/adapter/out"
	scoreservice "keyloop/internal/modules/score/service"
	scoreusecase "keyloop/internal/modules/score/usecase"
	sessioninadapter "keyloop/internal/modules/session/adapter/in"
	sessionoutadapter "keyloop/internal/modules/session/adapter/out"
	sessiondto "keyloop/internal/modules/session/dto"
	sessionin "keyloop/internal/modules/session/port/in"
	sessionservice "keyloop/internal/modules/session/service"
	sessionusecase "keyloop/internal/modules/session/usecase"
	storageinadapter "keyloop/internal/modules/storage/adapter/in"
	storageoutadapter "keyloop/internal/modules/storage/adapter/out"
	storageout "keyloop/internal/modules/storage/port/out"
	storageservice "keyloop/internal/modules/storage/service"
	storageusecase "keyloop/internal/modules/storage/usecase"
	"keyloop/internal/platform/clock"
	"keyloop/internal/platform/config"
	"keyloop/internal/platform/id"
	"keyloop/internal/platform/logging"
	uiapp "keyloop/internal/ui/app"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	Config config.Config
	Logger *zap.Logger

	Practice    practicein.Usecase
	PracticeCLI practiceinadapter.CLIHandler
	ScoreCLI    scoreinadapter.CLIHandler
	ProgressCLI progressinadapter.CLIHandler
	SessionCLI  sessioninadapter.CLIHandler
	StorageCLI  storageinadapter.CLIHandler
	HTTP        http.Handler

	session   sessionin.Usecase
	progress  progressin.Usecase
	transport *playbackoutadapter.ClockTransport
	closers   []func() error

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wires every module. Background loops do not run until Start.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger}

	clk := clock.SystemClock{}
	kv := app.openStore(cfg.DBPath)
	storageUC := storageusecase.NewInteractor(storageservice.NewStorageService(kv, clk, logger))

	scoreUC := scoreusecase.NewInteractor(scoreservice.NewScoreService(scoreoutadapter.NewSMFNoteSource(logger), logger))
	progressUC := progressusecase.NewInteractor(progressservice.NewProgressService(progressoutadapter.NewStorageProgressStore(storageUC), clk, logger))
	sessionUC := sessionusecase.NewInteractor(sessionservice.NewSessionService(
		clk,
		id.UUID{},
		sessionoutadapter.NewStorageStatsStore(storageUC),
		sessionoutadapter.NewJournalSessionStore(cfg.DataDir),
		cfg.TickInterval,
		logger,
	))

	synth, err := app.openSynth(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.transport = playbackoutadapter.NewClockTransport()
	scheduler := playbackservice.NewSchedulerService(
		app.transport,
		synth,
		playbackoutadapter.NewLogSink(logger),
		playbackoutadapter.NewProgressNotifier(progressUC),
		logger,
	)

	practiceUC := practiceusecase.NewInteractor(practiceusecase.Dependencies{
		Score:       scoreUC,
		Playback:    playbackusecase.NewInteractor(scheduler),
		Progress:    progressUC,
		Session:     sessionUC,
		Storage:     storageUC,
		Files:       practiceoutadapter.NewOSFileStater(),
		Preferences: practiceservice.NewPreferenceWriter(storageUC, practiceservice.DefaultPreferenceDelay, logger),
		Logger:      logger,
	})

	app.Practice = practiceUC
	app.session = sessionUC
	app.progress = progressUC
	app.PracticeCLI = practiceinadapter.NewCLIHandler(practiceUC)
	app.ScoreCLI = scoreinadapter.NewCLIHandler(scoreUC)
	app.ProgressCLI = progressinadapter.NewCLIHandler(progressUC)
	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionUC)
	app.StorageCLI = storageinadapter.NewCLIHandler(storageUC)
	app.HTTP = practiceinadapter.NewHTTPHandler(practiceUC, storageUC, sessionUC, progressUC, cfg.AllowedOrigins, logger)
	return app, nil
}

// openStore falls back to memory when the database cannot be opened, so a
// practice run still works without persistence.
func (a *App) openStore(dbPath string) storageout.KVStore {
	store, err := storageoutadapter.NewSQLiteKVStore(dbPath)
	if err != nil {
		a.Logger.Warn("persistence unavailable, keeping state in memory", zap.String("db", dbPath), zap.Error(err))
		return storageoutadapter.NewMemoryKVStore()
	}
	a.closers = append(a.closers, store.Close)
	return store
}

func (a *App) openSynth(ctx context.Context, cfg config.Config) (playbackout.Synthesizer, error) {
	switch cfg.Synth {
	case config.SynthMIDI:
		send, closeFn, err := playbackoutadapter.OpenMIDIPort(cfg.MIDIPort)
		if err != nil {
			return nil, fmt.Errorf("open midi output: %w", err)
		}
		synth := playbackoutadapter.NewMIDIOutSynth(send, 0, a.Logger)
		a.closers = append(a.closers, closeFn, synth.Close)
		return synth, nil
	case config.SynthPlugin:
		synth, err := playbackoutadapter.NewPluginSynth(ctx, cfg.PluginBinary, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, synth.Close)
		a.Logger.Info("synth plugin started", zap.String("name", synth.Name()))
		return synth, nil
	default:
		return playbackoutadapter.NewLogSynth(a.Logger), nil
	}
}

// Start runs the transport clock and the session sampling tick until Close.
func (a *App) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}
	ctx, a.cancel = context.WithCancel(ctx)

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.transport.Run(ctx, a.Config.ClockStep)
	}()
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(a.Config.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := a.Practice.Tick(ctx); err != nil && ctx.Err() == nil {
					a.Logger.Debug("practice tick skipped", zap.Error(err))
				}
			}
		}
	}()
}

// Close stops the background loops and releases the synth and the database.
// It does not end the practice session; callers close the controller first.
func (a *App) Close() error {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
		a.wg.Wait()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.Logger.Sync()
	return errors.Join(errs...)
}

// RunTUI runs the terminal UI until the user quits and returns the summary of
// the practice session it ran.
func RunTUI(ctx context.Context, app *App, path string) (practicedto.CloseOutput, error) {
	app.Start(ctx)
	model := uiapp.NewModel(app.Practice, statsBridge{session: app.session, progress: app.progress}, path, app.Config.PollInterval)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := program.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		runErr = nil
	}
	out, err := app.Practice.Close(context.WithoutCancel(ctx))
	if runErr != nil {
		return out, runErr
	}
	return out, err
}

// Serve exposes the HTTP API until ctx is done, then shuts the server down and
// closes the practice session.
func Serve(ctx context.Context, app *App, out io.Writer) error {
	app.Start(ctx)
	if _, err := app.Practice.Start(ctx); err != nil {
		return err
	}
	server := &http.Server{
		Addr:              app.Config.Listen,
		Handler:           app.HTTP,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	app.Logger.Info("http api listening", zap.String("addr", app.Config.Listen))
	_, _ = fmt.Fprintf(out, "listening on http://%s\n", app.Config.Listen)

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("serve http: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("shutdown http: %w", err)
		}
	}
	if _, err := app.Practice.Close(context.WithoutCancel(ctx)); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}

type statsBridge struct {
	session  sessionin.Usecase
	progress progressin.Usecase
}

func (b statsBridge) Stats(ctx context.Context) (sessiondto.StatsOutput, error) {
	return b.session.Stats(ctx)
}

func (b statsBridge) History(ctx context.Context, limit int) ([]sessiondto.SessionOutput, error) {
	return b.session.History(ctx, limit)
}

func (b statsBridge) ListProgress(ctx context.Context) ([]progressdto.Record, error) {
	return b.progress.List(ctx)
}
