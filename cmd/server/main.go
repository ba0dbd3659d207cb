package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/cbodonnell/slide/pkg/api"
	"github.com/cbodonnell/slide/pkg/game"
	"github.com/cbodonnell/slide/pkg/log"
	"github.com/cbodonnell/slide/pkg/messages"
	"github.com/cbodonnell/slide/pkg/replay"
	"github.com/cbodonnell/slide/pkg/repositories"
	"github.com/cbodonnell/slide/pkg/repositories/models"
	"github.com/cbodonnell/slide/pkg/scene"
	"github.com/cbodonnell/slide/pkg/state"
	"github.com/cbodonnell/slide/pkg/trace"
	"github.com/cbodonnell/slide/pkg/workers"
	"github.com/google/uuid"
)

type options struct {
	ticks              uint64
	tickInterval       time.Duration
	maxIterations      int
	recordPath         string
	tracePath          string
	traceAll           bool
	apiPort            int
	checkpointInterval time.Duration
}

func main() {
	scenePath := flag.String("scene", os.Getenv("SLIDE_SCENE"), "Scene file to load, the built in demo if empty")
	ticks := flag.Uint64("ticks", 600, "Number of ticks to simulate, 0 runs until interrupted")
	tickInterval := flag.Duration("tick-interval", 0, "Time between ticks, 0 runs them back to back")
	maxIterations := flag.Int("max-iterations", 0, "Override the movement iteration limit")
	recordPath := flag.String("record", "", "Write a recording of the run to this file")
	verifyPath := flag.String("verify", "", "Re-run a recording and check every frame matches")
	tracePath := flag.String("trace", "", "Write the player trajectory to this CSV file")
	traceAll := flag.Bool("trace-all", false, "Trace every entity rather than just the player")
	sqlitePath := flag.String("sqlite", os.Getenv("SLIDE_SQLITE_PATH"), "Save runs to this SQLite database")
	databaseURL := flag.String("database-url", os.Getenv("SLIDE_DATABASE_URL"), "Save runs to this PostgreSQL database")
	checkpointInterval := flag.Duration("checkpoint-interval", 5*time.Second, "How often the latest snapshot of a run is saved")
	apiPort := flag.Int("api-port", envIntOrDefault("SLIDE_API_PORT", 0), "Serve the inspection API on this port, 0 disables it")
	logLevel := flag.String("log-level", envOrDefault("SLIDE_LOG_LEVEL", "info"), "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	s := scene.Default()
	if *scenePath != "" {
		s, err = scene.Load(*scenePath)
		if err != nil {
			panic(fmt.Sprintf("Failed to load scene: %v", err))
		}
	}
	log.Info("Loaded scene %s with %d solids", s.Name, len(s.Solids))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *verifyPath != "" {
		if err := verify(ctx, s, *verifyPath, *maxIterations); err != nil {
			log.Error("Verification failed: %v", err)
			os.Exit(1)
		}
		return
	}

	var repository repositories.Repository
	switch {
	case *databaseURL != "":
		repository, err = repositories.NewPostgresRepository(ctx, *databaseURL)
	case *sqlitePath != "":
		repository, err = repositories.NewSQLiteRepository(ctx, *sqlitePath)
	}
	if err != nil {
		panic(fmt.Sprintf("Failed to open repository: %v", err))
	}
	if repository != nil {
		defer repository.Close(context.Background())
	}

	err = run(ctx, s, repository, options{
		ticks:              *ticks,
		tickInterval:       *tickInterval,
		maxIterations:      *maxIterations,
		recordPath:         *recordPath,
		tracePath:          *tracePath,
		traceAll:           *traceAll,
		apiPort:            *apiPort,
		checkpointInterval: *checkpointInterval,
	})
	if err != nil {
		log.Error("Run failed: %v", err)
		os.Exit(1)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse %s: %v", key, err))
	}
	return i
}

// run simulates the scene, feeding every snapshot to the recording, the
// trace, the inspection API and the repository as configured.
func run(ctx context.Context, s *scene.Scene, repository repositories.Repository, opts options) error {
	runID := uuid.NewString()

	var writers []workers.SnapshotWriter
	var recorder *replay.Writer
	if opts.recordPath != "" {
		f, err := os.Create(opts.recordPath)
		if err != nil {
			return fmt.Errorf("failed to create recording: %v", err)
		}
		defer f.Close()

		header := replay.NewHeader(s.Name)
		w, err := replay.NewWriter(f, header)
		if err != nil {
			return fmt.Errorf("failed to start recording: %v", err)
		}
		runID = header.RecordingID.String()
		log.Info("Recording %s to %s", runID, opts.recordPath)
		writers = append(writers, w)
		recorder = w
	}

	gameState := s.NewGameState()
	if opts.tracePath != "" {
		f, err := os.Create(opts.tracePath)
		if err != nil {
			return fmt.Errorf("failed to create trace: %v", err)
		}
		defer f.Close()

		if opts.traceAll {
			writers = append(writers, trace.NewWriter(f))
		} else {
			playerID, _ := gameState.PlayerID()
			writers = append(writers, trace.NewWriter(f, playerID))
		}
		log.Info("Tracing to %s", opts.tracePath)
	}

	stateManager := state.NewInMemoryStateManager()
	broadcaster := workers.NewBroadcaster()
	defer broadcaster.Close()

	if opts.apiPort > 0 {
		apiServer := api.NewAPIServer(api.NewAPIServerOptions{
			Port:         opts.apiPort,
			StateManager: stateManager,
			Repository:   repository,
			Subscriber:   broadcaster,
		})
		go apiServer.Start()
		defer func() {
			// end open streams before shutting down
			broadcaster.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := apiServer.Stop(shutdownCtx); err != nil {
				log.Error("Failed to stop API server: %v", err)
			}
		}()
	}

	// workers outlive the game loop so they can finish the last frames
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	var saveWorker *workers.SaveCheckpointWorker
	if repository != nil {
		now := time.Now().UTC()
		if err := repository.CreateRun(ctx, &models.Run{
			ID:        runID,
			Scene:     s.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("failed to create run: %v", err)
		}
		saveWorker = workers.NewSaveCheckpointWorker(workers.NewSaveCheckpointWorkerOptions{
			Repository:   repository,
			RunID:        runID,
			StateManager: stateManager,
			Interval:     opts.checkpointInterval,
		})
		go saveWorker.Start(workerCtx)
	}

	snapshotChan := make(chan *messages.Snapshot, 1024)
	recordWorker := workers.NewRecordWorker(workers.NewRecordWorkerOptions{
		Writer:       workers.MultiSnapshotWriter(writers...),
		SnapshotChan: snapshotChan,
		StateManager: stateManager,
		Publisher:    broadcaster,
		Interval:     time.Second,
	})
	// the worker stops when the channel is closed, after the last snapshot
	go recordWorker.Start(workerCtx)

	gameManager := game.NewGameManager(game.NewGameManagerOptions{
		InputScript:      s.Script,
		GameState:        gameState,
		SnapshotChan:     snapshotChan,
		GameLoopInterval: opts.tickInterval,
		MaxFrames:        opts.ticks,
		MaxIterations:    opts.maxIterations,
	})

	log.Info("Starting game manager for run %s", runID)
	start := time.Now()
	err := gameManager.Start(ctx)
	close(snapshotChan)
	<-recordWorker.Done()
	if recorder != nil {
		if err := recorder.Close(); err != nil {
			log.Error("Failed to close recording: %v", err)
		} else {
			log.Info("Recorded %d frames to %s", recorder.Frames(), opts.recordPath)
		}
	}
	if saveWorker != nil {
		stopWorkers()
		<-saveWorker.Done()
	}
	if err != nil {
		return fmt.Errorf("failed to run game loop: %v", err)
	}

	latest, err := stateManager.Get(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get final state: %v", err)
	}
	if repository != nil {
		if err := repository.FinishRun(context.Background(), runID, latest.Frame); err != nil {
			return fmt.Errorf("failed to finish run: %v", err)
		}
	}
	logSummary(latest, time.Since(start))
	if opts.tracePath != "" {
		if err := logTraceStats(opts.tracePath); err != nil {
			log.Warn("Failed to summarise trace: %v", err)
		}
	}
	return nil
}

func logTraceStats(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := trace.ReadAll(f)
	if err != nil {
		return err
	}
	for _, stats := range trace.Summarize(rows) {
		log.Info("Entity %d travelled %s over %d frames, mean speed %s, max speed %s, grounded %s%%",
			stats.EntityID, formatFloat(stats.Distance), stats.Frames,
			formatFloat(stats.MeanSpeed), formatFloat(stats.MaxSpeed), formatFloat(stats.Grounded*100))
	}
	return nil
}

// verify re-runs the scene one frame per recorded frame, stopping at the
// first that differs.
func verify(ctx context.Context, s *scene.Scene, path string, maxIterations int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open recording: %v", err)
	}
	defer f.Close()

	reader, err := replay.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read recording: %v", err)
	}
	defer reader.Close()

	header := reader.Header()
	if header.Scene != s.Name {
		log.Warn("Recording %s is of scene %s, verifying against %s", header.RecordingID, header.Scene, s.Name)
	}

	snapshotChan := make(chan *messages.Snapshot, 1)
	gameManager := game.NewGameManager(game.NewGameManagerOptions{
		InputScript:   s.Script,
		GameState:     s.NewGameState(),
		SnapshotChan:  snapshotChan,
		MaxIterations: maxIterations,
	})
	frames, err := replay.Verify(reader, func() (*messages.Snapshot, error) {
		if err := gameManager.Tick(ctx); err != nil {
			return nil, err
		}
		return <-snapshotChan, nil
	})
	if err != nil {
		return err
	}
	log.Info("Recording %s matches over %d frames", header.RecordingID, frames)
	return nil
}

func logSummary(snapshot *messages.Snapshot, elapsed time.Duration) {
	log.Info("Ran %d frames in %s", snapshot.Frame, elapsed)
	if len(snapshot.Entities) == 0 {
		return
	}
	// the player is always the first entity of a scene
	player := snapshot.Entities[0]
	log.Info("Player %d at (%s, %s) moving (%s, %s), can jump: %t",
		player.ID,
		formatFloat(player.Position.X), formatFloat(player.Position.Y),
		formatFloat(player.Velocity.X), formatFloat(player.Velocity.Y),
		player.CanJump)
	if log.Enabled(log.LogLevelDebug) {
		for _, entity := range snapshot.Entities[1:] {
			log.Debug("Entity %d at (%s, %s)", entity.ID, formatFloat(entity.Position.X), formatFloat(entity.Position.Y))
		}
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}
