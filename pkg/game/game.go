package game

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/slide/pkg/game/types"
	"github.com/cbodonnell/slide/pkg/log"
	"github.com/cbodonnell/slide/pkg/messages"
	"github.com/cbodonnell/slide/pkg/movement"
	"github.com/cbodonnell/slide/pkg/queue"
)

// InputScript supplies the controls for a given frame, if it sets any.
type InputScript interface {
	InputAt(frame uint64) (types.InputEvent, bool)
}

type GameManager struct {
	inputQueue       queue.Queue[types.InputEvent]
	inputScript      InputScript
	gameState        *types.GameState
	input            types.InputModel
	movementContext  *movement.Context
	snapshotChan     chan<- *messages.Snapshot
	gameLoopInterval time.Duration
	maxFrames        uint64
}

// NewGameManagerOptions contains options for creating a new GameManager.
type NewGameManagerOptions struct {
	// InputQueue is optional and drained at the start of every tick.
	InputQueue queue.Queue[types.InputEvent]
	// InputScript is optional and applied after the queue.
	InputScript InputScript
	GameState   *types.GameState
	// SnapshotChan is optional and receives a snapshot after every tick.
	SnapshotChan chan<- *messages.Snapshot
	// GameLoopInterval paces the loop. Zero runs ticks back to back.
	GameLoopInterval time.Duration
	// MaxFrames stops the loop once the state reaches that frame. Zero runs
	// until the context is cancelled.
	MaxFrames uint64
	// MaxIterations overrides movement.MaxIterations when positive.
	MaxIterations int
}

func NewGameManager(opts NewGameManagerOptions) *GameManager {
	movementContext := movement.NewContext()
	movementContext.MaxIterations = opts.MaxIterations
	return &GameManager{
		inputQueue:       opts.InputQueue,
		inputScript:      opts.InputScript,
		gameState:        opts.GameState,
		movementContext:  movementContext,
		snapshotChan:     opts.SnapshotChan,
		gameLoopInterval: opts.GameLoopInterval,
		maxFrames:        opts.MaxFrames,
	}
}

func (gm *GameManager) GameState() *types.GameState {
	return gm.gameState
}

// Start runs the game loop until ctx is cancelled or MaxFrames is reached.
func (gm *GameManager) Start(ctx context.Context) error {
	if _, ok := gm.gameState.PlayerID(); !ok {
		return types.ErrNoPlayer
	}

	if gm.gameLoopInterval <= 0 {
		for !gm.finished() {
			if err := ctx.Err(); err != nil {
				return nil
			}
			if err := gm.Tick(ctx); err != nil {
				log.Error("Failed to run game tick: %v", err)
			}
		}
		return nil
	}

	ticker := time.NewTicker(gm.gameLoopInterval)
	defer ticker.Stop()

	for !gm.finished() {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := gm.Tick(ctx); err != nil {
				log.Error("Failed to run game tick: %v", err)
			}
		}
	}
	return nil
}

func (gm *GameManager) finished() bool {
	return gm.maxFrames > 0 && gm.gameState.Frame >= gm.maxFrames
}

// Tick runs one iteration of the game loop. A cancelled ctx leaves the state
// untouched. If ctx ends while the snapshot send is blocked, the frame has
// still run and only its snapshot is lost.
func (gm *GameManager) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to run frame %d: %v", gm.gameState.Frame+1, err)
	}
	gm.processInput()

	if err := gm.gameState.Update(&gm.input, gm.movementContext); err != nil {
		return fmt.Errorf("failed to update game state: %v", err)
	}
	gm.input.EndFrame()

	if gm.snapshotChan == nil {
		return nil
	}
	snapshot := SnapshotFromState(gm.gameState)
	select {
	case gm.snapshotChan <- snapshot:
		return nil
	default:
	}
	select {
	case gm.snapshotChan <- snapshot:
	case <-ctx.Done():
		return fmt.Errorf("failed to send snapshot for frame %d: %v", snapshot.Frame, ctx.Err())
	}
	return nil
}

// processInput applies every pending input event in order, then the script
// for the frame about to run.
func (gm *GameManager) processInput() {
	if gm.inputQueue != nil {
		for _, event := range gm.inputQueue.ReadAll() {
			gm.input.Apply(event)
		}
	}
	if gm.inputScript != nil {
		if event, ok := gm.inputScript.InputAt(gm.gameState.Frame); ok {
			gm.input.Apply(event)
		}
	}
}
