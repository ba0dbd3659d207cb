package trace

import (
	"bufio"
	"fmt"
	"io"

	"github.com/cbodonnell/slide/pkg/collisions"
	"github.com/cbodonnell/slide/pkg/messages"
	"github.com/gocarina/gocsv"
)

// Row is one entity in one frame.
type Row struct {
	Frame     uint64  `csv:"frame"`
	EntityID  uint32  `csv:"entity"`
	X         float64 `csv:"x"`
	Y         float64 `csv:"y"`
	VelocityX float64 `csv:"vx"`
	VelocityY float64 `csv:"vy"`
	CanJump   bool    `csv:"can_jump"`
}

// Writer writes snapshots as CSV rows, for plotting trajectories.
type Writer struct {
	w             *bufio.Writer
	entities      map[collisions.EntityID]struct{}
	headerWritten bool
	rows          []Row
}

// NewWriter returns a Writer tracing the given entities, or every entity if
// none are given.
func NewWriter(w io.Writer, entityIDs ...collisions.EntityID) *Writer {
	var entities map[collisions.EntityID]struct{}
	if len(entityIDs) > 0 {
		entities = make(map[collisions.EntityID]struct{}, len(entityIDs))
		for _, id := range entityIDs {
			entities[id] = struct{}{}
		}
	}
	return &Writer{
		w:        bufio.NewWriter(w),
		entities: entities,
	}
}

func (t *Writer) traced(id collisions.EntityID) bool {
	if t.entities == nil {
		return true
	}
	_, ok := t.entities[id]
	return ok
}

// WriteSnapshot appends a row for every traced entity of snapshot.
func (t *Writer) WriteSnapshot(snapshot *messages.Snapshot) error {
	t.rows = t.rows[:0]
	for _, entity := range snapshot.Entities {
		if !t.traced(entity.ID) {
			continue
		}
		t.rows = append(t.rows, Row{
			Frame:     snapshot.Frame,
			EntityID:  uint32(entity.ID),
			X:         entity.Position.X,
			Y:         entity.Position.Y,
			VelocityX: entity.Velocity.X,
			VelocityY: entity.Velocity.Y,
			CanJump:   entity.CanJump,
		})
	}
	if len(t.rows) == 0 {
		return nil
	}

	if !t.headerWritten {
		if err := gocsv.Marshal(t.rows, t.w); err != nil {
			return fmt.Errorf("failed to write trace: %v", err)
		}
		t.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(t.rows, t.w); err != nil {
		return fmt.Errorf("failed to write trace: %v", err)
	}
	return nil
}

func (t *Writer) Flush() error {
	return t.w.Flush()
}

// ReadAll parses a trace written by Writer.
func ReadAll(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to read trace: %v", err)
	}
	return rows, nil
}
