package messages

import (
	"bytes"
	"fmt"
	"io"

	snapshotfb "github.com/cbodonnell/slide/flatbuffers/snapshot"
	"github.com/cbodonnell/slide/pkg/collisions"
	"github.com/cbodonnell/slide/pkg/kinematic"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
)

// SerializeSnapshot encodes s as a zstd compressed flatbuffer.
func SerializeSnapshot(s *Snapshot) ([]byte, error) {
	b := SerializeSnapshotFlatbuffer(s)

	compressed := bytes.NewBuffer(nil)
	compWriter, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %v", err)
	}
	if _, err := compWriter.Write(b); err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %v", err)
	}
	if err := compWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zstd writer: %v", err)
	}

	return compressed.Bytes(), nil
}

func DeserializeSnapshot(data []byte) (*Snapshot, error) {
	compReader, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %v", err)
	}
	defer compReader.Close()
	b, err := io.ReadAll(compReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read decompressed snapshot: %v", err)
	}

	snapshot, err := DeserializeSnapshotFlatbuffer(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot: %v", err)
	}

	return snapshot, nil
}

func SerializeSnapshotFlatbuffer(s *Snapshot) []byte {
	builder := flatbuffers.NewBuilder(0)
	builder.Finish(buildSnapshotFlatbuffer(builder, s))
	return builder.FinishedBytes()
}

// SerializeSnapshotSizePrefixed encodes s as a flatbuffer preceded by its
// little endian uint32 size, so that snapshots can follow one another in a
// stream.
func SerializeSnapshotSizePrefixed(s *Snapshot) []byte {
	builder := flatbuffers.NewBuilder(0)
	snapshotfb.FinishSizePrefixedSnapshotBuffer(builder, buildSnapshotFlatbuffer(builder, s))
	return builder.FinishedBytes()
}

func buildSnapshotFlatbuffer(builder *flatbuffers.Builder, s *Snapshot) flatbuffers.UOffsetT {
	entities := make([]flatbuffers.UOffsetT, 0, len(s.Entities))
	for _, entity := range s.Entities {
		entities = append(entities, SerializeEntityFlatbuffer(builder, entity))
	}
	snapshotfb.SnapshotStartEntitiesVector(builder, len(entities))
	for i := len(entities) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(entities[i])
	}
	entityVector := builder.EndVector(len(entities))

	snapshotfb.SnapshotStart(builder)
	snapshotfb.SnapshotAddFrame(builder, s.Frame)
	snapshotfb.SnapshotAddEntities(builder, entityVector)
	return snapshotfb.SnapshotEnd(builder)
}

func SerializeEntityFlatbuffer(builder *flatbuffers.Builder, entity EntitySnapshot) flatbuffers.UOffsetT {
	position := serializeVec2Flatbuffer(builder, entity.Position)
	velocity := serializeVec2Flatbuffer(builder, entity.Velocity)

	snapshotfb.EntityStart(builder)
	snapshotfb.EntityAddId(builder, uint32(entity.ID))
	snapshotfb.EntityAddPosition(builder, position)
	snapshotfb.EntityAddVelocity(builder, velocity)
	snapshotfb.EntityAddCanJump(builder, entity.CanJump)
	return snapshotfb.EntityEnd(builder)
}

func serializeVec2Flatbuffer(builder *flatbuffers.Builder, v kinematic.Vector) flatbuffers.UOffsetT {
	snapshotfb.Vec2Start(builder)
	snapshotfb.Vec2AddX(builder, v.X)
	snapshotfb.Vec2AddY(builder, v.Y)
	return snapshotfb.Vec2End(builder)
}

func DeserializeSnapshotFlatbuffer(b []byte) (s *Snapshot, err error) {
	// malformed buffers make the generated accessors index out of range
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("malformed snapshot: %v", r)
		}
	}()

	return snapshotFromFlatbuffer(snapshotfb.GetRootAsSnapshot(b, 0))
}

// DeserializeSnapshotSizePrefixed decodes a buffer written by
// SerializeSnapshotSizePrefixed, prefix included.
func DeserializeSnapshotSizePrefixed(b []byte) (s *Snapshot, err error) {
	if len(b) < flatbuffers.SizeUint32 {
		return nil, fmt.Errorf("malformed snapshot: %d bytes is too short for a size prefix", len(b))
	}
	if size := flatbuffers.GetSizePrefix(b, 0); int(size) != len(b)-flatbuffers.SizeUint32 {
		return nil, fmt.Errorf("malformed snapshot: size prefix %d does not match %d bytes", size, len(b)-flatbuffers.SizeUint32)
	}
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("malformed snapshot: %v", r)
		}
	}()
	return snapshotFromFlatbuffer(snapshotfb.GetSizePrefixedRootAsSnapshot(b, 0))
}

func snapshotFromFlatbuffer(snapshotFlatbuffer *snapshotfb.Snapshot) (*Snapshot, error) {
	snapshot := &Snapshot{
		Frame:    snapshotFlatbuffer.Frame(),
		Entities: make([]EntitySnapshot, 0, snapshotFlatbuffer.EntitiesLength()),
	}
	entity := &snapshotfb.Entity{}
	for i := 0; i < snapshotFlatbuffer.EntitiesLength(); i++ {
		if !snapshotFlatbuffer.Entities(entity, i) {
			return nil, fmt.Errorf("failed to get entity at index %d", i)
		}
		snapshot.Entities = append(snapshot.Entities, EntityFlatbufferToEntitySnapshot(entity))
	}

	return snapshot, nil
}

func EntityFlatbufferToEntitySnapshot(fb *snapshotfb.Entity) EntitySnapshot {
	return EntitySnapshot{
		ID:       collisions.EntityID(fb.Id()),
		Position: vec2FlatbufferToVector(fb.Position(nil)),
		Velocity: vec2FlatbufferToVector(fb.Velocity(nil)),
		CanJump:  fb.CanJump(),
	}
}

func vec2FlatbufferToVector(fb *snapshotfb.Vec2) kinematic.Vector {
	if fb == nil {
		return kinematic.Zero
	}
	return kinematic.Vec(fb.X(), fb.Y())
}
