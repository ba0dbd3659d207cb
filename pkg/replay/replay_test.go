package replay

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/cbodonnell/slide/pkg/kinematic"
	"github.com/cbodonnell/slide/pkg/messages"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frames(n int) []*messages.Snapshot {
	snapshots := make([]*messages.Snapshot, 0, n)
	for i := 0; i < n; i++ {
		snapshots = append(snapshots, &messages.Snapshot{
			Frame: uint64(i + 1),
			Entities: []messages.EntitySnapshot{
				{ID: 0, Position: kinematic.Vec(float64(i), 436), Velocity: kinematic.Vec(1, 0), CanJump: true},
			},
		})
	}
	return snapshots
}

func record(t *testing.T, snapshots []*messages.Snapshot) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, NewHeader("demo"))
	require.NoError(t, err)
	for _, s := range snapshots {
		require.NoError(t, w.WriteSnapshot(s))
	}
	require.NoError(t, w.Flush())
	require.NoError(t, w.Close())
	assert.Equal(t, len(snapshots), w.Frames())
	return buf
}

func newReader(t *testing.T, r io.Reader) *Reader {
	t.Helper()
	reader, err := NewReader(r)
	require.NoError(t, err)
	t.Cleanup(reader.Close)
	return reader
}

func TestWriterReader(t *testing.T) {
	want := frames(5)
	buf := record(t, want)

	r := newReader(t, buf)
	assert.Equal(t, "demo", r.Header().Scene)
	assert.Equal(t, FormatVersion, r.Header().Version)
	assert.NotEqual(t, uuid.Nil, r.Header().RecordingID)

	got, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "frame %d", i)
	}

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNewReader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "not json", input: "hello\n"},
		{name: "wrong version", input: `{"version":99}` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(bytes.NewBufferString(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestReader_Truncated(t *testing.T) {
	buf := record(t, frames(4))
	headerLen := bytes.IndexByte(buf.Bytes(), '\n') + 1
	truncated := buf.Bytes()[:headerLen+(buf.Len()-headerLen)/2]

	r := newReader(t, bytes.NewReader(truncated))
	_, err := r.ReadAll()
	assert.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}

func TestWriter_FrameTooLarge(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, NewHeader("demo"))
	require.NoError(t, err)
	w.maxFrameSize = 16

	assert.Error(t, w.WriteSnapshot(frames(1)[0]))
	assert.Zero(t, w.Frames())
	require.NoError(t, w.Close())

	got, err := newReader(t, buf).ReadAll()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReader_FrameTooLarge(t *testing.T) {
	r := newReader(t, record(t, frames(1)))
	r.maxFrameSize = 16

	_, err := r.Next()
	assert.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}

// rerun replays snapshots, then reports no more frames.
func rerun(snapshots []*messages.Snapshot) func() (*messages.Snapshot, error) {
	i := 0
	return func() (*messages.Snapshot, error) {
		if i >= len(snapshots) {
			return nil, nil
		}
		i++
		return snapshots[i-1], nil
	}
}

func TestVerify(t *testing.T) {
	recorded := frames(4)

	diverged := frames(4)
	diverged[2].Entities[0].Position = kinematic.Vec(2, 436.0000001)

	tests := []struct {
		name          string
		next          func() (*messages.Snapshot, error)
		wantMatched   int
		wantDiverged  bool
		wantGotMissing bool
	}{
		{name: "identical", next: rerun(frames(4)), wantMatched: 4},
		{name: "diverged", next: rerun(diverged), wantMatched: 2, wantDiverged: true},
		{name: "short", next: rerun(frames(3)), wantMatched: 3, wantDiverged: true, wantGotMissing: true},
		{name: "longer re-run is not read past the recording", next: rerun(frames(6)), wantMatched: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, err := Verify(newReader(t, record(t, recorded)), tt.next)
			assert.Equal(t, tt.wantMatched, matched)
			if !tt.wantDiverged {
				assert.NoError(t, err)
				return
			}
			var divergence *DivergenceError
			require.ErrorAs(t, err, &divergence)
			assert.Equal(t, tt.wantMatched, divergence.Index)
			assert.Equal(t, tt.wantGotMissing, divergence.Got == nil)
			assert.NotEmpty(t, divergence.Error())
		})
	}
}

func TestVerify_RerunError(t *testing.T) {
	failed := errors.New("no player")
	matched, err := Verify(newReader(t, record(t, frames(2))), func() (*messages.Snapshot, error) {
		return nil, failed
	})
	assert.Zero(t, matched)
	require.Error(t, err)
	var divergence *DivergenceError
	assert.False(t, errors.As(err, &divergence))
}
