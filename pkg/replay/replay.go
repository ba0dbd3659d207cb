package replay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cbodonnell/slide/pkg/messages"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// FormatVersion is written into every header and checked on read.
const FormatVersion = 2

// MaxFrameSize bounds the size of a single serialized snapshot.
const MaxFrameSize = 16 << 20

// Header is the first line of a recording.
type Header struct {
	Version     int       `json:"version"`
	RecordingID uuid.UUID `json:"recordingId"`
	Scene       string    `json:"scene"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewHeader returns a header for a new recording of the named scene.
func NewHeader(scene string) Header {
	return Header{
		Version:     FormatVersion,
		RecordingID: uuid.New(),
		Scene:       scene,
		CreatedAt:   time.Now().UTC(),
	}
}

// Writer appends snapshots to a recording. After the header line, frames
// are size prefixed flatbuffers in a single zstd stream.
type Writer struct {
	w            *bufio.Writer
	enc          *zstd.Encoder
	header       Header
	frames       int
	maxFrameSize int
}

// NewWriter writes header to w and returns a Writer for the frames. Close
// must be called to end the recording.
func NewWriter(w io.Writer, header Header) (*Writer, error) {
	bw := bufio.NewWriter(w)
	b, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal header: %v", err)
	}
	if _, err := bw.Write(append(b, '\n')); err != nil {
		return nil, fmt.Errorf("failed to write header: %v", err)
	}
	enc, err := zstd.NewWriter(bw, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %v", err)
	}
	return &Writer{
		w:            bw,
		enc:          enc,
		header:       header,
		maxFrameSize: MaxFrameSize,
	}, nil
}

func (w *Writer) Header() Header {
	return w.header
}

// Frames returns the number of snapshots written so far.
func (w *Writer) Frames() int {
	return w.frames
}

// WriteSnapshot appends snapshot. Snapshots larger than MaxFrameSize are
// rejected, as Reader would refuse them.
func (w *Writer) WriteSnapshot(snapshot *messages.Snapshot) error {
	b := messages.SerializeSnapshotSizePrefixed(snapshot)
	if size := len(b) - flatbuffers.SizeUint32; size > w.maxFrameSize {
		return fmt.Errorf("frame %d of %d bytes exceeds the limit of %d", snapshot.Frame, size, w.maxFrameSize)
	}
	if _, err := w.enc.Write(b); err != nil {
		return fmt.Errorf("failed to write frame: %v", err)
	}
	w.frames++
	return nil
}

// Flush makes every frame written so far readable from the underlying
// writer.
func (w *Writer) Flush() error {
	if err := w.enc.Flush(); err != nil {
		return fmt.Errorf("failed to flush frames: %v", err)
	}
	return w.w.Flush()
}

// Close ends the zstd stream and flushes it. The underlying writer is left
// open.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("failed to close recording: %v", err)
	}
	return w.w.Flush()
}

// Reader reads the snapshots of a recording in order.
type Reader struct {
	dec          *zstd.Decoder
	header       Header
	maxFrameSize int
}

func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %v", err)
	}
	var header Header
	if err := json.Unmarshal(line, &header); err != nil {
		return nil, fmt.Errorf("failed to unmarshal header: %v", err)
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported recording version %d", header.Version)
	}
	dec, err := zstd.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %v", err)
	}
	return &Reader{
		dec:          dec,
		header:       header,
		maxFrameSize: MaxFrameSize,
	}, nil
}

func (r *Reader) Header() Header {
	return r.header
}

// Next returns the next snapshot, or io.EOF after the last one.
func (r *Reader) Next() (*messages.Snapshot, error) {
	var prefix [flatbuffers.SizeUint32]byte
	if _, err := io.ReadFull(r.dec, prefix[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read frame size: %v", err)
	}
	size := flatbuffers.GetSizePrefix(prefix[:], 0)
	if uint64(size) > uint64(r.maxFrameSize) {
		return nil, fmt.Errorf("frame of %d bytes exceeds the limit of %d", size, r.maxFrameSize)
	}
	b := make([]byte, flatbuffers.SizeUint32+int(size))
	copy(b, prefix[:])
	if _, err := io.ReadFull(r.dec, b[flatbuffers.SizeUint32:]); err != nil {
		return nil, fmt.Errorf("failed to read frame: %v", err)
	}
	snapshot, err := messages.DeserializeSnapshotSizePrefixed(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize frame: %v", err)
	}
	return snapshot, nil
}

// ReadAll returns every remaining snapshot.
func (r *Reader) ReadAll() ([]*messages.Snapshot, error) {
	var snapshots []*messages.Snapshot
	for {
		snapshot, err := r.Next()
		if errors.Is(err, io.EOF) {
			return snapshots, nil
		}
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
}

// Close releases the decoder. The underlying reader is left open.
func (r *Reader) Close() {
	r.dec.Close()
}
