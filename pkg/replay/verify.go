package replay

import (
	"errors"
	"fmt"
	"io"

	"github.com/cbodonnell/slide/pkg/messages"
)

// DivergenceError reports the first frame at which a re-run differs from a
// recording. Got is nil when the re-run produced no frame.
type DivergenceError struct {
	Index int
	Want  *messages.Snapshot
	Got   *messages.Snapshot
}

func (e *DivergenceError) Error() string {
	if e.Got == nil {
		return fmt.Sprintf("re-run ended before frame %d at index %d", e.Want.Frame, e.Index)
	}
	return fmt.Sprintf("frame %d diverged at index %d", e.Want.Frame, e.Index)
}

// Verify re-runs a recording one frame at a time. next is called once per
// recorded frame and returns the re-run's snapshot of it. It returns the
// number of frames that matched, and a *DivergenceError for the first
// mismatch.
func Verify(r *Reader, next func() (*messages.Snapshot, error)) (int, error) {
	for i := 0; ; i++ {
		want, err := r.Next()
		if errors.Is(err, io.EOF) {
			return i, nil
		}
		if err != nil {
			return i, fmt.Errorf("failed to read recording: %v", err)
		}
		got, err := next()
		if err != nil {
			return i, fmt.Errorf("failed to re-run frame %d: %v", want.Frame, err)
		}
		if got == nil || !want.Equal(got) {
			return i, &DivergenceError{Index: i, Want: want, Got: got}
		}
	}
}
