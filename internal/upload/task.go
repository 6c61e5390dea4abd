package upload

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yashraj-ghemud/royal-state/internal/models"
)

type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseValidating  Phase = "validating"
	PhaseCompressing Phase = "compressing"
	PhaseUploading   Phase = "uploading"
	PhaseFinalizing  Phase = "finalizing"
	PhasePersisted   Phase = "persisted"
	PhaseFailed      Phase = "failed"
)

// Snapshot is one progress tick of an in-flight submission.
type Snapshot struct {
	Phase   Phase
	Percent int
	Elapsed time.Duration
	ETA     time.Duration
	Image   FileProgress
	Video   FileProgress
}

type FileProgress struct {
	Loaded int64
	Total  int64
}

const (
	channelImage = 0
	channelVideo = 1

	// transfers own at most this much of the bar; the rest is persistence
	transferCeiling = 90
)

// Task is one in-flight submission: a progress stream plus a final result.
// It is ephemeral and never persisted.
type Task struct {
	ID string

	mu      sync.Mutex
	phase   Phase
	started time.Time
	loaded  [2]int64
	totals  [2]int64
	percent int
	err     error
	listing *models.Listing

	progress chan Snapshot
	done     chan struct{}
}

func newTask() *Task {
	return &Task{
		ID:       uuid.NewString(),
		phase:    PhaseValidating,
		started:  time.Now(),
		progress: make(chan Snapshot, 64),
		done:     make(chan struct{}),
	}
}

// Progress streams snapshots. Ticks are dropped, not blocked on, when the
// consumer lags; the terminal state is always observable via Done.
func (t *Task) Progress() <-chan Snapshot { return t.progress }

// Done is closed once the task is Persisted or Failed.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the consolidated failure, nil on success or while running.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Listing returns the persisted record after success.
func (t *Task) Listing() *models.Listing {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.listing
}

func (t *Task) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Snapshot returns the current progress state.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Task) setTotals(image, video int64) {
	t.mu.Lock()
	t.totals[channelImage] = image
	t.totals[channelVideo] = video
	t.mu.Unlock()
}

func (t *Task) setPhase(p Phase) {
	t.mu.Lock()
	t.phase = p
	if p == PhaseFinalizing && t.percent < transferCeiling {
		// transfers are done (or there were none); park the bar at the
		// ceiling while the record write runs
		t.percent = transferCeiling
	}
	t.emitLocked()
	t.mu.Unlock()
}

// report records loaded bytes for one channel and re-derives the overall
// percent and ETA. Loaded is clamped to the channel total because the
// transport counts multipart framing bytes too.
func (t *Task) report(channel int, loaded int64) {
	t.mu.Lock()
	if loaded > t.totals[channel] {
		loaded = t.totals[channel]
	}
	if loaded > t.loaded[channel] {
		t.loaded[channel] = loaded
	}
	t.recomputeLocked()
	t.emitLocked()
	t.mu.Unlock()
}

func (t *Task) recomputeLocked() {
	sumTotal := t.totals[channelImage] + t.totals[channelVideo]
	if sumTotal == 0 {
		return
	}
	sumLoaded := t.loaded[channelImage] + t.loaded[channelVideo]
	fraction := float64(sumLoaded) / float64(sumTotal)
	pct := int(math.Round(transferCeiling * fraction))
	if pct > transferCeiling {
		pct = transferCeiling
	}
	if pct > t.percent {
		t.percent = pct
	}
}

func (t *Task) snapshotLocked() Snapshot {
	elapsed := time.Since(t.started)
	return Snapshot{
		Phase:   t.phase,
		Percent: t.percent,
		Elapsed: elapsed,
		ETA:     t.etaLocked(elapsed),
		Image:   FileProgress{Loaded: t.loaded[channelImage], Total: t.totals[channelImage]},
		Video:   FileProgress{Loaded: t.loaded[channelVideo], Total: t.totals[channelVideo]},
	}
}

// etaLocked is remaining bytes over the average throughput observed since
// the task started. Zero until any byte has moved.
func (t *Task) etaLocked(elapsed time.Duration) time.Duration {
	sumLoaded := t.loaded[channelImage] + t.loaded[channelVideo]
	sumTotal := t.totals[channelImage] + t.totals[channelVideo]
	if sumLoaded == 0 || elapsed <= 0 {
		return 0
	}
	throughput := float64(sumLoaded) / elapsed.Seconds()
	remaining := float64(sumTotal - sumLoaded)
	return time.Duration(remaining / throughput * float64(time.Second))
}

func (t *Task) emitLocked() {
	select {
	case t.progress <- t.snapshotLocked():
	default:
	}
}

func (t *Task) succeed(l *models.Listing) {
	t.mu.Lock()
	t.phase = PhasePersisted
	t.percent = 100
	t.listing = l
	t.emitLocked()
	t.mu.Unlock()
	close(t.done)
}

// fail discards partial progress state and records the proximate cause.
func (t *Task) fail(err error) {
	t.mu.Lock()
	t.phase = PhaseFailed
	t.err = err
	t.loaded = [2]int64{}
	t.percent = 0
	t.emitLocked()
	t.mu.Unlock()
	close(t.done)
}
