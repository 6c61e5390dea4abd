// Package upload sequences the multi-step publish workflow: validate,
// compress, transfer with progress, then one atomic record write.
package upload

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yashraj-ghemud/royal-state/internal/apperr"
	"github.com/yashraj-ghemud/royal-state/internal/media"
	"github.com/yashraj-ghemud/royal-state/internal/models"
)

// ErrBusy is returned while another submission is still in flight.
var ErrBusy = errors.New("a submission is already in progress")

// ErrNoSession is returned when no authenticated session backs the submit.
var ErrNoSession = errors.New("sign in before posting a room")

// RoomWriter is the single mutation path into the store. The write is the
// atomic commit point: no media transfer ever creates a partial record.
type RoomWriter interface {
	Add(ctx context.Context, l *models.Listing) (string, error)
}

// Files are the selected media for one submission. Both are optional; with
// neither, the transfer phases are skipped entirely.
type Files struct {
	Image *media.File
	Video *media.File
}

type Orchestrator struct {
	store          RoomWriter
	uploader       media.Uploader
	persistTimeout time.Duration
	placeholderURL string
	jpegQuality    int
	log            *zap.SugaredLogger

	mu   sync.Mutex
	busy bool
}

func New(store RoomWriter, uploader media.Uploader, persistTimeout time.Duration, placeholderURL string, jpegQuality int, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		store:          store,
		uploader:       uploader,
		persistTimeout: persistTimeout,
		placeholderURL: placeholderURL,
		jpegQuality:    jpegQuality,
		log:            log,
	}
}

// Submit validates the form and, if it passes, starts the asynchronous
// pipeline. Validation failures are returned synchronously and leave the
// orchestrator idle. At most one task runs at a time.
func (o *Orchestrator) Submit(ctx context.Context, sess *models.Session, form Form, files Files) (*Task, error) {
	if sess == nil {
		return nil, ErrNoSession
	}

	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.busy = true
	o.mu.Unlock()

	if err := validate(&form); err != nil {
		o.release()
		return nil, err
	}

	task := newTask()
	go o.run(ctx, task, sess, form, files)
	return task, nil
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

func (o *Orchestrator) run(ctx context.Context, task *Task, sess *models.Session, form Form, files Files) {
	imageFile := files.Image
	if imageFile != nil {
		task.setPhase(PhaseCompressing)
		data, resized, err := media.CompressImage(imageFile.Data, o.jpegQuality)
		if err != nil {
			o.fail(task, err)
			return
		}
		if resized {
			imageFile = &media.File{Name: imageFile.Name, ContentType: "image/jpeg", Data: data}
		}
	}

	var imageTotal, videoTotal int64
	if imageFile != nil {
		imageTotal = imageFile.Size()
	}
	if files.Video != nil {
		videoTotal = files.Video.Size()
	}
	task.setTotals(imageTotal, videoTotal)

	var imageURL, videoURL string
	if imageFile != nil || files.Video != nil {
		task.setPhase(PhaseUploading)

		// the two transfers are independent; finalizing waits for both
		g, gctx := errgroup.WithContext(ctx)
		if imageFile != nil {
			g.Go(func() error {
				url, err := o.uploader.Upload(gctx, imageFile, media.KindImage, func(loaded, _ int64) {
					task.report(channelImage, loaded)
				})
				if err != nil {
					return err
				}
				imageURL = url
				return nil
			})
		}
		if files.Video != nil {
			g.Go(func() error {
				url, err := o.uploader.Upload(gctx, files.Video, media.KindVideo, func(loaded, _ int64) {
					task.report(channelVideo, loaded)
				})
				if err != nil {
					return err
				}
				videoURL = url
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			o.fail(task, err)
			return
		}
	}

	task.setPhase(PhaseFinalizing)

	listing := buildListing(sess, form, imageURL, videoURL, o.placeholderURL)
	pctx, cancel := context.WithTimeout(ctx, o.persistTimeout)
	defer cancel()

	id, err := o.store.Add(pctx, listing)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || pctx.Err() != nil {
			o.fail(task, &apperr.PersistenceError{Kind: apperr.PersistTimeout,
				Message: "saving the room timed out, it was not posted", Err: err})
			return
		}
		o.fail(task, &apperr.PersistenceError{Kind: apperr.PersistTransport,
			Message: "saving the room failed, it was not posted", Err: err})
		return
	}
	listing.ID = id
	// free the slot before signalling so a caller woken by Done can
	// submit again immediately
	o.release()
	task.succeed(listing)
}

// fail halts the pipeline with one consolidated error. Media already at the
// host stays there: nothing references it, and cleanup is not attempted.
func (o *Orchestrator) fail(task *Task, err error) {
	o.log.Warnw("submission failed", "task", task.ID, "err", err)
	o.release()
	task.fail(err)
}

func buildListing(sess *models.Session, form Form, imageURL, videoURL, placeholderURL string) *models.Listing {
	title := form.Title
	if title == "" {
		title = models.DeriveTitle(form.RoomType, form.District)
	}
	if imageURL == "" {
		imageURL = placeholderURL
	}
	var video *string
	if videoURL != "" {
		video = &videoURL
	}
	return &models.Listing{
		Title:       title,
		District:    form.District,
		Location:    form.Location,
		Price:       form.Price,
		Phone:       form.Phone,
		Description: form.Description,
		RoomType:    form.RoomType,
		ImageURL:    imageURL,
		VideoURL:    video,
		OwnerID:     sess.UID,
		OwnerEmail:  sess.Email,
		Status:      models.StatusActive,
	}
}
