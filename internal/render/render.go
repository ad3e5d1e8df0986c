// Package render drives card composition. A [Context] carries everything a
// composer needs for one language; [Run] walks a [Composer] through its
// stages and guarantees the asset index and every fetched bitmap are
// released on every exit path.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/qingque-bot/qingque/internal/assets"
	"github.com/qingque-bot/qingque/internal/drawing"
	"github.com/qingque-bot/qingque/internal/fonts"
	"github.com/qingque-bot/qingque/internal/i18n"
	"github.com/qingque-bot/qingque/internal/imagecache"
	"github.com/qingque-bot/qingque/internal/lang"
	"github.com/qingque-bot/qingque/internal/logger"
	"github.com/qingque-bot/qingque/internal/scoring"
)

// ErrIncompleteContext is returned by [Run] when a required collaborator is
// missing from the [Context].
var ErrIncompleteContext = errors.New("render context is incomplete")

// ///////////////////////////////////////////////
// Context
// ///////////////////////////////////////////////

// Context is the explicit set of collaborators a composition uses. It is
// shared read-only between concurrent renders.
type Context struct {
	// Tag is the card language.
	Tag lang.Tag
	// Catalog resolves UI strings; it is bound to Tag per job.
	Catalog *i18n.Catalog
	// Registry hands out the per-language asset index.
	Registry *assets.Registry
	// Images decodes and caches asset bitmaps.
	Images *imagecache.Cache
	// Fonts holds the UI and universe typefaces.
	Fonts *fonts.Set
	// Scores grades relics on the character card. Nil disables the overlay.
	Scores *scoring.Store
	// Logger is the parent of every job logger. Nil uses slog.Default.
	Logger *slog.Logger

	// HideCredits drops the credits line from card footers.
	HideCredits bool
	// HideTimestamp drops the generation timestamp.
	HideTimestamp bool
	// RetainImages keeps fetched bitmaps cached after a job ends. When false
	// each job evicts what it fetched.
	RetainImages bool

	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time
}

// WithTag returns a copy of c rendering in tag.
func (c *Context) WithTag(tag lang.Tag) *Context {
	cp := *c
	cp.Tag = tag
	return &cp
}

func (c *Context) validate() error {
	var missing []string
	if c.Catalog == nil {
		missing = append(missing, "catalog")
	}
	if c.Registry == nil {
		missing = append(missing, "registry")
	}
	if c.Images == nil {
		missing = append(missing, "images")
	}
	if c.Fonts == nil {
		missing = append(missing, "fonts")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrIncompleteContext, missing)
	}
	return nil
}

// ///////////////////////////////////////////////
// Composer
// ///////////////////////////////////////////////

// Frame is the initial canvas a composer asks for.
type Frame struct {
	Width      int
	Height     int
	Background color.NRGBA
	Foreground color.NRGBA
}

// Composer builds one kind of card.
type Composer interface {
	// Kind names the card ("character", "chronicle", ...).
	Kind() string
	// Subject identifies what is drawn, for logs.
	Subject() string
	// Prepare resolves the canvas size and colours.
	Prepare(j *Job) (Frame, error)
	// Draw paints onto c. Composers call [Job.Check] between sections.
	Draw(j *Job, c *drawing.Canvas) error
}

// Finisher is implemented by composers that wrap the drawn canvas in an
// outer frame before encoding. The returned canvas replaces inner.
type Finisher interface {
	Finish(j *Job, inner *drawing.Canvas) (*drawing.Canvas, error)
}

// Run composes one card and returns its PNG bytes. The index and bitmaps
// acquired for the job are released before Run returns, whether it succeeds,
// fails or is cancelled.
func Run(ctx context.Context, rc *Context, comp Composer) (_ []byte, err error) {
	if err := rc.validate(); err != nil {
		return nil, err
	}
	tag := rc.Tag
	if !tag.Valid() {
		tag = lang.Default
	}

	j := &Job{
		ctx: ctx,
		ID:  uuid.NewString(),
		rc:  rc,
		Tag: tag,
		T:   rc.Catalog.For(tag),
	}
	j.Log = logger.ForCard(rc.Logger, comp.Kind(), comp.Subject()).With("job", j.ID)
	start := j.Now()
	defer func() {
		if err != nil {
			logger.Fail(j.Log, "card failed", "error", err)
			return
		}
		j.Log.Debug("card rendered", "elapsed", j.Now().Sub(start).String())
	}()

	if err := j.Check("acquire"); err != nil {
		return nil, err
	}
	idx, err := rc.Registry.Acquire(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("acquire %s index: %w", tag, err)
	}
	defer rc.Registry.Release(tag)
	j.Index = idx

	j.Faces = rc.Fonts.Faces()
	defer j.release()

	if err := j.Check("prepare"); err != nil {
		return nil, err
	}
	frame, err := comp.Prepare(j)
	if err != nil {
		return nil, fmt.Errorf("prepare %s card: %w", comp.Kind(), err)
	}

	if err := j.Check("draw"); err != nil {
		return nil, err
	}
	canvas := drawing.New(frame.Width, frame.Height, drawing.Options{
		Background: frame.Background,
		Foreground: frame.Foreground,
		Faces:      j.Faces,
		Logger:     j.Log,
	})
	if err := comp.Draw(j, canvas); err != nil {
		return nil, fmt.Errorf("draw %s card: %w", comp.Kind(), err)
	}
	if f, ok := comp.(Finisher); ok {
		if err := j.Check("finish"); err != nil {
			return nil, err
		}
		if canvas, err = f.Finish(j, canvas); err != nil {
			return nil, fmt.Errorf("finish %s card: %w", comp.Kind(), err)
		}
	}

	if err := j.Check("encode"); err != nil {
		return nil, err
	}
	return canvas.EncodePNG()
}

// ///////////////////////////////////////////////
// Job
// ///////////////////////////////////////////////

// Job is the per-render state handed to a composer. It is used by a single
// goroutine.
type Job struct {
	ctx context.Context
	rc  *Context

	// ID is a unique id for log correlation.
	ID string
	// Tag is the resolved card language.
	Tag lang.Tag
	// T translates UI strings into Tag.
	T *i18n.Bound
	// Index is the loaded asset index for Tag.
	Index *assets.Index
	// Faces caches font faces for this job.
	Faces *fonts.Faces
	// Log is tagged with the card kind, subject and job id.
	Log *slog.Logger

	// fetched tracks cached bitmaps to evict when the job ends.
	fetched []*image.NRGBA
}

// Context returns the job's cancellation context.
func (j *Job) Context() context.Context { return j.ctx }

// HideCredits reports whether footers omit the credits line.
func (j *Job) HideCredits() bool { return j.rc.HideCredits }

// HideTimestamp reports whether cards omit the generation time.
func (j *Job) HideTimestamp() bool { return j.rc.HideTimestamp }

// Scores returns the score store, which may be nil.
func (j *Job) Scores() *scoring.Store { return j.rc.Scores }

// Now returns the current time from the context clock.
func (j *Job) Now() time.Time {
	if j.rc.Now != nil {
		return j.rc.Now()
	}
	return time.Now()
}

// Check returns the context error, if any, tagged with the stage about to
// start.
func (j *Job) Check(stage string) error {
	if err := j.ctx.Err(); err != nil {
		return fmt.Errorf("before %s: %w", stage, err)
	}
	logger.Trace(j.Log, "stage", "name", stage)
	return nil
}

// Image returns the asset bitmap at the asset-relative path. The result is
// shared and must not be modified.
func (j *Job) Image(path string) (*image.NRGBA, error) {
	img, err := j.rc.Images.Get(path)
	if err != nil {
		return nil, err
	}
	if !j.rc.RetainImages {
		j.fetched = append(j.fetched, img)
	}
	return img, nil
}

// release evicts fetched bitmaps and closes font faces.
func (j *Job) release() {
	for _, img := range j.fetched {
		j.rc.Images.Close(img)
	}
	j.fetched = nil
	if j.Faces != nil {
		if err := j.Faces.Close(); err != nil {
			j.Log.Warn("closing font faces", "error", err)
		}
	}
}
