package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"family-archive/archive-api/internal/domain/photo"
)

const tracerName = "family-archive/archive-api/archive"

// Bundler asks an external service to build the archive. Failures are returned
// as *BundlingError.
type Bundler interface {
	RequestBundle(ctx context.Context, photoIDs []int64) (string, error)
}

// ObjectRef names one stored object.
type ObjectRef struct {
	Bucket string
	Key    string
}

// Authorization is a short-lived permission to read one object.
type Authorization struct {
	URL       string
	ExpiresAt time.Time
}

// Authorizer issues retrieval authorizations.
type Authorizer interface {
	Authorize(ctx context.Context, ref ObjectRef) (*Authorization, error)
}

// ObjectFetcher reads the raw bytes behind an authorization URL.
type ObjectFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Recorder observes exports. Implementations must be safe for concurrent use.
type Recorder interface {
	RecordTransition(from, to State)
	RecordExport(final State, photos int, bytes int64, duration time.Duration)
}

// Options configures an Exporter.
type Options struct {
	// Bucket is the storage bucket holding original uploads.
	Bucket string
	// KeyPrefix is the key prefix of original uploads, e.g. "original".
	KeyPrefix string
	// NamePrefix starts archive filenames: "<prefix>-<YYYY-MM-DD>.zip".
	NamePrefix string
	Now        func() time.Time
	Recorder   Recorder
}

// Result is the outcome of a successful export. Exactly one of DownloadURL and
// Handle is set.
type Result struct {
	State       State   `json:"state"`
	Filename    string  `json:"filename"`
	PhotoCount  int     `json:"photo_count"`
	DownloadURL string  `json:"download_url,omitempty"`
	Handle      *Handle `json:"handle,omitempty"`
}

// Exporter turns a selection of photos into one retrievable archive. It keeps
// no per-call state and is safe for concurrent use.
type Exporter struct {
	opts       Options
	bundler    Bundler
	authorizer Authorizer
	fetcher    ObjectFetcher
	issuer     HandleIssuer
	log        zerolog.Logger
	tracer     trace.Tracer
}

// NewExporter wires an exporter.
func NewExporter(opts Options, bundler Bundler, authorizer Authorizer, fetcher ObjectFetcher, issuer HandleIssuer, log zerolog.Logger) *Exporter {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NamePrefix == "" {
		opts.NamePrefix = "photos"
	}
	return &Exporter{
		opts:       opts,
		bundler:    bundler,
		authorizer: authorizer,
		fetcher:    fetcher,
		issuer:     issuer,
		log:        log.With().Str("component", "archive-exporter").Logger(),
		tracer:     otel.Tracer(tracerName),
	}
}

// Filename returns the archive name for an export started at t.
func (e *Exporter) Filename(t time.Time) string {
	return fmt.Sprintf("%s-%s.zip", e.opts.NamePrefix, t.UTC().Format("2006-01-02"))
}

// Export bundles photos. The server-assisted path is tried first; when the
// bundling service is unavailable the photos are fetched one by one, in the
// given order, and zipped locally. Any failure on that path fails the whole
// export and no handle is issued.
func (e *Exporter) Export(ctx context.Context, photos []photo.Photo) (*Result, error) {
	started := e.opts.Now()
	job := &exportJob{
		exporter: e,
		state:    StateIdle,
		started:  started,
		filename: e.Filename(started),
		photos:   photos,
	}

	ctx, span := e.tracer.Start(ctx, "archive.export",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("archive.photo_count", len(photos)),
			attribute.String("archive.filename", job.filename),
		),
	)
	job.span = span
	defer span.End()

	if len(photos) == 0 {
		return nil, job.fail(ErrEmptySelection)
	}

	job.advance(StateRequesting)
	url, err := e.bundler.RequestBundle(ctx, photoIDs(photos))
	switch {
	case err == nil && url != "":
		job.advance(StateServerBundleReady)
		job.finish(0)
		return &Result{
			State:       StateServerBundleReady,
			Filename:    job.filename,
			PhotoCount:  len(photos),
			DownloadURL: url,
		}, nil
	case err == nil:
		e.log.Warn().Msg("bundling service returned no download url; assembling locally")
	case IsBundlingUnavailable(err) && ctx.Err() == nil:
		e.log.Warn().Err(err).Int("photos", len(photos)).Msg("bundling service unavailable; assembling locally")
	default:
		return nil, job.fail(err)
	}

	job.advance(StateFallbackAssembling)
	handle, err := job.assemble(ctx)
	if err != nil {
		return nil, job.fail(err)
	}
	job.advance(StateFallbackBundleReady)
	job.finish(handle.Size)

	return &Result{
		State:      StateFallbackBundleReady,
		Filename:   handle.Filename,
		PhotoCount: len(photos),
		Handle:     handle,
	}, nil
}

type exportJob struct {
	exporter *Exporter
	state    State
	started  time.Time
	filename string
	photos   []photo.Photo
	span     trace.Span
}

func (j *exportJob) advance(to State) {
	from := j.state
	if !from.CanTransition(to) {
		j.exporter.log.Error().Str("from", string(from)).Str("to", string(to)).Msg("invalid export transition")
	}
	j.state = to
	j.span.AddEvent("state.transition", trace.WithAttributes(
		attribute.String("state.from", string(from)),
		attribute.String("state.to", string(to)),
	))
	if r := j.exporter.opts.Recorder; r != nil {
		r.RecordTransition(from, to)
	}
}

func (j *exportJob) fail(err error) error {
	j.advance(StateFailed)
	j.span.RecordError(err)
	j.span.SetStatus(codes.Error, err.Error())
	j.exporter.log.Error().Err(err).Int("photos", len(j.photos)).Msg("export failed")
	j.finish(0)
	return err
}

func (j *exportJob) finish(bytes int64) {
	duration := j.exporter.opts.Now().Sub(j.started)
	if r := j.exporter.opts.Recorder; r != nil {
		r.RecordExport(j.state, len(j.photos), bytes, duration)
	}
	j.exporter.log.Info().
		Str("state", string(j.state)).
		Int("photos", len(j.photos)).
		Int64("bytes", bytes).
		Dur("duration", duration).
		Msg("export finished")
}

// assemble fetches photos sequentially in selection order. The first failure
// aborts; the partial archive is discarded with the assembler.
func (j *exportJob) assemble(ctx context.Context) (*Handle, error) {
	e := j.exporter
	assembler := NewAssembler()

	for _, p := range j.photos {
		if err := ctx.Err(); err != nil {
			return nil, &FetchError{PhotoID: p.ID, Err: err}
		}

		ref := ObjectRef{Bucket: e.opts.Bucket, Key: p.StorageKey(e.opts.KeyPrefix)}
		auth, err := e.authorizer.Authorize(ctx, ref)
		if err != nil {
			return nil, &AuthorizationError{PhotoID: p.ID, Key: ref.Key, Err: err}
		}
		if auth == nil || auth.URL == "" {
			return nil, &AuthorizationError{PhotoID: p.ID, Key: ref.Key, Err: errors.New("empty authorization")}
		}
		if !auth.ExpiresAt.IsZero() && e.opts.Now().After(auth.ExpiresAt) {
			return nil, &FetchError{PhotoID: p.ID, Expired: true}
		}

		data, err := e.fetcher.Fetch(ctx, auth.URL)
		if err != nil {
			return nil, &FetchError{PhotoID: p.ID, Err: err}
		}

		name, err := assembler.Add(p, data)
		if err != nil {
			return nil, &AssemblyError{Entry: name, Err: err}
		}
		e.log.Debug().Int64("photo_id", p.ID).Str("entry", name).Int("bytes", len(data)).Msg("photo added to archive")
	}

	blob, err := assembler.Finish()
	if err != nil {
		return nil, &AssemblyError{Err: err}
	}

	handle, err := e.issuer.Issue(ctx, blob, j.filename)
	if err != nil {
		return nil, &AssemblyError{Err: fmt.Errorf("issue handle: %w", err)}
	}
	return handle, nil
}

func photoIDs(photos []photo.Photo) []int64 {
	ids := make([]int64, len(photos))
	for i, p := range photos {
		ids[i] = p.ID
	}
	return ids
}
