package archive_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"family-archive/archive-api/internal/domain/archive"
	"family-archive/archive-api/internal/domain/photo"
)

var fixedNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

type fakeBundler struct {
	url   string
	err   error
	calls [][]int64
}

func (f *fakeBundler) RequestBundle(ctx context.Context, ids []int64) (string, error) {
	f.calls = append(f.calls, ids)
	return f.url, f.err
}

type fakeAuthorizer struct {
	ttl   time.Duration
	fail  map[string]error
	refs  []archive.ObjectRef
	clock func() time.Time
}

func (f *fakeAuthorizer) Authorize(ctx context.Context, ref archive.ObjectRef) (*archive.Authorization, error) {
	f.refs = append(f.refs, ref)
	if err, ok := f.fail[ref.Key]; ok {
		return nil, err
	}
	return &archive.Authorization{
		URL:       "https://r2.test/" + ref.Bucket + "/" + ref.Key,
		ExpiresAt: f.clock().Add(f.ttl),
	}, nil
}

type fakeFetcher struct {
	data  map[string][]byte
	fail  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.fail[url]; ok {
		return nil, err
	}
	return f.data[url], nil
}

type fakeIssuer struct {
	issued   [][]byte
	released int
}

func (f *fakeIssuer) Issue(ctx context.Context, data []byte, filename string) (*archive.Handle, error) {
	f.issued = append(f.issued, data)
	return archive.NewHandle("dl_test", filename, int64(len(data)), fixedNow, func() { f.released++ }), nil
}

type recordedTransition struct{ from, to archive.State }

type fakeRecorder struct {
	mu          sync.Mutex
	transitions []recordedTransition
	finals      []archive.State
}

func (r *fakeRecorder) RecordTransition(from, to archive.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, recordedTransition{from, to})
}

func (r *fakeRecorder) RecordExport(final archive.State, photos int, bytes int64, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finals = append(r.finals, final)
}

type harness struct {
	bundler    *fakeBundler
	authorizer *fakeAuthorizer
	fetcher    *fakeFetcher
	issuer     *fakeIssuer
	recorder   *fakeRecorder
	exporter   *archive.Exporter
	now        time.Time
}

func newHarness() *harness {
	h := &harness{now: fixedNow}
	clock := func() time.Time { return h.now }
	h.bundler = &fakeBundler{}
	h.authorizer = &fakeAuthorizer{ttl: time.Minute, fail: map[string]error{}, clock: clock}
	h.fetcher = &fakeFetcher{data: map[string][]byte{}, fail: map[string]error{}}
	h.issuer = &fakeIssuer{}
	h.recorder = &fakeRecorder{}
	h.exporter = archive.NewExporter(archive.Options{
		Bucket:     "images",
		KeyPrefix:  "original",
		NamePrefix: "photos",
		Now:        clock,
		Recorder:   h.recorder,
	}, h.bundler, h.authorizer, h.fetcher, h.issuer, zerolog.Nop())
	return h
}

func (h *harness) addObject(p photo.Photo, data []byte) {
	h.fetcher.data["https://r2.test/images/"+p.StorageKey("original")] = data
}

func samplePhotos() []photo.Photo {
	return []photo.Photo{
		{ID: 3, Filename: "sea.jpg", Name: "Sea", CreatedAt: fixedNow.AddDate(0, 0, -2)},
		{ID: 1, Filename: "dog.txt", Name: "Dog", CreatedAt: fixedNow.AddDate(0, 0, -5)},
		{ID: 2, Filename: "cake.png", Name: "Cake", CreatedAt: fixedNow.AddDate(0, -2, 0)},
	}
}

func unavailable() error {
	return archive.NewBundlingUnavailableError(0, "dial", errors.New("connection refused"))
}

func TestExport_EmptySelection(t *testing.T) {
	h := newHarness()

	result, err := h.exporter.Export(context.Background(), nil)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, archive.ErrEmptySelection)
	assert.Empty(t, h.bundler.calls)
	assert.Equal(t, []archive.State{archive.StateFailed}, h.recorder.finals)
}

func TestExport_ServerBundleReady(t *testing.T) {
	h := newHarness()
	h.bundler.url = "https://bundles.test/bnd_1.zip"

	result, err := h.exporter.Export(context.Background(), samplePhotos())

	require.NoError(t, err)
	assert.Equal(t, archive.StateServerBundleReady, result.State)
	assert.Equal(t, "https://bundles.test/bnd_1.zip", result.DownloadURL)
	assert.Nil(t, result.Handle)
	assert.Equal(t, "photos-2026-10-14.zip", result.Filename)
	assert.Equal(t, [][]int64{{3, 1, 2}}, h.bundler.calls)
	assert.Empty(t, h.authorizer.refs)
	assert.Empty(t, h.issuer.issued)
}

func TestExport_ValidationErrorPropagates(t *testing.T) {
	h := newHarness()
	h.bundler.err = archive.NewBundlingValidationError(http.StatusUnprocessableEntity, "unknown image id 9")

	result, err := h.exporter.Export(context.Background(), samplePhotos())

	assert.Nil(t, result)
	var be *archive.BundlingError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, archive.BundlingValidation, be.Kind)
	assert.Empty(t, h.authorizer.refs, "validation errors must not trigger fallback")
	assert.Equal(t, []archive.State{archive.StateFailed}, h.recorder.finals)
}

func TestExport_UntypedBundlerErrorPropagates(t *testing.T) {
	h := newHarness()
	h.bundler.err = errors.New("service unavailable")

	_, err := h.exporter.Export(context.Background(), samplePhotos())

	assert.EqualError(t, err, "service unavailable")
	assert.Empty(t, h.fetcher.calls)
}

func TestExport_FallbackAssemblesInSelectionOrder(t *testing.T) {
	h := newHarness()
	h.bundler.err = unavailable()
	photos := samplePhotos()
	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{1}, 64)...)
	h.addObject(photos[0], jpeg)
	h.addObject(photos[1], []byte("woof woof woof woof"))
	h.addObject(photos[2], []byte("cake bytes"))

	result, err := h.exporter.Export(context.Background(), photos)

	require.NoError(t, err)
	assert.Equal(t, archive.StateFallbackBundleReady, result.State)
	require.NotNil(t, result.Handle)
	assert.Equal(t, "photos-2026-10-14.zip", result.Handle.Filename)
	assert.Equal(t, 3, result.PhotoCount)

	assert.Equal(t, []string{
		"https://r2.test/images/original/3-sea.jpg",
		"https://r2.test/images/original/1-dog.txt",
		"https://r2.test/images/original/2-cake.png",
	}, h.fetcher.calls)

	require.Len(t, h.issuer.issued, 1)
	blob := h.issuer.issued[0]
	assert.Equal(t, int64(len(blob)), result.Handle.Size)

	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)
	assert.Equal(t, "sea.jpg", zr.File[0].Name)
	assert.Equal(t, zip.Store, zr.File[0].Method)
	assert.Equal(t, "dog.txt", zr.File[1].Name)
	assert.Equal(t, zip.Deflate, zr.File[1].Method)
	assert.Equal(t, "cake.png", zr.File[2].Name)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "woof woof woof woof", string(content))

	assert.Equal(t, []recordedTransition{
		{archive.StateIdle, archive.StateRequesting},
		{archive.StateRequesting, archive.StateFallbackAssembling},
		{archive.StateFallbackAssembling, archive.StateFallbackBundleReady},
	}, h.recorder.transitions)

	result.Handle.Release()
	result.Handle.Release()
	assert.Equal(t, 1, h.issuer.released)
}

func TestExport_EmptyServerURLFallsBack(t *testing.T) {
	h := newHarness()
	photos := samplePhotos()[:1]
	h.addObject(photos[0], []byte("x"))

	result, err := h.exporter.Export(context.Background(), photos)

	require.NoError(t, err)
	assert.Equal(t, archive.StateFallbackBundleReady, result.State)
}

func TestExport_FetchFailureFailsWholeExport(t *testing.T) {
	h := newHarness()
	h.bundler.err = unavailable()
	photos := samplePhotos()
	for _, p := range photos {
		h.addObject(p, []byte("data"))
	}
	h.fetcher.fail["https://r2.test/images/original/1-dog.txt"] = errors.New("connection reset")

	result, err := h.exporter.Export(context.Background(), photos)

	assert.Nil(t, result)
	var fe *archive.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, int64(1), fe.PhotoID)
	assert.False(t, fe.Expired)
	assert.Len(t, h.fetcher.calls, 2, "fetching stops at the first failure")
	assert.Empty(t, h.issuer.issued)
	assert.Equal(t, []archive.State{archive.StateFailed}, h.recorder.finals)
}

func TestExport_AuthorizationFailure(t *testing.T) {
	h := newHarness()
	h.bundler.err = unavailable()
	h.authorizer.fail["original/3-sea.jpg"] = errors.New("access denied")

	_, err := h.exporter.Export(context.Background(), samplePhotos())

	var ae *archive.AuthorizationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, int64(3), ae.PhotoID)
	assert.Equal(t, "original/3-sea.jpg", ae.Key)
	assert.Empty(t, h.fetcher.calls)
}

func TestExport_ExpiredAuthorization(t *testing.T) {
	h := newHarness()
	h.bundler.err = unavailable()
	h.authorizer.ttl = -time.Second

	_, err := h.exporter.Export(context.Background(), samplePhotos())

	var fe *archive.FetchError
	require.ErrorAs(t, err, &fe)
	assert.True(t, fe.Expired)
	assert.Empty(t, h.fetcher.calls)
}

func TestExport_AuthorizationBucketComesFromOptions(t *testing.T) {
	h := newHarness()
	h.bundler.err = unavailable()
	photos := samplePhotos()[:1]
	h.addObject(photos[0], []byte("x"))

	_, err := h.exporter.Export(context.Background(), photos)

	require.NoError(t, err)
	require.Len(t, h.authorizer.refs, 1)
	assert.Equal(t, archive.ObjectRef{Bucket: "images", Key: "original/3-sea.jpg"}, h.authorizer.refs[0])
}

func TestState_Transitions(t *testing.T) {
	tests := []struct {
		from, to archive.State
		ok       bool
	}{
		{archive.StateIdle, archive.StateRequesting, true},
		{archive.StateRequesting, archive.StateServerBundleReady, true},
		{archive.StateRequesting, archive.StateFallbackAssembling, true},
		{archive.StateFallbackAssembling, archive.StateFallbackBundleReady, true},
		{archive.StateFallbackAssembling, archive.StateFailed, true},
		{archive.StateIdle, archive.StateFallbackAssembling, false},
		{archive.StateServerBundleReady, archive.StateRequesting, false},
		{archive.StateFailed, archive.StateRequesting, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
	assert.True(t, archive.StateFailed.Terminal())
	assert.False(t, archive.StateFallbackAssembling.Terminal())
}
