// Package loader builds the flat member list for a chart by walking the
// reports-to hierarchy of a directory source, level by level, and falls back
// to the demo dataset when the directory cannot supply one.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/orgview/internal/datasource"
	"github.com/vanderheijden86/orgview/pkg/config"
	"github.com/vanderheijden86/orgview/pkg/debug"
	"github.com/vanderheijden86/orgview/pkg/metrics"
	"github.com/vanderheijden86/orgview/pkg/model"
)

// DefaultConcurrency bounds the number of in-flight directory calls.
const DefaultConcurrency = 16

var (
	// ErrNotFound means the root identity did not resolve.
	ErrNotFound = datasource.ErrNotFound
	// ErrEmpty means the root resolved but nobody reports to it.
	ErrEmpty = errors.New("no direct reports")
)

// Result is the outcome of one Load. Members is never empty: on any failure
// it holds the demo dataset and Message says why.
type Result struct {
	Members    []model.Member
	Err        error
	Message    string
	Demo       bool
	Generation uint64
}

// Fallback reports whether the demo dataset replaced a failed load.
func (r Result) Fallback() bool {
	return r.Demo && r.Err != nil
}

// Loader fetches org data from a Source.
type Loader struct {
	src         datasource.Source
	logger      *log.Logger
	concurrency int
	photos      bool
	generation  atomic.Uint64
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for non-fatal warnings.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithConcurrency bounds parallel directory calls. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithPhotos toggles best-effort photo fetching.
func WithPhotos(enabled bool) Option {
	return func(l *Loader) {
		l.photos = enabled
	}
}

// New creates a Loader. src may be nil, in which case every load with a
// root identity fails over to demo data.
func New(src datasource.Source, opts ...Option) *Loader {
	l := &Loader{
		src:         src,
		logger:      log.New(io.Discard, "", 0),
		concurrency: DefaultConcurrency,
		photos:      true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Begin starts a new load generation. Results tagged with an older
// generation are stale.
func (l *Loader) Begin() uint64 {
	return l.generation.Add(1)
}

// Current returns the latest generation handed out by Begin.
func (l *Loader) Current() uint64 {
	return l.generation.Load()
}

// IsCurrent reports whether gen is still the latest generation.
func (l *Loader) IsCurrent(gen uint64) bool {
	return l.generation.Load() == gen
}

// Load runs a full load under a fresh generation.
func (l *Loader) Load(ctx context.Context, root string, maxDepth int) Result {
	return l.LoadGeneration(ctx, l.Begin(), root, maxDepth)
}

// LoadGeneration loads the chart for root and tags the result with gen.
// A blank root yields the demo dataset without touching the source.
func (l *Loader) LoadGeneration(ctx context.Context, gen uint64, root string, maxDepth int) Result {
	defer metrics.TimerWithCallback(metrics.OrgLoad, func(d time.Duration) {
		debug.LogTiming("org load", d)
	})()

	root = strings.TrimSpace(root)
	if root == "" {
		debug.Log("loader: no root identity, demo mode")
		return Result{Members: model.DemoMembers(), Demo: true, Generation: gen}
	}
	depth := config.ClampDepth(maxDepth)

	members, err := l.Fetch(ctx, root, depth)
	if err == nil {
		return Result{Members: members, Generation: gen}
	}

	metrics.DemoFallbacks.Inc()
	res := Result{Members: model.DemoMembers(), Err: err, Demo: true, Generation: gen}
	switch {
	case errors.Is(err, ErrNotFound):
		res.Message = fmt.Sprintf("Could not find user %q. Using demo data.", root)
	case errors.Is(err, ErrEmpty):
		res.Message = fmt.Sprintf("%q has no direct reports within depth %d. Using demo data.", root, depth)
	default:
		l.logger.Printf("warning: loading org for %s: %v", root, err)
		res.Message = "Failed to load organization data. Using demo data."
	}
	debug.Log("loader: gen %d fell back to demo: %v", gen, err)
	return res
}

// Fetch resolves root and collects its reports down to depth levels
// (depth 1 is the root's direct reports). Members are ordered root first,
// then level by level, each parent's reports in directory order. The first
// source error cancels every in-flight call.
func (l *Loader) Fetch(ctx context.Context, root string, depth int) ([]model.Member, error) {
	if l.src == nil {
		return nil, errors.New("no data source configured")
	}
	depth = config.ClampDepth(depth)

	stop := metrics.Timer(metrics.DirectoryResolve)
	head, err := l.src.ResolveIdentity(ctx, root)
	stop()
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			metrics.FetchErrors.Inc()
		}
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	head.Parent = ""
	head.Initials = head.EffectiveInitials()

	seen := map[string]bool{head.ID: true}
	members := []model.Member{head}
	if err := l.fetchPhotos(ctx, members); err != nil {
		return nil, err
	}
	frontier := []model.Member{members[0]}

	for level := 1; level <= depth && len(frontier) > 0; level++ {
		batches, err := l.fetchLevel(ctx, frontier)
		if err != nil {
			return nil, err
		}
		var next []model.Member
		for i, batch := range batches {
			for _, m := range batch {
				if m.ID == "" || seen[m.ID] {
					continue
				}
				seen[m.ID] = true
				m.Parent = frontier[i].ID
				m.Initials = m.EffectiveInitials()
				next = append(next, m)
			}
		}
		if err := l.fetchPhotos(ctx, next); err != nil {
			return nil, err
		}
		debug.Log("loader: level %d: %d members", level, len(next))
		members = append(members, next...)
		frontier = next
	}

	if len(members) == 1 {
		return nil, ErrEmpty
	}
	metrics.MembersFetched.Add(int64(len(members)))
	return members, nil
}

// fetchLevel fetches the direct reports of every member in parents
// concurrently. batches[i] holds the reports of parents[i].
func (l *Loader) fetchLevel(ctx context.Context, parents []model.Member) ([][]model.Member, error) {
	defer metrics.Timer(metrics.ReportsFetch)()

	batches := make([][]model.Member, len(parents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, p := range parents {
		g.Go(func() error {
			reports, err := l.src.DirectReports(gctx, p.ID)
			if err != nil {
				metrics.FetchErrors.Inc()
				return fmt.Errorf("direct reports of %s: %w", p.ID, err)
			}
			batches[i] = reports
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

// fetchPhotos fills in photos for members in place. Individual failures
// leave the photo empty; only cancellation of ctx is returned.
func (l *Loader) fetchPhotos(ctx context.Context, members []model.Member) error {
	ps, ok := l.src.(datasource.PhotoSource)
	if !ok || !l.photos || len(members) == 0 {
		return nil
	}
	defer metrics.Timer(metrics.PhotoFetch)()

	var mu sync.Mutex
	var failed int
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i := range members {
		if members[i].HasPhoto() {
			continue
		}
		g.Go(func() error {
			photo, err := ps.Photo(gctx, members[i].ID)
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			if len(photo) > 0 {
				members[i].Photo = photo
				metrics.PhotosFetched.Inc()
			}
			return nil
		})
	}
	_ = g.Wait()
	debug.LogIf(failed > 0, "loader: %d photo fetches failed", failed)
	return ctx.Err()
}
