// Package scanner decides between the cache and the file system for every
// request and keeps the persisted snapshot up to date.
package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/ptree/internal/core/domain"
	"go.trai.ch/ptree/internal/core/ports"
	"go.trai.ch/zerr"
)

// Options configures a single scan.
type Options struct {
	// Target is the directory whose tree is requested.
	Target string
	// Root is the directory the snapshot is keyed on. Empty means the volume
	// root of Target.
	Root string
	// Threads bounds concurrent directory expansions.
	Threads int
	// Skip lists excluded entry names and patterns.
	Skip []string
	// ScanDepth bounds the depth below Root that is recorded.
	ScanDepth int
	// TTL overrides the store's TTL when positive.
	TTL time.Duration
	// Force ignores the cache and rescans Root.
	Force bool
}

// Result is the outcome of a scan.
type Result struct {
	Tree      *domain.TreeNode
	Mode      domain.ScanMode
	Root      string
	Target    string
	Snapshot  *domain.Snapshot
	Timings   domain.Timings
	Threads   int
	CachePath string
}

// Engine implements the adaptive traversal.
type Engine struct {
	walker ports.Walker
	store  ports.SnapshotStore
	merger ports.SnapshotMerger
	tracer ports.Tracer
	logger ports.Logger
	now    func() time.Time
}

// New creates a new Engine with the given dependencies.
func New(
	walker ports.Walker,
	store ports.SnapshotStore,
	merger ports.SnapshotMerger,
	tracer ports.Tracer,
	logger ports.Logger,
) *Engine {
	return &Engine{
		walker: walker,
		store:  store,
		merger: merger,
		tracer: tracer,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the clock used for capture times and freshness.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Fingerprint identifies the scan settings a snapshot was recorded with.
// Skip names are compared case-insensitively and in any order.
func Fingerprint(skip []string, scanDepth int) uint64 {
	names := make([]string, 0, len(skip))
	for _, s := range skip {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			names = append(names, s)
		}
	}
	slices.Sort(names)
	names = slices.Compact(names)

	d := xxhash.New()
	for _, n := range names {
		_, _ = d.WriteString(n)
		_, _ = d.Write([]byte{0})
	}
	_, _ = d.WriteString(strconv.Itoa(scanDepth))
	return d.Sum64()
}

// request is the resolved form of Options for one Scan call.
type request struct {
	Options
	parts       []string
	fingerprint uint64
	now         time.Time
}

// walkOptions bounds a walk starting at a directory depth levels below Root.
func (r *request) walkOptions(depth int) domain.WalkOptions {
	maxDepth := r.ScanDepth
	if maxDepth != domain.Unlimited {
		maxDepth = max(maxDepth-depth, 0)
	}
	return domain.WalkOptions{MaxDepth: maxDepth, Skip: r.Skip, Threads: r.Threads}
}

// covered reports whether a full scan of Root records Target expanded.
func (r *request) covered() bool {
	if r.ScanDepth != domain.Unlimited && len(r.parts) > r.ScanDepth {
		return false
	}
	return !domain.NewSkipSet(r.Skip).MatchAny(r.parts)
}

// blockedAncestor returns the first cached ancestor of Target, below tree, that
// is not a plain directory. Missing ancestors are not reported.
func (r *request) blockedAncestor(tree *domain.TreeNode) *domain.TreeNode {
	node := tree
	for _, name := range r.parts[:max(len(r.parts)-1, 0)] {
		child, _ := node.Child(name)
		if child == nil {
			return nil
		}
		if child.Kind != domain.KindDirectory {
			return child
		}
		node = child
	}
	return nil
}

// Scan returns the tree of opts.Target, served from the cache when the cached
// snapshot is fresh enough and rescanned otherwise.
func (e *Engine) Scan(ctx context.Context, opts Options) (*Result, error) {
	req, err := e.resolve(opts)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Root:      req.Root,
		Target:    req.Target,
		Threads:   req.Threads,
		CachePath: e.store.Path(req.Root),
	}

	ctx, span := e.tracer.Start(ctx, "scan",
		ports.WithAttribute("root", req.Root),
		ports.WithAttribute("target", req.Target),
	)
	defer span.End()

	if err := e.run(ctx, req, res); err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttribute("mode", res.Mode)
	return res, nil
}

func (e *Engine) resolve(opts Options) (*request, error) {
	target, err := filepath.Abs(opts.Target)
	if err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrFailedToGetTarget, "cannot resolve target"), "target", opts.Target), domain.DetailKey, err.Error())
	}

	root := opts.Root
	if root == "" {
		root = domain.VolumeRoot(target)
	}
	if root, err = filepath.Abs(root); err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrFailedToGetTarget, "cannot resolve root"), "root", opts.Root), domain.DetailKey, err.Error())
	}

	rel, ok := domain.RelativeTo(root, target)
	if !ok {
		outside := zerr.With(zerr.Wrap(domain.ErrTargetOutsideRoot, "cannot scan"), "target", target)
		return nil, zerr.With(outside, "root", root)
	}

	req := &request{
		Options: opts,
		parts:   domain.SplitRelative(rel),
		now:     e.now(),
	}
	req.Target = target
	req.Root = root
	req.Threads = max(opts.Threads, 1)
	req.ScanDepth = max(opts.ScanDepth, domain.Unlimited)
	req.fingerprint = Fingerprint(req.Skip, req.ScanDepth)
	return req, nil
}

func (e *Engine) run(ctx context.Context, req *request, res *Result) error {
	if !req.covered() {
		e.logger.Debug(fmt.Sprintf("%s is not recorded under %s, scanning it directly", req.Target, req.Root))
		return e.direct(ctx, req, res)
	}

	if req.Force {
		e.logger.Debug("cache bypassed, rescanning " + req.Root)
		return e.full(ctx, req, res)
	}

	lookup := e.load(ctx, req, res)

	switch lookup.Freshness {
	case domain.Fresh:
		node := lookup.Snapshot.Slice(req.Target)
		switch {
		case node == nil || node.Kind == domain.KindInaccessible:
			e.logger.Debug(req.Target + " is missing from the cached snapshot, scanning it")
			return e.refresh(ctx, req, res, lookup.Snapshot)
		case node.Kind != domain.KindDirectory:
			return e.direct(ctx, req, res)
		}
		e.logger.Debug(fmt.Sprintf("cached snapshot is fresh (age %s)", lookup.Age.Round(time.Second)))
		res.Tree = node
		res.Mode = domain.ModeCacheHit
		res.Snapshot = lookup.Snapshot
		return nil

	case domain.StaleIncremental:
		e.logger.Debug(fmt.Sprintf("cached snapshot is stale for %s (age %s)", req.Target, lookup.Age.Round(time.Second)))
		if node := lookup.Snapshot.Slice(req.Target); node != nil && node.Kind == domain.KindSymlink {
			return e.direct(ctx, req, res)
		}
		return e.refresh(ctx, req, res, lookup.Snapshot)

	case domain.StaleFull:
		e.logger.Debug(fmt.Sprintf("cached snapshot of %s is stale (age %s)", req.Root, lookup.Age.Round(time.Second)))
		return e.full(ctx, req, res)

	default:
		e.logger.Debug("no usable cached snapshot for " + req.Root)
		return e.full(ctx, req, res)
	}
}

// refresh rescans Target into cached unless the cached path to Target passes
// through a symlink or another non-directory, which is scanned without touching
// the cache.
func (e *Engine) refresh(ctx context.Context, req *request, res *Result, cached *domain.Snapshot) error {
	if blocked := req.blockedAncestor(cached.Tree); blocked != nil {
		e.logger.Debug(fmt.Sprintf("%s is recorded as a %s, scanning %s directly", blocked.Path, blocked.Kind, req.Target))
		return e.direct(ctx, req, res)
	}
	return e.incremental(ctx, req, res, cached)
}

// load consults the store. Unusable records are reported and treated as missing.
func (e *Engine) load(ctx context.Context, req *request, res *Result) domain.CacheLookup {
	_, span := e.tracer.Start(ctx, "cache.load", ports.WithAttribute("path", res.CachePath))
	defer span.End()

	start := time.Now()
	lookup, err := e.store.Lookup(req.Root, req.Target, req.now, req.TTL)
	res.Timings.CacheLoad = time.Since(start)

	if err != nil {
		span.RecordError(err)
		e.logger.Warn("ignoring cached snapshot: " + domain.Describe(err))
		return domain.CacheLookup{Freshness: domain.Missing}
	}
	if lookup.Freshness != domain.Missing && lookup.Snapshot.Fingerprint != req.fingerprint {
		e.logger.Debug("cached snapshot was recorded with different scan settings")
		return domain.CacheLookup{Freshness: domain.Missing}
	}

	span.SetAttribute("freshness", lookup.Freshness)
	return lookup
}

// full walks Root, persists the snapshot and slices Target out of it.
func (e *Engine) full(ctx context.Context, req *request, res *Result) error {
	tree, err := e.walk(ctx, req.Root, req.walkOptions(0), res)
	if err != nil {
		return err
	}

	snapshot := domain.NewSnapshot(tree, req.now, req.fingerprint)
	e.save(ctx, snapshot, res)

	res.Mode = domain.ModeFullScan
	res.Snapshot = snapshot

	node := snapshot.Slice(req.Target)
	if node == nil || node.Kind != domain.KindDirectory {
		return e.direct(ctx, req, res)
	}
	res.Tree = node
	return nil
}

// incremental walks Target and merges it into cached.
func (e *Engine) incremental(ctx context.Context, req *request, res *Result, cached *domain.Snapshot) error {
	tree, err := e.walk(ctx, req.Target, req.walkOptions(len(req.parts)), res)
	if err != nil {
		return err
	}

	_, span := e.tracer.Start(ctx, "merge", ports.WithAttribute("path", req.Target))
	start := time.Now()
	merged, err := e.merger.Merge(cached, tree, req.Target, req.now)
	res.Timings.Merge = time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.End()
		return err
	}
	span.End()

	e.save(ctx, merged, res)

	res.Tree = tree
	res.Mode = domain.ModeIncremental
	res.Snapshot = merged
	return nil
}

// direct walks Target on its own. Nothing is persisted.
func (e *Engine) direct(ctx context.Context, req *request, res *Result) error {
	tree, err := e.walk(ctx, req.Target, domain.WalkOptions{
		MaxDepth: req.ScanDepth,
		Skip:     req.Skip,
		Threads:  req.Threads,
	}, res)
	if err != nil {
		return err
	}
	res.Tree = tree
	res.Mode = domain.ModeFullScan
	return nil
}

func (e *Engine) walk(ctx context.Context, path string, opts domain.WalkOptions, res *Result) (*domain.TreeNode, error) {
	_, span := e.tracer.Start(ctx, "walk",
		ports.WithAttribute("path", path),
		ports.WithAttribute("threads", opts.Threads),
	)
	defer span.End()

	start := time.Now()
	tree, err := e.walker.Walk(path, opts)
	res.Timings.Traversal += time.Since(start)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return tree, nil
}

// save persists s. Failures are reported and otherwise ignored.
func (e *Engine) save(ctx context.Context, s *domain.Snapshot, res *Result) {
	_, span := e.tracer.Start(ctx, "cache.save", ports.WithAttribute("path", res.CachePath))
	defer span.End()

	start := time.Now()
	err := e.store.Save(s)
	res.Timings.CacheSave = time.Since(start)
	if err != nil {
		span.RecordError(err)
		e.logger.Warn("could not update the cache: " + domain.Describe(err))
	}
}
