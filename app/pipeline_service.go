package app

import (
	"context"
	"sync"

	"gotimbre/domain/candidate"
	"gotimbre/domain/core"
	"gotimbre/domain/run"
	"gotimbre/domain/selection"
	"gotimbre/domain/target"
	"gotimbre/internal"
	"gotimbre/internal/config"
	"gotimbre/internal/diversity"
	apperrors "gotimbre/internal/errors"
	"gotimbre/internal/fit"
	"gotimbre/internal/generator"
	"gotimbre/internal/safety"
	"gotimbre/ports"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// SearchResult is everything one search run produced
type SearchResult struct {
	Pool      candidate.Pool    `json:"pool"`
	Usable    candidate.Pool    `json:"-"`
	Selection *selection.Result `json:"selection"`
	Report    generator.Report  `json:"report"`
	Manifest  *run.Manifest     `json:"manifest"`
}

// PipelineService runs generate, render, classify, score and select for a
// target descriptor
type PipelineService struct {
	catalog  ports.MethodCatalog
	renderer ports.RendererPort
	affinity ports.AffinityPort
	config   *config.Config
	logger   *internal.Logger
}

// NewPipelineService creates a new pipeline service. A nil config uses the
// defaults; a nil affinity source is neutral.
func NewPipelineService(
	catalog ports.MethodCatalog,
	renderer ports.RendererPort,
	affinity ports.AffinityPort,
	cfg *config.Config,
	logger *internal.Logger,
) *PipelineService {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PipelineService{
		catalog:  catalog,
		renderer: renderer,
		affinity: affinity,
		config:   cfg,
		logger:   logger,
	}
}

// batchEvaluator renders, classifies and scores one batch at a time
type batchEvaluator struct {
	svc        *PipelineService
	ctx        context.Context
	descriptor target.Descriptor
	classifier *safety.Classifier
	scorer     *fit.Scorer
	manifest   *run.Manifest
}

type renderOutcome struct {
	out *ports.RenderOutput
	err error
}

// Run executes one search. Only configuration and catalog problems are
// returned as errors; a cancelled ctx stops generation at the next batch
// boundary and the partial pool is still scored and selected from.
func (s *PipelineService) Run(ctx context.Context, descriptor target.Descriptor, runSeed uint32) (*SearchResult, error) {
	if s.renderer == nil {
		return nil, apperrors.ConfigInvalid("renderer is required")
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	rc := core.NewRunContext(runSeed, descriptor.Fingerprint())
	gen, err := generator.New(s.catalog, rc, s.config.Generation, s.logger)
	if err != nil {
		return nil, apperrors.Wrap(err, "generation refused")
	}

	manifest := run.NewManifest(rc, s.config.Hash(), generator.CatalogHash(s.catalog))
	s.logger.Info("run %s: seed=%d sobol_seed=%d input=%s", manifest.RunID, runSeed, rc.SobolSeed(), descriptor.Fingerprint())

	eval := &batchEvaluator{
		svc:        s,
		ctx:        ctx,
		descriptor: descriptor,
		classifier: safety.NewClassifier(s.config.Safety),
		scorer:     fit.NewScorer(s.config.Fit, s.affinity),
		manifest:   manifest,
	}

	pool, report, err := gen.Run(gen.UsableTarget(s.config.Selection.NSelect), eval.evaluate)
	if err != nil {
		if ctx.Err() == nil {
			return nil, apperrors.Wrap(err, "generation failed")
		}
		s.logger.Warn("run %s interrupted after %d batches: %v", manifest.RunID, report.Batches, err)
	}

	usable := diversity.FilterUsable(pool, s.config.Selection.MinFit)
	result := diversity.SelectDiverse(usable, s.config.Policy(), s.logger)

	for _, q := range report.Allocation {
		manifest.Allocation[q.Category] = q.Count
	}
	manifest.Batches = report.Batches
	manifest.EarlyStop = report.EarlyStop
	manifest.PoolSize = len(pool)
	manifest.UsableCount = len(usable)
	manifest.Selected = result.SelectedIDs()
	manifest.Relaxations = result.RelaxationsApplied
	manifest.Deadlocked = result.Deadlock != nil

	return &SearchResult{
		Pool:      pool,
		Usable:    usable,
		Selection: result,
		Report:    report,
		Manifest:  manifest,
	}, nil
}

// evaluate renders the batch in parallel, then applies results in generation
// order so nothing downstream depends on completion order
func (e *batchEvaluator) evaluate(batch candidate.Pool) error {
	outcomes := make(map[core.CandidateID]renderOutcome, len(batch))
	var mu sync.Mutex

	sem := semaphore.NewWeighted(int64(e.svc.config.Render.Workers))
	g, gctx := errgroup.WithContext(e.ctx)
	for _, c := range batch {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		req := ports.RenderRequest{
			CandidateID: c.ID,
			Method:      c.Method,
			Params:      c.Params,
			Seed:        c.Seed,
		}
		g.Go(func() error {
			defer sem.Release(1)
			out, err := e.svc.renderer.Render(gctx, req)
			mu.Lock()
			outcomes[req.CandidateID] = renderOutcome{out: out, err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if err := e.ctx.Err(); err != nil {
		return err
	}

	for _, c := range batch {
		o, ok := outcomes[c.ID]
		if !ok {
			continue
		}
		e.apply(c, o)
	}
	return nil
}

func (e *batchEvaluator) apply(c *candidate.Candidate, o renderOutcome) {
	if o.err != nil || o.out == nil {
		if o.err != nil {
			e.svc.logger.Debug("%v", apperrors.RenderFailed(c.ID.String(), o.err))
		}
		e.manifest.RenderFails++
		result := e.classifier.ClassifyRenderFailure(o.err)
		c.Safety = candidate.Evaluated(result)
		e.manifest.RecordSafety(string(result.Status))
		return
	}

	c.Features = candidate.Evaluated(o.out.Features)
	result := e.classifier.ClassifyCandidate(c, o.out.Audio)
	e.manifest.RecordSafety(string(result.Status))
	if result.Passed {
		e.scorer.ScoreCandidate(c, e.descriptor)
	}
}
