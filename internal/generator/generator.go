package generator

import (
	"fmt"
	"sort"

	"gotimbre/domain/candidate"
	"gotimbre/domain/core"
	"gotimbre/internal"
	apperrors "gotimbre/internal/errors"
	"gotimbre/internal/sampling"
	"gotimbre/ports"
)

// Options configures candidate generation
type Options struct {
	BatchSize        int                       `json:"batch_size"`
	MaxBatches       int                       `json:"max_batches"`
	SamplingTag      string                    `json:"sampling_tag"`
	PriorWeights     map[core.Category]float64 `json:"prior_weights"`
	UsableMultiplier int                       `json:"usable_multiplier"`
	MaxSobolDims     int                       `json:"max_sobol_dims"`
}

// DefaultOptions returns the stock generation settings
func DefaultOptions() Options {
	return Options{
		BatchSize:        32,
		MaxBatches:       15,
		SamplingTag:      "sobol",
		PriorWeights:     map[core.Category]float64{},
		UsableMultiplier: 2,
		MaxSobolDims:     sampling.MaxSobolDims,
	}
}

// Validate rejects option values generation cannot run with
func (o Options) Validate() error {
	if o.BatchSize < 1 {
		return apperrors.ConfigInvalid(fmt.Sprintf("batch size must be >= 1, got %d", o.BatchSize))
	}
	if o.MaxBatches < 1 {
		return apperrors.ConfigInvalid(fmt.Sprintf("max batches must be >= 1, got %d", o.MaxBatches))
	}
	if o.SamplingTag == "" {
		return apperrors.ConfigInvalid("sampling tag cannot be empty")
	}
	if o.UsableMultiplier < 1 {
		return apperrors.ConfigInvalid("usable multiplier must be >= 1")
	}
	for cat, w := range o.PriorWeights {
		if !finite(w) || w < 0 {
			return apperrors.ConfigInvalid(fmt.Sprintf("prior weight for %s must be finite and >= 0", cat))
		}
	}
	return nil
}

// Report describes what a generation run produced
type Report struct {
	Allocation   []Quota         `json:"allocation"`
	Batches      int             `json:"batches"`
	PoolSize     int             `json:"pool_size"`
	UsableTarget int             `json:"usable_target"`
	EarlyStop    bool            `json:"early_stop"`
	FallbackFor  []core.MethodID `json:"fallback_for,omitempty"`
}

// Generator samples candidates from a method catalog. Construction runs the
// catalog compliance gate; a Generator that exists is safe to sample from.
type Generator struct {
	run        core.RunContext
	opts       Options
	logger     *internal.Logger
	allocation []Quota
	methodsBy  map[core.Category][]core.MethodID
	methods    map[core.MethodID]ports.Method
	sources    map[core.MethodID]ports.SampleSource
}

// New validates options and catalog, computes the per-batch allocation and
// prepares one sample source per method.
func New(catalog ports.MethodCatalog, run core.RunContext, opts Options, logger *internal.Logger) (*Generator, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	logger = logger.With("generator")

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	active, err := ValidateCatalog(catalog, opts.PriorWeights)
	if err != nil {
		logger.Error("catalog validation failed: %v", err)
		return nil, err
	}

	weights := make(map[core.Category]float64, len(active))
	for _, cat := range active {
		weights[cat] = priorWeight(opts.PriorWeights, cat)
	}

	sampler := sampling.NewSampler(run.SobolSeed(), opts.MaxSobolDims, logger)
	g := &Generator{
		run:        run,
		opts:       opts,
		logger:     logger,
		allocation: ComputeAllocation(active, weights, opts.BatchSize),
		methodsBy:  make(map[core.Category][]core.MethodID, len(active)),
		methods:    make(map[core.MethodID]ports.Method),
		sources:    make(map[core.MethodID]ports.SampleSource),
	}
	for _, cat := range active {
		ids := catalog.MethodsFor(cat)
		g.methodsBy[cat] = ids
		for _, id := range ids {
			m, err := catalog.Method(id)
			if err != nil {
				return nil, apperrors.Wrapf(err, "loading method %s", id)
			}
			g.methods[id] = m
			g.sources[id] = sampler.Source(string(id), len(m.Axes))
		}
	}

	logger.Debug("allocation per batch of %d: %v", opts.BatchSize, g.allocation)
	return g, nil
}

// Allocation returns the per-batch category quotas
func (g *Generator) Allocation() []Quota {
	out := make([]Quota, len(g.allocation))
	copy(out, g.allocation)
	return out
}

// GenerateBatch produces the candidates of one batch. The result depends only
// on the run seed, the catalog and batchIndex, so batches can be generated,
// skipped or regenerated in any order.
//
// Within a category, slots are dealt round-robin over its methods, so the
// n-th slot of a category across all batches is the (n / methods)-th draw of
// its method. Each method reads its own sample source at consecutive draw
// numbers; the batch-wide running index only names the candidate.
func (g *Generator) GenerateBatch(batchIndex int) candidate.Pool {
	batch := make(candidate.Pool, 0, g.opts.BatchSize)
	running := 0
	for _, q := range g.allocation {
		ids := g.methodsBy[q.Category]
		for k := 0; k < q.Count; k++ {
			slot := batchIndex*q.Count + k
			m := g.methods[ids[slot%len(ids)]]
			index := batchIndex*g.opts.BatchSize + running
			batch = append(batch, g.sample(m, batchIndex, index, slot/len(ids)))
			running++
		}
	}
	return batch
}

func (g *Generator) sample(m ports.Method, batchIndex, index, draw int) *candidate.Candidate {
	point := g.sources[m.ID].Point(uint64(draw))

	params := make(candidate.Params, len(m.Axes))
	for i, axis := range m.Axes {
		params[i] = candidate.Param{Axis: axis.Name(), Value: axis.Sample(point[i])}
	}

	tags := make(map[string]string, len(m.Tags)+2)
	for k, v := range m.Tags {
		tags[k] = v
	}
	tags["category"] = string(m.Category)
	tags["method"] = string(m.ID)

	id := core.NewCandidateID(m.ID, g.opts.SamplingTag, index, m.TemplateVersion)
	return &candidate.Candidate{
		ID:         id,
		Seed:       g.run.CandidateSeed(id),
		Method:     m.ID,
		Category:   m.Category,
		BatchIndex: batchIndex,
		Params:     params,
		Tags:       tags,
		Features:   candidate.Unevaluated[candidate.Features](),
		Safety:     candidate.Unevaluated[candidate.SafetyResult](),
		Fit:        candidate.Unevaluated[float64](),
	}
}

// GenerateAll generates every batch up to the cap without early stopping.
func (g *Generator) GenerateAll() (candidate.Pool, Report) {
	pool, report, _ := g.Run(0, nil)
	return pool, report
}

// EvaluateFunc renders and classifies a freshly generated batch in place.
// Returning an error stops generation at the batch boundary.
type EvaluateFunc func(batch candidate.Pool) error

// Run generates batches until MaxBatches is reached or the pool holds at
// least usableTarget usable candidates. evaluate, when non-nil, is called on
// each batch before the stop condition is checked; with a nil evaluate or a
// non-positive target every batch is generated. The pool returned alongside
// an evaluate error is still a valid partial pool.
func (g *Generator) Run(usableTarget int, evaluate EvaluateFunc) (candidate.Pool, Report, error) {
	report := Report{
		Allocation:   g.Allocation(),
		UsableTarget: usableTarget,
	}
	for id, src := range g.sources {
		if !src.LowDiscrepancy() {
			report.FallbackFor = append(report.FallbackFor, id)
		}
	}
	sort.Slice(report.FallbackFor, func(i, j int) bool { return report.FallbackFor[i] < report.FallbackFor[j] })

	pool := make(candidate.Pool, 0, g.opts.BatchSize*g.opts.MaxBatches)
	for b := 0; b < g.opts.MaxBatches; b++ {
		batch := g.GenerateBatch(b)
		pool = append(pool, batch...)
		report.Batches = b + 1
		report.PoolSize = len(pool)

		if evaluate == nil {
			continue
		}
		if err := evaluate(batch); err != nil {
			g.logger.Warn("stopping after batch %d: %v", b, err)
			return pool, report, err
		}

		usable := pool.UsableCount()
		g.logger.Debug("batch %d: pool=%d usable=%d target=%d", b, len(pool), usable, usableTarget)
		if usableTarget > 0 && usable >= usableTarget {
			report.EarlyStop = b+1 < g.opts.MaxBatches
			break
		}
	}

	g.logger.Info("generated %d candidates in %d batches (early stop: %v)", len(pool), report.Batches, report.EarlyStop)
	return pool, report, nil
}

// UsableTarget is UsableMultiplier * nSelect
func (g *Generator) UsableTarget(nSelect int) int {
	return g.opts.UsableMultiplier * nSelect
}
