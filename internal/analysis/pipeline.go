// Package analysis orchestrates one full light-curve analysis: column
// identification, multi-signal extraction, feature synthesis, classification,
// deduplication and persistence.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"exoplanet-lab/internal/catalog"
	"exoplanet-lab/internal/classify"
	"exoplanet-lab/internal/dedup"
	"exoplanet-lab/internal/detection"
	"exoplanet-lab/internal/domain"
	"exoplanet-lab/internal/explain"
	"exoplanet-lab/internal/features"
	"exoplanet-lab/internal/idhash"
	"exoplanet-lab/internal/observability"
	"exoplanet-lab/internal/plot"
	"exoplanet-lab/internal/storage"
	"exoplanet-lab/internal/tabular"
)

// StorageMinProbability is the eligibility threshold: only verdicts above it
// are persisted as discoveries.
const StorageMinProbability = 0.3

// Classifier is the verdict surface the pipeline depends on.
type Classifier interface {
	Classify(ctx context.Context, f domain.FeatureVector, dataset string, rawSNR float64) domain.Classification
}

// HostLookup resolves host star metadata, best effort.
type HostLookup interface {
	LookupHost(ctx context.Context, host string) (*domain.HostStar, error)
}

// Explainer produces a narrative for one classified signal.
type Explainer interface {
	Explain(ctx context.Context, f domain.FeatureVector, cls domain.Classification) string
}

// ProgressEvent is one stage or per-signal update published while a pipeline
// run is in flight.
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Signal  int    `json:"signal,omitempty"` // 1-based, 0 when not signal-scoped
	Total   int    `json:"total,omitempty"`
}

// ProgressFunc receives progress events. Must be safe for concurrent use if
// the caller shares one across requests.
type ProgressFunc func(ProgressEvent)

// SignalResult is the outcome for one detected signal.
type SignalResult struct {
	ObjectName   string               `json:"object_name"`
	Features     domain.FeatureVector `json:"features"`
	Label        domain.Label         `json:"label"`
	Probability  float64              `json:"probability"`
	Reasoning    string               `json:"reasoning"`
	Explanation  string               `json:"explanation,omitempty"`
	PlotPoints   []domain.PlotPoint   `json:"plot_points"`
	Stored       bool                 `json:"stored"`
	StorageError string               `json:"storage_error,omitempty"`
}

// Result is the structured outcome of one analysis run. The caller always
// receives one, even on partial failure; only structurally invalid input
// produces an error instead.
type Result struct {
	AnalysisID    string           `json:"analysis_id"`
	HostName      string           `json:"host_name"`
	Dataset       string           `json:"dataset"`
	TimeColumn    string           `json:"time_column"`
	FluxColumn    string           `json:"flux_column"`
	SampleCount   int              `json:"sample_count"`
	TotalDetected int              `json:"total_detected"`
	StoredCount   int              `json:"stored_count"`
	Signals       []SignalResult   `json:"signals"`
	HostStar      *domain.HostStar `json:"host_star,omitempty"`
	Message       string           `json:"message"`
}

// Options configures a Pipeline.
type Options struct {
	Store storage.DiscoveredObjectStore // required
	// Archive is optional: leave it nil to disable archiving. The check is
	// against the interface value, so a typed-nil concrete pointer counts
	// as configured.
	Archive storage.LightCurveArchive
	Classifier Classifier                    // required
	Catalog    HostLookup                    // optional
	Explainer  Explainer                     // optional
	Progress   ProgressFunc                  // optional
	Logger     *log.Logger
}

// Pipeline runs analyses. Safe for concurrent use: each run owns its own
// buffers, and the store is the only shared resource.
type Pipeline struct {
	store      storage.DiscoveredObjectStore
	archive    storage.LightCurveArchive
	classifier Classifier
	catalog    HostLookup
	explainer  Explainer
	gate       *dedup.Gate
	progress   ProgressFunc
	logger     *log.Logger
}

// NewPipeline creates a pipeline from options.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.Classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[analysis] ", log.LstdFlags|log.Lshortfile)
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(ProgressEvent) {}
	}
	return &Pipeline{
		store:      opts.Store,
		archive:    opts.Archive,
		classifier: opts.Classifier,
		catalog:    opts.Catalog,
		explainer:  opts.Explainer,
		gate:       dedup.NewGate(opts.Store),
		progress:   progress,
		logger:     logger,
	}, nil
}

// Analyze runs the full pipeline on a parsed table. externalID is the
// optional host identifier supplied with the upload (e.g. "TIC 307210830");
// empty means unknown host. An error is returned only for structurally
// invalid input; everything downstream degrades into the Result.
func (p *Pipeline) Analyze(ctx context.Context, table *tabular.Table, externalID string) (*Result, error) {
	start := time.Now()

	p.progress(ProgressEvent{Stage: "columns", Message: "identifying time and flux columns"})
	timeCol, fluxCol, err := tabular.IdentifyColumns(table)
	if err != nil {
		observability.RecordAnalysis("input_error", time.Since(start).Seconds())
		return nil, err
	}

	lc := tabular.ToLightCurve(table, timeCol, fluxCol)
	if lc.Len() == 0 {
		observability.RecordAnalysis("input_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("columns %q and %q contain no usable numeric pairs", timeCol, fluxCol)
	}
	observability.RecordSamples(lc.Len())

	host := strings.TrimSpace(externalID)
	if host == "" {
		host = domain.UnknownHost
	}
	dataset := inferDataset(host)
	analysisID := idhash.ComputeAnalysisID(host, lc.Len(), lc.Time[0], lc.Time[lc.Len()-1])

	p.archiveSamples(ctx, analysisID, lc)

	p.progress(ProgressEvent{Stage: "search", Message: fmt.Sprintf("searching %d samples spanning %.1f days", lc.Len(), lc.SpanDays())})
	signals := detection.ExtractSignals(lc, detection.ExtractorConfig{})
	observability.RecordSignals(len(signals))

	result := &Result{
		AnalysisID:    analysisID,
		HostName:      host,
		Dataset:       dataset,
		TimeColumn:    timeCol,
		FluxColumn:    fluxCol,
		SampleCount:   lc.Len(),
		TotalDetected: len(signals),
		Signals:       make([]SignalResult, len(signals)),
	}

	if len(signals) == 0 {
		result.Message = "No transit-like signals detected."
		observability.RecordAnalysis("ok", time.Since(start).Seconds())
		p.progress(ProgressEvent{Stage: "done", Message: result.Message})
		return result, nil
	}

	// Classification, explanation and plot building are independent per
	// signal, so they fan out. Dedup and persistence touch the shared store
	// and run serialized afterwards.
	var wg sync.WaitGroup
	for i, sig := range signals {
		wg.Add(1)
		go func(i int, sig *domain.DetectedSignal) {
			defer wg.Done()
			p.progress(ProgressEvent{
				Stage:   "classify",
				Message: fmt.Sprintf("classifying signal at period %.2f d", sig.PeriodDays),
				Signal:  i + 1,
				Total:   len(signals),
			})

			f := features.Synthesize(sig, lc)
			cls := p.classifier.Classify(ctx, f, dataset, sig.SNR)
			observability.RecordClassification(string(cls.Label))

			r := &result.Signals[i]
			r.Features = f
			r.Label = cls.Label
			r.Probability = cls.Probability
			r.Reasoning = cls.Reasoning
			r.PlotPoints = plot.PhaseFold(lc, sig.PeriodDays)
			r.ObjectName = objectName(host, analysisID, i)
			if p.explainer != nil {
				r.Explanation = p.explainer.Explain(ctx, f, cls)
			}
		}(i, sig)
	}
	wg.Wait()

	for i := range result.Signals {
		p.persistSignal(ctx, result, i)
	}

	if p.catalog != nil && host != domain.UnknownHost {
		star, err := p.catalog.LookupHost(ctx, host)
		if err != nil {
			p.logger.Printf("host lookup for %q failed: %v", host, err)
		} else {
			result.HostStar = star
		}
	}

	result.Message = summaryMessage(result)
	observability.RecordAnalysis("ok", time.Since(start).Seconds())
	p.progress(ProgressEvent{Stage: "done", Message: result.Message})
	return result, nil
}

// persistSignal runs the dedup gate and store insert for one signal. A
// failure here is recorded on that signal only; siblings are unaffected.
func (p *Pipeline) persistSignal(ctx context.Context, result *Result, i int) {
	r := &result.Signals[i]

	if r.Probability <= StorageMinProbability {
		return
	}

	obj := &domain.DiscoveredObject{
		Name:         r.ObjectName,
		Host:         result.HostName,
		PeriodDays:   r.Features.OrbitalPeriodDays,
		RadiusEarth:  r.Features.PlanetaryRadiusEarth,
		DepthPPM:     r.Features.TransitDepthPPM,
		Label:        r.Label,
		Probability:  r.Probability,
		Dataset:      result.Dataset,
		DiscoveredAt: time.Now().UTC(),
	}

	dup, err := p.gate.IsDuplicate(ctx, obj)
	if err != nil {
		p.logger.Printf("dedup check for %q failed: %v", obj.Name, err)
		observability.RecordStoreError("dedup")
		r.StorageError = fmt.Sprintf("dedup check failed: %v", err)
		return
	}
	if dup {
		observability.RecordDuplicateGated()
		r.StorageError = "duplicate of an existing discovery"
		return
	}

	if err := p.store.Insert(ctx, obj); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			observability.RecordDuplicateGated()
			r.StorageError = "duplicate of an existing discovery"
			return
		}
		p.logger.Printf("insert %q failed: %v", obj.Name, err)
		observability.RecordStoreError("insert")
		r.StorageError = fmt.Sprintf("store insert failed: %v", err)
		return
	}

	r.Stored = true
	result.StoredCount++
	observability.RecordObjectStored()
}

// archiveSamples batches the raw curve into the archive when one is
// configured. Archive failure is logged and otherwise ignored.
func (p *Pipeline) archiveSamples(ctx context.Context, analysisID string, lc *domain.LightCurve) {
	if p.archive == nil {
		return
	}

	points := make([]*domain.LightCurvePoint, lc.Len())
	for i := range lc.Time {
		points[i] = &domain.LightCurvePoint{
			AnalysisID: analysisID,
			TimeDays:   lc.Time[i],
			Flux:       lc.Flux[i],
		}
	}
	if err := p.archive.InsertBulk(ctx, points); err != nil {
		p.logger.Printf("archive %s failed: %v", analysisID, err)
		observability.RecordStoreError("archive")
		return
	}
	observability.RecordArchiveBatch()
}

// objectName derives the human-facing discovery name. Signals on a resolved
// host get planet-letter suffixes starting at "b"; host-less detections are
// named from the analysis ID so they stay unique across uploads.
func objectName(host, analysisID string, index int) string {
	letter := rune('b' + index)
	if host != domain.UnknownHost {
		return fmt.Sprintf("%s %c", host, letter)
	}
	return fmt.Sprintf("EXO-%s %c", idhash.ShortID(analysisID), letter)
}

// inferDataset maps common archive identifier prefixes onto dataset tags.
func inferDataset(host string) string {
	upper := strings.ToUpper(host)
	switch {
	case strings.HasPrefix(upper, "KIC"), strings.HasPrefix(upper, "KOI"), strings.HasPrefix(upper, "KPLR"), strings.HasPrefix(upper, "KEPLER"):
		return domain.DatasetKepler
	case strings.HasPrefix(upper, "EPIC"), strings.HasPrefix(upper, "K2"):
		return domain.DatasetK2
	case strings.HasPrefix(upper, "TIC"), strings.HasPrefix(upper, "TOI"), strings.HasPrefix(upper, "TESS"):
		return domain.DatasetTESS
	}
	return domain.DatasetUnknown
}

// summaryMessage renders the one-line human summary of a finished run.
func summaryMessage(r *Result) string {
	counts := map[domain.Label]int{}
	for _, s := range r.Signals {
		counts[s.Label]++
	}

	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, string(l))
	}
	sort.Strings(labels)

	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%d %s", counts[domain.Label(l)], l))
	}

	return fmt.Sprintf("Detected %d signal(s) (%s), stored %d new discovery(ies).",
		r.TotalDetected, strings.Join(parts, ", "), r.StoredCount)
}

// compile-time check that the concrete collaborators satisfy the pipeline
// surfaces.
var (
	_ Classifier = (*classify.Classifier)(nil)
	_ HostLookup = (*catalog.Client)(nil)
	_ Explainer  = (*explain.Explainer)(nil)
)
