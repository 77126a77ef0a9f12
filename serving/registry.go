package serving

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"exoserve/artifact"
	"exoserve/dataset"
	"exoserve/ml"
)

// ArtifactRef names the serialized model and preprocessor for one dataset
// type, plus the model kind to decode the model artifact as. Several
// dataset types may share one artifact pair (kepler and k2 do).
type ArtifactRef struct {
	Model        string
	Preprocessor string
	ModelKind    string
}

// Bundle is a realized (model, preprocessor) pair. Bundles are immutable
// after load and owned by the registry cache; callers get them by reference.
type Bundle struct {
	Model        ml.Model
	Preprocessor *ml.Preprocessor
}

// TypeStatus is the introspection view of one dataset type.
type TypeStatus struct {
	DatasetType           string `json:"dataset_type"`
	ModelAvailable        bool   `json:"model_available"`
	PreprocessorAvailable bool   `json:"preprocessor_available"`
	Cached                bool   `json:"cached"`
}

// Registry maps dataset types to their model bundles, loading each bundle
// from the artifact store on first use and memoizing it for the life of the
// process. Construct one per process and hand it to the request handlers.
type Registry struct {
	store  artifact.Store
	refs   map[dataset.Type]ArtifactRef
	logger *zap.SugaredLogger

	// mu serializes the whole miss path: misses happen at most once per
	// dataset type, so a registry-wide lock costs nothing.
	mu    sync.Mutex
	cache *lru.Cache[dataset.Type, *Bundle]
}

// DefaultRefs returns the shipped dataset-to-artifact mapping. kepler and
// k2 candidates are classified by the same logistic model; tess uses a
// thresholded regressor.
func DefaultRefs() map[dataset.Type]ArtifactRef {
	k2 := ArtifactRef{
		Model:        "models/k2_logistic_model.json",
		Preprocessor: "preprocessors/k2_preprocessor.json",
		ModelKind:    ml.KindLogistic,
	}
	return map[dataset.Type]ArtifactRef{
		dataset.Kepler: k2,
		dataset.K2:     k2,
		dataset.Tess: {
			Model:        "models/tess_threshold_model.json",
			Preprocessor: "preprocessors/tess_preprocessor.json",
			ModelKind:    ml.KindThreshold,
		},
	}
}

// NewRegistry builds a registry over store with the given refs. The cache
// is sized to the ref count, so entries are never evicted in practice.
func NewRegistry(store artifact.Store, refs map[dataset.Type]ArtifactRef, logger *zap.SugaredLogger) (*Registry, error) {
	size := len(refs)
	if size == 0 {
		size = 1
	}
	cache, err := lru.New[dataset.Type, *Bundle](size)
	if err != nil {
		return nil, err
	}
	return &Registry{
		store:  store,
		refs:   refs,
		logger: logger,
		cache:  cache,
	}, nil
}

// GetBundle returns the loaded bundle for t, reading the artifact store at
// most once per type. A failed load leaves no cache entry, so a later call
// can succeed once the store is fixed.
func (r *Registry) GetBundle(t dataset.Type) (*Bundle, error) {
	if bundle, ok := r.cache.Get(t); ok {
		return bundle, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// another request may have loaded it while we waited
	if bundle, ok := r.cache.Get(t); ok {
		return bundle, nil
	}

	ref, ok := r.refs[t]
	if !ok {
		return nil, newError(KindUnknownDatasetType, "unknown dataset type: %q (available: %v)", t, dataset.All())
	}

	if !r.store.Exists(ref.Model) {
		return nil, newError(KindArtifactNotFound, "model artifact not found: %s", ref.Model)
	}
	if !r.store.Exists(ref.Preprocessor) {
		return nil, newError(KindArtifactNotFound, "preprocessor artifact not found: %s", ref.Preprocessor)
	}

	r.logger.Infow("loading model bundle", "dataset_type", t, "model", ref.Model, "preprocessor", ref.Preprocessor)

	modelData, err := r.store.Load(ref.Model)
	if err != nil {
		return nil, wrapError(KindArtifactNotFound, err, "failed to read model artifact")
	}
	model, err := ml.DecodeModel(ref.ModelKind, modelData)
	if err != nil {
		return nil, wrapError(KindInternal, err, "model artifact is corrupt")
	}

	preData, err := r.store.Load(ref.Preprocessor)
	if err != nil {
		return nil, wrapError(KindArtifactNotFound, err, "failed to read preprocessor artifact")
	}
	preprocessor, err := ml.DecodePreprocessor(preData)
	if err != nil {
		return nil, wrapError(KindInternal, err, "preprocessor artifact is corrupt")
	}

	bundle := &Bundle{Model: model, Preprocessor: preprocessor}
	r.cache.Add(t, bundle)
	return bundle, nil
}

// Status reports, per registered dataset type, whether its artifacts are
// present in the store and whether its bundle is cached. Read-only.
func (r *Registry) Status() []TypeStatus {
	statuses := make([]TypeStatus, 0, len(r.refs))
	for _, t := range dataset.All() {
		ref, ok := r.refs[t]
		if !ok {
			continue
		}
		statuses = append(statuses, TypeStatus{
			DatasetType:           string(t),
			ModelAvailable:        r.store.Exists(ref.Model),
			PreprocessorAvailable: r.store.Exists(ref.Preprocessor),
			Cached:                r.cache.Contains(t),
		})
	}
	return statuses
}

// Types returns the registered dataset types in stable order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.refs))
	for _, t := range dataset.All() {
		if _, ok := r.refs[t]; ok {
			types = append(types, string(t))
		}
	}
	return types
}
