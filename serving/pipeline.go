package serving

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"exoserve/dataset"
	"exoserve/ml"
)

// preprocessHint is returned with every preprocessing failure; a client
// schema the preprocessor was not fit on is the dominant failure mode.
const preprocessHint = "Check that all required features are present"

// Pipeline turns a raw tabular payload into canonical predictions:
// build frame, prune leakage columns, load bundle, transform, predict.
// Every stage failure is tagged with its taxonomy kind.
type Pipeline struct {
	registry *Registry
	logger   *zap.SugaredLogger
}

// NewPipeline builds a pipeline over registry.
func NewPipeline(registry *Registry, logger *zap.SugaredLogger) *Pipeline {
	return &Pipeline{registry: registry, logger: logger}
}

// Infer runs the full pipeline for one request. Predictions preserve input
// row order: result i corresponds to row i of raw.
func (p *Pipeline) Infer(ctx context.Context, t dataset.Type, raw json.RawMessage) ([]ml.Prediction, error) {
	frame, err := ml.FrameFromJSON(raw)
	if err != nil {
		return nil, wrapError(KindSchema, err, "invalid input batch")
	}

	// Validation gate for the dataset type; pruning never touches rows.
	drops, err := dataset.ColumnsToDrop(t, frame.Columns())
	if err != nil {
		return nil, &Error{Kind: KindUnknownDatasetType, Message: err.Error()}
	}
	frame.Drop(drops...)

	bundle, err := p.registry.GetBundle(t)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, wrapError(KindInternal, err, "request cancelled")
	}

	X, err := bundle.Preprocessor.Transform(frame)
	if err != nil {
		tagged := wrapError(KindPreprocess, err, "preprocessing failed")
		tagged.Hint = preprocessHint
		return nil, tagged
	}

	preds, err := bundle.Model.Predict(X)
	if err != nil {
		return nil, wrapError(KindPredict, err, "prediction failed")
	}

	p.logger.Infow("inference complete", "dataset_type", t, "samples", len(preds))
	return preds, nil
}
