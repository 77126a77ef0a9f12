// Package serving holds the inference core: the model registry with its
// process-wide bundle cache and the per-request inference pipeline.
package serving

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure so the transport layer can pick a
// status code without parsing message text.
type Kind string

const (
	// KindUnknownDatasetType means the request named a dataset type that is
	// not registered. Client fault.
	KindUnknownDatasetType Kind = "unknown_dataset_type"
	// KindArtifactNotFound means a model or preprocessor artifact is absent
	// from the store. Server configuration fault.
	KindArtifactNotFound Kind = "artifact_not_found"
	// KindSchema means the input batch was empty or malformed. Client fault.
	KindSchema Kind = "schema"
	// KindPreprocess means the preprocessor rejected the pruned batch,
	// usually a missing required feature. Client fault.
	KindPreprocess Kind = "preprocess"
	// KindPredict means the model itself failed on the preprocessed batch.
	// Server fault.
	KindPredict Kind = "predict"
	// KindInternal covers everything unclassified. Server fault.
	KindInternal Kind = "internal"
)

// ClientFault reports whether the failure was caused by the request rather
// than by this service's configuration or models.
func (k Kind) ClientFault() bool {
	switch k {
	case KindUnknownDatasetType, KindSchema, KindPreprocess:
		return true
	}
	return false
}

// Error is a stage failure tagged with its taxonomy kind. Hint, when set,
// is a remediation note safe to return to the caller.
type Error struct {
	Kind    Kind
	Message string
	Hint    string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the taxonomy kind from err, defaulting to KindInternal
// for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HintOf extracts the remediation hint from err, if any.
func HintOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Hint
	}
	return ""
}
