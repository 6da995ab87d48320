// Package errcode defines estuary's catalogue of client-visible error
// kinds and the envelope they are serialized into, in the shape of the
// registry's registry/api/errcode package. Unlike the registry, every
// error the client sees here rides back on HTTP 200 — the client's
// protocol encodes failure in the JSON body rather than the status line —
// so Descriptor.HTTPStatusCode exists for logging and metrics labeling
// only.
package errcode

import (
	"net/http"
	"strings"
)

// Code is a unique identifier for a class of error.
type Code int

// ErrorDescriptor provides relevant information about a given error code.
type ErrorDescriptor struct {
	// Code is the error code that this descriptor describes.
	Code Code

	// Value is a unique, string key, often capitalized with underscores,
	// used to identify the error in logs and metrics labels. It is not
	// written into the client-facing "detail" text.
	Value string

	// Message is a short, human readable description of the error
	// condition included in logs and the default detail text.
	Message string

	// HTTPStatusCode is the status code that is used for logging and
	// metrics purposes; it is never written to the wire, since the
	// client's protocol always replies 200.
	HTTPStatusCode int
}

// Error represents a single error surfaced to a client: its Code and the
// Message serialized as the envelope's "detail" field.
type Error struct {
	Code    Code   `json:"-"`
	Message string `json:"detail"`
}

func (e Error) Error() string {
	return e.Message
}

// Errors is a collection of Error, serialized as {"errors": [...]}.
type Errors struct {
	Errors []Error `json:"errors"`
}

func (errs Errors) Error() string {
	msgs := make([]string, len(errs.Errors))
	for i, e := range errs.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

const (
	// ErrorCodeUnknown is a catch-all for errors not otherwise classified.
	ErrorCodeUnknown Code = iota

	// ErrorCodeEnvelopeTruncated is returned when the publish envelope
	// declares more bytes than were actually sent.
	ErrorCodeEnvelopeTruncated

	// ErrorCodeEnvelopeTrailingGarbage is returned when bytes remain in
	// the publish body after the crate tarball.
	ErrorCodeEnvelopeTrailingGarbage

	// ErrorCodeManifestInvalid is returned for a malformed manifest JSON
	// payload, or one that fails name/semver validation.
	ErrorCodeManifestInvalid

	// ErrorCodeVersionExists is returned when (name, vers) is already
	// present in the index.
	ErrorCodeVersionExists

	// ErrorCodeArtifactExists is returned when the target artifact path
	// already exists on disk but is unreferenced by the index.
	ErrorCodeArtifactExists

	// ErrorCodeNotFound is returned when a yank/unyank target does not
	// exist in the index.
	ErrorCodeNotFound

	// ErrorCodeIOFailure covers filesystem failures underneath the
	// publish or yank path.
	ErrorCodeIOFailure

	// ErrorCodeVCSFailure covers version-control failures (commit,
	// worktree reset, packfile construction) underneath the index.
	ErrorCodeVCSFailure

	// ErrorCodeUnauthorized is returned when a mutating request carries
	// no Authorization header. The header's value is never validated.
	ErrorCodeUnauthorized
)

var descriptors = map[Code]ErrorDescriptor{
	ErrorCodeUnknown: {
		Code: ErrorCodeUnknown, Value: "UNKNOWN",
		Message: "an unknown error occurred", HTTPStatusCode: http.StatusInternalServerError,
	},
	ErrorCodeEnvelopeTruncated: {
		Code: ErrorCodeEnvelopeTruncated, Value: "ENVELOPE_TRUNCATED",
		Message: "publish envelope truncated", HTTPStatusCode: http.StatusBadRequest,
	},
	ErrorCodeEnvelopeTrailingGarbage: {
		Code: ErrorCodeEnvelopeTrailingGarbage, Value: "ENVELOPE_TRAILING_GARBAGE",
		Message: "publish envelope has trailing bytes", HTTPStatusCode: http.StatusBadRequest,
	},
	ErrorCodeManifestInvalid: {
		Code: ErrorCodeManifestInvalid, Value: "MANIFEST_INVALID",
		Message: "manifest invalid", HTTPStatusCode: http.StatusBadRequest,
	},
	ErrorCodeVersionExists: {
		Code: ErrorCodeVersionExists, Value: "VERSION_EXISTS",
		Message: "crate version already exists", HTTPStatusCode: http.StatusConflict,
	},
	ErrorCodeArtifactExists: {
		Code: ErrorCodeArtifactExists, Value: "ARTIFACT_EXISTS",
		Message: "artifact already exists but is not indexed", HTTPStatusCode: http.StatusConflict,
	},
	ErrorCodeNotFound: {
		Code: ErrorCodeNotFound, Value: "NOT_FOUND",
		Message: "not found", HTTPStatusCode: http.StatusNotFound,
	},
	ErrorCodeIOFailure: {
		Code: ErrorCodeIOFailure, Value: "IO_FAILURE",
		Message: "internal storage failure", HTTPStatusCode: http.StatusInternalServerError,
	},
	ErrorCodeVCSFailure: {
		Code: ErrorCodeVCSFailure, Value: "VCS_FAILURE",
		Message: "internal index failure", HTTPStatusCode: http.StatusInternalServerError,
	},
	ErrorCodeUnauthorized: {
		Code: ErrorCodeUnauthorized, Value: "UNAUTHORIZED",
		Message: "missing authorization", HTTPStatusCode: http.StatusUnauthorized,
	},
}

// Descriptor returns the registered descriptor for c.
func (c Code) Descriptor() ErrorDescriptor {
	if d, ok := descriptors[c]; ok {
		return d
	}
	return descriptors[ErrorCodeUnknown]
}

// WithMessage builds an Error from c's descriptor, optionally replacing
// the descriptor's default message with a more specific one.
func (c Code) WithMessage(message string) Error {
	d := c.Descriptor()
	if message == "" {
		message = d.Message
	}
	return Error{Code: c, Message: message}
}
