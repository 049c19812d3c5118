// Package llms implements the LLM Gateway: a provider-agnostic facade over
// chat-completion, embedding, structured-output, and streaming-chat calls,
// with a closed failure taxonomy every backend maps its own errors into.
package llms

import (
	"context"
	"encoding/json"
	"time"

	"github.com/climatevia/pathway/errs"
	"github.com/invopop/jsonschema"
)

// Gateway is the uniform contract every specialist and the supervisor
// dispatch against; they never talk to a provider SDK directly.
//
// Every call takes a context carrying the caller's deadline. Failures are
// always an *errs.Error with one of: Unavailable (no client configured),
// Timeout, Transport, BadStructuredOutput, Cancelled, or InternalInvariant
// (a request that could not be encoded or built). The gateway has no
// internal state to serialize: concurrent calls are always safe.
type Gateway interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, error)
	Embedding(ctx context.Context, text string) ([]float64, error)
	StructuredOutput(ctx context.Context, req StructuredRequest, out any) error
	StreamChat(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error)
}

// reflector is shared across calls: jsonschema.Reflector caches nothing
// request-specific, so one instance is safe for concurrent Reflect calls.
var reflector = &jsonschema.Reflector{
	DoNotReference: true,
	ExpandedStruct: true,
}

// schemaFor generates a JSON Schema document for v's type, used to steer a
// structured-output call. The parsed response is not validated against it.
func schemaFor(name string, v any) (string, error) {
	schema := reflector.Reflect(v)
	schema.Title = name
	raw, err := json.Marshal(schema)
	if err != nil {
		return "", errs.Wrap(errs.InternalInvariant, "llms: marshal schema for "+name, err)
	}
	return string(raw), nil
}

// decodeStructured parses raw model output into out, wrapping any failure
// as BadStructuredOutput since by definition the model did not conform to
// the schema it was given.
func decodeStructured(raw string, out any) error {
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return errs.Wrap(errs.BadStructuredOutput, "llms: response did not match schema", err)
	}
	return nil
}

// withTimeout applies a sane default deadline when ctx carries none, so a
// caller that forgets to set one can't hang a gateway call forever.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// classifyContextErr maps a context cancellation/deadline into the gateway's
// failure taxonomy.
func classifyContextErr(err error) error {
	switch err {
	case context.Canceled:
		return errs.Wrap(errs.Cancelled, "llms: request cancelled", err)
	case context.DeadlineExceeded:
		return errs.Wrap(errs.Timeout, "llms: request timed out", err)
	default:
		return nil
	}
}
