package viewer

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vertexfoundry/cadviewer-bridge/internal/logging"
	"github.com/vertexfoundry/cadviewer-bridge/internal/observability"
)

// methodMessageType discriminates viewer method invocations on the wire.
const methodMessageType = "cad_viewer_method"

// methodMessage is the message envelope for one method invocation. Method
// and Args carry JSON-encoded arrays as strings; the front-end decodes them
// in a second pass.
type methodMessage struct {
	Type   string `json:"type"`
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Args   string `json:"args"`
}

// Execute serializes a dotted method path and argument list into a single
// fire-and-forget message and returns the message id used. Ids start at 1
// and increase strictly per viewer instance; no reply is awaited.
//
// A method path that fails the grammar sends nothing and returns id 0 with a
// nil error. Callers that rely on the id must treat 0 as "not sent".
func (v *Viewer) Execute(ctx context.Context, method string, args ...any) (int64, error) {
	ch, err := v.channelOrErr()
	if err != nil {
		return 0, err
	}
	ctx = logging.ContextWithViewerID(ctx, v.id)

	tokens, ok := ParseMethodPath(method)
	if !ok {
		v.log.Warn(ctx, "method path did not parse, message dropped",
			logging.String("method", method))
		return 0, nil
	}
	if args == nil {
		args = []any{}
	}

	methodJSON, err := json.Marshal(tokens)
	if err != nil {
		return 0, fmt.Errorf("encode method path: %w", err)
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return 0, fmt.Errorf("encode method args: %w", err)
	}

	id := v.msgID.Add(1)
	payload, err := json.Marshal(methodMessage{
		Type:   methodMessageType,
		ID:     id,
		Method: string(methodJSON),
		Args:   string(argsJSON),
	})
	if err != nil {
		return 0, fmt.Errorf("encode method message: %w", err)
	}

	ctx, span := observability.StartSpan(ctx, "viewer.execute",
		attribute.Int64("message_id", id),
		attribute.String("method_root", tokens[0]))
	defer span.End()

	if err := ch.SendMessage(ctx, payload, nil); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("send method message: %w", err)
	}
	v.metrics.IncMethodMessage(tokens[0])
	v.log.Debug(ctx, "method message sent",
		logging.Int64("message_id", id),
		logging.String("method", method))
	return id, nil
}
