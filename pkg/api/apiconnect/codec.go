// Package apiconnect wires the settleup services onto connect handlers and clients.
//
// The messages in package api are plain Go structs, so both sides use Codec
// instead of connect's default protobuf codecs.
package apiconnect

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// CodecName is the connect codec name, which maps to the application/json content type.
const CodecName = "json"

// Codec encodes messages with encoding/json and validates requests against
// their JSON schema before decoding them.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if err := api.Validate(msg, data); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

func newHandler[Req, Res any](procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error), opts []connect.HandlerOption) http.Handler {
	return connect.NewUnaryHandler(procedure, fn, append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)...)
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	baseURL = strings.TrimRight(baseURL, "/")
	return connect.NewClient[Req, Res](httpClient, baseURL+procedure, append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)...)
}

// route dispatches on the full procedure path, like connect-generated service handlers.
func route(serviceName string, handlers map[string]http.Handler) (string, http.Handler) {
	return "/" + serviceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}
