package handler

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/otterscale/cassandra-operator/internal/core"
)

// InformerServiceName is the fully-qualified name of the status
// service.
const InformerServiceName = "cassandra.operator.v1.InformerService"

// Procedure paths of InformerService.
const (
	ListKindsProcedure     = "/" + InformerServiceName + "/ListKinds"
	ListResourcesProcedure = "/" + InformerServiceName + "/ListResources"
	GetResourceProcedure   = "/" + InformerServiceName + "/GetResource"
)

// InformerService exposes the cached state of every informer. Requests
// and responses are google.protobuf.Struct messages.
type InformerService struct {
	informers *core.Informers
}

func NewInformerService(informers *core.Informers) *InformerService {
	return &InformerService{informers: informers}
}

// Handler returns the path prefix and handler serving every procedure
// of the service.
func (s *InformerService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(ListKindsProcedure, connect.NewUnaryHandler(ListKindsProcedure, s.ListKinds, opts...))
	mux.Handle(ListResourcesProcedure, connect.NewUnaryHandler(ListResourcesProcedure, s.ListResources, opts...))
	mux.Handle(GetResourceProcedure, connect.NewUnaryHandler(GetResourceProcedure, s.GetResource, opts...))
	return "/" + InformerServiceName + "/", mux
}

// ListKinds reports the loop state, readiness and size of every
// enabled kind.
func (s *InformerService) ListKinds(_ context.Context, _ *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	kinds := []any{}
	for _, inf := range s.informers.All() {
		kinds = append(kinds, map[string]any{
			"kind":   inf.Kind(),
			"state":  string(inf.State()),
			"synced": inf.HasSynced(),
			"size":   inf.Len(),
		})
	}
	return newResponse(map[string]any{"kinds": kinds})
}

// ListResources returns the key and version of every cached entry of
// a kind, optionally restricted to one namespace.
func (s *InformerService) ListResources(_ context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	kind, err := requiredField(req.Msg, "kind")
	if err != nil {
		return nil, domainErrorToConnectError(err)
	}
	inf, err := s.informers.Get(kind)
	if err != nil {
		return nil, domainErrorToConnectError(err)
	}

	resources := []any{}
	for _, sum := range inf.Summaries(stringField(req.Msg, "namespace")) {
		resources = append(resources, map[string]any{
			"namespace": sum.Namespace,
			"name":      sum.Name,
			"version":   sum.Version,
		})
	}
	return newResponse(map[string]any{
		"kind":      kind,
		"synced":    inf.HasSynced(),
		"resources": resources,
	})
}

// GetResource returns the cached payload of one resource. It waits for
// the kind's first resync up to the request deadline.
func (s *InformerService) GetResource(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	kind, err := requiredField(req.Msg, "kind")
	if err != nil {
		return nil, domainErrorToConnectError(err)
	}
	name, err := requiredField(req.Msg, "name")
	if err != nil {
		return nil, domainErrorToConnectError(err)
	}
	namespace := stringField(req.Msg, "namespace")

	inf, err := s.informers.Get(kind)
	if err != nil {
		return nil, domainErrorToConnectError(err)
	}
	doc, ok, err := inf.Lookup(ctx, namespace, name)
	if err != nil {
		return nil, domainErrorToConnectError(err)
	}
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("%s %s/%s not found", kind, namespace, name))
	}

	body := map[string]any{
		"kind":      kind,
		"namespace": doc.Namespace,
		"name":      doc.Name,
		"version":   doc.Version,
	}
	if doc.Object != nil {
		cleanObject(doc.Object)
		body["object"] = doc.Object
	}
	return newResponse(body)
}

func newResponse(body map[string]any) (*connect.Response[structpb.Struct], error) {
	msg, err := structpb.NewStruct(body)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

func stringField(msg *structpb.Struct, name string) string {
	return msg.GetFields()[name].GetStringValue()
}

func requiredField(msg *structpb.Struct, name string) (string, error) {
	v := stringField(msg, name)
	if v == "" {
		return "", &errInvalidRequest{field: name}
	}
	return v, nil
}
