package handler

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"

	"github.com/otterscale/cassandra-operator/internal/core"
)

// SyncChecker is a grpchealth.Checker that reports SERVING only once
// every informer completed its first resync.
type SyncChecker struct {
	informers *core.Informers
}

var _ grpchealth.Checker = (*SyncChecker)(nil)

func NewSyncChecker(informers *core.Informers) *SyncChecker {
	return &SyncChecker{informers: informers}
}

func (c *SyncChecker) Check(_ context.Context, req *grpchealth.CheckRequest) (*grpchealth.CheckResponse, error) {
	if req.Service != "" && req.Service != InformerServiceName {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("unknown service %q", req.Service))
	}
	if !c.informers.HasSynced() {
		return &grpchealth.CheckResponse{Status: grpchealth.StatusNotServing}, nil
	}
	return &grpchealth.CheckResponse{Status: grpchealth.StatusServing}, nil
}
