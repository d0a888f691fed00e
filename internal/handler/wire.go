package handler

import (
	"github.com/google/wire"
)

// ProviderSet is the Wire provider set for the status service, its
// health checker and the HTTP mount.
var ProviderSet = wire.NewSet(NewInformerService, NewSyncChecker, NewHandler)
