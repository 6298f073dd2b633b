package shop

import "shoplist/internal/share"

// Service is the orchestration layer that keeps the four entity collections
// (catalog, lists, active session, session archive) mutually consistent.
// It is the only writer of any of them.
type Service struct {
	stores  Stores
	images  ImageStore
	stats   StatsIndex
	enc     Encryptor
	codec   *share.Codec
	logger  Logger
	clock   Clock
	idgen   IDGenerator
}

// NewService creates a Service with the provided dependencies.
// stats may be nil when reporting is disabled; enc may be nil when the
// backup commands are not used.
func NewService(stores Stores, images ImageStore, stats StatsIndex, enc Encryptor, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		stores: stores,
		images: images,
		stats:  stats,
		enc:    enc,
		codec:  share.NewCodec(),
		logger: logger,
		clock:  clock,
		idgen:  idgen,
	}
}
