package grpc_control

import (
	"context"
	"errors"
	"slices"
	"sync"

	"venue-collections/src/aggregator"
	"venue-collections/src/config"
	"venue-collections/src/helpers"
	"venue-collections/src/logger"
	"venue-collections/src/models"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ControlService implements the CollectionControlServer interface
type ControlService struct {
	Config     *config.Config
	ConfigPath string // Optional, rule changes are saved here when set
	Builder    *aggregator.Builder
	Logger     *logger.Logger

	configMu sync.Mutex // Serializes rule changes and config saves
}

// NewControlService creates a new instance of ControlService
func NewControlService(cfg *config.Config, cfgPath string, builder *aggregator.Builder, log *logger.Logger) *ControlService {
	return &ControlService{
		Config:     cfg,
		ConfigPath: cfgPath,
		Builder:    builder,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	return statusStruct(s.Builder.Latest())
}

// -----------------------------------------------------------------------------

func (s *ControlService) LookupSymbol(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "symbol is required")
	}

	latest := s.Builder.Latest()
	if latest == nil {
		return nil, status.Error(codes.FailedPrecondition, "no collections built yet")
	}

	venues, err := aggregator.VenuesForSymbol(latest, req.GetValue())
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}

	values := make([]interface{}, len(venues))
	for i, v := range venues {
		values[i] = v
	}
	return structpb.NewList(values)
}

// -----------------------------------------------------------------------------

func (s *ControlService) Rebuild(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	result, err := s.Builder.Build(ctx)
	if err != nil {
		s.Logger.Error("gRPC: Rebuild failed: %v", err)
		return nil, status.Error(rebuildCode(err), err.Error())
	}

	s.Logger.Info("gRPC: Rebuild finished with %d venues", result.VenueCount)
	return statusStruct(result)
}

// -----------------------------------------------------------------------------

// ExcludeVenue adds a venue to the exclusion rule of subsequent runs.
func (s *ControlService) ExcludeVenue(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	name := req.GetValue()
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "venue name is required")
	}
	if !s.Builder.HasVenue(name) {
		return nil, status.Errorf(codes.NotFound, "venue %s not found", name)
	}

	s.configMu.Lock()
	rules := s.Builder.UpdateRules(func(r *models.MVenueRules) {
		if !slices.Contains(r.Exclude, name) {
			r.Exclude = append(r.Exclude, name)
		}
	})

	// Update Config Persistence
	s.Config.Aggregation.Rules.Exclude = append([]string(nil), rules.Exclude...)
	if s.ConfigPath != "" {
		if err := s.Config.Save(s.ConfigPath); err != nil {
			s.Logger.Error("gRPC: Failed to save config: %v", err)
		}
	}
	s.configMu.Unlock()

	excluded := make([]interface{}, len(rules.Exclude))
	for i, v := range rules.Exclude {
		excluded[i] = v
	}

	s.Logger.Info("gRPC: Venue %s excluded from subsequent runs", name)
	return structpb.NewStruct(map[string]interface{}{
		"excluded": excluded,
	})
}

// -----------------------------------------------------------------------------

func rebuildCode(err error) codes.Code {
	var refreshErr *helpers.VenueRefreshError
	var malformedErr *helpers.MalformedSymbolError
	var validationErr *helpers.ValidationError

	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.As(err, &refreshErr):
		return codes.Unavailable
	case errors.As(err, &malformedErr):
		return codes.DataLoss
	case errors.As(err, &validationErr):
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

// -----------------------------------------------------------------------------

func statusStruct(result *models.MCollections) (*structpb.Struct, error) {
	if result == nil {
		return structpb.NewStruct(map[string]interface{}{"built": false})
	}

	failed := make([]interface{}, len(result.Failures))
	for i, f := range result.Failures {
		failed[i] = f.Venue
	}

	return structpb.NewStruct(map[string]interface{}{
		"built":            true,
		"built_at":         result.BuiltAt,
		"venue_count":      result.VenueCount,
		"shared_symbols":   len(result.Collections),
		"singular_symbols": len(result.SinglyAvailable),
		"failed_venues":    failed,
	})
}
