package grpc_control

import (
	"context"
	"io"
	"net"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"venue-collections/src/aggregator"
	"venue-collections/src/config"
	"venue-collections/src/helpers"
	"venue-collections/src/interfaces"
	"venue-collections/src/logger"
	"venue-collections/src/models"
	"venue-collections/src/venue"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func testLogger() *logger.Logger {
	return logger.NewLoggerWithWriter(io.Discard, "ERROR", "test")
}

func newTestService(t *testing.T, policy models.FailurePolicy, venueCfgs ...models.MVenueConfig) *ControlService {
	t.Helper()

	cfg := &config.Config{MConfig: &models.MConfig{Name: "test", Venues: venueCfgs}}
	cfg.Network.RequestTimeout = 1
	cfg.Aggregation.FailurePolicy = policy

	var vs []interfaces.IVenue
	for _, vc := range venueCfgs {
		v, err := venue.NewFromConfig(vc, venue.Deps{Logger: testLogger()})
		if err != nil {
			t.Fatal(err)
		}
		vs = append(vs, v)
	}

	agg := aggregator.NewAggregator(aggregator.Options{Policy: policy}, testLogger())
	builder := aggregator.NewBuilder(agg, vs, models.MVenueRules{}, testLogger())
	return NewControlService(cfg, filepath.Join(t.TempDir(), "config.yaml"), builder, testLogger())
}

func dial(t *testing.T, svc CollectionControlServer) *CollectionControlClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterCollectionControlServer(srv, svc)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewCollectionControlClient(conn)
}

var (
	alpha = models.MVenueConfig{Name: "alpha", Type: "static", Symbols: []string{"BTC/USD", "ETH/USD"}}
	beta  = models.MVenueConfig{Name: "beta", Type: "static", Symbols: []string{"BTC/USD", "XRP/USD"}}
)

// -----------------------------------------------------------------------------

func TestControlServiceOverGRPC(t *testing.T) {
	client := dial(t, newTestService(t, models.PolicyAbort, alpha, beta))
	ctx := context.Background()

	st, err := client.GetStatus(ctx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if st.Fields["built"].GetBoolValue() {
		t.Error("GetStatus() reports built before any run")
	}

	_, err = client.LookupSymbol(ctx, wrapperspb.String("BTC/USD"))
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("LookupSymbol() before build code = %v, want FailedPrecondition", status.Code(err))
	}

	st, err = client.Rebuild(ctx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if st.Fields["venue_count"].GetNumberValue() != 2 || st.Fields["shared_symbols"].GetNumberValue() != 1 {
		t.Errorf("Rebuild() status = %v", st)
	}

	list, err := client.LookupSymbol(ctx, wrapperspb.String("BTC/USD"))
	if err != nil {
		t.Fatalf("LookupSymbol() error = %v", err)
	}
	if got := list.AsSlice(); len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Errorf("LookupSymbol() = %v, want [alpha beta]", got)
	}

	if _, err := client.LookupSymbol(ctx, wrapperspb.String("DOGE/USD")); status.Code(err) != codes.NotFound {
		t.Errorf("LookupSymbol(unknown) code = %v, want NotFound", status.Code(err))
	}
	if _, err := client.LookupSymbol(ctx, wrapperspb.String("")); status.Code(err) != codes.InvalidArgument {
		t.Errorf("LookupSymbol(\"\") code = %v, want InvalidArgument", status.Code(err))
	}
}

// -----------------------------------------------------------------------------

func TestExcludeVenue(t *testing.T) {
	svc := newTestService(t, models.PolicyAbort, alpha, beta)
	client := dial(t, svc)
	ctx := context.Background()

	if _, err := client.ExcludeVenue(ctx, wrapperspb.String("gamma")); status.Code(err) != codes.NotFound {
		t.Errorf("ExcludeVenue(unknown) code = %v, want NotFound", status.Code(err))
	}

	res, err := client.ExcludeVenue(ctx, wrapperspb.String("beta"))
	if err != nil {
		t.Fatalf("ExcludeVenue() error = %v", err)
	}
	if excluded := res.Fields["excluded"].GetListValue().AsSlice(); len(excluded) != 1 || excluded[0] != "beta" {
		t.Errorf("excluded = %v", excluded)
	}

	// Excluding twice keeps a single entry.
	if _, err := client.ExcludeVenue(ctx, wrapperspb.String("beta")); err != nil {
		t.Fatalf("second ExcludeVenue() error = %v", err)
	}
	if len(svc.Config.Aggregation.Rules.Exclude) != 1 {
		t.Errorf("config Exclude = %v", svc.Config.Aggregation.Rules.Exclude)
	}

	st, err := client.Rebuild(ctx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if st.Fields["venue_count"].GetNumberValue() != 1 || st.Fields["shared_symbols"].GetNumberValue() != 0 {
		t.Errorf("Rebuild() after exclusion = %v", st)
	}

	saved, err := config.NewConfig(svc.ConfigPath)
	if err != nil {
		t.Fatalf("reloading saved config: %v", err)
	}
	if len(saved.Aggregation.Rules.Exclude) != 1 {
		t.Errorf("saved Exclude = %v", saved.Aggregation.Rules.Exclude)
	}
}

// -----------------------------------------------------------------------------

func TestRebuildFailureCodes(t *testing.T) {
	svc := newTestService(t, models.PolicyAbort, alpha,
		models.MVenueConfig{Name: "broken", Type: "static", Symbols: []string{"BTC/USD", ""}})
	client := dial(t, svc)

	_, err := client.Rebuild(context.Background(), &emptypb.Empty{})
	if status.Code(err) != codes.DataLoss {
		t.Errorf("Rebuild() code = %v, want DataLoss", status.Code(err))
	}

	tests := []struct {
		err  error
		want codes.Code
	}{
		{err: &helpers.VenueRefreshError{Venue: "a", Cause: io.EOF}, want: codes.Unavailable},
		{err: helpers.NewValidationError("bad"), want: codes.InvalidArgument},
		{err: context.Canceled, want: codes.Canceled},
		{err: context.DeadlineExceeded, want: codes.DeadlineExceeded},
		{err: io.EOF, want: codes.Internal},
	}
	for _, tt := range tests {
		if got := rebuildCode(tt.err); got != tt.want {
			t.Errorf("rebuildCode(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

// -----------------------------------------------------------------------------

func TestExcludeVenueConcurrent(t *testing.T) {
	var cfgs []models.MVenueConfig
	for i := 0; i < 8; i++ {
		cfgs = append(cfgs, models.MVenueConfig{Name: fmt.Sprintf("venue-%d", i), Type: "static", Symbols: []string{"BTC/USD"}})
	}
	svc := newTestService(t, models.PolicySkip, cfgs...)

	var wg sync.WaitGroup
	for _, c := range cfgs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ExcludeVenue(context.Background(), wrapperspb.String(c.Name)); err != nil {
				t.Errorf("ExcludeVenue(%s) error = %v", c.Name, err)
			}
		}()
	}
	wg.Wait()

	if got := len(svc.Config.Aggregation.Rules.Exclude); got != len(cfgs) {
		t.Errorf("config Exclude has %d venues, want %d", got, len(cfgs))
	}

	saved, err := config.NewConfig(svc.ConfigPath)
	if err != nil {
		t.Fatalf("reloading saved config: %v", err)
	}
	if got := len(saved.Aggregation.Rules.Exclude); got != len(cfgs) {
		t.Errorf("saved Exclude has %d venues, want %d", got, len(cfgs))
	}
}
