package main

import (
	"fmt"
	"net"

	"venue-collections/src/aggregator"
	"venue-collections/src/config"
	pb "venue-collections/src/grpc_control"
	"venue-collections/src/logger"
	"venue-collections/src/server"

	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

// startServers starts the HTTP and gRPC servers that are enabled in config
// and returns a function stopping them.
func startServers(
	srv *server.APIServer,
	config *config.Config,
	configPath string,
	builder *aggregator.Builder,
	appLogger *logger.Logger,
) func() {
	var stops []func()

	// 1. HTTP API
	if config.Port != 0 {
		go func() {
			if err := srv.Start(); err != nil {
				appLogger.Error("Server failed: %v", err)
			}
		}()
		stops = append(stops, func() {
			if err := srv.Stop(); err != nil {
				appLogger.Warning("Server shutdown: %v", err)
			}
		})
	}

	// 2. gRPC Control Server
	if config.GrpcPort != 0 {
		addr := fmt.Sprintf("%s:%d", config.GrpcHost, config.GrpcPort)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			appLogger.Error("Failed to listen for gRPC on %s: %v", addr, err)
		} else {
			grpcServer := grpc.NewServer()
			controlService := pb.NewControlService(config, configPath, builder, appLogger.Named("ControlService"))
			pb.RegisterCollectionControlServer(grpcServer, controlService)

			go func() {
				appLogger.Info("Starting gRPC Control Server on %s", addr)
				if err := grpcServer.Serve(lis); err != nil {
					appLogger.Error("Failed to serve gRPC: %v", err)
				}
			}()
			stops = append(stops, grpcServer.GracefulStop)
		}
	}

	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}
