package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/fedtech/jobtracker/internal/repository"
	"github.com/fedtech/jobtracker/internal/server"
)

var (
	healthRemote  string
	healthTimeout time.Duration
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the database, or a running jobtrackerd with --remote",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
		defer cancel()
		if healthRemote != "" {
			return remoteHealth(ctx, cmd, healthRemote)
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := repository.HealthCheck(ctx, a.db, healthTimeout, a.logger); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "database OK (%s, %d applications)\n", a.db.Dialect, a.store.Stats().Total)
		return nil
	},
}

func remoteHealth(ctx context.Context, cmd *cobra.Command, addr string) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	hc := healthpb.NewHealthClient(conn)
	for _, svc := range []string{"", server.JobsServiceName, server.ExtractServiceName, server.ExportServiceName} {
		resp, err := hc.Check(ctx, &healthpb.HealthCheckRequest{Service: svc})
		if err != nil {
			return fmt.Errorf("health %q: %w", svc, err)
		}
		name := svc
		if name == "" {
			name = "server"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-32s %s\n", name, resp.GetStatus())
	}

	stats, err := server.NewClient(conn).Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applications: %.0f\n", stats.GetFields()["total"].GetNumberValue())
	return nil
}

func init() {
	healthCmd.Flags().StringVar(&healthRemote, "remote", "", "address of a running jobtrackerd (host:port)")
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 5*time.Second, "overall timeout")
	rootCmd.AddCommand(healthCmd)
}
