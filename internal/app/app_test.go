package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	pb "github.com/godilite/workforce-analytics/api/v1"
	"github.com/godilite/workforce-analytics/internal/config"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// costsCSV covers January 2024 to December 2025. Bruno has no cost in March 2024.
func costsCSV() string {
	var b strings.Builder
	b.WriteString("Salarie;Sous_groupe")
	for i := 0; i < 24; i++ {
		fmt.Fprintf(&b, ";%02d-%d", i%12+1, 2024+i/12)
	}
	line := func(name, group string, cost func(i int) string) {
		b.WriteString("\n" + name + ";" + group)
		for i := 0; i < 24; i++ {
			b.WriteString(";" + cost(i))
		}
	}
	line("Alice", "soins", func(i int) string {
		if i < 12 {
			return "2000"
		}
		return "2200"
	})
	line("Bruno", "soins", func(i int) string {
		switch {
		case i == 2:
			return ""
		case i < 12:
			return "1800"
		default:
			return "1600"
		}
	})
	line("Chloe", "admin", func(int) string { return "3000" })
	b.WriteString("\n")
	return b.String()
}

func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	require.NoError(t, lis.Close())
	return port
}

func newTestApp(t *testing.T) (pb.WorkforceAnalyticsClient, *grpc.ClientConn) {
	t.Helper()
	cfg := &config.Config{
		AppEnv:       "test",
		DBDriver:     "sqlite3",
		DBPath:       "file:" + t.Name() + "?mode=memory&cache=shared",
		CacheEnabled: false,
		CacheTTL:     time.Minute,
		GRPCPort:     freePort(t),
	}

	ctx, cancel := context.WithCancel(context.Background())
	application, err := NewApp(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := grpc.NewClient(application.grpcServer.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return pb.NewWorkforceAnalyticsClient(conn), conn
}

func TestApp_ImportAnalyzeExport(t *testing.T) {
	client, conn := newTestApp(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: pb.ServiceName}, grpc.WaitForReady(true))
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, health.Status)

	imported, err := client.ImportDataset(ctx, &pb.ImportDatasetRequest{
		Name:    "couts.csv",
		Content: []byte(costsCSV()),
	})
	require.NoError(t, err)
	require.NotEmpty(t, imported.DatasetID)
	assert.Equal(t, "soins", imported.DefaultSubgroup)
	assert.Equal(t, []string{"admin", "soins"}, imported.Subgroups)

	subgroups, err := client.ListSubgroups(ctx, &pb.ListSubgroupsRequest{DatasetID: imported.DatasetID})
	require.NoError(t, err)
	assert.Equal(t, imported.Subgroups, subgroups.Subgroups)

	analyzed, err := client.AnalyzeSubgroup(ctx, &pb.AnalyzeSubgroupRequest{DatasetID: imported.DatasetID})
	require.NoError(t, err)
	require.NotNil(t, analyzed.Report)
	assert.Equal(t, "soins", analyzed.Report.Subgroup)
	assert.Equal(t, 2, analyzed.Report.Group.Employees)
	assert.InDelta(t, 43800.0, analyzed.Report.Group.TotalA, 1e-9)
	assert.InDelta(t, 45600.0, analyzed.Report.Group.TotalB, 1e-9)

	exported, err := client.ExportAnalysis(ctx, &pb.ExportAnalysisRequest{DatasetID: imported.DatasetID})
	require.NoError(t, err)
	assert.Equal(t, "analyse_soins.xlsx", exported.Filename)
	assert.NotEmpty(t, exported.Content)
}

func TestApp_StatusCodes(t *testing.T) {
	client, conn := newTestApp(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := client.ListSubgroups(ctx, &pb.ListSubgroupsRequest{DatasetID: "does-not-exist"}, grpc.WaitForReady(true))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.AnalyzeSubgroup(ctx, &pb.AnalyzeSubgroupRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.ImportDataset(ctx, &pb.ImportDatasetRequest{
		Name:    "couts.csv",
		Content: []byte("Salarie;Sous_groupe;01-2024\nAlice;soins;Inf\n"),
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	t.Run("malformed body", func(t *testing.T) {
		var out json.RawMessage
		err := conn.Invoke(ctx, pb.WorkforceAnalytics_AnalyzeSubgroup_FullMethodName,
			json.RawMessage(`{"dataset_id":"ds-1","top_n":7.5}`), &out,
			grpc.CallContentSubtype(pb.CodecName))

		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Contains(t, status.Convert(err).Message(), "malformed request")
	})

	t.Run("health over the service codec", func(t *testing.T) {
		resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: pb.ServiceName},
			grpc.CallContentSubtype(pb.CodecName))

		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
	})
}
