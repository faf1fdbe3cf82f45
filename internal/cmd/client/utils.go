package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rzbill/sluice/internal/auth"
	transports "github.com/rzbill/sluice/internal/cmd/client/transports"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// errStop ends a watch once the requested number of events was printed.
var errStop = errors.New("stop")

// grpcAddrFromEnv returns the gRPC server address from SLUICE_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("SLUICE_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:50051"
}

// dialGRPCContext dials the sluice gRPC endpoint with insecure transport
// for local/dev. SLUICE_TOKEN, when set, is sent as a bearer token.
func dialGRPCContext(_ context.Context) (*grpc.ClientConn, error) {
	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if tok := os.Getenv("SLUICE_TOKEN"); tok != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(auth.BearerCredentials{Token: tok, Insecure: true}))
	}
	return grpc.NewClient(grpcAddrFromEnv(), opts...)
}

func getTransport() transports.LedgerTransport {
	return transports.NewGrpcTransport(dialGRPCContext)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseTimeMs accepts epoch milliseconds or RFC3339.
func parseTimeMs(s string) (int64, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q; expected ms or RFC3339", s)
	}
	return t.UnixMilli(), nil
}

// rpcError flattens a gRPC status into "code: message".
func rpcError(err error) error {
	if st, ok := status.FromError(err); ok && err != nil {
		return fmt.Errorf("%s: %s", st.Code(), st.Message())
	}
	return err
}
