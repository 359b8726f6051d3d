package probe

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/certledger/chain-service/internal/chain/ethereum"
	"github.com/certledger/chain-service/internal/config"
)

// newLiveness 存活探针：RPC 节点是否可达
func newLiveness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Checks whether the configured ledger RPC endpoint is reachable",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool(verboseFlag)
			runLiveness(verbose)
		},
	}
	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output")
	return cmd
}

func runLiveness(verbose bool) {
	cfg := config.DefaultServiceConfigFromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := ethereum.NewRPCClient(cfg.Network.RPCURL)
	chainID, err := client.ChainID(ctx)
	if err != nil {
		log.Error().Err(err).Str("rpc_url", cfg.Network.RPCURL).Msg("Liveness probe failed")
		os.Exit(1)
	}

	if chainID.Uint64() != cfg.Network.ChainID {
		log.Error().
			Uint64("expected", cfg.Network.ChainID).
			Uint64("actual", chainID.Uint64()).
			Msg("Liveness probe failed: node reports unexpected chain id")
		os.Exit(1)
	}

	if verbose {
		fmt.Printf("node reachable, chain id %d\n", chainID.Uint64())
	}
}
