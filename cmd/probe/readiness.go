package probe

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/certledger/chain-service/internal/config"
	"github.com/certledger/chain-service/internal/service"
)

// newReadiness 就绪探针：配置完整且签名身份可以解析出来
func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Checks whether configuration is complete and the signing identity resolves",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool(verboseFlag)
			runReadiness(verbose)
		},
	}
	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output")
	return cmd
}

func runReadiness(verbose bool) {
	cfg := config.DefaultServiceConfigFromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	components, err := service.New(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Readiness probe failed: component assembly")
		os.Exit(1)
	}

	identity, err := components.Custodian.Signer(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Readiness probe failed: signing identity does not resolve")
		os.Exit(1)
	}

	if verbose {
		fmt.Printf("ready, signer address %s, network %s\n", identity.Address().Hex(), cfg.Network.Name)
	}
}
