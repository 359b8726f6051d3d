package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/certledger/chain-service/cmd/probe"
	"github.com/certledger/chain-service/cmd/record"
	"github.com/certledger/chain-service/cmd/verify"
	"github.com/certledger/chain-service/internal/config"
	"github.com/certledger/chain-service/internal/util"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chain-service",
		Short: "Certificate ledger signing and verification service",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			util.InitLogger(config.DefaultServiceConfigFromEnv().Logger)
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.AddCommand(
		record.New(),
		verify.New(),
		probe.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
