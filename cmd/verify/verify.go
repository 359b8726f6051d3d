package verify

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

// New 按证书编号查询链上记录
func New() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "verify <certificate-number>",
		Short: "Looks up a recorded certificate on the ledger",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			components, err := service.New(ctx, config.DefaultServiceConfigFromEnv())
			if err != nil {
				log.Error().Err(err).Msg("Failed to assemble components")
				os.Exit(1)
			}

			result, err := components.Reader.Verify(ctx, args[0])
			if err != nil {
				log.Error().Err(err).Str("certificate_number", args[0]).Msg("Verification lookup failed")
				os.Exit(1)
			}

			if !result.Found {
				fmt.Println("certificate not found")
				return
			}

			fmt.Printf("student:    %s\ncourse:     %s\ninstructor: %s\ncompleted:  %s\ngrade:      %s\nscore:      %d\n",
				result.StudentName, result.CourseTitle, result.Instructor,
				result.CompletedAt.Format("2006-01-02"), result.Grade, result.FinalScore)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Lookup timeout")

	return cmd
}
