package record

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/certledger/chain-service/internal/certificate"
	"github.com/certledger/chain-service/internal/config"
	"github.com/certledger/chain-service/internal/service"
)

// New 运维用证书上链命令
// 正常路径由平台的 Web 层调用提交引擎，这个命令用于补录和排障
func New() *cobra.Command {
	var (
		number     string
		student    string
		wallet     string
		course     string
		instructor string
		completed  string
		grade      string
		score      float64
		hours      float64
		lessons    uint64
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Records a course certificate on the ledger and waits for confirmation",
		Run: func(cmd *cobra.Command, args []string) {
			completedAt, err := time.Parse("2006-01-02", completed)
			if err != nil {
				log.Error().Err(err).Str("completed", completed).Msg("Invalid completion date, expected YYYY-MM-DD")
				os.Exit(1)
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			components, err := service.New(ctx, config.DefaultServiceConfigFromEnv())
			if err != nil {
				log.Error().Err(err).Msg("Failed to assemble components")
				os.Exit(1)
			}

			outcome, err := components.Engine.RecordCertificate(ctx, &certificate.Request{
				CertificateNumber: number,
				StudentName:       student,
				StudentWallet:     wallet,
				CourseTitle:       course,
				Instructor:        instructor,
				CompletedAt:       completedAt,
				Grade:             grade,
				FinalScore:        score,
				TotalHours:        hours,
				TotalLessons:      lessons,
			})
			if err != nil {
				log.Error().Err(err).Str("certificate_number", number).Msg("Failed to record certificate")
				os.Exit(1)
			}

			fmt.Printf("recorded: tx=%s block=%d gasUsed=%d cost=%s wei\n",
				outcome.TxHash, outcome.BlockNumber, outcome.GasUsed, outcome.Cost.String())
		},
	}

	cmd.Flags().StringVar(&number, "number", "", "Certificate number (unique business key)")
	cmd.Flags().StringVar(&student, "student", "", "Student name")
	cmd.Flags().StringVar(&wallet, "wallet", "", "Student wallet address or placeholder")
	cmd.Flags().StringVar(&course, "course", "", "Course title")
	cmd.Flags().StringVar(&instructor, "instructor", "", "Instructor name")
	cmd.Flags().StringVar(&completed, "completed", "", "Completion date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&grade, "grade", "", "Grade")
	cmd.Flags().Float64Var(&score, "score", 0, "Final score (truncated to integer on chain)")
	cmd.Flags().Float64Var(&hours, "hours", 0, "Total course hours (truncated to integer on chain)")
	cmd.Flags().Uint64Var(&lessons, "lessons", 0, "Total lessons")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall timeout including receipt wait")

	_ = cmd.MarkFlagRequired("number")
	_ = cmd.MarkFlagRequired("student")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("completed")

	return cmd
}
