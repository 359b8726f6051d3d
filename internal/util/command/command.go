package command

import (
	"github.com/spf13/cobra"
)

// NewSubcommandGroup 创建一个纯分组命令：自身不可执行，只承载子命令
func NewSubcommandGroup(use string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use: use,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	for _, sub := range subcommands {
		cmd.AddCommand(sub)
	}

	return cmd
}
