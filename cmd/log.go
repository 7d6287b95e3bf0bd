package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent repository actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, err := openService(getProject())
		if err != nil {
			return err
		}
		defer svc.Store().Close()

		repo, err := svc.Store().Repository()
		if err != nil {
			return err
		}
		actions, err := svc.Store().Actions(logLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if repo.URL == "" {
			fmt.Fprintln(out, "REPOSITORY (none)")
		} else {
			fmt.Fprintf(out, "REPOSITORY %s r%d\n", repo.URL, repo.Revision)
		}
		for _, a := range actions {
			fmt.Fprintf(out, "%s  %-7s %s\n", a.CreatedAt.Local().Format("2006-01-02 15:04:05"), a.Action, a.Detail)
		}
		return nil
	},
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "number of actions to show")
	rootCmd.AddCommand(logCmd)
}
