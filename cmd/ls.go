package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/vivarium/internal/logging"
)

var lsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List all projects holding a slot",
	Args:    cobra.NoArgs,
	RunE:    runLs,
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	claims, err := manager().List()
	if err != nil {
		return err
	}

	if len(claims) == 0 {
		logInfo("No projects set up. Run `vivarium setup` in a project directory.")
		return nil
	}

	t := newTable("INDEX", "PROJECT", "POSTGRES", "REDIS", "S3", "FRONTEND", "BACKEND", "ROOT")
	for _, c := range claims {
		t.Row(
			strconv.Itoa(c.Index),
			c.ProjectName,
			formatPort(c.Ports.Postgres),
			formatPort(c.Ports.Redis),
			formatPort(c.Ports.S3),
			formatPort(c.Ports.Frontend),
			formatPort(c.Ports.Backend),
			c.ProjectRoot,
		)
	}

	fmt.Fprintln(logging.Stdout(), t.Render())
	return nil
}
