package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/vecdb/internal/vecdb/tui"
)

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse <collection>",
		Short: "Open an interactive browser for a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isInteractive() {
				return fmt.Errorf("browse requires an interactive terminal")
			}

			db, cleanup, err := openDatabase()
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := db.Get(args[0])
			if err != nil {
				return err
			}

			if err := tui.Run(c); err != nil {
				return err
			}
			return db.Save()
		},
	}
	return cmd
}
