package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Print the verbatim vector stored under an id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint64(args[1], "id")
			if err != nil {
				return err
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
			vec, err := c.Get(id)
			if err != nil {
				return err
			}
			if vec == nil {
				return fmt.Errorf("id %d not found in %q", id, args[0])
			}

			parts := make([]string, len(vec))
			for i, v := range vec {
				parts[i] = fmt.Sprintf("%g", v)
			}
			fmt.Println(strings.Join(parts, ","))
			return nil
		},
	}
	return cmd
}
