package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	var dropCollection bool

	cmd := &cobra.Command{
		Use:   "delete <collection> [id]",
		Short: "Tombstone a single id, or drop an entire collection with --collection",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cleanup, err := openDatabase()
			if err != nil {
				return err
			}
			defer cleanup()

			if dropCollection {
				removed, err := db.Delete(args[0])
				if err != nil {
					return err
				}
				if !removed {
					fmt.Printf("collection %q did not exist\n", args[0])
					return nil
				}
				fmt.Printf("dropped collection %q\n", args[0])
				return nil
			}

			if len(args) != 2 {
				return fmt.Errorf("id is required unless --collection is set")
			}
			id, err := parseUint64(args[1], "id")
			if err != nil {
				return err
			}

			c, err := db.Get(args[0])
			if err != nil {
				return err
			}
			removed, err := c.Delete(id)
			if err != nil {
				return err
			}
			if err := db.Save(); err != nil {
				return err
			}

			if removed {
				fmt.Printf("deleted id %d from %q\n", id, args[0])
			} else {
				fmt.Printf("id %d was not present in %q\n", id, args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dropCollection, "collection", false, "delete the entire collection instead of a single id")
	return cmd
}
