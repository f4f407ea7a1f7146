// Command vecdbctl is a CLI front-end over the embeddable vector database:
// create/insert/search/get/delete/list/info/import/browse against a
// directory-rooted database.
package main

import (
	"fmt"
	"os"

	"github.com/Aman-CERP/vecdb/cmd/vecdbctl/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
