package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// importRecord is one parsed line of an import file: "<id>\t<v0,v1,...>".
type importRecord struct {
	lineNo int
	id     uint64
	vector []float32
}

func newImportCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "import <collection> <file>",
		Short: "Bulk-insert id/vector pairs from a tab-separated file",
		Long: `Each line of <file> is "<id>\t<v0,v1,v2,...>". Lines are parsed
concurrently across workers, then inserted one at a time in file order —
insertion itself is never parallelized, since the index makes no guarantee
under concurrent mutation.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readLines(args[1])
			if err != nil {
				return err
			}

			records, err := parseRecordsConcurrently(lines, workers)
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

			inserted := 0
			for _, rec := range records {
				if err := c.Insert(rec.id, rec.vector); err != nil {
					return fmt.Errorf("line %d: %w", rec.lineNo, err)
				}
				inserted++
			}
			if err := db.Save(); err != nil {
				return err
			}

			fmt.Printf("imported %d vectors into %q\n", inserted, args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent parsing goroutines")
	return cmd
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return lines, nil
}

// parseRecordsConcurrently parses each line in parallel across workers
// goroutines, preserving file order in the returned slice. Parsing is
// read-only and embarrassingly parallel; the subsequent inserts are not.
func parseRecordsConcurrently(lines []string, workers int) ([]importRecord, error) {
	if workers < 1 {
		workers = 1
	}

	records := make([]importRecord, len(lines))
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			rec, err := parseImportLine(i+1, line)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func parseImportLine(lineNo int, line string) (importRecord, error) {
	parts := strings.SplitN(line, "\t", 2)
	if len(parts) != 2 {
		return importRecord{}, fmt.Errorf("line %d: expected \"<id>\\t<vector>\"", lineNo)
	}

	id, err := parseUint64(parts[0], "id")
	if err != nil {
		return importRecord{}, fmt.Errorf("line %d: %w", lineNo, err)
	}
	vec, err := parseVector(parts[1])
	if err != nil {
		return importRecord{}, fmt.Errorf("line %d: %w", lineNo, err)
	}

	return importRecord{lineNo: lineNo, id: id, vector: vec}, nil
}
