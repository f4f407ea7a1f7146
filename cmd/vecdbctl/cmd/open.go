package cmd

import (
	"github.com/Aman-CERP/vecdb/internal/vecdb/facade"
)

// openDatabase opens the façade at the --dir flag and a fresh logger,
// returning a cleanup function that flushes logging. Callers are
// responsible for calling db.Close() (or db.Save()) themselves.
func openDatabase() (*facade.Database, func(), error) {
	logger, loggingCleanup, err := newLogger()
	if err != nil {
		return nil, nil, err
	}

	db, err := facade.Open(dbDir, logger)
	if err != nil {
		loggingCleanup()
		return nil, nil, err
	}

	return db, loggingCleanup, nil
}
