package common

import (
	"database/sql"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
)

// SetupLogging installs the text handler on w (stderr when nil) at the given level.
// Unknown levels fall back to info.
func SetupLogging(w io.Writer, level string) {
	if w == nil {
		w = os.Stderr
	}
	log.SetHandler(text.New(w))
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func LogResult(msgPrefix string, r sql.Result, e error, e1 bool) {
	if e != nil {
		log.Errorf("%s: query failed: %v", msgPrefix, e)
		return
	}
	rows, err := r.RowsAffected()
	if err != nil {
		log.Errorf("%s: failed to get status of db op: %v", msgPrefix, err)
		return
	}
	if e1 && rows != 1 {
		log.Warnf("%s: Expected to affect 1 row, affected %d", msgPrefix, rows)
	}
}
