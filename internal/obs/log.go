// Package obs provides the service observability surface: a shared
// JSON-line logger, Prometheus HTTP and domain metrics, and build info.
package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

var (
	logOnce sync.Once
	logOut  *log.Logger
)

// Logger returns the process-wide logger. Every line it emits is a
// single JSON object on stdout.
func Logger() *log.Logger {
	logOnce.Do(func() {
		logOut = log.New(os.Stdout, "", 0)
	})
	return logOut
}

// LogRequest marshals entry as one JSON line. Entries that fail to
// marshal are replaced with a fixed error line rather than dropped.
func LogRequest(entry map[string]any) {
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"level":"error","msg":"log marshal failed"}`)
		return
	}
	Logger().Println(string(data))
}
