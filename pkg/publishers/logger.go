package publishers

import "github.com/samvad-hq/churl/pkg/httpclient"

// Logger is the logging surface publishers rely on; it matches the client's.
type Logger = httpclient.Logger

type noopLogger = httpclient.NopLogger

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
