package pcapsight

import (
	"sync"

	"go.uber.org/zap"
)

// logger is the package-level diagnostic sink. It defaults to a no-op
// logger so that ProcessPacket stays free of observable side effects for
// callers that never configure one (spec §5: no I/O beyond the returned
// JSON string). Host applications that want decoder breadcrumbs call
// SetLogger with a real *zap.Logger.
var (
	loggerMu sync.RWMutex
	logger   = zap.NewNop().Sugar()
)

// SetLogger installs l as the package's diagnostic logger. Passing nil
// restores the no-op default.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if l == nil {
		logger = zap.NewNop().Sugar()
		return
	}
	logger = l.Sugar()
}

func currentLogger() *zap.SugaredLogger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}
