// Package logger holds the process-wide sugared zap logger shared by the
// game engine, the websocket server and the admin RPC service.
package logger

import (
	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

// Init builds the production logger. Call once at startup before anything
// logs through Log.
func Init() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}
