package main

import (
	"log/slog"

	"github.com/sevlyar/go-daemon"
)

// daemonize перезапускает процесс в фоне. В родительском процессе возвращает child=false,
// и он должен завершиться. В дочернем процессе release освобождает PID-файл.
func daemonize(pidFile, logFile string) (child bool, release func(), err error) {
	cntxt := &daemon.Context{
		PidFileName: pidFile,
		PidFilePerm: 0644,
		LogFileName: logFile,
		LogFilePerm: 0640,
		WorkDir:     "./",
		Umask:       027,
	}

	d, err := cntxt.Reborn()
	if err != nil {
		return false, nil, err
	}
	if d != nil {
		slog.Info("Server started in background", "pid", d.Pid, "pid_file", pidFile)
		return false, nil, nil
	}

	return true, func() {
		if err := cntxt.Release(); err != nil {
			slog.Warn("Failed to release pid file", "error", err)
		}
	}, nil
}
