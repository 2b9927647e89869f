package config

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	// reloadMu prevents concurrent reload attempts
	reloadMu sync.Mutex

	// signalMu protects signalChan, stopChan, and doneChan
	signalMu sync.Mutex

	signalChan chan os.Signal
	stopChan   chan struct{}
	doneChan   chan struct{}
)

// SetupSignalHandler starts a goroutine that listens for SIGHUP and triggers
// a config reload. A SIGHUP arriving while a reload is in flight is ignored.
// Safe to call multiple times; subsequent calls stop the previous handler.
func SetupSignalHandler() {
	signalMu.Lock()
	defer signalMu.Unlock()

	if stopChan != nil {
		close(stopChan)
		localDone := doneChan
		signalMu.Unlock()
		<-localDone
		signalMu.Lock()
	}

	signalChan = make(chan os.Signal, 1)
	stopChan = make(chan struct{})
	doneChan = make(chan struct{})

	localSignalChan := signalChan
	localStopChan := stopChan
	localDoneChan := doneChan

	signal.Notify(localSignalChan, syscall.SIGHUP)

	go func() {
		defer close(localDoneChan)
		for {
			select {
			case <-localSignalChan:
				if reloadMu.TryLock() {
					slog.Info("received SIGHUP; reloading config")
					_ = Reload() // error logged internally, previous config retained
					reloadMu.Unlock()
				} else {
					slog.Debug("SIGHUP received during reload; ignoring")
				}
			case <-localStopChan:
				signal.Stop(localSignalChan)
				return
			}
		}
	}()
}

// StopSignalHandler stops the signal handler goroutine and waits for it to
// exit.
func StopSignalHandler() {
	signalMu.Lock()

	if stopChan == nil {
		signalMu.Unlock()
		return
	}

	close(stopChan)
	stopChan = nil
	localDone := doneChan
	doneChan = nil
	signalMu.Unlock()

	<-localDone
}
