package ethermq

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// exit code of a process killed by sigint, what a shell reports for ctrl-c.
const exitInterrupted = 130

var (
	signalCtxOnce sync.Once          //nolint:gochecknoglobals
	signalCtx     context.Context    //nolint:gochecknoglobals
	signalCancel  context.CancelFunc //nolint:gochecknoglobals
)

// SignalHandledContext returns a context that is canceled on the first SIGINT or SIGTERM. A second
// signal exits the process without waiting for shutdown to finish. There is only one such context,
// every call returns it.
func SignalHandledContext(
	logf func(f string, a ...interface{}),
) (context.Context, context.CancelFunc) {
	signalCtxOnce.Do(func() {
		signalCtx, signalCancel = context.WithCancel(context.Background())

		sigs := make(chan os.Signal, 2) //nolint:gomnd

		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

		go handleSignals(sigs, signalCancel, logf, os.Exit)
	})

	return signalCtx, signalCancel
}

func handleSignals(
	sigs <-chan os.Signal,
	cancel context.CancelFunc,
	logf func(f string, a ...interface{}),
	exit func(code int),
) {
	sig := <-sigs
	logf("received signal %q, canceling context", sig)

	cancel()

	sig = <-sigs
	logf("received signal %q again, exiting without waiting on shutdown", sig)

	exit(exitInterrupted)
}
