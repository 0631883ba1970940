package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dplyukhin/uigc/internal/actor"
	"github.com/dplyukhin/uigc/internal/gc"
	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a GC-instrumented root actor and block until signaled",
	Long: `Serve starts an actor system with a single GC-instrumented root
actor registered, useful as a harness for embedding user-defined
GCBehaviors (outside this CLI) that drive their own reference-counted
actor trees. The root actor spawns and releases a child every few
seconds, a live demonstration of the reference-counting wiring rather
than a no-op. It blocks until SIGINT or SIGTERM, shutting down every
managed actor gracefully; a second signal forces an immediate exit.`,
	RunE: runServe,
}

// heartbeatMsg is the only payload heartbeatBehavior understands: spawn a
// fresh child, hold it briefly, then release it.
type heartbeatMsg struct {
	actor.BaseMessage
}

func (heartbeatMsg) MessageType() string { return "commands.heartbeatMsg" }

// heartbeatBehavior is a minimal GCBehavior demonstrating live
// reference-counted spawn/release under serve: each tick it spawns a
// child with no other owners, which the detector can subsequently prove
// terminated the moment the root releases it.
type heartbeatBehavior struct {
	tick int
}

func (b *heartbeatBehavior) Receive(
	gctx *actor.GCContext[heartbeatMsg, any], _ heartbeatMsg,
) fn.Result[any] {
	b.tick++
	childAddr := gc.Addr(uuid.New().String())

	childRef, _ := gctx.Spawn(childAddr, &leafBehavior{})
	log.DebugS(gctx.Context(), "serve: spawned heartbeat child",
		"tick", b.tick, "child", string(childAddr))

	gctx.Release([]gc.Refob{childRef})

	return fn.Ok[any](nil)
}

// leafBehavior is spawned and released by heartbeatBehavior; it never
// receives application traffic of its own.
type leafBehavior struct{}

func (leafBehavior) Receive(
	_ *actor.GCContext[heartbeatMsg, any], _ heartbeatMsg,
) fn.Result[any] {
	return fn.Ok[any](nil)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Each run of serve gets its own session ID so log lines from
	// concurrent invocations (or successive restarts writing to the
	// same rotated log file) can be told apart.
	sessionID := uuid.New().String()
	ctx := context.Background()
	log.InfoS(ctx, "starting actor system", "session", sessionID)

	actorSystem := actor.NewActorSystem()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), 30*time.Second,
		)
		defer cancel()

		if err := actorSystem.Shutdown(shutdownCtx); err != nil {
			log.WarnS(shutdownCtx,
				"actor system shutdown incomplete, "+
					"some goroutines may have leaked", err,
			)
		}
	}()

	gsys := actor.NewGCSystem[heartbeatMsg, any](actorSystem)
	rootRef, rootSysRef := gsys.SpawnRoot("root", &heartbeatBehavior{})
	root := actor.ExternalRef[heartbeatMsg, any](rootSysRef, rootRef)
	log.InfoS(ctx, "root actor registered", "addr", "root")

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.InfoS(runCtx,
			"received signal, initiating graceful shutdown "+
				"(send again to force exit)", "signal", sig.String(),
		)
		cancel()

		sig = <-sigCh
		log.InfoS(runCtx, "received signal again, forcing immediate exit",
			"signal", sig.String())
		os.Exit(1)
	}()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	log.InfoS(ctx, "actor system running, waiting for signal")
	for {
		select {
		case <-ticker.C:
			root.Tell(runCtx, heartbeatMsg{})
		case <-runCtx.Done():
			return nil
		}
	}
}
