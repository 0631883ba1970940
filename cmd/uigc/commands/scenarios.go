package commands

import (
	"context"
	"fmt"

	"github.com/dplyukhin/uigc/internal/detector"
	"github.com/dplyukhin/uigc/internal/gc"
	"github.com/dplyukhin/uigc/internal/snapshotstore"
)

// scenario is a named, self-contained drive of the GC core that produces
// a final snapshot per participating actor and a universe describing
// which addresses the caller knows about. runScenario persists one final
// snapshot for each participant and marks root (if non-empty) as a
// receptionist before running the detector.
type scenario struct {
	name        string
	description string
	root        gc.Addr
	run         func() (snapshots map[gc.Addr]gc.Snapshot, universe map[gc.Addr]struct{})
}

// scenarios is the registry of built-in scenarios, named after the
// testable properties they exercise.
var scenarios = map[string]scenario{
	"s1-spawn-release": {
		name:        "s1-spawn-release",
		description: "A spawns B, releases it, B reaches Stop",
		run:         scenarioSpawnRelease,
	},
	"s2-self-messages": {
		name:        "s2-self-messages",
		description: "outstanding self-messages delay termination",
		run:         scenarioSelfMessages,
	},
	"s3-share-then-release": {
		name:        "s3-share-then-release",
		description: "A hands B a fabricated refob to C; all three settle and close together",
		run:         scenarioShareThenRelease,
	},
	"s4-create-release-race": {
		name:        "s4-create-release-race",
		description: "A's release reaches C before B ever uses the shared refob",
		run:         scenarioCreateReleaseRace,
	},
	"s5-cycle": {
		name:        "s5-cycle",
		description: "B and C hold live refobs into each other; neither is ever collected",
		root:        "root",
		run:         scenarioCycle,
	},
}

// runScenario executes name, persists its final snapshots, and runs the
// detector over the recorded set using the scenario's own universe.
func runScenario(
	ctx context.Context, store *snapshotstore.Store, name string,
) (map[gc.Addr]gc.Snapshot, map[gc.Addr]struct{}, error) {

	sc, ok := scenarios[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown scenario %q", name)
	}

	snapshots, universe := sc.run()

	for addr, snap := range snapshots {
		if err := store.Append(ctx, addr, 1, snap); err != nil {
			return nil, nil, fmt.Errorf(
				"record snapshot for %s: %w", addr, err,
			)
		}
	}

	if sc.root != "" {
		if err := store.PutReceptionist(ctx, sc.root); err != nil {
			return nil, nil, fmt.Errorf(
				"register receptionist %s: %w", sc.root, err,
			)
		}
	}

	receptionists, err := store.Receptionists(ctx)
	if err != nil {
		return nil, nil, err
	}

	terminated := detector.Detect(snapshots, receptionists, universe)

	return snapshots, terminated, nil
}

func scenarioSpawnRelease() (
	map[gc.Addr]gc.Snapshot, map[gc.Addr]struct{},
) {

	a := gc.NewState("A")
	childRef := a.Spawn("B")
	b := gc.NewState("B", childRef)

	releaseMsgs := a.Release([]gc.Refob{childRef})
	b.ReceiveRelease(releaseMsgs[0])

	snapshots := map[gc.Addr]gc.Snapshot{
		"A": a.Snapshot(),
		"B": b.Snapshot(),
	}
	universe := map[gc.Addr]struct{}{"A": {}, "B": {}}

	return snapshots, universe
}

func scenarioSelfMessages() (
	map[gc.Addr]gc.Snapshot, map[gc.Addr]struct{},
) {

	a := gc.NewState("A")
	childRef := a.Spawn("B")
	b := gc.NewState("B", childRef)

	selfRef := b.SelfRefob()
	var outbound []gc.AppMsg
	for i := 0; i < 3; i++ {
		msg, _ := b.Send(selfRef, i, nil)
		outbound = append(outbound, msg)
	}

	releaseMsgs := a.Release([]gc.Refob{childRef})
	b.ReceiveRelease(releaseMsgs[0])

	// Deliver only two of the three self-messages: the third stays
	// outstanding, so the recorded snapshot is not locally quiescent.
	for _, msg := range outbound[:2] {
		b.ReceiveApp(msg)
	}

	snapshots := map[gc.Addr]gc.Snapshot{
		"A": a.Snapshot(),
		"B": b.Snapshot(),
	}
	universe := map[gc.Addr]struct{}{"A": {}, "B": {}}

	return snapshots, universe
}

func scenarioShareThenRelease() (
	map[gc.Addr]gc.Snapshot, map[gc.Addr]struct{},
) {

	a := gc.NewState("A")
	refToB := a.Spawn("B")
	refToC := a.Spawn("C")
	b := gc.NewState("B", refToB)
	c := gc.NewState("C", refToC)

	shared, _ := a.CreateRef(refToC, refToB)
	appToB, _ := a.Send(refToB, "share", []gc.Refob{shared})
	b.ReceiveApp(appToB)

	releaseMsgs := a.Release([]gc.Refob{refToB, refToC})
	for _, rm := range releaseMsgs {
		switch rm.Target {
		case "B":
			b.ReceiveRelease(rm)
		case "C":
			c.ReceiveRelease(rm)
		}
	}

	bReleaseMsgs := b.Release([]gc.Refob{shared})
	c.ReceiveRelease(bReleaseMsgs[0])

	snapshots := map[gc.Addr]gc.Snapshot{
		"A": a.Snapshot(),
		"B": b.Snapshot(),
		"C": c.Snapshot(),
	}
	universe := map[gc.Addr]struct{}{"A": {}, "B": {}, "C": {}}

	return snapshots, universe
}

func scenarioCreateReleaseRace() (
	map[gc.Addr]gc.Snapshot, map[gc.Addr]struct{},
) {

	a := gc.NewState("A")
	refToB := a.Spawn("B")
	refToC := a.Spawn("C")
	b := gc.NewState("B", refToB)
	c := gc.NewState("C", refToC)

	shared, _ := a.CreateRef(refToC, refToB)
	appToB, _ := a.Send(refToB, "share", []gc.Refob{shared})

	releaseMsgs := a.Release([]gc.Refob{refToB, refToC})

	var releaseToC gc.ReleaseMsg
	for _, rm := range releaseMsgs {
		if rm.Target == "C" {
			releaseToC = rm
		}
	}

	// The release reaches C before B ever touches the shared refob.
	c.ReceiveRelease(releaseToC)

	b.ReceiveApp(appToB)
	sendMsg, _ := b.Send(shared, "hi", nil)
	c.ReceiveApp(sendMsg)

	bReleaseMsgs := b.Release([]gc.Refob{shared})
	c.ReceiveRelease(bReleaseMsgs[0])

	snapshots := map[gc.Addr]gc.Snapshot{
		"A": a.Snapshot(),
		"B": b.Snapshot(),
		"C": c.Snapshot(),
	}
	universe := map[gc.Addr]struct{}{"A": {}, "B": {}, "C": {}}

	return snapshots, universe
}

func scenarioCycle() (
	map[gc.Addr]gc.Snapshot, map[gc.Addr]struct{},
) {

	root := gc.NewState("root")
	refToB := root.Spawn("B")
	refToC := root.Spawn("C")
	b := gc.NewState("B", refToB)
	c := gc.NewState("C", refToC)

	bToC, _ := root.CreateRef(refToC, refToB)
	cToB, _ := root.CreateRef(refToB, refToC)

	msgToB, _ := root.Send(refToB, "share", []gc.Refob{bToC})
	msgToC, _ := root.Send(refToC, "share", []gc.Refob{cToB})
	b.ReceiveApp(msgToB)
	c.ReceiveApp(msgToC)

	releaseMsgs := root.Release([]gc.Refob{refToB, refToC})
	for _, rm := range releaseMsgs {
		switch rm.Target {
		case "B":
			b.ReceiveRelease(rm)
		case "C":
			c.ReceiveRelease(rm)
		}
	}

	snapshots := map[gc.Addr]gc.Snapshot{
		"B": b.Snapshot(),
		"C": c.Snapshot(),
	}
	universe := map[gc.Addr]struct{}{"root": {}, "B": {}, "C": {}}

	return snapshots, universe
}
