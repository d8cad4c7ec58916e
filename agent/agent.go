package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nstehr/prospector/ipc"
	"github.com/nstehr/prospector/model"
	"github.com/nstehr/prospector/rules"
)

// Recorder persists turn results, e.g. to a replay file.
type Recorder interface {
	Record(v any) error
}

// Broadcaster fans turn results out to live observers.
type Broadcaster interface {
	Broadcast(v any)
}

// Agent owns the decision-making for a single match session.
type Agent struct {
	Session    string
	Engine     *rules.Engine
	World      *model.World
	TurnBudget time.Duration // zero means no deadline
	Recorder   Recorder
	Observer   Broadcaster

	base rules.Tuning // tuning before host constants were applied
	prev *stateSnapshot
}

func New(session string, engine *rules.Engine) *Agent {
	return &Agent{Session: session, Engine: engine, base: engine.Tuning()}
}

// HandleHello builds the world from the starting map and recompiles the rule
// set with the host's game constants.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}
	if hello.Map.Width <= 0 || hello.Map.Height <= 0 {
		return nil, fmt.Errorf("hello: invalid map size %dx%d", hello.Map.Width, hello.Map.Height)
	}

	maxTurns := hello.MaxTurns
	if maxTurns == 0 {
		maxTurns = hello.Constants.MaxTurns
	}
	a.World = model.NewWorld(hello.PlayerID, maxTurns, hello.Map)
	a.prev = nil

	tuning := a.base.ApplyConstants(hello.Constants)
	if err := a.Engine.Swap(rules.CompileTuning(tuning), tuning); err != nil {
		return nil, fmt.Errorf("recompile rules: %w", err)
	}

	slog.Info("match started",
		"session", a.Session,
		"player", hello.PlayerID,
		"map", fmt.Sprintf("%dx%d", hello.Map.Width, hello.Map.Height),
		"maxTurns", maxTurns,
		"halite", a.World.Grid.TotalHalite(),
	)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Session: a.Session})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleTurn applies the snapshot, plans the turn and replies with commands.
func (a *Agent) HandleTurn(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.World == nil {
		return nil, errors.New("turn received before hello")
	}
	var td ipc.TurnMessage
	if err := env.Decode(&td); err != nil {
		return nil, err
	}

	res := a.PlayTurn(td)

	reply, err := ipc.NewEnvelope(ipc.TypeCommands, res.Batch())
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// PlayTurn runs one full turn against the agent's world and publishes the result.
func (a *Agent) PlayTurn(td model.TurnData) TurnResult {
	start := time.Now()
	a.World.Apply(td)

	ctx := context.Background()
	if a.TurnBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.TurnBudget)
		defer cancel()
	}

	tuning := a.Engine.Tuning()
	events, snap := detectEvents(a.World, tuning, a.prev)
	a.prev = &snap
	for _, ev := range events {
		slog.Info("match event", "session", a.Session, "kind", ev.Kind, "turn", ev.Turn, "detail", ev.Detail)
	}

	res := PlayTurn(ctx, a.World, a.Engine)
	res.Session = a.Session
	res.Events = events

	slog.Info("turn planned",
		"session", a.Session,
		"turn", res.Turn,
		"units", len(res.Plans),
		"stock", res.Stock,
		"spawned", res.Spawned,
		"elapsed", time.Since(start),
	)

	if a.Recorder != nil {
		if err := a.Recorder.Record(res); err != nil {
			slog.Error("record turn", "session", a.Session, "error", err)
		}
	}
	if a.Observer != nil {
		a.Observer.Broadcast(res)
	}
	return res
}
