package ipc

import "github.com/nstehr/prospector/model"

// Message types exchanged with the game host.
const (
	TypeHello    = "hello"
	TypeAck      = "ack"
	TypeTurn     = "turn"
	TypeCommands = "commands"
)

// HelloMessage opens a match: who we are, how long it runs, the host's game
// constants and the full starting map.
type HelloMessage struct {
	PlayerID  int             `json:"playerId"`
	MaxTurns  int             `json:"maxTurns"`
	Constants model.Constants `json:"constants"`
	Map       model.MapData   `json:"map"`
}

// TurnMessage is one per-turn snapshot.
type TurnMessage = model.TurnData

type AckMessage struct {
	Status  string `json:"status"`
	Session string `json:"session,omitempty"`
}
