package ipc

import (
	"fmt"

	"github.com/nstehr/prospector/model"
)

// Command type constants understood by the host.
const (
	CommandMove    = "move"
	CommandConvert = "convert"
	CommandSpawn   = "spawn"
)

// Command is one order for the turn. Spawn orders carry no unit.
type Command struct {
	Type      string `json:"type"`
	UnitID    int    `json:"unitId,omitempty"`
	Direction string `json:"direction,omitempty"` // wire letter, moves only
}

func MoveCommand(unitID int, d model.Direction) Command {
	return Command{Type: CommandMove, UnitID: unitID, Direction: d.String()}
}

// Dir parses the wire letter back; non-moves are Still.
func (c Command) Dir() model.Direction {
	return model.ParseDirection(c.Direction)
}

func ConvertCommand(unitID int) Command {
	return Command{Type: CommandConvert, UnitID: unitID}
}

func SpawnCommand() Command {
	return Command{Type: CommandSpawn}
}

// String renders the host's text form: "m <id> <dir>", "c <id>" or "g".
func (c Command) String() string {
	switch c.Type {
	case CommandMove:
		return fmt.Sprintf("m %d %s", c.UnitID, c.Direction)
	case CommandConvert:
		return fmt.Sprintf("c %d", c.UnitID)
	case CommandSpawn:
		return "g"
	}
	return ""
}

// CommandBatch is the reply to a turn message.
type CommandBatch struct {
	Turn     int       `json:"turn"`
	Commands []Command `json:"commands"`
}
