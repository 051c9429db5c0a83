package types

// Command is the closed set of operations the host serves.
// The zero value is CommandUnknown.
type Command int

const (
	CommandUnknown Command = iota
	CommandFsExists
	CommandFsReadTextFile
	CommandFsListDir
	CommandStoreGet
	CommandStoreSet
)

// Wire names.
const (
	NameFsExists       = "host.fs.exists"
	NameFsReadTextFile = "host.fs.readTextFile"
	NameFsListDir      = "host.fs.listDir"
	NameStoreGet       = "host.store.get"
	NameStoreSet       = "host.store.set"
)

// commands lists every known command in declaration order.
var commands = []Command{
	CommandFsExists,
	CommandFsReadTextFile,
	CommandFsListDir,
	CommandStoreGet,
	CommandStoreSet,
}

// ParseCommand maps a wire name to its Command. Names are matched exactly;
// anything else yields CommandUnknown.
func ParseCommand(name string) Command {
	switch name {
	case NameFsExists:
		return CommandFsExists
	case NameFsReadTextFile:
		return CommandFsReadTextFile
	case NameFsListDir:
		return CommandFsListDir
	case NameStoreGet:
		return CommandStoreGet
	case NameStoreSet:
		return CommandStoreSet
	default:
		return CommandUnknown
	}
}

// String returns the wire name, or "unknown".
func (c Command) String() string {
	switch c {
	case CommandFsExists:
		return NameFsExists
	case CommandFsReadTextFile:
		return NameFsReadTextFile
	case CommandFsListDir:
		return NameFsListDir
	case CommandStoreGet:
		return NameStoreGet
	case CommandStoreSet:
		return NameStoreSet
	default:
		return "unknown"
	}
}
