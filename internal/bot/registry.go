package bot

import (
	"context"
	"fmt"
	"sort"

	"github.com/pmorrell/minder/internal/models"
)

// HandlerFunc executes one slash command for a resolved user and returns
// the reply text.
type HandlerFunc func(ctx context.Context, user *models.User, args string) (string, error)

// Command pairs a slash-command name with its handler and the help line
// shown by /help.
type Command struct {
	Name        string
	Description string
	Handler     HandlerFunc
}

// Registry holds the bot's commands in memory, indexed by command name.
type Registry struct {
	commands map[string]*Command
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
	}
}

// Register adds a command to the registry.
// Returns an error if a command with the same name is already registered.
func (r *Registry) Register(cmd *Command) error {
	if _, exists := r.commands[cmd.Name]; exists {
		return fmt.Errorf("command already registered: %s", cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	return nil
}

// Get retrieves a command by name.
func (r *Registry) Get(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// List returns all registered commands as a slice, sorted by name
// for deterministic ordering.
func (r *Registry) List() []*Command {
	commands := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		commands = append(commands, cmd)
	}

	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Name < commands[j].Name
	})

	return commands
}

// Count returns the number of registered commands.
func (r *Registry) Count() int {
	return len(r.commands)
}
