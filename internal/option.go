package internal

// Command selects what Run does once the components are wired.
type Command string

const (
	// CommandBuild runs one build and returns.
	CommandBuild Command = "build"
	// CommandWatch builds, then rebuilds on every input change.
	CommandWatch Command = "watch"
	// CommandServe watches and serves the inspection API.
	CommandServe Command = "serve"
	// CommandMCP serves the catalog over MCP on stdin/stdout.
	CommandMCP Command = "mcp"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	command  Command
	showDiff bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithCommand sets the command to run. The default is CommandBuild.
func WithCommand(cmd Command) Option {
	return func(a *application) {
		a.command = cmd
	}
}

// WithShowDiff logs a source diff of every entry whose version is bumped.
func WithShowDiff(show bool) Option {
	return func(a *application) {
		a.showDiff = show
	}
}
