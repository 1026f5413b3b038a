package config

// Config contains the application settings read from the environment (and an optional .env file).
// Everything that describes a mailing lives next to the records file instead.
type Config struct {
	Log struct {
		Level  string `env:"LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
		Format string `env:"FORMAT" envDefault:"console" validate:"oneof=console json"`
	} `envPrefix:"LOG_"`

	// Trace prints OpenTelemetry spans of each run to stderr.
	Trace bool `env:"TRACE" envDefault:"false"`

	// TemplatesDir overrides the default <records dir>/templates.
	TemplatesDir string `env:"TEMPLATES_DIR"`
}

const EnvPrefix = "MAILMERGE_"
