package config

import (
	"flag"
	"os"

	"github.com/securepass/vault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the vault server (default from Config)
//	-x string   export directory name (default from Config)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the vault server")
	fs.StringVar(&cfg.ExportDir, "x", cfg.ExportDir, "export directory name")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
