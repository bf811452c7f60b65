// Package config loads the wallet engine's file/flag configuration: data
// directory, chain selection, peer list, and fee defaults.
//
// It follows the teacher's own configuration-loading dependency,
// github.com/jessevdk/go-flags: a struct of tagged fields parsed first
// from an INI-style config file, then overridden by command-line flags,
// the same two-pass shape lnd/dcrlnd's own `loadConfig` uses.
package config

import (
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
	"github.com/elaspv/spvwallet/chainparams"
)

// Config holds every wallet-engine tunable that can be set from a config
// file or the command line.
type Config struct {
	DataDir string `long:"datadir" description:"Directory to store wallet state and logs"`
	LogDir  string `long:"logdir" description:"Directory to store log files"`

	Chain string `long:"chain" description:"Chain to operate on" choice:"ELA" choice:"IDChain" choice:"TokenChain"`

	Peers []string `long:"peer" description:"Persistent peer to connect to in host:port format; may be given multiple times"`

	FeePerKB uint64 `long:"feeperkb" description:"Default fee rate, in sats per kilobyte"`

	GapLimitExternal int `long:"gaplimitexternal" description:"Number of unused external addresses kept ahead of the highest referenced index"`
	GapLimitInternal int `long:"gaplimitinternal" description:"Number of unused internal (change) addresses kept ahead of the highest referenced index"`

	LogLevel string `long:"loglevel" description:"Logging level for all subsystems"`

	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
}

// DefaultConfig returns a Config pre-populated with spec §6's defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:          defaultDataDir(),
		LogDir:           "logs",
		Chain:            string(chainparams.ChainELA),
		FeePerKB:         chainparams.DefaultFeePerKB,
		GapLimitExternal: chainparams.GapLimitExternal,
		GapLimitInternal: chainparams.GapLimitInternal,
		LogLevel:         "info",
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spvwallet"
	}
	return filepath.Join(home, ".spvwallet")
}

// Load parses args (typically os.Args[1:]) into a Config seeded with
// DefaultConfig's values, reading --configfile first (if given) and
// letting explicit flags override it — the same "file then flags"
// precedence jessevdk/go-flags callers commonly implement.
func Load(args []string) (*Config, error) {
	cfg := DefaultConfig()

	preParser := flags.NewParser(cfg, flags.IgnoreUnknown)
	if _, err := preParser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.ConfigFile != "" {
		iniParser := flags.NewIniParser(flags.NewParser(cfg, flags.Default))
		if err := iniParser.ParseFile(cfg.ConfigFile); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ChainID returns the configured chain as a chainparams.ChainID. It only
// converts the value; the allowed chain names are checked when the flags
// are parsed.
func (c *Config) ChainID() chainparams.ChainID {
	return chainparams.ChainID(c.Chain)
}
