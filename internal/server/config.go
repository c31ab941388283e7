package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/wolfpit/wolfpit/internal/game"
)

// ServerConfig represents the complete server configuration.
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Match  MatchSettings  `hcl:"match,block"`
	Bots   *BotSettings   `hcl:"bots,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
	Seed     int64  `hcl:"seed,optional"`
}

// MatchSettings configures how matches are assembled and paced. All
// durations are seconds.
type MatchSettings struct {
	Packs       []string `hcl:"packs,optional"`
	RandomPacks bool     `hcl:"random_packs,optional"`
	ArchiveDir  string   `hcl:"archive_dir,optional"`

	FreeTalkSeconds     int `hcl:"free_talk_seconds,optional"`
	VoteSeconds         int `hcl:"vote_seconds,optional"`
	LastWillSeconds     int `hcl:"last_will_seconds,optional"`
	WolfChatSeconds     int `hcl:"wolf_chat_seconds,optional"`
	NightActionsSeconds int `hcl:"night_actions_seconds,optional"`
	DawnSeconds         int `hcl:"dawn_seconds,optional"`
}

// BotSettings configures automatic seat filling. With auto_fill set,
// every fresh lobby is topped up with built-in bots immediately, so a
// single human gets a full match on join.
type BotSettings struct {
	AutoFill   bool   `hcl:"auto_fill,optional"`
	NamePrefix string `hcl:"name_prefix,optional"`
}

// DefaultServerConfig returns default server configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
			LogFile:  "wolfpit-server.log",
		},
		Match: MatchSettings{
			RandomPacks:         true,
			FreeTalkSeconds:     180,
			VoteSeconds:         60,
			LastWillSeconds:     30,
			WolfChatSeconds:     90,
			NightActionsSeconds: 60,
			DawnSeconds:         20,
		},
		Bots: &BotSettings{NamePrefix: "bot"},
	}
}

// LoadServerConfig loads server configuration from an HCL file. A
// missing file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultServerConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Server.LogFile == "" {
		config.Server.LogFile = defaults.Server.LogFile
	}
	if config.Match.FreeTalkSeconds == 0 {
		config.Match.FreeTalkSeconds = defaults.Match.FreeTalkSeconds
	}
	if config.Match.VoteSeconds == 0 {
		config.Match.VoteSeconds = defaults.Match.VoteSeconds
	}
	if config.Match.LastWillSeconds == 0 {
		config.Match.LastWillSeconds = defaults.Match.LastWillSeconds
	}
	if config.Match.WolfChatSeconds == 0 {
		config.Match.WolfChatSeconds = defaults.Match.WolfChatSeconds
	}
	if config.Match.NightActionsSeconds == 0 {
		config.Match.NightActionsSeconds = defaults.Match.NightActionsSeconds
	}
	if config.Match.DawnSeconds == 0 {
		config.Match.DawnSeconds = defaults.Match.DawnSeconds
	}
	if len(config.Match.Packs) == 0 && !config.Match.RandomPacks {
		config.Match.RandomPacks = true
	}
	if config.Bots == nil {
		config.Bots = &BotSettings{}
	}
	if config.Bots.NamePrefix == "" {
		config.Bots.NamePrefix = defaults.Bots.NamePrefix
	}

	return &config, nil
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if len(c.Match.Packs) > 0 && c.Match.RandomPacks {
		return fmt.Errorf("packs and random_packs are mutually exclusive")
	}
	for _, name := range c.Match.Packs {
		if _, ok := game.PackByName(name); !ok {
			return fmt.Errorf("unknown pack: %s", name)
		}
	}
	for _, v := range []struct {
		name    string
		seconds int
	}{
		{"free_talk_seconds", c.Match.FreeTalkSeconds},
		{"vote_seconds", c.Match.VoteSeconds},
		{"last_will_seconds", c.Match.LastWillSeconds},
		{"wolf_chat_seconds", c.Match.WolfChatSeconds},
		{"night_actions_seconds", c.Match.NightActionsSeconds},
		{"dawn_seconds", c.Match.DawnSeconds},
	} {
		if v.seconds <= 0 {
			return fmt.Errorf("%s must be positive", v.name)
		}
	}
	return nil
}

// Address returns the full listen address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// MatchConfig converts the settings into the engine's match config.
func (c *ServerConfig) MatchConfig() game.MatchConfig {
	return game.MatchConfig{
		PackNames:           c.Match.Packs,
		RandomPackSelection: c.Match.RandomPacks,
		ArchiveDir:          c.Match.ArchiveDir,
		Durations: game.PhaseDurations{
			FreeTalk:     time.Duration(c.Match.FreeTalkSeconds) * time.Second,
			Vote:         time.Duration(c.Match.VoteSeconds) * time.Second,
			LastWill:     time.Duration(c.Match.LastWillSeconds) * time.Second,
			WolfChat:     time.Duration(c.Match.WolfChatSeconds) * time.Second,
			NightActions: time.Duration(c.Match.NightActionsSeconds) * time.Second,
			Dawn:         time.Duration(c.Match.DawnSeconds) * time.Second,
		},
	}
}
