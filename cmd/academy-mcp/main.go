// Command academy-mcp serves one of the course toolkits over the Model
// Context Protocol on stdio.
//
// Usage:
//
//	academy-mcp math
//	academy-mcp weather
//	academy-mcp websearch
//	academy-mcp arxiv
//	academy-mcp wiki
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/hupe1980/agentacademy/config"
	"github.com/hupe1980/agentacademy/logging"
	"github.com/hupe1980/agentacademy/mcpserver"
	"github.com/hupe1980/agentacademy/tool"
	"github.com/hupe1980/agentacademy/toolkit/arxiv"
	"github.com/hupe1980/agentacademy/toolkit/mathtool"
	"github.com/hupe1980/agentacademy/toolkit/weather"
	"github.com/hupe1980/agentacademy/toolkit/websearch"
	"github.com/hupe1980/agentacademy/toolkit/wiki"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "academy-mcp:", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) != 2 {
		return fmt.Errorf("usage: academy-mcp <math|weather|websearch|arxiv|wiki>")
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Stdout carries the MCP protocol, so logs go to stderr.
	logger := logging.NewSlogLoggerTo(os.Stderr, logging.ParseLevel(cfg.Log.Level), cfg.Log.Format, false)

	name := os.Args[1]

	tools, err := toolsFor(name, cfg)
	if err != nil {
		return err
	}

	srv, err := mcpserver.New("academy-"+name, version, tool.NewRegistry(tools...), func(o *mcpserver.Options) {
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	return srv.ServeStdio()
}

func toolsFor(name string, cfg *config.Config) ([]tool.Tool, error) {
	switch name {
	case "math":
		return mathtool.Tools(), nil
	case "weather":
		if cfg.Weather.APIKey == "" {
			return nil, fmt.Errorf("OPENWEATHER_API_KEY is required for the weather server")
		}
		return weather.NewClient(cfg.Weather.APIKey).Tools(), nil
	case "websearch":
		if cfg.Search.APIKey == "" {
			return nil, fmt.Errorf("TAVILY_API_KEY is required for the websearch server")
		}
		return websearch.NewClient(cfg.Search.APIKey).Tools(), nil
	case "arxiv":
		return arxiv.NewClient().Tools(), nil
	case "wiki":
		return wiki.NewClient().Tools(), nil
	default:
		return nil, fmt.Errorf("unknown server %q", name)
	}
}
