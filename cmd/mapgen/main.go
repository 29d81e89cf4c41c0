// mapgen interactively builds the team and problem mapping files: it pulls
// the upstream scoreboard, loads the contest package, and asks the operator
// to pair each upstream id with a package entity.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/contest-ops/ccsfeed/algotester"
	"github.com/contest-ops/ccsfeed/conf"
	"github.com/contest-ops/ccsfeed/cpkg"
)

func main() {
	configPath := flag.String("config", conf.DefaultPath(), "path to configuration file")
	flag.Parse()

	godotenv.Load()

	cfg, err := conf.Load(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	pkg, err := cpkg.Load(cfg.ContestPackagePath)
	if err != nil {
		fmt.Printf("Error loading contest package: %v\n", err)
		os.Exit(1)
	}

	fetcher := algotester.NewFetcher(
		cfg.Algotester.APIKey, cfg.Algotester.Subdomain, cfg.Algotester.ContestID)

	p := tea.NewProgram(initialModel(fetcher, cfg.Algotester.ContestID, pkg))
	final, err := p.Run()
	if err != nil {
		fmt.Printf("Error running mapper: %v\n", err)
		os.Exit(1)
	}

	m, ok := final.(model)
	if !ok || m.phase != phaseDone {
		if m.err != nil {
			fmt.Printf("Error: %v\n", m.err)
		}
		fmt.Println("Aborted, nothing written.")
		os.Exit(1)
	}

	if err := writeMapping(cfg.ProblemMappingFile,
		"# Problem mapping: Algotester problem id -> CCS problem id\n", m.problemMapping); err != nil {
		fmt.Printf("Error writing problem mapping: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d problem mappings to %s\n", len(m.problemMapping), cfg.ProblemMappingFile)

	if err := writeMapping(cfg.TeamMappingFile,
		"# Team mapping: Algotester team id -> CCS team id\n", m.teamMapping); err != nil {
		fmt.Printf("Error writing team mapping: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d team mappings to %s\n", len(m.teamMapping), cfg.TeamMappingFile)
}

func writeMapping(path, header string, mapping map[string]string) error {
	body, err := yaml.Marshal(mapping)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(header), body...), 0o644)
}
