// Config loading for the hqtsdemo CLI: a YAML policy tree plus scheduler
// selection, parsed with gopkg.in/yaml.v3 the way the rest of this pack's
// config-driven services do.
package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"hqts/hqerr"
	"hqts/policy"
)

// PolicyConfig is the YAML shape of a single ShapingPolicy.
type PolicyConfig struct {
	ID                  uint64 `yaml:"id"`
	ParentID            uint64 `yaml:"parent_id"`
	Name                string `yaml:"name"`
	CommittedRateBps    uint64 `yaml:"committed_rate_bps"`
	PeakRateBps         uint64 `yaml:"peak_rate_bps"`
	CommittedBurstBytes uint64 `yaml:"committed_burst_bytes"`
	ExcessBurstBytes    uint64 `yaml:"excess_burst_bytes"`
	Algorithm           string `yaml:"algorithm"`
	Weight              uint32 `yaml:"weight"`
	PriorityLevel       uint8  `yaml:"priority_level"`
	DropOnRed           bool   `yaml:"drop_on_red"`
	TargetPriorityGreen uint8  `yaml:"target_priority_green"`
	TargetPriorityYellow uint8 `yaml:"target_priority_yellow"`
	TargetPriorityRed   uint8  `yaml:"target_priority_red"`
}

// Config is the top-level demo configuration file.
type Config struct {
	LinkBandwidthBps int            `yaml:"link_bandwidth_bps"`
	LinkBurstBytes   int            `yaml:"link_burst_bytes"`
	Scheduler        string         `yaml:"scheduler"`
	NumPriorityLevels int           `yaml:"num_priority_levels"`
	Policies         []PolicyConfig `yaml:"policies"`
}

// LoadConfig reads and parses a YAML config file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hqtsdemo: reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("hqtsdemo: %w: parsing config: %v", hqerr.ErrConfigInvalid, err)
	}
	if len(cfg.Policies) == 0 {
		return nil, fmt.Errorf("hqtsdemo: %w: config defines no policies", hqerr.ErrConfigInvalid)
	}
	return &cfg, nil
}

func algorithmFromString(s string) (policy.Algorithm, error) {
	switch s {
	case "wfq":
		return policy.WFQ, nil
	case "wrr":
		return policy.WRR, nil
	case "strict_priority":
		return policy.StrictPriority, nil
	case "drr":
		return policy.DRR, nil
	case "hfsc":
		return policy.HFSC, nil
	default:
		return 0, fmt.Errorf("hqtsdemo: %w: unknown algorithm %q", hqerr.ErrConfigInvalid, s)
	}
}

// BuildStore constructs a policy.Store from the config's policy list.
func BuildStore(cfg *Config) (*policy.Store, error) {
	store := policy.NewStore()
	for _, pc := range cfg.Policies {
		algo, err := algorithmFromString(pc.Algorithm)
		if err != nil {
			return nil, err
		}
		p := policy.New(
			policy.ID(pc.ID), policy.ID(pc.ParentID), pc.Name,
			pc.CommittedRateBps, pc.PeakRateBps, pc.CommittedBurstBytes, pc.ExcessBurstBytes,
			algo, pc.Weight, policy.Priority(pc.PriorityLevel),
		)
		p.DropOnRed = pc.DropOnRed
		p.TargetPriorityGreen = pc.TargetPriorityGreen
		p.TargetPriorityYellow = pc.TargetPriorityYellow
		p.TargetPriorityRed = pc.TargetPriorityRed
		if err := store.Insert(p); err != nil {
			return nil, fmt.Errorf("hqtsdemo: policy %q: %w", pc.Name, err)
		}
	}
	return store, nil
}
