// Command hqtsdemo drives an HQTS pipeline from a YAML policy file,
// injecting a burst of synthetic packets and reporting what the
// scheduler chose to transmit and drop. Built with
// github.com/spf13/cobra for the CLI surface and github.com/google/uuid
// to tag each run, following the CLI/tagging idiom used elsewhere in
// this dependency pack.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"hqts/aqm"
	"hqts/classifier"
	"hqts/flowtable"
	"hqts/packet"
	"hqts/pipeline"
	"hqts/policy"
	"hqts/scheduler"
	"hqts/shaper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("hqtsdemo failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var numPackets int

	root := &cobra.Command{
		Use:   "hqtsdemo",
		Short: "Run a synthetic packet burst through an HQTS pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(configPath, numPackets)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to a policy YAML file")
	root.Flags().IntVarP(&numPackets, "packets", "n", 20, "number of synthetic packets to inject")
	root.MarkFlagRequired("config")
	return root
}

// weightForLevel returns the weight of the first policy configured at
// priority level i, or 1 if none is configured there or its weight is 0.
func weightForLevel(cfg *Config, level int) uint32 {
	for _, pc := range cfg.Policies {
		if int(pc.PriorityLevel) == level && pc.Weight > 0 {
			return pc.Weight
		}
	}
	return 1
}

// buildScheduler selects the scheduling discipline named by
// cfg.Scheduler, building one queue/flow per priority level so packets
// stamped by the shaper (pkt.Priority) always resolve to a configured
// queue regardless of which discipline is chosen. An empty value falls
// back to strict priority, matching the original's default discipline;
// an unknown value is an error.
func buildScheduler(cfg *Config, levels int) (scheduler.Scheduler, error) {
	switch cfg.Scheduler {
	case "wrr":
		configs := make([]scheduler.WRRQueueConfig, levels)
		for i := range configs {
			configs[i] = scheduler.WRRQueueConfig{
				ID:        packet.QueueID(i),
				Weight:    weightForLevel(cfg, i),
				AQMParams: defaultAQMParams(),
			}
		}
		return scheduler.NewWRR(configs)
	case "drr":
		configs := make([]scheduler.DRRQueueConfig, levels)
		for i := range configs {
			configs[i] = scheduler.DRRQueueConfig{
				ID:           packet.QueueID(i),
				QuantumBytes: weightForLevel(cfg, i) * 512,
				AQMParams:    defaultAQMParams(),
			}
		}
		return scheduler.NewDRR(configs)
	case "hfsc":
		configs := make([]scheduler.HFSCFlowConfig, levels)
		for i := range configs {
			configs[i] = scheduler.HFSCFlowConfig{
				ID:          packet.FlowID(i),
				LinkShareSC: scheduler.ServiceCurve{RateBps: uint64(weightForLevel(cfg, i)) * 100_000},
			}
		}
		return scheduler.NewHFSC(configs, uint64(cfg.LinkBandwidthBps))
	case "strict_priority", "":
		queueParams := make([]aqm.Parameters, levels)
		for i := range queueParams {
			queueParams[i] = defaultAQMParams()
		}
		return scheduler.NewStrictPriority(queueParams)
	default:
		return nil, fmt.Errorf("hqtsdemo: unknown scheduler %q", cfg.Scheduler)
	}
}

func defaultAQMParams() aqm.Parameters {
	return aqm.Parameters{
		MinThresholdBytes:  10_000,
		MaxThresholdBytes:  50_000,
		MaxProbability:     0.1,
		EWMAWeight:         0.5,
		QueueCapacityBytes: 200_000,
	}
}

func runDemo(configPath string, numPackets int) error {
	runID := uuid.New()
	logger := slog.Default().With("run_id", runID.String())

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	store, err := BuildStore(cfg)
	if err != nil {
		return err
	}

	levels := cfg.NumPriorityLevels
	if levels == 0 {
		levels = 8
	}
	sched, err := buildScheduler(cfg, levels)
	if err != nil {
		return fmt.Errorf("hqtsdemo: building scheduler: %w", err)
	}

	flows := flowtable.NewTable()
	defaultPolicy := policy.ID(cfg.Policies[0].ID)
	classify := classifier.New(flows, defaultPolicy, 0)
	shape := shaper.New(store)
	pl := pipeline.New(classify, flows, shape, sched)

	pacer := pipeline.NewOutputPacer(cfg.LinkBandwidthBps, cfg.LinkBurstBytes)

	logger.Info("starting demo run", "packets", numPackets, "policies", len(cfg.Policies))

	tuples := []classifier.FiveTuple{
		{SourceIP: 1, DestIP: 100, SourcePort: 1234, DestPort: 80, Protocol: 6},
		{SourceIP: 2, DestIP: 100, SourcePort: 5678, DestPort: 443, Protocol: 6},
	}
	for i := 0; i < numPackets; i++ {
		tuple := tuples[i%len(tuples)]
		if err := pl.HandleIncomingPacket(tuple, 512, nil); err != nil {
			logger.Error("packet handling failed", "error", err)
		}
	}

	sent := 0
	now := time.Now()
	for {
		pkt, err := pl.NextPacketToTransmit()
		if err != nil {
			logger.Error("dequeue failed", "error", err)
			break
		}
		if pkt.IsSentinel() {
			break
		}
		delay := pacer.Reserve(now, int(pkt.LengthBytes))
		logger.Info("transmitting packet",
			"flow_id", pkt.FlowID,
			"length_bytes", pkt.LengthBytes,
			"priority", pkt.Priority,
			"conformance", pkt.Conformance,
			"pacing_delay", delay,
		)
		sent++
	}

	logger.Info("demo run complete", "sent", sent, "dropped", pl.PacketsDropped())
	return nil
}
