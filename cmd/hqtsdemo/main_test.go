package main

import (
	"testing"

	"hqts/internal/require"
	"hqts/scheduler"
)

func TestBuildSchedulerSelectsStrictPriorityByDefault(t *testing.T) {
	sched, err := buildScheduler(&Config{}, 4)
	require.NoError(t, err)
	_, ok := sched.(*scheduler.StrictPriority)
	require.True(t, ok, "expected *scheduler.StrictPriority")
}

func TestBuildSchedulerSelectsWRR(t *testing.T) {
	cfg := &Config{Scheduler: "wrr", Policies: []PolicyConfig{{PriorityLevel: 1, Weight: 5}}}
	sched, err := buildScheduler(cfg, 4)
	require.NoError(t, err)
	_, ok := sched.(*scheduler.WRR)
	require.True(t, ok, "expected *scheduler.WRR")
}

func TestBuildSchedulerSelectsDRR(t *testing.T) {
	cfg := &Config{Scheduler: "drr", Policies: []PolicyConfig{{PriorityLevel: 0, Weight: 2}}}
	sched, err := buildScheduler(cfg, 2)
	require.NoError(t, err)
	_, ok := sched.(*scheduler.DRR)
	require.True(t, ok, "expected *scheduler.DRR")
}

func TestBuildSchedulerSelectsHFSC(t *testing.T) {
	cfg := &Config{Scheduler: "hfsc", LinkBandwidthBps: 10_000_000}
	sched, err := buildScheduler(cfg, 3)
	require.NoError(t, err)
	_, ok := sched.(*scheduler.HFSC)
	require.True(t, ok, "expected *scheduler.HFSC")
}

func TestBuildSchedulerRejectsUnknownName(t *testing.T) {
	_, err := buildScheduler(&Config{Scheduler: "made-up"}, 2)
	require.Error(t, err)
}

func TestWeightForLevelDefaultsToOne(t *testing.T) {
	cfg := &Config{Policies: []PolicyConfig{{PriorityLevel: 0, Weight: 0}}}
	require.Equal(t, uint32(1), weightForLevel(cfg, 0))
	require.Equal(t, uint32(1), weightForLevel(cfg, 3))
}
