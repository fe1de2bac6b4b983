package main

import (
	"testing"

	"hqts/internal/require"
)

func TestLoadConfigParsesTestdataFile(t *testing.T) {
	cfg, err := LoadConfig("testdata/policies.yaml")
	require.NoError(t, err)
	require.Equal(t, 1, len(cfg.Policies))
	require.Equal(t, "default", cfg.Policies[0].Name)
	require.Equal(t, 10_000_000, cfg.LinkBandwidthBps)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("testdata/does-not-exist.yaml")
	require.Error(t, err)
}

func TestBuildStoreFromConfig(t *testing.T) {
	cfg, err := LoadConfig("testdata/policies.yaml")
	require.NoError(t, err)

	store, err := BuildStore(cfg)
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())
}

func TestAlgorithmFromStringRejectsUnknown(t *testing.T) {
	_, err := algorithmFromString("not-a-real-algorithm")
	require.Error(t, err)
}
