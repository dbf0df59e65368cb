package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arzg/nunitius/internal/config"
	"github.com/arzg/nunitius/internal/model"
)

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, config.Defaults().Validate())
}

func TestValidateRejectsBadChannelCapacity(t *testing.T) {
	cfg := config.Defaults()
	cfg.ChannelCapacity = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownColor(t *testing.T) {
	cfg := config.Defaults()
	cfg.Color = model.Color("chartreuse")
	require.Error(t, cfg.Validate())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := config.Defaults()
	cfg.Nickname = "bob"
	cfg.Color = model.ColorCyan

	require.NoError(t, config.Save(path, cfg))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestWriteDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, config.WriteDefaultConfig(path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.Defaults(), loaded)
}
