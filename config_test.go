package shapley

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, 0.05, cfg.ValueTolerance)
	require.Zero(t, cfg.MaxIterations)
	require.Equal(t, 10*time.Second, cfg.CoordinatorUpdateFrequency)
	require.Equal(t, 5*time.Second, cfg.WorkerUpdateFrequency)
	require.NoError(t, cfg.Validate())
}

func TestSetDefaults(t *testing.T) {
	cfg := Config{ValueTolerance: 0.01}
	SetDefaults(&cfg)

	require.Equal(t, 0.01, cfg.ValueTolerance)
	require.Equal(t, 10*time.Second, cfg.CoordinatorUpdateFrequency)
	require.Equal(t, 5*time.Second, cfg.WorkerUpdateFrequency)

	// SetDefaults never invents a stopping criterion.
	empty := Config{}
	SetDefaults(&empty)
	require.Zero(t, empty.ValueTolerance)
	require.Zero(t, empty.MaxIterations)
	require.ErrorIs(t, empty.Validate(), ErrNoStoppingCriterion)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "defaults are valid",
			mutate: func(_ *Config) {},
		},
		{
			name:   "budget only",
			mutate: func(c *Config) { c.ValueTolerance = 0; c.MaxIterations = 100 },
		},
		{
			name:    "no stopping criterion",
			mutate:  func(c *Config) { c.ValueTolerance = 0; c.MaxIterations = 0 },
			wantErr: ErrNoStoppingCriterion,
		},
		{
			name:    "negative tolerance",
			mutate:  func(c *Config) { c.ValueTolerance = -0.1 },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "negative budget",
			mutate:  func(c *Config) { c.MaxIterations = -1 },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "zero coordinator cadence",
			mutate:  func(c *Config) { c.CoordinatorUpdateFrequency = 0 },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "zero worker cadence",
			mutate:  func(c *Config) { c.WorkerUpdateFrequency = 0 },
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	require.NoError(t, cfg.Validate())
	require.Less(t, cfg.CoordinatorUpdateFrequency, time.Second)
	require.Less(t, cfg.WorkerUpdateFrequency, cfg.CoordinatorUpdateFrequency)
}
