package core

import (
	"strings"
	"testing"
)

func TestWaiterConfig_Validate(t *testing.T) {
	t.Parallel()

	pool := NewPool(1)
	t.Cleanup(pool.Close)

	tests := map[string]struct {
		cfg     WaiterConfig
		wantErr string
	}{
		"valid": {
			cfg: WaiterConfig{Pool: pool},
		},
		"missing pool": {
			cfg:     WaiterConfig{},
			wantErr: "pool must not be nil",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}
