package cmd

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/rodgetech/blurhash-demo/internal/config"
)

// profileCmd parses args against a fresh command carrying the build
// profile flags, restoring the package-level flag variables afterwards.
func profileCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	saved := []any{buildProfile, buildX, buildY, cfg}
	t.Cleanup(func() {
		buildProfile = saved[0].(string)
		buildX = saved[1].(int)
		buildY = saved[2].(int)
		cfg = saved[3].(*config.Config)
	})

	c := &cobra.Command{Use: "t"}
	c.Flags().StringVarP(&buildProfile, "profile", "p", "default", "")
	c.Flags().IntVarP(&buildX, "components-x", "x", 0, "")
	c.Flags().IntVarP(&buildY, "components-y", "y", 0, "")
	if err := c.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	cfg = config.Default()
	cfg.Codec.ComponentsX, cfg.Codec.ComponentsY = 5, 2
	cfg.Codec.Punch = 1.5
	cfg.Codec.MaxDim = 48
	return c
}

func TestBuildProfileFor(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantX, wantY int
		wantPunch   float64
		wantMaxDim  int
	}{
		{"config applies without --profile", nil, 5, 2, 1.5, 48},
		{"flags override config", []string{"-x", "7"}, 7, 2, 1.5, 48},
		{"explicit profile wins over config", []string{"--profile", "minimal"}, 3, 3, 1, 32},
		{"auto keeps a single axis", []string{"--profile", "auto", "-x", "6"}, 6, 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prof := buildProfileFor(profileCmd(t, tt.args...))
			if prof.ComponentsX != tt.wantX || prof.ComponentsY != tt.wantY {
				t.Errorf("components %dx%d, want %dx%d", prof.ComponentsX, prof.ComponentsY, tt.wantX, tt.wantY)
			}
			if tt.wantMaxDim != 0 && (prof.Punch != tt.wantPunch || prof.MaxDim != tt.wantMaxDim) {
				t.Errorf("punch %g max-dim %d, want %g %d", prof.Punch, prof.MaxDim, tt.wantPunch, tt.wantMaxDim)
			}
		})
	}

	prof := buildProfileFor(profileCmd(t, "--profile", "auto", "-x", "6"))
	if x, y := prof.Grid(100, 400); x != 6 || y != 4 {
		t.Errorf("auto -x 6 on a tall image: %dx%d", x, y)
	}
}
