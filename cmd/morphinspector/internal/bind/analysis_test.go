package bind

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/morphinspector/morphinspector/pkg/biometric"
	"github.com/morphinspector/morphinspector/pkg/dump"
)

func curveCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "det"}
	cmd.Flags().String("out", "", "")
	cmd.Flags().Bool("force", false, "")
	cmd.Flags().Bool("watch", false, "")
	return cmd
}

func TestBindCurveOptions(t *testing.T) {
	morphs, stills := t.TempDir(), t.TempDir()

	tests := []struct {
		name     string
		setup    func(*cobra.Command)
		args     []string
		expected CurveOptions
		wantErr  error
	}{
		{
			name:  "defaults",
			setup: func(*cobra.Command) {},
			args:  []string{morphs, stills},
			expected: CurveOptions{
				Protocol: biometric.ProtocolDET,
				MorphDir: morphs,
				StillDir: stills,
			},
		},
		{
			name: "all flags set",
			setup: func(cmd *cobra.Command) {
				_ = cmd.Flags().Set("out", "det.json")
				_ = cmd.Flags().Set("force", "true")
				_ = cmd.Flags().Set("watch", "true")
			},
			args: []string{morphs, stills},
			expected: CurveOptions{
				Protocol: biometric.ProtocolDET,
				MorphDir: morphs,
				StillDir: stills,
				Out:      "det.json",
				Force:    true,
				Watch:    true,
			},
		},
		{
			name:    "missing stills dir",
			setup:   func(*cobra.Command) {},
			args:    []string{morphs, filepath.Join(stills, "nope")},
			wantErr: dump.ErrNoInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := curveCommand()
			tt.setup(cmd)

			opts, err := BindCurveOptions(cmd, biometric.ProtocolDET, tt.args)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, opts)
		})
	}

	_, err := BindCurveOptions(curveCommand(), biometric.ProtocolROC, []string{morphs})
	require.Error(t, err)
}

func TestBindStatsOptions(t *testing.T) {
	cmd := &cobra.Command{Use: "stats"}
	cmd.Flags().String("kind", "det", "")

	opts, err := BindStatsOptions(cmd, []string{"a.json", "b.json"})
	require.NoError(t, err)
	require.Equal(t, StatsOptions{Paths: []string{"a.json", "b.json"}, Protocol: biometric.ProtocolDET}, opts)

	require.NoError(t, cmd.Flags().Set("kind", "ROC"))
	opts, err = BindStatsOptions(cmd, []string{"a.json"})
	require.NoError(t, err)
	require.Equal(t, biometric.ProtocolROC, opts.Protocol)

	require.NoError(t, cmd.Flags().Set("kind", "eer"))
	_, err = BindStatsOptions(cmd, []string{"a.json"})
	require.Error(t, err)

	_, err = BindStatsOptions(cmd, nil)
	require.Error(t, err)
}

func TestBindDetailsOptions(t *testing.T) {
	dir := t.TempDir()
	cmd := &cobra.Command{Use: "details"}
	cmd.Flags().String("out", "", "")
	cmd.Flags().String("csv", "", "")
	_ = cmd.Flags().Set("csv", "details.csv")

	opts, err := BindDetailsOptions(cmd, []string{dir})
	require.NoError(t, err)
	require.Equal(t, DetailsOptions{MorphDir: dir, CSV: "details.csv"}, opts)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = BindDetailsOptions(cmd, []string{file})
	require.ErrorIs(t, err, dump.ErrNoInput)
}

func TestBindRankOptions(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{Use: "rank"}
		cmd.Flags().String("export", "", "")
		cmd.Flags().String("copy-from", "", "")
		cmd.Flags().String("dest", "", "")
		return cmd
	}
	images := t.TempDir()

	opts, err := BindRankOptions(newCmd(), []string{"details.json"})
	require.NoError(t, err)
	require.Equal(t, RankOptions{DetailsPath: "details.json"}, opts)

	cmd := newCmd()
	_ = cmd.Flags().Set("copy-from", images)
	_, err = BindRankOptions(cmd, []string{"details.json"})
	require.ErrorIs(t, err, ErrMissingDestination)

	_ = cmd.Flags().Set("dest", "ranked")
	_ = cmd.Flags().Set("export", "ranks.json")
	opts, err = BindRankOptions(cmd, []string{"details.json"})
	require.NoError(t, err)
	require.Equal(t, RankOptions{DetailsPath: "details.json", Export: "ranks.json", CopyFrom: images, Dest: "ranked"}, opts)
}

func TestBindMMPMROptions(t *testing.T) {
	dir := t.TempDir()
	opts, err := BindMMPMROptions(nil, []string{dir})
	require.NoError(t, err)
	require.Equal(t, MMPMROptions{MorphDir: dir}, opts)

	_, err = BindMMPMROptions(nil, nil)
	require.Error(t, err)
}
