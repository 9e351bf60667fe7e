package bind

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/boxprint/boxprint/pkg/experiment"
)

func buildCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "build"}
	cmd.Flags().String("whitelist", "", "")
	cmd.Flags().String("only-device", "", "")
	cmd.Flags().String("name", "", "")
	cmd.Flags().String("out", "", "")
	return cmd
}

func trainCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "train"}
	cmd.Flags().String("rule", "tamper", "")
	cmd.Flags().Bool("os", false, "")
	cmd.Flags().StringSlice("platforms", nil, "")
	cmd.Flags().String("vocabulary", "full", "")
	cmd.Flags().String("ratios", "", "")
	cmd.Flags().String("out", "", "")
	return cmd
}

func TestBindBuildOptions(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		setup   func(*cobra.Command)
		want    BuildOptions
		wantErr bool
	}{
		{
			name: "all flags set",
			args: []string{"dataset"},
			setup: func(cmd *cobra.Command) {
				_ = cmd.Flags().Set("whitelist", "ids.json")
				_ = cmd.Flags().Set("only-device", "D01")
				_ = cmd.Flags().Set("name", "vision")
			},
			want: BuildOptions{Root: "dataset", Whitelist: "ids.json", OnlyDevice: "D01", Name: "vision"},
		},
		{
			name: "explicit output",
			args: []string{"dataset"},
			setup: func(cmd *cobra.Command) {
				_ = cmd.Flags().Set("whitelist", "ids.json")
				_ = cmd.Flags().Set("out", "/tmp/c.json")
			},
			want: BuildOptions{Root: "dataset", Whitelist: "ids.json", Output: "/tmp/c.json"},
		},
		{
			name:    "missing whitelist",
			args:    []string{"dataset"},
			setup:   func(cmd *cobra.Command) { _ = cmd.Flags().Set("name", "vision") },
			wantErr: true,
		},
		{
			name: "missing destination",
			args: []string{"dataset"},
			setup: func(cmd *cobra.Command) {
				_ = cmd.Flags().Set("whitelist", "ids.json")
			},
			wantErr: true,
		},
		{
			name:    "missing root",
			setup:   func(*cobra.Command) {},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := buildCommand()
			tt.setup(cmd)
			got, err := BindBuildOptions(cmd, tt.args)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidOption)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBindTrainOptions(t *testing.T) {
	cmd := trainCommand()
	_ = cmd.Flags().Set("rule", "manipulation")
	_ = cmd.Flags().Set("os", "true")
	_ = cmd.Flags().Set("platforms", "Before-YouTube,After-YouTube")
	_ = cmd.Flags().Set("vocabulary", "stored")
	_ = cmd.Flags().Set("ratios", "/ws/ratios/vision")

	got, err := BindTrainOptions(cmd, []string{"vision"})
	require.NoError(t, err)
	require.Equal(t, TrainOptions{
		Corpus: "vision",
		Rule: experiment.LabelRule{
			Kind:      experiment.KindManipulation,
			UseOS:     true,
			Platforms: []string{"Before-YouTube", "After-YouTube"},
		},
		Vocabulary: VocabularyStored,
		RatioDir:   "/ws/ratios/vision",
	}, got)
}

func TestBindTrainOptions_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		setup func(*cobra.Command)
	}{
		{"no corpus", nil, func(*cobra.Command) {}},
		{"bad rule", []string{"c"}, func(cmd *cobra.Command) { _ = cmd.Flags().Set("rule", "colour") }},
		{"bad vocabulary", []string{"c"}, func(cmd *cobra.Command) { _ = cmd.Flags().Set("vocabulary", "all") }},
		{"ratios without stored", []string{"c"}, func(cmd *cobra.Command) { _ = cmd.Flags().Set("ratios", "/x") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := trainCommand()
			tt.setup(cmd)
			_, err := BindTrainOptions(cmd, tt.args)
			require.ErrorIs(t, err, ErrInvalidOption)
		})
	}
}
