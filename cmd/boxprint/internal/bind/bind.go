// Package bind extracts and validates command options from cobra flags.
package bind

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/boxprint/boxprint/pkg/experiment"
)

// ErrInvalidOption marks a flag combination rejected before any work starts.
var ErrInvalidOption = errors.New("invalid option")

// Vocabulary source names accepted by --vocabulary.
const (
	VocabularyFull   = "full"
	VocabularyRatio  = "ratio"
	VocabularyStored = "stored"
)

// BuildOptions contains validated options for the corpus build command
type BuildOptions struct {
	Root       string
	Whitelist  string
	OnlyDevice string
	Name       string
	Output     string
}

// BindBuildOptions extracts corpus build flags from the command
func BindBuildOptions(cmd *cobra.Command, args []string) (BuildOptions, error) {
	whitelist, _ := cmd.Flags().GetString("whitelist")
	onlyDevice, _ := cmd.Flags().GetString("only-device")
	name, _ := cmd.Flags().GetString("name")
	output, _ := cmd.Flags().GetString("out")

	if len(args) != 1 || args[0] == "" {
		return BuildOptions{}, fmt.Errorf("%w: dataset root is required", ErrInvalidOption)
	}
	if whitelist == "" {
		return BuildOptions{}, fmt.Errorf("%w: --whitelist is required", ErrInvalidOption)
	}
	if name == "" && output == "" {
		return BuildOptions{}, fmt.Errorf("%w: one of --name or --out is required", ErrInvalidOption)
	}

	return BuildOptions{
		Root:       args[0],
		Whitelist:  whitelist,
		OnlyDevice: onlyDevice,
		Name:       name,
		Output:     output,
	}, nil
}

// TrainOptions contains validated options for the train command
type TrainOptions struct {
	Corpus     string
	Rule       experiment.LabelRule
	Vocabulary string
	RatioDir   string
	Output     string
}

// BindTrainOptions extracts and validates train flags from the command
func BindTrainOptions(cmd *cobra.Command, args []string) (TrainOptions, error) {
	ruleName, _ := cmd.Flags().GetString("rule")
	useOS, _ := cmd.Flags().GetBool("os")
	platforms, _ := cmd.Flags().GetStringSlice("platforms")
	vocabulary, _ := cmd.Flags().GetString("vocabulary")
	ratioDir, _ := cmd.Flags().GetString("ratios")
	output, _ := cmd.Flags().GetString("out")

	if len(args) != 1 || args[0] == "" {
		return TrainOptions{}, fmt.Errorf("%w: corpus is required", ErrInvalidOption)
	}
	kind, err := experiment.ParseKind(ruleName)
	if err != nil {
		return TrainOptions{}, fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	if !slices.Contains([]string{VocabularyFull, VocabularyRatio, VocabularyStored}, vocabulary) {
		return TrainOptions{}, fmt.Errorf("%w: --vocabulary %q (want full, ratio or stored)", ErrInvalidOption, vocabulary)
	}
	if ratioDir != "" && vocabulary != VocabularyStored {
		return TrainOptions{}, fmt.Errorf("%w: --ratios only applies to --vocabulary stored", ErrInvalidOption)
	}

	return TrainOptions{
		Corpus:     args[0],
		Rule:       experiment.LabelRule{Kind: kind, UseOS: useOS, Platforms: platforms},
		Vocabulary: vocabulary,
		RatioDir:   ratioDir,
		Output:     output,
	}, nil
}
