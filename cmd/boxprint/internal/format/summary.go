// Copyright 2026 Boxprint Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const (
	maxWarningsToShow = 10 // Maximum warnings to display before truncating
)

// Error codes shared by the commands and the suggestion table.
const (
	CodeInvalidArgument      = "INVALID_ARGUMENT"
	CodeInvalidConfig        = "INVALID_CONFIG"
	CodeStructuralInput      = "STRUCTURAL_INPUT"
	CodeUnknownDevice        = "UNKNOWN_DEVICE"
	CodeFoldDegenerate       = "FOLD_DEGENERATE"
	CodeUnknownBackend       = "UNKNOWN_BACKEND"
	CodeIncompatibleArtifact = "INCOMPATIBLE_ARTIFACT"
	CodeRunFailed            = "RUN_FAILED"
)

// PrintTotalFailureSummary prints total failure with error and suggestions
// Example output:
//
//	✗ Failed to build corpus: structural input dataset/Facebook/native: missing directory
//
//	💡 Suggestions:
//	  → Check the dataset layout:  <root>/<platform>/<class>/<video>.xml
func (f *formatter) PrintTotalFailureSummary(operation string, err error, errorCode string) error {
	if f.quiet {
		return nil
	}

	if f.mode == ModeJSON {
		return f.PrintJSON(map[string]any{
			"success":    false,
			"operation":  operation,
			"error":      err.Error(),
			"error_code": errorCode,
		})
	}

	var sb strings.Builder

	errorMsg := fmt.Sprintf("✗ Failed to %s: %v", operation, err)
	if f.color {
		sb.WriteString(color.RedString("%s\n", errorMsg))
	} else {
		sb.WriteString(errorMsg + "\n")
	}

	suggestions := GetSuggestions(errorCode)
	if len(suggestions) > 0 {
		sb.WriteString("\n💡 Suggestions:\n")
		for _, s := range suggestions {
			sb.WriteString(fmt.Sprintf("  → %s\n", s))
		}
	}

	_, writeErr := f.stderr.Write([]byte(sb.String()))
	return writeErr
}

// GetSuggestions returns actionable hints based on error code
func GetSuggestions(errorCode string) []string {
	switch errorCode {
	case CodeInvalidArgument:
		return []string{
			"Show usage:                  boxprint <command> --help",
		}
	case CodeInvalidConfig:
		return []string{
			"Check the config file:       boxprint --config <file>",
			"Environment overrides use the BOXPRINT_<SECTION>_<KEY> form",
		}
	case CodeStructuralInput:
		return []string{
			"Check the dataset layout:    <root>/<platform>/<class>/<video>.xml",
			"Find gaps without parsing:   boxprint corpus check <root> --whitelist <file>",
		}
	case CodeUnknownDevice:
		return []string{
			"Add the device to the taxonomy file and pass --taxonomy.file <file>",
		}
	case CodeFoldDegenerate:
		return []string{
			"Drop the --os split or narrow --platforms so every test label is seen in training",
			"Inspect per-device counts:   boxprint corpus stats <corpus>",
		}
	case CodeUnknownBackend:
		return []string{
			"Available backends:          tree, bayes",
		}
	case CodeIncompatibleArtifact:
		return []string{
			"Rebuild the artifact with this version of boxprint",
		}
	}
	return nil
}
