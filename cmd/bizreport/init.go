package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nao1215/bizreport/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/bizreport.yaml
var settingsTemplate []byte

// ErrSettingsExist is returned when the settings file is already there and
// replacing it was not requested.
var ErrSettingsExist = errors.New("settings file already exists")

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the default report limits",
		Long: `Init writes a commented settings file holding every report limit and
the professional ID prefix at their default values.

By default the file is .bizreport in the current directory, the first place
an analysis looks for settings. With --global it goes to the XDG config
directory and applies wherever bizreport runs.

Examples:
  # Write .bizreport here
  bizreport init

  # Write the per-user settings file
  bizreport init --global

  # Print the template to merge it by hand
  bizreport init --stdout

  # Replace an existing file
  bizreport init -f -o team.yaml`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Settings file to write")
	cmd.Flags().BoolP("global", "g", false,
		"Write the settings file to the XDG config directory")
	cmd.Flags().Bool("stdout", false,
		"Print the template instead of writing a file")
	cmd.Flags().BoolP("force", "f", false,
		"Replace an existing settings file")
	cmd.MarkFlagsMutuallyExclusive("output", "global", "stdout")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}
	if toStdout {
		_, err := cmd.OutOrStdout().Write(settingsTemplate)
		return err
	}

	path, err := settingsPath(cmd)
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if err := writeSettings(path, force); err != nil {
		if errors.Is(err, ErrSettingsExist) {
			return fmt.Errorf("%w: %s (use -f to replace it)", err, path)
		}
		return err
	}

	return describeSettings(cmd.OutOrStdout(), path)
}

// settingsPath returns the file selected by --global or --output.
func settingsPath(cmd *cobra.Command) (string, error) {
	global, err := cmd.Flags().GetBool("global")
	if err != nil {
		return "", err
	}
	if global {
		return config.XDGConfigFile(), nil
	}
	return cmd.Flags().GetString("output")
}

// writeSettings writes the template to path, creating missing directories.
// Unless force is set an existing file is kept and ErrSettingsExist is
// returned.
func writeSettings(path string, force bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	mode := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		mode = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	f, err := os.OpenFile(path, mode, 0600) //nolint:gosec // User-provided settings path is intentional
	if errors.Is(err, fs.ErrExist) {
		return ErrSettingsExist
	}
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}

	if _, err := f.Write(settingsTemplate); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return f.Close()
}

// describeSettings loads the written file back and lists the limits an
// analysis will use with it.
func describeSettings(out io.Writer, path string) error {
	file, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("written settings file does not load: %w", err)
	}
	limits := file.Apply(config.DefaultLimits())

	fmt.Fprintf(out, "Wrote %s\n\n", path)
	fmt.Fprintf(out, "  limits.sample         %d records listed by id and name\n", limits.Sample)
	fmt.Fprintf(out, "  limits.topCategories  %d industries and neighborhoods\n", limits.TopCategories)
	fmt.Fprintf(out, "  limits.duplicates     %d duplicated names\n", limits.Duplicates)
	fmt.Fprintf(out, "  limits.keys           %d first-record keys\n", limits.Keys)
	fmt.Fprintf(out, "  limits.ages           %d business ages\n", limits.Ages)
	fmt.Fprintf(out, "  idPrefix              %q\n", limits.IDPrefix)
	return nil
}
