package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/tessro/station/internal/config"
	"github.com/tessro/station/internal/eq"
	"github.com/tessro/station/internal/spectrum"
	"github.com/tessro/station/internal/wizard"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing station configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, including environment overrides.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(configPath())
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Keys are section.name as in the file.

Common keys:
  defaults.volume      Startup volume (0-100)
  defaults.shuffle     Shuffle new queues (true/false)
  defaults.repeat      Repeat mode (off/all/one)
  defaults.preset      Equalizer preset (bass-boost/treble-boost/vocal/flat)
  defaults.visualizer  Spectrum mode (flame/wave/bars)
  remote.enabled       Serve the remote control with the player
  remote.addr          Remote control listen address
  tui.theme            Color theme (auto/dark/light)
  log.level            debug, info, warn or error

Examples:
  station config set defaults.volume 50
  station config set defaults.preset bass-boost`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPresetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Interactively select the startup equalizer preset",
	RunE:  runConfigPreset,
}

var configVisualizerCmd = &cobra.Command{
	Use:   "visualizer",
	Short: "Interactively select the spectrum mode",
	RunE:  runConfigVisualizer,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configShowCmd, configEditCmd, configInitCmd, configPathCmd,
		configGetCmd, configSetCmd, configPresetCmd, configVisualizerCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return printJSON(cfg)
	}

	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'station config init' first", path)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, path)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := config.Default().Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "created", "path": path})
	}
	fmt.Printf("Created config file: %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Pick a startup equalizer preset with 'station config preset'")
	fmt.Println("  2. Run 'station' to open the player")
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := strings.ToLower(args[0]), args[1]

	if err := config.Update(configPath(), func(c *config.Config) error { return c.Set(key, value) }); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "updated", "key": key, "value": value})
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

func runConfigPreset(cmd *cobra.Command, args []string) error {
	current, err := eq.ParsePreset(cfg.Defaults.Preset)
	if err != nil {
		current = eq.PresetFlat
	}

	p, ok, err := wizard.NewInteractive().PromptPreset(current)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("not a terminal; use 'station config set defaults.preset <name>'")
	}
	return runConfigSet(cmd, []string{"defaults.preset", p.String()})
}

func runConfigVisualizer(cmd *cobra.Command, args []string) error {
	if !wizard.IsTerminal() {
		return fmt.Errorf("not a terminal; use 'station config set defaults.visualizer <mode>'")
	}
	current, err := spectrum.ParseMode(cfg.Defaults.Visualizer)
	if err != nil {
		current = spectrum.ModeFlame
	}
	m, err := wizard.PickVisualizer(current)
	if err != nil {
		return err
	}
	return runConfigSet(cmd, []string{"defaults.visualizer", m.String()})
}
