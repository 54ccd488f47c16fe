// Command draftctl inspects and edits draft documents stored as snapshot
// files: it applies command buffers, picks, renders previews and keeps
// revisions in a SQLite archive.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/draft"
	"github.com/gogpu/draft/config"
	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
	"github.com/gogpu/draft/hostid"
	"github.com/gogpu/draft/preview"
)

var rootCmd = &cobra.Command{
	Use:           "draftctl",
	Short:         "Inspect and edit draft documents",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var applyCmd = &cobra.Command{
	Use:   "apply <document> <buffer>...",
	Short: "Apply command buffers to a document, creating it if missing",
	Long: `Apply command buffers to a document, creating it if missing.

Files ending in .yaml or .yml are scripts that name entities by string keys;
they are compiled to command buffers first.`,
	Args:  cobra.MinimumNArgs(2),
	RunE:  runApply,
}

var infoCmd = &cobra.Command{
	Use:   "info <document>",
	Short: "Describe a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var pickCmd = &cobra.Command{
	Use:   "pick <document> <x> <y>",
	Short: "Report the topmost entity at a world point",
	Args:  cobra.ExactArgs(3),
	RunE:  runPick,
}

var renderCmd = &cobra.Command{
	Use:   "render <document>",
	Short: "Render a document preview to PNG",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var (
	configPath string
	logLevel   string
	jsonFlag   bool
	printIDs   bool
	tolerance  float64
	viewScale  float64
	outputPath string
	width      int
	height     int
	margin     float64
	background string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	applyCmd.Flags().BoolVar(&printIDs, "ids", false, "Print the id of every script key")
	infoCmd.Flags().BoolVar(&jsonFlag, "json", false, "Output as JSON")
	pickCmd.Flags().Float64Var(&tolerance, "tolerance", -1, "Pick tolerance in pixels (default from config)")
	pickCmd.Flags().Float64Var(&viewScale, "scale", 1, "Screen pixels per world unit")
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "preview.png", "Output file")
	renderCmd.Flags().IntVar(&width, "width", 800, "Image width")
	renderCmd.Flags().IntVar(&height, "height", 600, "Image height")
	renderCmd.Flags().Float64Var(&margin, "margin", 10, "Margin around the drawing in world units")
	renderCmd.Flags().StringVar(&background, "background", "ffffffff", "Background color as RRGGBBAA")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(archiveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode gives malformed buffers and unreadable snapshots their own
// exit codes.
func exitCode(err error) int {
	switch draft.StatusOf(err) {
	case draft.StatusProtocolError:
		return 2
	case draft.StatusSnapshotIncompatible:
		return 3
	default:
		return 1
	}
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = c
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// openDocument builds an engine and loads path into it. A missing file
// yields an empty document when allowMissing is set.
func openDocument(cmd *cobra.Command, path string, allowMissing bool) (*draft.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	lvl, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
	eng, err := draft.New(draft.WithConfig(cfg), draft.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	buf, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && allowMissing {
		return eng, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	if err := eng.Load(buf); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return eng, nil
}

func saveDocument(eng *draft.Engine, path string) error {
	if err := os.WriteFile(path, eng.Save(), 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	eng, err := openDocument(cmd, args[0], true)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	keys := hostid.New()
	for _, path := range args[1:] {
		buf, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading buffer: %w", err)
		}
		if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
			if buf, err = compileScript(buf, keys); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		res, err := eng.ApplyCommands(buf)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(out, "%s: applied %d, ignored %d, skipped %d\n", path, res.Applied, res.Ignored, len(res.Skipped))
		for _, s := range res.Skipped {
			fmt.Fprintf(out, "  skipped op %#x at byte %d\n", uint32(s.Op), s.Offset)
		}
	}
	if printIDs {
		for _, k := range keys.Keys() {
			id, _ := keys.Lookup(k)
			fmt.Fprintf(out, "%s=%d\n", k, id)
		}
	}
	return saveDocument(eng, args[0])
}

type docInfo struct {
	Generation uint64         `json:"generation"`
	Entities   int            `json:"entities"`
	Layers     int            `json:"layers"`
	Selected   int            `json:"selected"`
	Kinds      map[string]int `json:"kinds"`
	Extent     *geom.Rect     `json:"extent,omitempty"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	eng, err := openDocument(cmd, args[0], false)
	if err != nil {
		return err
	}
	info := docInfo{
		Generation: eng.Generation().Content,
		Entities:   eng.Len(),
		Layers:     len(eng.Layers()),
		Selected:   len(eng.Selection()),
		Kinds:      make(map[string]int),
	}
	for _, id := range eng.DrawOrder() {
		info.Kinds[eng.Kind(id).String()]++
	}
	if ext, ok := eng.Extent(); ok {
		info.Extent = &ext
	}

	out := cmd.OutOrStdout()
	if jsonFlag {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintf(out, "generation: %d\nentities:   %d\nlayers:     %d\nselected:   %d\n",
		info.Generation, info.Entities, info.Layers, info.Selected)
	for _, k := range entity.Kinds() {
		if n := info.Kinds[k.String()]; n > 0 {
			fmt.Fprintf(out, "  %-10s %d\n", k, n)
		}
	}
	if info.Extent != nil {
		e := info.Extent
		fmt.Fprintf(out, "extent:     (%g, %g) - (%g, %g)\n", e.MinX, e.MinY, e.MaxX, e.MaxY)
	}
	return nil
}

func runPick(cmd *cobra.Command, args []string) error {
	eng, err := openDocument(cmd, args[0], false)
	if err != nil {
		return err
	}
	x, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid x: %w", err)
	}
	y, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid y: %w", err)
	}
	eng.SetViewScale(viewScale)
	r, ok := eng.PickEx(geom.Pt(x, y), eng.PickOptions(tolerance))
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintln(out, "miss")
		return nil
	}
	fmt.Fprintf(out, "%d %s %s %d\n", r.ID, r.Kind, r.Sub, r.SubIndex)
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	eng, err := openDocument(cmd, args[0], false)
	if err != nil {
		return err
	}
	bg, err := parseColor(background)
	if err != nil {
		return err
	}
	ext, ok := eng.Extent()
	c, err := preview.New(width, height, preview.Fit(ext, ok, margin), bg)
	if err != nil {
		return err
	}
	defer c.Close()

	b := eng.RenderBuffers()
	if err := c.Shapes(b.Shapes); err != nil {
		return fmt.Errorf("drawing shapes: %w", err)
	}
	if err := c.Text(b.Text); err != nil {
		return fmt.Errorf("drawing text: %w", err)
	}
	if err := c.SavePNG(outputPath); err != nil {
		return fmt.Errorf("writing preview: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outputPath)
	return nil
}

// parseColor parses RRGGBB or RRGGBBAA, with an optional leading '#'.
func parseColor(s string) (entity.Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return entity.Color(v), nil
}
