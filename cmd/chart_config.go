package cmd

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bapomdp/bares/analysis/report"
)

// ChartConfig is the optional YAML file passed with --config to the plot commands.
// Absent fields keep the command's defaults.
type ChartConfig struct {
	Title          *string  `yaml:"title"`
	XLabel         *string  `yaml:"x_label"`
	YLabel         *string  `yaml:"y_label"`
	WidthIn        *float64 `yaml:"width_in"`
	HeightIn       *float64 `yaml:"height_in"`
	MarkersPerLine *int     `yaml:"markers_per_line"`
	LineWidth      *float64 `yaml:"line_width"`
	LegendTop      *bool    `yaml:"legend_top"`
	LegendLeft     *bool    `yaml:"legend_left"`
}

// loadChartConfig parses a chart config file.
// Uses strict field checking: unknown keys (typos) are errors.
func loadChartConfig(path string) (*ChartConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chart config: %w", err)
	}
	var cfg ChartConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		// An empty file decodes to io.EOF; treat it as "no overrides".
		if len(bytes.TrimSpace(data)) == 0 {
			return &cfg, nil
		}
		return nil, fmt.Errorf("parsing chart config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("chart config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks sizes and counts.
func (c *ChartConfig) Validate() error {
	for name, v := range map[string]*float64{"width_in": c.WidthIn, "height_in": c.HeightIn, "line_width": c.LineWidth} {
		if v == nil {
			continue
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
			return fmt.Errorf("%s must be a finite positive number, got %v", name, *v)
		}
	}
	if c.MarkersPerLine != nil && *c.MarkersPerLine < 1 {
		return fmt.Errorf("markers_per_line must be at least 1, got %d", *c.MarkersPerLine)
	}
	return nil
}

// Apply overlays the fields present in c onto opts.
func (c *ChartConfig) Apply(opts report.ChartOptions) report.ChartOptions {
	if c.Title != nil {
		opts.Title = *c.Title
	}
	if c.XLabel != nil {
		opts.XLabel = *c.XLabel
	}
	if c.YLabel != nil {
		opts.YLabel = *c.YLabel
	}
	if c.WidthIn != nil {
		opts.WidthIn = *c.WidthIn
	}
	if c.HeightIn != nil {
		opts.HeightIn = *c.HeightIn
	}
	if c.MarkersPerLine != nil {
		opts.MarkersPerLine = *c.MarkersPerLine
	}
	if c.LineWidth != nil {
		opts.LineWidth = *c.LineWidth
	}
	if c.LegendTop != nil {
		opts.LegendTop = *c.LegendTop
	}
	if c.LegendLeft != nil {
		opts.LegendLeft = *c.LegendLeft
	}
	return opts
}

// chartFlags are the flags shared by the plot commands.
type chartFlags struct {
	configPath string
	outputPath string
	title      string
}

func (f *chartFlags) register(cmd *cobra.Command, defaultOutput string) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to a chart config YAML file")
	cmd.Flags().StringVarP(&f.outputPath, "output", "o", defaultOutput, "Output image path (.png, .svg, .pdf, .eps, .jpg, .tif)")
	cmd.Flags().StringVar(&f.title, "title", "", "Chart title (overrides the config file)")
}

// options resolves the chart options: defaults, then the config file, then --title.
func (f *chartFlags) options(cmd *cobra.Command, defaults report.ChartOptions) (report.ChartOptions, error) {
	opts := defaults
	if f.configPath != "" {
		cfg, err := loadChartConfig(f.configPath)
		if err != nil {
			return opts, err
		}
		opts = cfg.Apply(opts)
	}
	if cmd.Flags().Changed("title") {
		opts.Title = f.title
	}
	return opts, nil
}
