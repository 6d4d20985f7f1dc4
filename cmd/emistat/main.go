// Command emistat runs the emissions analytics pipeline from the shell:
// it loads the emissions and continent-mapping tables, executes one
// analytic stage, and writes the result table to stdout or a directory.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/emistat/emistat"
)

var (
	cfgFile        string
	emissionsPath  string
	continentsPath string
	outputDir      string
	outputFormat   string
	compression    string
)

var rootCmd = &cobra.Command{
	Use:   "emistat",
	Short: "Descriptive statistics, rankings and growth rates over a CO2 emissions dataset",
	Long: `emistat joins an emissions table (entity, code, year, value) against a
country-to-continent mapping (entity, code, region) and computes grouped
totals, summary statistics, per-region rankings, growth rates, rolling
averages and pivoted summaries. Results are written as plain tables for
external reporting or charting.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./emistat.yaml)")
	rootCmd.PersistentFlags().StringVarP(&emissionsPath, "emissions", "e", "", "emissions table (csv/tsv/xlsx/parquet, compressed variants allowed)")
	rootCmd.PersistentFlags().StringVarP(&continentsPath, "continents", "c", "", "continent mapping table")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "out", "o", "", "output directory (default: write CSV to stdout)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "csv", "output format: csv, tsv, xlsx")
	rootCmd.PersistentFlags().StringVar(&compression, "compress", "none", "output compression: none, gz, xz, zstd")

	rootCmd.AddCommand(
		totalsCmd, decadesCmd, statsCmd, completenessCmd,
		topCmd, shareCmd,
		growthCmd, spikesCmd, rollingCmd, medianFlagsCmd, firstLastCmd,
		wideCmd, matrixCmd,
	)

	viper.SetDefault("rolling_window", 5)
	viper.SetDefault("min_completeness_years", 50)
	viper.SetDefault("stddev", "sample")
}

// loadConfig reads analysis defaults from an optional YAML config file.
func loadConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("emistat")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
	}
}

// analysisOptions builds emistat Options from the loaded config.
func analysisOptions() emistat.Options {
	opts := emistat.NewOptions().
		WithRollingWindow(viper.GetInt("rolling_window")).
		WithMinCompletenessYears(viper.GetInt("min_completeness_years"))
	if viper.GetString("stddev") == "population" {
		opts = opts.WithStdDev(emistat.StdDevPopulation)
	}
	return opts
}

// loadDataset loads and joins the two input tables, then prints the load
// report (skip and exclusion counts) to stderr.
func loadDataset(cmd *cobra.Command) (*emistat.Dataset, error) {
	if emissionsPath == "" || continentsPath == "" {
		return nil, fmt.Errorf("--emissions and --continents are required")
	}
	ds, err := emistat.LoadContext(cmd.Context(), emissionsPath, continentsPath, analysisOptions())
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(os.Stderr, ds.Report())
	return ds, nil
}

// writeOptions translates the output flags.
func writeOptions() (emistat.WriteOptions, error) {
	opts := emistat.NewWriteOptions()
	switch outputFormat {
	case "csv", "":
	case "tsv":
		opts = opts.WithFormat(emistat.OutputFormatTSV)
	case "xlsx":
		opts = opts.WithFormat(emistat.OutputFormatXLSX)
	default:
		return opts, fmt.Errorf("unknown output format %q", outputFormat)
	}
	switch compression {
	case "none", "":
	case "gz":
		opts = opts.WithCompression(emistat.CompressionGZ)
	case "xz":
		opts = opts.WithCompression(emistat.CompressionXZ)
	case "zstd":
		opts = opts.WithCompression(emistat.CompressionZSTD)
	default:
		return opts, fmt.Errorf("unknown compression %q", compression)
	}
	return opts, nil
}

// emit writes the result table to the output directory, or as CSV to
// stdout when no directory is set.
func emit(table emistat.ResultTable) error {
	opts, err := writeOptions()
	if err != nil {
		return err
	}
	if outputDir == "" {
		return emistat.WriteTable(os.Stdout, table, opts)
	}
	path, err := emistat.SaveTable(outputDir, table, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "wrote", path)
	return nil
}

// parseYearList parses a comma-separated year list like "1990,2000,2010".
func parseYearList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	years := make([]int, 0, len(parts))
	for _, p := range parts {
		y, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", p)
		}
		years = append(years, y)
	}
	return years, nil
}

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Sum of emissions grouped by region and year",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		return emit(emistat.TotalsTable(ds.TotalsByRegionYear()))
	},
}

var decadesCmd = &cobra.Command{
	Use:   "decades",
	Short: "Per-region per-decade mean, min, max and sum",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		return emit(emistat.DecadesTable(ds.DecadeSummary()))
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Per-region descriptive statistics across all entities and years",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		return emit(emistat.StatsTable(ds.RegionSummaryStats()))
	},
}

var completenessCmd = &cobra.Command{
	Use:   "completeness",
	Short: "Reporting completeness per entity versus its year span",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		return emit(emistat.CompletenessTable(ds.ReportingCompleteness()))
	},
}

var topN int

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Top N entities per region by average emissions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		return emit(emistat.TopNTable(ds.TopNByAverage(topN)))
	},
}

var shareCmd = &cobra.Command{
	Use:   "share <year>",
	Short: "Top entity's share of its region total for one year",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid year %q", args[0])
		}
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		rows, err := ds.TopEntityShare(year)
		if err != nil {
			fmt.Fprintln(os.Stderr, "warning:", err)
		}
		return emit(emistat.SharesTable(rows))
	},
}

var growthCmd = &cobra.Command{
	Use:   "growth",
	Short: "Year-over-year growth rate per entity",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		return emit(emistat.GrowthTable(ds.YearOverYearGrowth()))
	},
}

var spikesCmd = &cobra.Command{
	Use:   "spikes",
	Short: "Largest growth spike per region",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		return emit(emistat.SpikesTable(ds.MaxSpikePerRegion()))
	},
}

var rollingWindow int

var rollingCmd = &cobra.Command{
	Use:   "rolling",
	Short: "Trailing moving average per entity",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		return emit(emistat.RollingTable(ds.RollingAverage(rollingWindow)))
	},
}

var medianFlagsCmd = &cobra.Command{
	Use:   "median-flags",
	Short: "Flag each year above or below the entity's all-years median",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		return emit(emistat.MedianFlagsTable(ds.MedianFlag()))
	},
}

var firstLastCmd = &cobra.Command{
	Use:   "firstlast",
	Short: "Growth between each region's first and last reported year",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		rows, err := ds.FirstLastYearGrowth()
		if err != nil {
			fmt.Fprintln(os.Stderr, "warning:", err)
		}
		return emit(emistat.FirstLastTable(rows))
	},
}

var wideYears string

var wideCmd = &cobra.Command{
	Use:   "wide",
	Short: "Wide entity-by-year pivot over a fixed year list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		years, err := parseYearList(wideYears)
		if err != nil {
			return err
		}
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		return emit(emistat.WideTableResult(ds.WideByYear(years)))
	},
}

var (
	matrixYears   string
	matrixRegions string
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Zero-filled cross-tabulation (region x year or entity x region)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if (matrixYears == "") == (matrixRegions == "") {
			return fmt.Errorf("exactly one of --years or --regions is required")
		}
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		if matrixYears != "" {
			years, err := parseYearList(matrixYears)
			if err != nil {
				return err
			}
			return emit(emistat.MatrixTable("matrix_region_year", "region", ds.MatrixByRegionYear(years)))
		}
		regions := strings.Split(matrixRegions, ",")
		for i := range regions {
			regions[i] = strings.TrimSpace(regions[i])
		}
		return emit(emistat.MatrixTable("matrix_entity_region", "entity", ds.MatrixByEntityRegion(regions)))
	},
}

func init() {
	topCmd.Flags().IntVarP(&topN, "top", "n", 3, "entities to keep per region")
	rollingCmd.Flags().IntVarP(&rollingWindow, "window", "w", 0, "window length (0 = config default)")
	wideCmd.Flags().StringVar(&wideYears, "years", "", "comma-separated year list (required)")
	_ = wideCmd.MarkFlagRequired("years")
	matrixCmd.Flags().StringVar(&matrixYears, "years", "", "comma-separated year list for region x year")
	matrixCmd.Flags().StringVar(&matrixRegions, "regions", "", "comma-separated region list for entity x region")
}
