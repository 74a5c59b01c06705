// Package cmd provides the command-line interface for csim.
package cmd

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/monitoring"
	"github.com/sarchlab/csim/recording"
	"github.com/sarchlab/csim/runner"
	"github.com/sarchlab/csim/trace"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "csim -s <num> -E <num> -b <num> -t <file>",
	Short: "csim replays a memory trace against a set-associative LRU cache model.",
	Long: `csim replays a valgrind-style memory trace against a model of a ` +
		`set-associative cache with LRU replacement and reports the hit, miss, ` +
		`and eviction counts. The cache geometry is given as the number of set ` +
		`index bits (-s), the number of lines per set (-E), and the number of ` +
		`block offset bits (-b).`,
	RunE: runSimulation,
}

func init() {
	flags := rootCmd.Flags()
	flags.Uint32P("set-bits", "s", 0, "number of set index bits")
	flags.IntP("associativity", "E", 1, "number of lines per set")
	flags.Uint32P("block-bits", "b", 0, "number of block offset bits")
	flags.StringP("trace", "t", "", "trace file to replay")
	flags.BoolP("verbose", "v", false, "print the outcome of every access")
	flags.String("record-db", "",
		"record every access into this SQLite database")
	flags.Int("monitor-port", 0,
		"serve live progress over HTTP on this port")
	flags.Bool("monitor", false, "serve live progress over HTTP")
	flags.Bool("open", false, "open the monitor page in a browser")

	cobra.CheckErr(rootCmd.MarkFlagRequired("trace"))
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	loadEnvFile()

	flags := cmd.Flags()
	setBits, _ := flags.GetUint32("set-bits")
	associativity, _ := flags.GetInt("associativity")
	blockBits, _ := flags.GetUint32("block-bits")
	traceFile, _ := flags.GetString("trace")
	verbose, _ := flags.GetBool("verbose")

	c, err := cache.MakeBuilder().
		WithSetIndexBits(setBits).
		WithWayAssociativity(associativity).
		WithBlockOffsetBits(blockBits).
		Build()
	if err != nil {
		return err
	}

	accesses, err := trace.ParseFile(traceFile)
	if err != nil {
		return err
	}

	builder := runner.MakeBuilder().WithCache(c)

	if verbose {
		builder = builder.WithVerboseLogger(
			log.New(cmd.OutOrStdout(), "", 0))
	}

	recordDB, _ := flags.GetString("record-db")
	if recordDB == "" {
		recordDB = os.Getenv("CSIM_RECORD_DB")
	}
	if recordDB != "" {
		recorder := recording.New(recordDB)
		builder = builder.WithDataRecorder(recorder)
	}

	r := builder.Build()

	startMonitor(cmd, c.Geometry(), r)

	result := r.Run(accesses)
	fmt.Fprintln(cmd.OutOrStdout(), result)

	return nil
}

// loadEnvFile pulls defaults such as CSIM_RECORD_DB and CSIM_MONITOR_PORT
// from a .env file in the working directory, if there is one.
func loadEnvFile() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Failed to load .env file: %s\n", err)
	}
}

func startMonitor(
	cmd *cobra.Command,
	geometry cache.Geometry,
	r *runner.Runner,
) {
	flags := cmd.Flags()
	enabled, _ := flags.GetBool("monitor")
	port, _ := flags.GetInt("monitor-port")
	open, _ := flags.GetBool("open")

	if port == 0 {
		if envPort, err := strconv.Atoi(
			os.Getenv("CSIM_MONITOR_PORT")); err == nil {
			port = envPort
		}
	}

	if !enabled && port == 0 && !open {
		return
	}

	monitor := monitoring.NewMonitor(geometry, r)
	if port != 0 {
		monitor = monitor.WithPortNumber(port)
	}
	if open {
		monitor = monitor.WithBrowserOpen()
	}

	monitor.StartServer()
}
