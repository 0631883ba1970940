package commands

import (
	"io"
	"log"
	"os"

	"github.com/btcsuite/btclog/v2"
	"github.com/dplyukhin/uigc/internal/actor"
	"github.com/dplyukhin/uigc/internal/build"
	"github.com/dplyukhin/uigc/internal/detector"
	"github.com/dplyukhin/uigc/internal/gc"
	"github.com/dplyukhin/uigc/internal/snapshotstore"
	"github.com/spf13/cobra"
)

var (
	// snapshotDBPath is the path to the append-only snapshot log shared
	// by run and detect.
	snapshotDBPath string

	// logDir is the directory rotated log files are written to. Empty
	// disables file logging.
	logDir string

	// maxLogFiles and maxLogFileSize configure the rotating log writer.
	maxLogFiles    int
	maxLogFileSize int

	// outputFormat controls how run/detect report their results: text
	// or json.
	outputFormat string

	// logRotator is initialized in PersistentPreRunE and closed by a
	// deferred call in Execute once the command tree has run.
	logRotator *build.RotatingLogWriter
)

// rootCmd is the base command for the uigc CLI.
var rootCmd = &cobra.Command{
	Use:   "uigc",
	Short: "Distributed reference-counting GC for actor systems",
	Long: `uigc drives and inspects a distributed reference-counting garbage
collector for actor systems: it can simulate the garbage collector's
scenarios directly, record per-actor snapshots to an append-only log, and
run the offline quiescence detector over a recorded snapshot set.`,
	PersistentPreRunE: setupLogging,
}

// Execute runs the CLI.
func Execute() error {
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&snapshotDBPath, "snapshot-db", "~/.uigc/snapshots.db",
		"Path to the append-only snapshot log",
	)
	rootCmd.PersistentFlags().StringVar(
		&logDir, "log-dir", "",
		"Directory for log files (empty disables file logging)",
	)
	rootCmd.PersistentFlags().IntVar(
		&maxLogFiles, "max-log-files", build.DefaultMaxLogFiles,
		"Maximum number of rotated log files to keep",
	)
	rootCmd.PersistentFlags().IntVar(
		&maxLogFileSize, "max-log-file-size", build.DefaultMaxLogFileSize,
		"Maximum log file size in MB before rotation",
	)
	rootCmd.PersistentFlags().StringVar(
		&outputFormat, "format", "text",
		"Output format: text or json",
	)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(serveCmd)
}

// setupLogging wires up the rotating log file (if configured) and the
// btclog subsystem loggers for every package that exposes one, fanning
// out each record to both the console and the log file the same way
// the daemon entry point this CLI was adapted from does.
func setupLogging(cmd *cobra.Command, args []string) error {
	logDirExpanded := expandHome(logDir)

	var handlers []btclog.Handler
	handlers = append(handlers, btclog.NewDefaultHandler(os.Stderr))

	if logDirExpanded != "" {
		logRotator = build.NewRotatingLogWriter()
		err := logRotator.InitLogRotator(&build.LogRotatorConfig{
			LogDir:         logDirExpanded,
			MaxLogFiles:    maxLogFiles,
			MaxLogFileSize: maxLogFileSize,
			Filename:       "uigc.log",
		})
		if err != nil {
			log.Printf(
				"failed to init log rotator: %v "+
					"(continuing without file logging)", err,
			)
			logRotator = nil
		} else {
			handlers = append(
				handlers, btclog.NewDefaultHandler(logRotator),
			)

			multiWriter := io.MultiWriter(os.Stderr, logRotator)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags)
		}
	}

	combinedHandler := build.NewHandlerSet(handlers...)
	baseLogger := btclog.NewSLogger(combinedHandler)

	actor.UseLogger(baseLogger.WithPrefix("ACTR"))
	gc.UseLogger(baseLogger.WithPrefix("GC"))
	detector.UseLogger(baseLogger.WithPrefix("DTCT"))
	snapshotstore.UseLogger(baseLogger.WithPrefix("SSTR"))
	UseLogger(baseLogger.WithPrefix("CMD"))

	return nil
}
