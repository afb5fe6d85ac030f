// pile is a command-line client for a pile.Database directory.
//
// Usage:
//
//	pile -data <dir> put <key> <value>
//	pile -data <dir> get <key>
//	pile -data <dir> seqno <n>
//	pile -data <dir> scan [fromSeqno]
//
// Flags:
//
//	-data string   Data directory (default "data")
//	-loglevel string  Log level: debug, info, warn, error (default "info")
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gostkin/data-pile"
	"github.com/gostkin/data-pile/codec"
	"github.com/gostkin/data-pile/internal/version"
)

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	dataDir := flag.String("data", envOrDefault("PILE_DATA", "data"), "Data directory")
	logLevel := flag.String("loglevel", envOrDefault("PILE_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("pile v%s (built %s)\n", version.Version, version.BuildTime)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))

	db, err := pile.NewBuilder().
		WithSerializer(codec.LengthPrefixed{}).
		WithLogger(logger).
		Open(*dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pile: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "put":
		runPut(db, rest)
	case "get":
		runGet(db, rest)
	case "seqno":
		runSeqno(db, rest)
	case "scan":
		runScan(db, rest)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: pile [-data dir] <put|get|seqno|scan> [args...]")
	fmt.Fprintln(os.Stderr, "  put <key> <value>")
	fmt.Fprintln(os.Stderr, "  get <key>")
	fmt.Fprintln(os.Stderr, "  seqno <n>")
	fmt.Fprintln(os.Stderr, "  scan [fromSeqno]")
}

func runPut(db *pile.Database, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: pile put <key> <value>")
		os.Exit(2)
	}
	err := db.Append([]pile.Record{pile.NewRecord([]byte(args[0]), []byte(args[1]))})
	if err != nil {
		fmt.Fprintf(os.Stderr, "pile: put failed: %v\n", err)
		os.Exit(1)
	}
}

func runGet(db *pile.Database, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: pile get <key>")
		os.Exit(2)
	}
	r, ok, err := db.Get([]byte(args[0]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "pile: get failed: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "pile: key not found")
		os.Exit(1)
	}
	fmt.Println(string(r.Value))
}

func runSeqno(db *pile.Database, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: pile seqno <n>")
		os.Exit(2)
	}
	var n uint64
	if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil {
		fmt.Fprintf(os.Stderr, "pile: invalid seqno %q\n", args[0])
		os.Exit(2)
	}
	r, ok, err := db.GetBySeqno(n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pile: seqno lookup failed: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "pile: seqno not found")
		os.Exit(1)
	}
	fmt.Printf("%s\t%s\n", r.Key, r.Value)
}

func runScan(db *pile.Database, args []string) {
	var from uint64
	if len(args) == 1 {
		if _, err := fmt.Sscanf(args[0], "%d", &from); err != nil {
			fmt.Fprintf(os.Stderr, "pile: invalid seqno %q\n", args[0])
			os.Exit(2)
		}
	}
	it, ok := db.IterFromSeqno(from)
	if !ok {
		return
	}
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		fmt.Printf("%s\t%s\n", r.Key, r.Value)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
