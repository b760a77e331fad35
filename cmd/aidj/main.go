package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ishatailor/AI-DJ/internal/audio"
	"github.com/ishatailor/AI-DJ/internal/estimate"
	"github.com/ishatailor/AI-DJ/internal/storage"
	"github.com/ishatailor/AI-DJ/pkg/logger"
	"github.com/ishatailor/AI-DJ/pkg/mixdj"
	"github.com/ishatailor/AI-DJ/pkg/models"
	"github.com/ishatailor/AI-DJ/pkg/utils"
)

// Global flags
var (
	dbPath  string
	tempDir string
)

func init() {
	flag.StringVar(&dbPath, "db", getEnvOrDefault("AIDJ_DB_PATH", "aidj.sqlite3"), "Path to the SQLite history database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("AIDJ_TEMP_DIR", os.TempDir()), "Directory for downloaded audio")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func createService(opts ...mixdj.Option) (mixdj.Service, error) {
	return mixdj.NewService(append([]mixdj.Option{mixdj.WithDBPath(dbPath)}, opts...)...)
}

func main() {
	log := logger.GetLogger()

	printBanner()

	// Global flags come before the subcommand: aidj --db foo.db mix ...
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	log.Debug("executing command: %s", command)

	switch command {
	case "mix":
		handleMix()
	case "analyze":
		handleAnalyze()
	case "history":
		handleHistory()
	case "delete":
		handleDelete()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
    _    ___      ____     _
   / \  |_ _|    |  _ \   | |
  / _ \  | |_____| | | |  | |
 / ___ \ | |_____| |_| |__| |
/_/   \_\___|    |____/\____/

      Automatic DJ Mix Generator
`
	fmt.Println(banner)
}

// splitArgs separates leading positional arguments from trailing
// flags so subcommands can take paths before their flag set.
func splitArgs(args []string, max int) (positional, flags []string) {
	for i, arg := range args {
		if strings.HasPrefix(arg, "-") || len(positional) == max {
			flags = args[i:]
			break
		}
		positional = append(positional, arg)
	}
	return positional, flags
}

func handleMix() {
	log := logger.GetLogger()

	tracks, flagArgs := splitArgs(flag.Args()[1:], 2)

	mixCmd := flag.NewFlagSet("mix", flag.ExitOnError)
	out := mixCmd.String("out", "mix.wav", "Output WAV path")
	duration := mixCmd.Float64("duration", 120, "Target mix duration in seconds")
	rate := mixCmd.Int("rate", 0, "Output sample rate (0 = first track's rate)")
	mixCmd.Parse(flagArgs)

	if len(tracks) != 2 {
		fmt.Println("Usage: aidj mix <track1> <track2> [--out mix.wav] [--duration 120]")
		fmt.Println("Tracks may be local audio files or YouTube URLs.")
		os.Exit(1)
	}

	svc, err := createService(
		mixdj.WithMixDuration(*duration),
		mixdj.WithSampleRate(*rate),
	)
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Error("service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	paths := make([]string, 2)
	for i, track := range tracks {
		path, err := resolveTrack(ctx, track)
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			log.Error("resolving track %q: %v", track, err)
			os.Exit(1)
		}
		paths[i] = path
	}

	fmt.Println("🎛️  Mixing tracks...")
	fmt.Println("   Analysis and rendering may take a few moments")

	mix, err := svc.MixFiles(ctx, paths[0], paths[1])
	if err != nil {
		fmt.Printf("\n❌ Failed to mix: %v\n", err)
		log.Error("mix failed: %v", err)
		os.Exit(1)
	}

	printReport(mix.Compatibility)
	printTimeline(mix.Timeline)

	outPath := utils.UniquePath(*out)
	rec, err := svc.Export(mix, outPath)
	if err != nil {
		fmt.Printf("\n❌ Failed to export: %v\n", err)
		log.Error("export failed: %v", err)
		os.Exit(1)
	}

	size := "unknown size"
	if info, err := os.Stat(outPath); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	fmt.Printf("\n✅ Mix written to %s (%s)\n", outPath, size)
	fmt.Printf("   ID: %s\n", rec.ID)
}

// resolveTrack downloads YouTube URLs into the temp dir, returning a
// local path either way.
func resolveTrack(ctx context.Context, track string) (string, error) {
	if !utils.IsYouTubeURL(track) {
		return track, nil
	}
	fmt.Printf("📥 Downloading %s...\n", track)
	dl, err := utils.DownloadYouTubeAudio(ctx, track, tempDir)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", track, err)
	}
	fmt.Printf("   Got %q by %s\n", dl.Title, dl.Artist)
	return dl.Path, nil
}

func handleAnalyze() {
	log := logger.GetLogger()

	tracks, _ := splitArgs(flag.Args()[1:], 2)
	if len(tracks) != 2 {
		fmt.Println("Usage: aidj analyze <track1> <track2>")
		os.Exit(1)
	}

	fmt.Println("🔍 Analyzing tracks...")
	metas := make([]models.TrackMetadata, 2)
	for i, path := range tracks {
		buf, err := audio.DecodeFile(path)
		if err != nil {
			fmt.Printf("❌ Failed to decode %s: %v\n", path, err)
			log.Error("decode failed: %v", err)
			os.Exit(1)
		}
		metas[i] = estimate.Metadata(path, buf)
		printTrack(metas[i])
	}

	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	printReport(svc.Analyze(metas[0], metas[1]))
}

func handleHistory() {
	log := logger.GetLogger()

	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Error("service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	records, err := svc.History(0)
	if err != nil {
		fmt.Printf("❌ Failed to list history: %v\n", err)
		log.Error("history failed: %v", err)
		os.Exit(1)
	}

	if len(records) == 0 {
		fmt.Println("\n📭 No mixes in history")
		return
	}

	fmt.Printf("\n📚 %d mix(es):\n\n", len(records))
	for i, rec := range records {
		fmt.Printf("%d. %s + %s (score %d, key %s)\n",
			i+1, rec.Track1Name, rec.Track2Name, rec.Score, rec.KeyCompatibility)
		fmt.Printf("   ID: %s | %.0fs | %s | created %s\n",
			rec.ID, rec.Duration, rec.OutputPath, humanize.Time(rec.CreatedAt))
		fmt.Println()
	}
}

func handleDelete() {
	log := logger.GetLogger()

	if flag.NArg() < 2 {
		fmt.Println("Usage: aidj delete <mix_id>")
		os.Exit(1)
	}
	id := flag.Arg(1)

	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	rec, err := svc.GetMix(id)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Printf("❌ Mix not found: %s\n", id)
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("❌ Failed to look up mix: %v\n", err)
		log.Error("lookup failed: %v", err)
		os.Exit(1)
	}

	if err := svc.DeleteMix(id); err != nil {
		fmt.Printf("❌ Failed to delete mix: %v\n", err)
		log.Error("delete failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("\n✅ Deleted mix %s (%s + %s)\n", rec.ID, rec.Track1Name, rec.Track2Name)
}

func printTrack(meta models.TrackMetadata) {
	fmt.Printf("\n🎵 %s\n", meta.Name)
	fmt.Printf("   Duration: %.1fs | Tempo: %.1f BPM | Key: %s\n",
		meta.Duration, meta.Tempo, keyOrUnknown(meta.Key))
	fmt.Printf("   Energy: %.2f | Danceability: %.2f\n", meta.Energy, meta.Danceability)
}

func printReport(rep models.CompatibilityReport) {
	fmt.Printf("\n🎯 Compatibility: %d/100\n", rep.Score)
	fmt.Printf("   BPM difference: %.1f | Key: %s | Energy balance: %.2f\n",
		rep.BPMDifference, rep.Key, rep.EnergyBalance)
	for _, r := range rep.Recommendations {
		fmt.Printf("   💡 %s\n", r)
	}
}

func printTimeline(tl models.Timeline) {
	fmt.Printf("\n🗓️  Timeline (%.0fs):\n", tl.Duration)
	for _, s := range tl.Sections {
		fmt.Printf("   %6.1fs - %6.1fs  %-14s [%s]\n", s.Start, s.End, s.Name, s.Track)
	}
}

func keyOrUnknown(key string) string {
	if key == "" {
		return "unknown"
	}
	return key
}

func printUsage() {
	fmt.Println("AI-DJ - Automatic DJ Mix Generator")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  --db <path>        SQLite history database (env: AIDJ_DB_PATH, default: aidj.sqlite3)")
	fmt.Println("  --temp <dir>       Directory for downloaded audio (env: AIDJ_TEMP_DIR)")
	fmt.Println("\nUsage:")
	fmt.Println("  aidj mix <track1> <track2> [--out mix.wav] [--duration 120] [--rate 44100]")
	fmt.Println("  aidj analyze <track1> <track2>")
	fmt.Println("  aidj history")
	fmt.Println("  aidj delete <mix_id>")
	fmt.Println("\nExamples:")
	fmt.Println("  # Mix two local files into a 2 minute transition")
	fmt.Println("  aidj mix intro.mp3 drop.wav --out night-mix.wav")
	fmt.Println()
	fmt.Println("  # Mix straight from YouTube")
	fmt.Println("  aidj mix \"https://youtu.be/abc123\" track2.mp3 --duration 90")
	fmt.Println()
	fmt.Println("  # Score two tracks without rendering")
	fmt.Println("  aidj analyze track1.wav track2.wav")
}
