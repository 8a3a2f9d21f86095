package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/famomatic/qbz/client"
	"github.com/famomatic/qbz/internal/api"
	"github.com/famomatic/qbz/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config.toml (default ~/.config/qbz/config.toml)")
		trackID    = flag.String("track", "", "Vendor track ID")
		quality    = flag.Int("quality", 0, "Quality level 1-4 (default: config value)")
		probe      = flag.Bool("probe", false, "Probe available quality tiers instead of resolving a URL")
		proxy      = flag.String("proxy", "", "Proxy URL")
		verbose    = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *trackID == "" {
		fmt.Println("Usage: qbz -track <track_id> [-quality 1-4] [-probe]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
			os.Exit(1)
		}
		logger = l
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not load .env file", zap.Error(err))
	}

	store, err := config.Load(*configPath)
	if err != nil {
		fatalf("load config: %v", err)
	}
	applyEnvOverrides(store)

	cfg := client.FromStore(store)
	cfg.ProxyURL = *proxy
	cfg.RequestTimeout = 30 * time.Second
	cfg.Logger = logger
	c := client.New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sess, err := c.Login(ctx)
	if err != nil {
		fatalf("login: %v", err)
	}

	// Discovery results are worth keeping across runs.
	if err := store.SaveIfModified(); err != nil {
		logger.Warn("could not persist discovered app identity", zap.Error(err))
	}

	q := *quality
	if q == 0 {
		q = store.Qobuz().Quality
	}

	if *probe {
		results, err := c.InspectTrackQuality(ctx, sess, *trackID, q)
		if err != nil {
			fatalf("probe: %v", err)
		}
		fmt.Printf("Track %s (%s):\n", *trackID, client.OpenURL("track", *trackID))
		for _, r := range results {
			if r.Available {
				fmt.Printf("  [%d] %-24s available (%d-bit / %.1f kHz)\n",
					r.QualityLevel, api.FormatLabel(r.FormatID), r.BitDepth, r.SamplingRate)
				continue
			}
			fmt.Printf("  [%d] %-24s unavailable: %s\n", r.QualityLevel, api.FormatLabel(r.FormatID), r.Err)
		}
		return
	}

	d, err := c.GetDownloadable(ctx, sess, *trackID, q)
	if err != nil {
		fatalf("resolve: %v", err)
	}
	fmt.Printf("Codec:  %s\n", d.Codec)
	fmt.Printf("Source: %s\n", d.Source)
	fmt.Printf("URL:    %s\n", d.URL)
}

// applyEnvOverrides lets environment variables take precedence over file
// credentials. QOBUZ_TOKEN switches the login to token authentication.
func applyEnvOverrides(store *config.Store) {
	q := store.Qobuz()
	email := q.EmailOrUserID
	secret := q.PasswordOrToken
	useToken := q.UseAuthToken

	if v := os.Getenv("QOBUZ_EMAIL"); v != "" {
		email = v
	}
	if v := os.Getenv("QOBUZ_PASSWORD"); v != "" {
		secret = v
		useToken = false
	}
	if v := os.Getenv("QOBUZ_TOKEN"); v != "" {
		secret = v
		useToken = true
	}
	store.SetCredentials(email, secret, useToken)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
