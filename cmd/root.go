package cmd

import (
	"fmt"
	u "net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/averden/mediapull/internal/output"
	"github.com/averden/mediapull/internal/planner"
	"github.com/averden/mediapull/internal/progress"
	"github.com/averden/mediapull/internal/transfer"
	"github.com/averden/mediapull/internal/utils"
)

var (
	folder           string
	prefix           string
	chunked          bool
	replaceExisting  bool
	useTempFilename  bool
	verifyChecksum   bool
	strictChecksum   bool
	connections      int
	workers          int
	timeout          time.Duration
	kaTimeout        time.Duration
	progressInterval time.Duration
	userAgent        string
	proxyURL         string
	proxyUsername    string
	proxyPassword    string
	headers          []string
	limitRate        int64
	debug            bool
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "mediapull",
	Short:   "mediapull retrieves media assets from object-storage origins",
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(debug)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&folder, "folder", "f", ".", "Download folder")
	pf.StringVar(&prefix, "prefix", "", "Filename prefix for downloaded assets")
	pf.BoolVar(&chunked, "chunked", false, "Fetch large assets as concurrent byte ranges")
	pf.BoolVar(&replaceExisting, "replace", false, "Replace an existing file that does not match the asset")
	pf.BoolVar(&useTempFilename, "temp", false, "Download to a temp filename and rename on completion")
	pf.BoolVar(&verifyChecksum, "verify", false, "Verify the asset checksum against the file on disk")
	pf.BoolVar(&strictChecksum, "strict", false, "Treat a missing or mismatched checksum as fatal")
	pf.IntVarP(&connections, "connections", "c", utils.DefaultConcurrency, "Connections per chunked download")
	pf.IntVarP(&workers, "workers", "w", 1, "Number of assets to download in parallel")
	pf.DurationVarP(&timeout, "timeout", "t", 3*time.Minute, "Connection timeout (eg. 5s, 10m)")
	pf.DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	pf.DurationVar(&progressInterval, "progress-interval", utils.DefaultProgressInterval, "Minimum gap between progress updates")
	pf.StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent")
	pf.StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	pf.StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	pf.StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	pf.StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	pf.Int64Var(&limitRate, "limit-rate", 0, "Cap transfer speed in bytes/sec (0 = unlimited)")
	pf.BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newS3Cmd())
}

func globalHTTPConfig() utils.HTTPClientConfig {
	// Proxy URLs may carry their own credentials.
	if parsedProxy, err := u.Parse(proxyURL); err == nil && parsedProxy.User != nil && proxyUsername == "" {
		proxyUsername = parsedProxy.User.Username()
		if password, set := parsedProxy.User.Password(); set {
			proxyPassword = password
		}
		parsedProxy.User = nil
		proxyURL = parsedProxy.String()
	}
	return utils.HTTPClientConfig{
		Timeout:       timeout,
		KATimeout:     kaTimeout,
		ProxyURL:      proxyURL,
		ProxyUsername: proxyUsername,
		ProxyPassword: proxyPassword,
		UserAgent:     userAgent,
		Headers:       utils.ParseHeaderArgs(headers),
		RateLimit:     limitRate,
	}
}

func globalOptions() planner.Options {
	return planner.Options{
		Folder:          folder,
		Prefix:          prefix,
		Chunked:         chunked,
		Replace:         replaceExisting,
		UseTempFilename: useTempFilename,
		VerifyChecksum:  verifyChecksum,
		StrictChecksum:  strictChecksum,
		Concurrency:     connections,
	}
}

func newEngine() *transfer.Engine {
	return transfer.NewEngine(transfer.Config{
		Client:           utils.NewMediaHTTPClient(globalHTTPConfig()),
		ProgressCallback: printProgress,
		ProgressInterval: progressInterval,
		Logger:           utils.GetLogger("transfer"),
	})
}

func printProgress(ev progress.Event) {
	if ev.Status == progress.StatusComplete || ev.Status == progress.StatusFailed {
		fmt.Printf("\r%s\n", output.ProgressLine(ev))
		return
	}
	fmt.Printf("\r%s", output.ProgressLine(ev))
}
