package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/shanehull/digmap/internal/app"
	"github.com/shanehull/digmap/internal/config"
	"github.com/shanehull/digmap/internal/logging"
	"github.com/shanehull/digmap/internal/notify"
	"github.com/shanehull/digmap/internal/pipeline"
	"github.com/shanehull/digmap/internal/telemetry"
	"github.com/shanehull/digmap/internal/types"
)

var (
	latStr     = flag.String("lat", "", "Latitude of the point to analyse")
	lonStr     = flag.String("lon", "", "Longitude of the point to analyse")
	historical = flag.Bool("historical", true, "Include the historical analysis")

	smtpServer = flag.String("smtp-server", "", "SMTP server address (default: from config)")
	smtpPort   = flag.Int("smtp-port", 0, "SMTP server port (default: from config)")
	smtpUser   = flag.String("smtp-user", "", "SMTP username (email address)")
	smtpPass   = flag.String("smtp-pass", "", "SMTP password or App Password")
	toEmail    = flag.String("to-email", "", "Recipient email address")
	fromEmail  = flag.String("from-email", "", "Sender email address (default: smtp-user)")
)

func init() {
	flag.Usage = func() {
		flagSet := flag.CommandLine
		fmt.Printf("Usage of %s:\n", "digmap")

		order := []string{
			"lat",
			"lon",
			"historical",
			"smtp-server",
			"smtp-port",
			"smtp-user",
			"smtp-pass",
			"to-email",
			"from-email",
		}

		for _, name := range order {
			f := flagSet.Lookup(name)
			if f != nil {
				fmt.Printf("  -%s\n", f.Name)
				fmt.Printf("    %s\n", f.Usage)
			}
		}
	}
}

func parseCoordinate(latRaw, lonRaw string) (types.Coordinate, error) {
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return types.Coordinate{}, fmt.Errorf("invalid latitude %q", latRaw)
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return types.Coordinate{}, fmt.Errorf("invalid longitude %q", lonRaw)
	}

	coord := types.Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return types.Coordinate{}, fmt.Errorf("coordinate %s is out of range", coord)
	}
	return coord, nil
}

// applySMTPFlags overlays non-empty command line values onto the configured SMTP settings.
func applySMTPFlags(s *config.SMTPConfig) {
	if *smtpServer != "" {
		s.Server = *smtpServer
	}
	if *smtpPort != 0 {
		s.Port = *smtpPort
	}
	if *smtpUser != "" {
		s.User = *smtpUser
	}
	if *smtpPass != "" {
		s.Pass = *smtpPass
	}
	if *toEmail != "" {
		s.ToEmail = *toEmail
	}
	if *fromEmail != "" {
		s.FromEmail = *fromEmail
	}
}

func main() {
	flag.Parse()

	if *latStr == "" || *lonStr == "" {
		fmt.Println("Error: -lat and -lon are required.")
		fmt.Println("Usage: digmap -lat 53.1959 -lon 50.1002 [-historical=false] --smtp-user=... --to-email=...")
		os.Exit(1)
	}

	coord, err := parseCoordinate(*latStr, *lonStr)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load("digmap-cli")
	if err != nil {
		fmt.Printf("Fatal error loading config: %v\n", err)
		os.Exit(1)
	}
	applySMTPFlags(&cfg.SMTP)

	// Logs go to stderr so the report on stdout stays clean.
	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	svc, err := app.NewServices(ctx, cfg)
	if err != nil {
		fmt.Printf("Fatal error setting up services: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting digmap report for %s (historical: %t)\n", coord, *historical)

	var report pipeline.Report
	if *historical {
		report = svc.Pipeline.Report(ctx, coord)
	} else {
		report = svc.Pipeline.RegionReport(ctx, coord)
	}

	notify.PrintReport(os.Stdout, report)

	emailCfg := app.EmailConfig(cfg.SMTP)
	if !emailCfg.Enabled {
		return
	}

	notifier := notify.NewNotifier(notify.NewEmailSender(emailCfg), cfg.Server.PublicURL)
	if err := notifier.SendReport(ctx, report); err != nil {
		fmt.Printf("Error sending email: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Report sent to %s\n", emailCfg.ToEmail)
}
