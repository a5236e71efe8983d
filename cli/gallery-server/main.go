package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
	"github.com/tcsclub/gallery-server/pkg/cache"
	"github.com/tcsclub/gallery-server/pkg/drive"
	"github.com/tcsclub/gallery-server/pkg/gallery"
	"github.com/tcsclub/gallery-server/pkg/utils/logging"
	"github.com/tcsclub/gallery-server/pkg/web"
)

var cli struct {
	// Gallery layout document
	GalleryConfig string `env:"GALLERY_CONFIG" default:"data/gallery.json" help:"Path to the gallery sections JSON e.g. data/gallery.json"`

	// Drive credentials, tried in this order; all optional
	ServiceAccountKey string `env:"GOOGLE_SERVICE_ACCOUNT_KEY" help:"Inline service account key JSON"`
	CredentialsFile   string `env:"GOOGLE_APPLICATION_CREDENTIALS" help:"Path to a credentials file"`
	APIKey            string `env:"GOOGLE_API_KEY" help:"API key for public Drive access"`

	// Misc
	LogLevel             string `env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error"`
	ListenAddress        string `env:"LISTEN_ADDR" default:"0.0.0.0:5174" help:"Listen address e.g. 0.0.0.0:5174"`
	MetricsListenAddress string `env:"METRICS_LISTEN_ADDR" default:"0.0.0.0:9102" help:"Listen address for prometheus metrics e.g. 0.0.0.0:9102"`
	Debug                bool   `env:"DEBUG" help:"Enable debug mode"`
}

func main() {
	kong.Parse(&cli)

	logging.SetupLogging(cli.LogLevel)

	client := drive.NewClient(context.Background(), drive.Credentials{
		ServiceAccountKey: cli.ServiceAccountKey,
		CredentialsFile:   cli.CredentialsFile,
		APIKey:            cli.APIKey,
	})

	store := cache.New()
	lister := drive.NewLister(client, drive.NewScraper(), store)
	streamer := drive.NewStreamer(client)
	galleryService := gallery.NewService(cli.GalleryConfig, lister, store)

	handlers := web.Handlers{
		Gallery: galleryService,
		Media:   streamer,
		Debug:   cli.Debug,
	}

	router := web.GetRouter(cli.MetricsListenAddress, handlers, true)

	log.Info().Str("mode", client.Capability().String()).Msgf("Listening on %s", cli.ListenAddress)
	if err := router.Run(cli.ListenAddress); err != nil {
		log.Fatal().Err(err).Msg("Failed HTTP server loop")
	}
}
