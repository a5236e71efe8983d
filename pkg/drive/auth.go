package drive

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/google"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Capability describes what the process can do against the Drive API.
// A service account can list private folders and stream their files, a bare
// API key only works against public data, and with nothing the gateway runs
// entirely on scraping and public mirror URLs.
type Capability int

const (
	CapNone Capability = iota
	CapAPIKey
	CapServiceAccount
)

func (c Capability) String() string {
	switch c {
	case CapServiceAccount:
		return "service-account"
	case CapAPIKey:
		return "api-key"
	default:
		return "none"
	}
}

// Credentials is the raw credential material handed in from the environment.
// All fields are optional.
type Credentials struct {
	ServiceAccountKey string // inline service-account key JSON
	CredentialsFile   string // path to a credentials file
	APIKey            string
}

// Client wraps an optional Drive API service with its capability level.
// It is constructed once at startup and shared for the life of the process;
// there is no re-auth on mid-run authentication errors.
// TODO: force a credential refresh when the API starts answering 401.
type Client struct {
	svc *driveapi.Service
	cap Capability
}

// NewClient tries each credential source in priority order and returns a
// client built from the first one that works. Individual failures are logged
// and skipped; having no credentials at all is a valid, degraded outcome.
func NewClient(ctx context.Context, creds Credentials) *Client {
	if creds.ServiceAccountKey != "" {
		cred, err := google.CredentialsFromJSON(ctx, []byte(creds.ServiceAccountKey), driveapi.DriveReadonlyScope)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to parse inline service account key")
		} else {
			svc, err := driveapi.NewService(ctx, option.WithTokenSource(cred.TokenSource))
			if err != nil {
				log.Warn().Err(err).Msg("Failed to build drive service from service account key")
			} else {
				log.Info().Msg("Drive auth: inline service account key")
				return &Client{svc: svc, cap: CapServiceAccount}
			}
		}
	}

	if creds.CredentialsFile != "" {
		svc, err := driveapi.NewService(ctx,
			option.WithCredentialsFile(creds.CredentialsFile),
			option.WithScopes(driveapi.DriveReadonlyScope))
		if err != nil {
			log.Warn().Err(err).Str("path", creds.CredentialsFile).Msg("Failed to build drive service from credentials file")
		} else {
			log.Info().Str("path", creds.CredentialsFile).Msg("Drive auth: credentials file")
			return &Client{svc: svc, cap: CapServiceAccount}
		}
	}

	if creds.APIKey != "" {
		svc, err := driveapi.NewService(ctx, option.WithAPIKey(creds.APIKey))
		if err != nil {
			log.Warn().Err(err).Msg("Failed to build drive service from api key")
		} else {
			log.Info().Msg("Drive auth: api key, public access only")
			return &Client{svc: svc, cap: CapAPIKey}
		}
	}

	log.Warn().Msg("No drive credentials found, falling back to public scraping")
	return &Client{cap: CapNone}
}

func (c *Client) Capability() Capability {
	return c.cap
}

// Service returns the underlying API service, nil when CapNone.
func (c *Client) Service() *driveapi.Service {
	return c.svc
}
