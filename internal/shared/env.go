package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "LISTBRIDGE_"

// ApplyEnv overlays credentials and paths from the process environment and the given dotenv files.
//
// Process variables win over dotenv values. Missing dotenv files are ignored.
func ApplyEnv(c *Config, files ...string) error {
	values := make(map[string]string)
	for _, f := range files {
		read, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return fmt.Errorf("%w: failed to read %s: %w", ErrInvalidConfig, f, err)
		}
		for k, v := range read {
			values[k] = v
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			return v, true
		}
		v, ok := values[EnvPrefix+key]
		return v, ok
	}

	strs := map[string]*string{
		"SPOTIFY_CLIENT_ID":     &c.Credentials.Spotify.ClientID,
		"SPOTIFY_CLIENT_SECRET": &c.Credentials.Spotify.ClientSecret,
		"SPOTIFY_REDIRECT_URI":  &c.Credentials.Spotify.RedirectURI,
		"GOOGLE_CLIENT_ID":      &c.Credentials.Google.ClientID,
		"GOOGLE_CLIENT_SECRET":  &c.Credentials.Google.ClientSecret,
		"GOOGLE_REDIRECT_URI":   &c.Credentials.Google.RedirectURI,
		"DATABASE_PATH":         &c.Database.Path,
		"LOCALE":                &c.Matching.Locale,
		"LOG_LEVEL":             &c.Log.Level,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("GOOGLE_DAILY_QUOTA"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sGOOGLE_DAILY_QUOTA: %w", ErrInvalidConfig, EnvPrefix, err)
		}
		c.Credentials.Google.DailyQuota = n
	}
	return nil
}
