package database

import (
	"fmt"
	"net/url"

	"github.com/rickgao/rampsim/internal/config"
)

// ApplicationName is reported to the server so loader sessions are visible in pg_stat_activity.
const ApplicationName = "rampsim"

// BuildConnString builds a PostgreSQL connection URL from config.
func BuildConnString(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Name,
	}
	// url.UserPassword escapes special characters in credentials
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else {
		u.User = url.User(cfg.User)
	}

	query := url.Values{}
	query.Set("sslmode", sslMode)
	query.Set("application_name", ApplicationName)
	u.RawQuery = query.Encode()

	return u.String()
}
