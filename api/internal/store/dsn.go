package store

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ResolveDSN prefers DATABASE_URL and otherwise builds a DSN from POSTGRES_* / PG* variables.
// It returns "" when neither DATABASE_URL nor a host or database name is set, which means no storage.
func ResolveDSN(getenv func(string) string) string {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	if v := get("DATABASE_URL", ""); v != "" {
		return v
	}
	if get("PGHOST", "") == "" && get("POSTGRES_DB", "") == "" {
		return ""
	}

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(get("POSTGRES_USER", "tutor"), getenv("POSTGRES_PASSWORD")),
		Host:     net.JoinHostPort(get("PGHOST", "db"), get("PGPORT", "5432")),
		Path:     "/" + get("POSTGRES_DB", "tutor"),
		RawQuery: "sslmode=" + get("PGSSLMODE", "disable"),
	}
	return u.String()
}

// SafeDSNSummary describes the DSN for logs without the password.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "dsn: parse error"
	}
	host, port := u.Host, ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	user := u.User.Username()
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, user)
}
