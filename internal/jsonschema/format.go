package jsonschema

import (
	"net"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metricsql"
	"github.com/grafana/regexp"
)

// FormatChecker reports whether s is a valid instance of a "format" value.
type FormatChecker func(s string) bool

var (
	hostnamePattern = regexp.MustCompile(`^(?i)[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)*\.?$`)
	uuidPattern     = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// defaultFormats returns the built-in format checkers. Formats not listed here are
// treated as annotations.
func defaultFormats() map[string]FormatChecker {
	return map[string]FormatChecker{
		"date-time": isDateTime,
		"date":      isDate,
		"time":      isTime,
		"email":     isEmail,
		"hostname":  isHostname,
		"ipv4":      isIPv4,
		"ipv6":      isIPv6,
		"uri":       isURI,
		"uuid":      uuidPattern.MatchString,
		"regex":     isRegex,
		"metricsql": isMetricsQL,
	}
}

func isDateTime(s string) bool {
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}

func isDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func isTime(s string) bool {
	_, err := time.Parse("15:04:05.999999999Z07:00", s)
	return err == nil
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func isHostname(s string) bool {
	return len(s) <= 253 && hostnamePattern.MatchString(s)
}

func isIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && !strings.Contains(s, ":") && ip.To4() != nil
}

func isIPv6(s string) bool {
	return net.ParseIP(s) != nil && strings.Contains(s, ":")
}

func isURI(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

func isRegex(s string) bool {
	_, err := regexp.Compile(s)
	return err == nil
}

// isMetricsQL accepts MetricsQL (and therefore PromQL) expressions.
func isMetricsQL(s string) bool {
	_, err := metricsql.Parse(s)
	return err == nil
}
