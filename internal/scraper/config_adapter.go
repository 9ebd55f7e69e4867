package scraper

import (
	"fmt"
	"regexp"

	"github.com/greywire/proxypool/internal/config"
	"github.com/greywire/proxypool/internal/netutil"
)

// regexOption keys read from a SourceConfig of Kind "regex". Each present
// key must be a valid regular expression string; its first capture group
// is extracted (the whole match when it has none). An absent key leaves
// that field unmatched.
const (
	optionIPPattern     = "ip_pattern"
	optionPortPattern   = "port_pattern"
	optionAnonPattern   = "anon_pattern"
	optionSchemePattern = "scheme_pattern"
)

// BuildSource turns one configured Source definition into a concrete
// scraper.Source. Kind "regex" is the only built-in implementation today;
// an unrecognized Kind is a configuration error, not a panic — the caller
// decides whether to skip it or abort startup.
func BuildSource(sc config.SourceConfig, downloader netutil.Downloader) (Source, error) {
	switch sc.Kind {
	case "regex":
		return buildRegexSource(sc, downloader)
	default:
		return nil, fmt.Errorf("scraper: unknown source kind %q for %q", sc.Kind, sc.Name)
	}
}

func buildRegexSource(sc config.SourceConfig, downloader netutil.Downloader) (Source, error) {
	ip, err := compileOption(sc, optionIPPattern)
	if err != nil {
		return nil, err
	}
	port, err := compileOption(sc, optionPortPattern)
	if err != nil {
		return nil, err
	}
	anon, err := compileOption(sc, optionAnonPattern)
	if err != nil {
		return nil, err
	}
	scheme, err := compileOption(sc, optionSchemePattern)
	if err != nil {
		return nil, err
	}

	rule := RegexRule{
		Name: sc.Name,
		URLs: sc.URLs,
		IP:   ip,
		Port: port,
		Anon: anon,
		Sch:  scheme,
	}
	return NewRegexSource(rule, downloader), nil
}

func compileOption(sc config.SourceConfig, key string) (*regexp.Regexp, error) {
	raw, ok := sc.Options[key]
	if !ok {
		return nil, nil
	}
	pattern, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("scraper: source %q option %q must be a string", sc.Name, key)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("scraper: source %q option %q: %w", sc.Name, key, err)
	}
	return re, nil
}
