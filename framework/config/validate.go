package config

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// rules maps each env key onto a pipe-separated rule string.
var rules = map[string]string{
	"APP_NAME":           "required",
	"APP_ENV":            "required|regex:^[A-Za-z0-9_-]+$",
	"AUTOLOAD_DIR":       "required_with:AUTOLOAD_NAMESPACE",
	"LOG_LEVEL":          "sometimes|in:trace,debug,info,warn,warning,error,disabled,off,none",
	"LOG_FORMAT":         "sometimes|in:json,console",
	"DIAGNOSTICS_PORT":   "required|integer|between:0,65535",
	"AUTOLOAD_NAMESPACE": "sometimes|regex:^[^.]+$",
}

// ValidationError holds every failed rule, keyed by env name.
type ValidationError struct {
	Bag map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Bag))
	for k := range e.Bag {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, strings.Join(e.Bag[k], " "))
	}
	return "config: " + strings.Join(msgs, "; ")
}

// First returns the first message for key.
func (e *ValidationError) First(key string) string {
	if msgs := e.Bag[key]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e *ValidationError) add(key, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[key] = append(e.Bag[key], msg)
}

// Validate checks the loaded values. It returns a *ValidationError listing
// every failed key, or nil.
func (c *Config) Validate() error {
	data := c.values()
	errs := &ValidationError{}

	for key, ruleStr := range rules {
		value := data[key]
		for _, rule := range strings.Split(ruleStr, "|") {
			name, param, _ := strings.Cut(strings.TrimSpace(rule), ":")
			if !apply(errs, data, key, value, name, param) {
				break
			}
		}
	}

	if len(errs.Bag) > 0 {
		return errs
	}
	return nil
}

// values flattens c back onto its env keys.
func (c *Config) values() map[string]string {
	return map[string]string{
		"APP_NAME":           c.App.Name,
		"APP_ENV":            c.App.Env,
		"AUTOLOAD_NAMESPACE": c.Container.AutoloadNamespace,
		"AUTOLOAD_DIR":       c.Container.AutoloadDir,
		"LOG_LEVEL":          c.Log.Level,
		"LOG_FORMAT":         c.Log.Format,
		"DIAGNOSTICS_PORT":   c.Diagnostics.Port,
	}
}

// apply returns false when the rule fails or later rules should be skipped.
func apply(errs *ValidationError, data map[string]string, key, value, rule, param string) bool {
	switch rule {
	case "required":
		if strings.TrimSpace(value) == "" {
			errs.add(key, fmt.Sprintf("%s is required.", key))
			return false
		}

	case "required_with":
		if data[param] != "" && strings.TrimSpace(value) == "" {
			errs.add(key, fmt.Sprintf("%s is required when %s is set.", key, param))
			return false
		}

	case "sometimes":
		if value == "" {
			return false
		}

	case "integer":
		if _, err := strconv.Atoi(value); err != nil {
			errs.add(key, fmt.Sprintf("%s must be an integer.", key))
			return false
		}

	case "between":
		lo, hi, _ := strings.Cut(param, ",")
		min, _ := strconv.Atoi(lo)
		max, _ := strconv.Atoi(hi)
		n, _ := strconv.Atoi(value)
		if n < min || n > max {
			errs.add(key, fmt.Sprintf("%s must be between %d and %d.", key, min, max))
			return false
		}

	case "in":
		for _, allowed := range strings.Split(param, ",") {
			if strings.EqualFold(strings.TrimSpace(allowed), strings.TrimSpace(value)) {
				return true
			}
		}
		errs.add(key, fmt.Sprintf("%s must be one of %s.", key, param))
		return false

	case "regex":
		re, err := regexp.Compile(param)
		if err != nil || !re.MatchString(value) {
			errs.add(key, fmt.Sprintf("%s format is invalid.", key))
			return false
		}
	}

	return true
}
