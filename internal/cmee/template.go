package cmee

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// StartTimeLayout is the layout the alarm endpoint expects.
const StartTimeLayout = "2006-01-02 15:04:05"

// alarmLookahead is added to the current UTC time to build the alarm
// query start time.
const alarmLookahead = 6 * time.Hour

var placeholderRe = regexp.MustCompile(`\{(\d*)\}`)

// FormatURL substitutes positional placeholders in tmpl. "{0}", "{1}"
// address args by index and "{}" takes the next one in order. Values
// are query-escaped with spaces as %20. Placeholders without a matching
// argument are left untouched.
func FormatURL(tmpl string, args ...string) string {
	next := 0
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		idx := next
		if digits := m[1 : len(m)-1]; digits != "" {
			n, err := strconv.Atoi(digits)
			if err != nil {
				return m
			}
			idx = n
		} else {
			next++
		}
		if idx < 0 || idx >= len(args) {
			return m
		}
		return escapeValue(args[idx])
	})
}

// valueReplacer undoes the form-style parts of url.QueryEscape: spaces
// go out as %20 and colons stay literal, the way the service's own web
// client sends them.
var valueReplacer = strings.NewReplacer("+", "%20", "%3A", ":")

func escapeValue(v string) string {
	return valueReplacer.Replace(url.QueryEscape(v))
}

// AlarmStartTime returns now in UTC plus six hours, shown in loc.
func AlarmStartTime(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return now.UTC().Add(alarmLookahead).In(loc).Format(StartTimeLayout)
}
