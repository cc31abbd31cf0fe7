package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// shiftRangeRegex matches "19h à 7h", "8h00-16h00" or "7h30 au 15h30"
var shiftRangeRegex = regexp.MustCompile(`(?i)(\d{1,2}h\d{0,2})[\s\p{Zs}]*(?:-|à|au)[\s\p{Zs}]*(\d{1,2}h\d{0,2})`)

// ComputeShiftDuration returns the length of the first clock range in text,
// truncated to whole hours and formatted as "<N>h". A range whose end is
// earlier than its start crosses midnight. It returns an empty string when
// no valid range is found.
func ComputeShiftDuration(text string) string {
	m := shiftRangeRegex.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	start, ok := parseClock(m[1])
	if !ok {
		return ""
	}
	end, ok := parseClock(m[2])
	if !ok {
		return ""
	}

	if end < start {
		end += 24 * time.Hour
	}
	return fmt.Sprintf("%dh", int((end-start)/time.Hour))
}

// parseClock parses "H[H]h[MM]" into an offset from midnight
func parseClock(s string) (time.Duration, bool) {
	hoursPart, minutesPart, found := strings.Cut(strings.ToLower(s), "h")
	if !found {
		return 0, false
	}

	hours, err := strconv.Atoi(hoursPart)
	if err != nil || hours > 23 {
		return 0, false
	}

	minutes := 0
	if minutesPart != "" {
		minutes, err = strconv.Atoi(minutesPart)
		if err != nil || minutes > 59 {
			return 0, false
		}
	}

	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, true
}
