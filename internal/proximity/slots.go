package proximity

import (
	"fmt"
	"strconv"
	"strings"
)

// timeToMinutes parses "HH:MM" into minutes since midnight. Malformed input
// reads as 0.
func timeToMinutes(t string) int {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m
}

func minutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// generateSlots produces fixed-duration slot start times from start up to the
// last slot that still fits entirely before end.
func generateSlots(start, end string, slotDurationMin int) []string {
	if slotDurationMin <= 0 {
		return nil
	}
	var slots []string
	current := timeToMinutes(start)
	endMin := timeToMinutes(end)
	for current+slotDurationMin <= endMin {
		slots = append(slots, minutesToTime(current))
		current += slotDurationMin
	}
	return slots
}

// closestSlotDistance returns the smallest absolute distance in minutes from
// any slot to the preferred time.
func closestSlotDistance(slots []string, preferred string) int {
	prefMin := timeToMinutes(preferred)
	minDist := int(^uint(0) >> 1)
	for _, slot := range slots {
		dist := timeToMinutes(slot) - prefMin
		if dist < 0 {
			dist = -dist
		}
		if dist < minDist {
			minDist = dist
		}
	}
	return minDist
}
