package peripherals

import "time"

// Clock is the read-only battery-backed clock. A one-byte command
// register selects what the data port returns next; writes to the data
// port are silently ignored.
type Clock struct {
	cmd byte
	now func() time.Time
}

// NewClock returns a Clock that reads the wall clock through now (the
// real clock in production, a fixed stub in tests).
func NewClock(now func() time.Time) *Clock {
	return &Clock{now: now}
}

func bcd(v int) byte {
	return byte((v/10)<<4 | (v % 10))
}

// isLeapYear applies the CP/M 3 leap-year rule: divisible by 4, with no
// century exception, reproducing its Y2K-era semantics exactly.
func isLeapYear(year int) bool {
	return year%4 == 0
}

var monthLengths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// daysSinceEpoch counts days elapsed since 1978-01-01, the clock's
// reference date, using the simplified divisible-by-4 leap rule rather
// than true Gregorian century exceptions.
func daysSinceEpoch(t time.Time) int {
	t = t.UTC()
	days := 0
	for y := 1978; y < t.Year(); y++ {
		days += 365
		if isLeapYear(y) {
			days++
		}
	}
	for m := 1; m < int(t.Month()); m++ {
		days += monthLengths[m-1]
		if m == 2 && isLeapYear(t.Year()) {
			days++
		}
	}
	days += t.Day() - 1
	return days
}

func (c *Clock) read() byte {
	t := c.now()
	switch c.cmd {
	case 0:
		return bcd(t.Second())
	case 1:
		return bcd(t.Minute())
	case 2:
		return bcd(t.Hour())
	case 3:
		return byte(daysSinceEpoch(t))
	case 4:
		return byte(daysSinceEpoch(t) >> 8)
	default:
		return 0
	}
}

// Bind installs the clock's command/data port pair (25/26).
func (c *Clock) Bind(bind func(port byte, in func() byte, out func(byte))) {
	bind(25, func() byte { return c.cmd }, func(v byte) { c.cmd = v })
	bind(26, c.read, func(byte) {})
}
