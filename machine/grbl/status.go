package grbl

import (
	"errors"
	"strconv"
	"strings"

	"github.com/repentsinner/ghsender-sub001/coord"
	"github.com/repentsinner/ghsender-sub001/machine"
)

func parseCoords(data string) (p coord.Point, err error) {
	parts := strings.Split(data, ",")
	if len(parts) != 3 {
		return p, errors.New("invalid number of elements")
	}
	p.X, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return p, err
	}
	p.Y, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return p, err
	}
	p.Z, err = strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return p, err
	}
	return p, nil
}

// ParseStatusReport decodes one `<...>` real-time report. A malformed
// sub-field is passed over; it never rejects the whole report.
func ParseStatusReport(line string) (machine.StatusReport, bool) {
	var rep machine.StatusReport
	line = strings.TrimSpace(line)
	if len(line) < 2 || line[0] != '<' || line[len(line)-1] != '>' {
		return rep, false
	}
	parts := strings.Split(line[1:len(line)-1], "|")
	rep.RawStatus = parts[0]
	rep.Status = machine.ClassifyStatus(parts[0])

	for _, s := range parts[1:] {
		kv := strings.SplitN(s, ":", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "MPos":
			if p, err := parseCoords(kv[1]); err == nil {
				rep.MPos = &p
			}
		case "WPos":
			if p, err := parseCoords(kv[1]); err == nil {
				rep.WPos = &p
			}
		case "WCO":
			if p, err := parseCoords(kv[1]); err == nil {
				rep.WCO = &p
			}
		case "Bf":
			nums := strings.Split(kv[1], ",")
			if len(nums) > 0 {
				if v, err := strconv.Atoi(nums[0]); err == nil {
					rep.PlannerAvailable = &v
				}
			}
			if len(nums) > 1 {
				if v, err := strconv.Atoi(nums[1]); err == nil {
					rep.RXAvailable = &v
				}
			}
		case "F":
			if v, err := strconv.ParseFloat(kv[1], 64); err == nil {
				rep.FeedRate = &v
			}
		case "FS":
			nums := strings.Split(kv[1], ",")
			if len(nums) > 0 {
				if v, err := strconv.ParseFloat(nums[0], 64); err == nil {
					rep.FeedRate = &v
				}
			}
			if len(nums) > 1 {
				if v, err := strconv.ParseFloat(nums[1], 64); err == nil {
					rep.SpindleSpeed = &v
				}
			}
		case "Ov":
			nums := strings.Split(kv[1], ",")
			if len(nums) == 3 {
				var ov machine.Overrides
				var err error
				ov.Feed, err = strconv.Atoi(nums[0])
				if err != nil {
					continue
				}
				ov.Rapid, err = strconv.Atoi(nums[1])
				if err != nil {
					continue
				}
				ov.Spindle, err = strconv.Atoi(nums[2])
				if err != nil {
					continue
				}
				rep.Overrides = &ov
			}
		case "Pn":
			v := kv[1]
			rep.Pins = &v
		case "A":
			v := kv[1]
			rep.Accessories = &v
		}
	}
	return rep, true
}
