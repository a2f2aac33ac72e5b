package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/relay-router/model"
)

var ErrBadRecord = errors.New("malformed record")

// ConstellationPlan summarizes what a loader run produced. It's mainly
// useful for logging from main() and for deciding whether a route request
// was present at all.
type ConstellationPlan struct {
	Network      *Network
	Request      *model.RouteRequest
	SatelliteIDs []string
}

// LoadConstellation reads a line-oriented constellation description from r
// and connects every satellite into net. Recognized records:
//
//	# ...                         comment, skipped
//	SAT,<id>,<lat>,<lon>[,<alt>]  geodetic satellite; altitude defaults to 0
//	TLE,<id>,<line1>,<line2>      two-line element set, evaluated at tleAt
//	ROUTE,<lat1>,<lon1>,<lat2>,<lon2>
//
// Blank lines are skipped. Any other record is a data error. Multiple ROUTE
// lines are allowed; the last one wins. The loader only parses and connects;
// it never computes the route itself.
func LoadConstellation(net *Network, r io.Reader, tleAt time.Time) (*ConstellationPlan, error) {
	if net == nil {
		return nil, fmt.Errorf("LoadConstellation: network is nil")
	}

	plan := &ConstellationPlan{Network: net}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		kind := line
		if i := strings.IndexByte(line, ','); i >= 0 {
			kind = line[:i]
		}

		var err error
		switch kind {
		case "SAT":
			err = loadSatRecord(net, plan, line)
		case "TLE":
			err = loadTLERecord(net, plan, line, tleAt)
		case "ROUTE":
			err = loadRouteRecord(plan, line)
		default:
			err = fmt.Errorf("%w: unknown record type %q", ErrBadRecord, kind)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("LoadConstellation: read failed: %w", err)
	}

	return plan, nil
}

func loadSatRecord(net *Network, plan *ConstellationPlan, line string) error {
	fields := strings.Split(line, ",")
	if len(fields) != 4 && len(fields) != 5 {
		return fmt.Errorf("%w: SAT expects id,lat,lon[,alt], got %d fields", ErrBadRecord, len(fields)-1)
	}
	id := strings.TrimSpace(fields[1])

	lat, err := parseCoordinateField("latitude", fields[2])
	if err != nil {
		return err
	}
	lon, err := parseCoordinateField("longitude", fields[3])
	if err != nil {
		return err
	}
	alt := 0.0
	if len(fields) == 5 {
		if alt, err = parseCoordinateField("altitude", fields[4]); err != nil {
			return err
		}
	}

	sat, err := NewSatellite(id, model.GeodeticCoordinate{
		Latitude:  lat,
		Longitude: lon,
		Altitude:  alt,
	})
	if err != nil {
		return err
	}
	if err := net.Connect(sat); err != nil {
		return err
	}
	plan.SatelliteIDs = append(plan.SatelliteIDs, id)
	return nil
}

func loadTLERecord(net *Network, plan *ConstellationPlan, line string, at time.Time) error {
	fields := strings.SplitN(line, ",", 4)
	if len(fields) != 4 {
		return fmt.Errorf("%w: TLE expects id,line1,line2", ErrBadRecord)
	}
	id := strings.TrimSpace(fields[1])

	sat, err := SatelliteFromTLE(id, strings.TrimSpace(fields[2]), strings.TrimSpace(fields[3]), at)
	if err != nil {
		return err
	}
	if err := net.Connect(sat); err != nil {
		return err
	}
	plan.SatelliteIDs = append(plan.SatelliteIDs, id)
	return nil
}

func loadRouteRecord(plan *ConstellationPlan, line string) error {
	fields := strings.Split(line, ",")
	if len(fields) != 5 {
		return fmt.Errorf("%w: ROUTE expects lat1,lon1,lat2,lon2, got %d fields", ErrBadRecord, len(fields)-1)
	}

	vals := make([]float64, 4)
	names := []string{"start latitude", "start longitude", "finish latitude", "finish longitude"}
	for i := range vals {
		v, err := parseCoordinateField(names[i], fields[i+1])
		if err != nil {
			return err
		}
		vals[i] = v
	}

	// Last ROUTE record wins; route endpoints sit on the surface.
	plan.Request = &model.RouteRequest{
		Start:  model.GeodeticCoordinate{Latitude: vals[0], Longitude: vals[1]},
		Finish: model.GeodeticCoordinate{Latitude: vals[2], Longitude: vals[3]},
	}
	return nil
}

func parseCoordinateField(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrBadRecord, name, strings.TrimSpace(raw))
	}
	return v, nil
}
