package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/London")
	if err != nil {
		panic(err)
	}
}

// force timezone to match the school's because our servers are not
// guaranteed to run in the same region, which causes disturbances when
// comparing staleness timestamps written by different deployments
func Now() time.Time {
	return time.Now().In(Location)
}
