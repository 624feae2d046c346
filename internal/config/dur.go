package config

import (
	"fmt"
	"time"
)

// Dur decodes a TOML value as a time.Duration, accepting either a
// Go-style duration string ("5s") or a bare integer/float count of
// nanoseconds. Grounded on zombie-reaping-supervisor's own Dur type in
// bogen85-config's pack entry.
type Dur struct{ time.Duration }

func (d *Dur) UnmarshalTOML(v interface{}) error {
	if v == nil {
		d.Duration = 0
		return nil
	}
	switch x := v.(type) {
	case string:
		if x == "" {
			d.Duration = 0
			return nil
		}
		dd, err := time.ParseDuration(x)
		if err != nil {
			return err
		}
		d.Duration = dd
		return nil
	case int64:
		d.Duration = time.Duration(x)
		return nil
	case float64:
		d.Duration = time.Duration(x)
		return nil
	default:
		return fmt.Errorf("config: unsupported duration type %T", v)
	}
}
