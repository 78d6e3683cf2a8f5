package storage

import (
	"database/sql"

	"github.com/skywave-radio/console/internal/control"
)

func kindName(k control.EventKind) string {
	switch k {
	case control.EventTriggerStatus:
		return "trigger_status"
	case control.EventCaptureComplete:
		return "capture_complete"
	case control.EventCaptureFailed:
		return "capture_failed"
	case control.EventPresenceChanged:
		return "presence_changed"
	case control.EventRuntimeFault:
		return "runtime_fault"
	default:
		return "unknown"
	}
}

// eventFields flattens a control.Event into the columns InsertEvent writes,
// populating only the fields relevant to its Kind (mirroring control.Event
// itself, which only populates the fields relevant to its Kind).
func eventFields(ev control.Event) (kind string, armed, capturing sql.NullBool, centerDb, thresholdDb sql.NullFloat64, above sql.NullBool, path sql.NullString, errStr sql.NullString, rtlsdr, hackrf sql.NullBool) {
	kind = kindName(ev.Kind)

	switch ev.Kind {
	case control.EventTriggerStatus:
		armed = sql.NullBool{Bool: ev.Armed, Valid: true}
		capturing = sql.NullBool{Bool: ev.Capturing, Valid: true}
		centerDb = sql.NullFloat64{Float64: ev.CenterDb, Valid: true}
		thresholdDb = sql.NullFloat64{Float64: ev.ThresholdDb, Valid: true}
		above = sql.NullBool{Bool: ev.Above, Valid: true}

	case control.EventCaptureComplete:
		path = sql.NullString{String: ev.Path, Valid: true}

	case control.EventCaptureFailed, control.EventRuntimeFault:
		if ev.Err != nil {
			errStr = sql.NullString{String: ev.Err.Error(), Valid: true}
		}

	case control.EventPresenceChanged:
		rtlsdr = sql.NullBool{Bool: ev.RtlsdrPresent, Valid: true}
		hackrf = sql.NullBool{Bool: ev.HackrfPresent, Valid: true}
	}
	return
}
