package storage

import _ "embed"

//go:embed schema.sql
var schemaSQL string

const (
	insertSessionSQL = `
INSERT INTO sessions (rx_driver, rx_config, tx_driver, tx_config)
VALUES (?, ?, ?, ?)`

	selectSessionsSQL = `
SELECT id, start_time, rx_driver, rx_config, tx_driver, tx_config
FROM sessions
ORDER BY start_time ASC`

	insertEventSQL = `
INSERT INTO events (
    session_id, kind, armed, capturing, center_db, threshold_db,
    above, path, error, rtlsdr_present, hackrf_present
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectEventsSQL = `
SELECT id, session_id, timestamp, kind, armed, capturing, center_db,
       threshold_db, above, path, error, rtlsdr_present, hackrf_present
FROM events
WHERE session_id = ?
ORDER BY timestamp ASC`
)
