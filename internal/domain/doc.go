// Package domain models USGS earthquake feed data and OpenEEW accelerometer
// waveforms.
//
// # Event Source
//
// Earthquake events come from the USGS real-time GeoJSON summary feeds at
// https://earthquake.usgs.gov/earthquakes/feed/v1.0/. Each feed is a GeoJSON
// FeatureCollection; every Feature is one event with a stable id that is
// reused when the event is revised (magnitude review, relocation), so the
// same id reappears across polls with a growing "updated" timestamp. The
// feed gives no ordering guarantee on "updated"; deduplication treats a
// non-increasing update time as a plain duplicate.
//
// # USGS Data Conventions
//
// Coordinates:
//
//	GeoJSON order is [longitude, latitude, depth_km], depth positive down.
//
// Times:
//
//	"time" and "updated" are integer milliseconds since the Unix epoch.
//
// Alert level:
//
//	PAGER alert: null, "green", "yellow", "orange", or "red". Presence of
//	any alert level is what marks an event as significant for filtering.
//
// Significance:
//
//	"sig" is a 0-1000+ score combining magnitude, felt reports, and
//	estimated impact. Carried through to consumers but not consulted by
//	the significant-only filter, which keys off the alert level instead.
//
// Tsunami:
//
//	"tsunami" is 0 or 1 in the feed; exposed as a bool on QuakeEvent.
//
// # Waveform Source
//
// Accelerometer records follow the OpenEEW public dataset layout
// (https://registry.opendata.aws/grillo-openeew/): NDJSON records with a
// device id, a fractional epoch start time ("cloud_t"), three axis sample
// arrays in gals (cm/s²), and a sample rate ("sr") that defaults to
// 31.25 Hz when absent.
package domain
