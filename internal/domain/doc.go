// Package domain models geotagged media files and the GeoJSON features built
// from them.
//
// # Metadata Sources
//
// Photos carry EXIF tags. Coordinates live in the GPS sub-IFD as three
// rationals (degrees, minutes, seconds) plus a hemisphere reference:
//
//	GPSLatitude     = [40/1, 26/1, 46/1]   GPSLatitudeRef  = "N"
//	GPSLongitude    = [79/1, 58/1, 56/1]   GPSLongitudeRef = "W"
//	→ (40.446111, -79.982222)
//
// A reference other than "N" (latitude) or "E" (longitude) negates the value.
// A missing reference is treated as unusable GPS rather than assumed positive.
//
// QuickTime videos recorded by iPhones embed an ISO 6709 string in the
// container's user data, e.g. "+40.4461-079.9822+000.000/". The first signed
// decimal is latitude, the second longitude. Videos carry no camera model in
// those bytes, so their device is always [VideoDevice].
//
// Timestamps:
//
//	EXIF DateTimeOriginal / DateTime use "2006:01:02 15:04:05".
//	Video creation dates come from the container's movie header and are
//	rendered in the same layout, in UTC.
//
// # Store Format
//
// Features are persisted as a single GeoJSON FeatureCollection. Property
// names are fixed so existing stores stay readable:
//
//	name, country, city, street, postal, DateTime, Year, Device, path
//
// Missing metadata is written as the literal "none"; failed reverse
// geocoding is written as "unknown" in every place field.
//
// # Deduplication
//
// A file is recorded once per (name, DateTime) pair. Two different files with
// the same base name and the same capture time collapse to one feature; see
// [DedupIndex].
package domain
