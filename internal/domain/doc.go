// Package domain models place reports and their geocoding enrichment.
//
// # Data Source
//
// Place reports arrive as flat JSON on the Kafka source topic, published by
// upstream collectors (user check-ins, imported POI lists, scraped venue
// feeds). A report carries a free-form place name and/or a coordinate pair;
// rarely both, often neither complete:
//
//	{"id":"", "name":"10 Downing St, London", "lat":"", "lon":"", "language":"en"}
//	{"id":"poi-93", "name":"", "lat":"51.50335", "lon":"-0.12765"}
//
// Coordinates are strings in the wire format because several collectors
// emit CSV-derived JSON; blank strings mean "not captured".
//
// # Enrichment
//
// [EnrichWithGeocoding] fills the gaps through a [Geocoder]: a report with a
// name but no coordinates is forward geocoded, and any report with
// coordinates gets structured [AddressDetails] via reverse geocoding. The
// geocoder contains its own failures, so enrichment degrades gracefully: an
// unresolvable or failed lookup leaves the event unenriched rather than
// poisoning the batch.
//
// # Unknown values
//
// Address fields the provider cannot supply hold a category sentinel
// instead of a Go zero value, so downstream renderers can distinguish
// "provider had no data" from "field not applicable":
//
//	UnknownRegular ("unknown")  most fields
//	UnknownSmall   ("?")        narrow fields such as street numbers
//	UnknownEmpty   ("")         street fields on unnamed roads
//
// # ID Generation
//
// Reports without an ID get a deterministic SHA-256 hash of the name and
// coordinates plus the message timestamp. Reprocessing the same raw report
// produces the same ID, which keeps downstream upserts idempotent under
// replay. See [generateID].
package domain
