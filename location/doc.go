/*
Package location models the locations hostname code matches point to, and
answers spatial queries over them.

A [Location] embeds a [geo.Point] for its coordinates, so all coordinate
behaviour is simply composed. Code-specific information is optional: a
location may know its airport codes (IATA, ICAO, FAA) and its UN/LOCODE
codes. Consumers ask for these through the capability interfaces
[AirportCoder] and [LocodeCoder] instead of digging through nil pointers.

[Index] buckets locations into s2 cells in order to quickly find the
candidate locations within some radius around a point, such as the location
of a measurement vantage point. Candidates are then sorted by their exact haversine
distance.
*/
package location
