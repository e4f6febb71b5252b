/*
Package geo implements the geographic distance primitives hlocate uses to
validate location candidates: the exact great-circle distance using the
haversine formula, as well as a cheap equirectangular radius check.

	d, err := geo.Haversine(geo.Point{Lat: 52.52, Lon: 13.405}, geo.Point{Lat: 48.8566, Lon: 2.3522})
	// d ≈ 878 km

⚠ [IsInRadius] uses a flat-plane small-angle approximation. It avoids the
inverse trigonometric step of [Haversine] and thus is considerably cheaper
when filtering many candidates, but it is only valid for radii small compared
to the Earth's radius and degrades towards the poles. Callers must not assume
it to agree with the exact distance outside this regime.

All primitives refuse to work with non-finite or out-of-range coordinates and
instead return an [*InputError].
*/
package geo
