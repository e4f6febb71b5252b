/*
Package resolve fills in missing IP addresses of dataset records by querying
a DNS resolver.

A [Pool] is a size-limited pool of DNS client connections all talking to the
same resolver address. Resolver tasks get submitted to the pool and are then
run on the next free connection. [Pool.ResolveName] is a convenience task
querying the A and AAAA resource records of a name.

[Enrich] streams a dataset through a pool, resolving only those records that
lack both an IPv4 and an IPv6 address. Records are written in their original
order. Failing resolutions leave the record unchanged and are logged at debug
level only.
*/
package resolve
