/*
Package dataset reads partitioned hostname datasets and writes the batched
“located” and “unlocated” result streams.

A dataset consists of N partition files whose names follow a pattern with a
"{}" placeholder for the partition index, such as "rdns-{}.json". Each line
in a partition file is either a JSON array of domain records or a single
domain record:

	[{"domain_name": "ae-0.fra.example.net", "ip_address": "192.0.2.1"}, ...]

Partition files might be compressed using gzip (".gz") or zstd (".zst"); if
the plain file doesn't exist, [Open] tries the compressed variants.

[BatchWriter] writes domains in batches, each batch as a single line
containing a JSON array, so that result streams can be fed back as datasets.
*/
package dataset
