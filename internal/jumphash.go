package internal

import "github.com/zeebo/xxh3"

// KeyIndex maps an item key to one of n buckets: the xxh3 hash of the key
// fed to JumpHash. Adding a bucket moves about 1/n of the keys.
func KeyIndex(key string, n int) int {
	return JumpHash(xxh3.HashString(key), n)
}

// JumpHash is Google's "Jump" consistent hash (https://arxiv.org/abs/1406.2294),
// following https://github.com/dgryski/go-jump. It returns 0 when
// numBuckets is not positive.
func JumpHash(key uint64, numBuckets int) int {
	if numBuckets <= 0 {
		return 0
	}

	var b int64 = -1
	var j int64

	for j < int64(numBuckets) {
		b = j
		key = key*2862933555777941757 + 1
		j = int64(float64(b+1) * (float64(int64(1)<<31) / float64((key>>33)+1)))
	}

	return int(b)
}
