package util

import gonanoid "github.com/matoous/go-nanoid/v2"

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandStr returns a random string of n letters. Panics only if the system's
// random source is broken.
func RandStr(n int) string {
	return gonanoid.MustGenerate(charset, n)
}
