//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package arena

func mapRegion(int) ([]byte, error) {
	return nil, errMmapUnsupported
}

func unmapRegion([]byte) error {
	return nil
}
