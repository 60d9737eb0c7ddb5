package cmd

import (
	"io/fs"
	"path/filepath"
)

// DirSize returns the total on-disk size in bytes of all regular files under
// root.
func DirSize(root string) (uint64, error) {
	var total uint64

	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		total += uint64(info.Size())

		return nil
	})
	if err != nil {
		return 0, err
	}

	return total, nil
}
