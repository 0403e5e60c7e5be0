package logging

import (
	"fmt"
	"os"
	"strconv"
)

// maxBackups is the number of rotated copies kept (file.log.1 to file.log.5).
const maxBackups = 5

// rotate shifts the backups of filePath up by one, dropping the oldest,
// and moves filePath itself to filePath.1:
//
//	.log.N is deleted
//	.log.(i) -> .log.(i+1)
//	.log     -> .log.1
//
// The caller opens a fresh file afterwards.
func rotate(filePath string, keep int) error {
	backup := func(i int) string { return filePath + "." + strconv.Itoa(i) }

	if err := os.Remove(backup(keep)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("logging: rotate remove %s: %w", backup(keep), err)
	}
	for i := keep - 1; i >= 1; i-- {
		if err := os.Rename(backup(i), backup(i+1)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("logging: rotate rename %s: %w", backup(i), err)
		}
	}
	if err := os.Rename(filePath, backup(1)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("logging: rotate rename %s: %w", filePath, err)
	}
	return nil
}
