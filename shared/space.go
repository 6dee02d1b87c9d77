package shared

import (
	"fmt"

	"code.cloudfoundry.org/bytefmt"
	"github.com/ricochet2200/go-disk-usage/du"
)

func AvailableSpace(path string) uint64 {
	usage := du.NewDiskUsage(path)
	return usage.Available()
}

// ValidateSpace checks that the volume holding path has at least required bytes available.
func ValidateSpace(path string, required uint64) error {
	available := AvailableSpace(path)
	if required > available {
		return fmt.Errorf("not enough disk space. required: %v, available: %v",
			bytefmt.ByteSize(required), bytefmt.ByteSize(available))
	}
	return nil
}
